package errs

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrMissingConfig is returned when the translation layer is started
	// without a config.
	ErrMissingConfig = errors.New("config is missing")
	// ErrNoPlaceholder is returned when the bundled data of a version has no
	// counterpart of the placeholder (stone) item or block.
	ErrNoPlaceholder = errors.New("no placeholder mapping")
)

// ConfigError is a missing or malformed bundled resource of a supported
// protocol version. It is fatal: the translation layer must not start with
// partial data for a version it declares as supported.
type ConfigError struct {
	Version string // version label, e.g. 1.20.10
	File    string // path within the data directory
	Err     error
}

func (e *ConfigError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("bedrock %s: %v", e.Version, e.Err)
	}
	return fmt.Sprintf("bedrock %s: %s: %v", e.Version, e.File, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError returns a *ConfigError.
func NewConfigError(version, file string, err error) error {
	return &ConfigError{Version: version, File: file, Err: err}
}

// IsMissingFile reports whether err was caused by a bundled file that does not exist.
func IsMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
