// Package config is the configuration of the backwards compatibility layer.
package config

import (
	"fmt"
	"strings"

	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"

	"github.com/JukeboxMC/JBackwards/pkg/edition/bedrock/proto/version"
)

// DefaultConfig is a default Config.
var DefaultConfig = Config{
	DataDir:              "data",
	Versions:             nil, // all
	Compression:          CompressionFlate,
	CompressionThreshold: 512,
	Debug:                false,
}

// Compression is the compression algorithm announced to legacy clients
// whose login is accepted.
type Compression string

// Compression algorithms.
const (
	CompressionFlate  Compression = "flate"
	CompressionSnappy Compression = "snappy"
	CompressionNone   Compression = "none"
)

// Algorithm returns the NetworkSettings value of c.
// The name is case-insensitive.
func (c Compression) Algorithm() (uint16, bool) {
	switch Compression(strings.ToLower(string(c))) {
	case CompressionFlate, "":
		return packet.CompressionAlgorithmFlate, true
	case CompressionSnappy:
		return packet.CompressionAlgorithmSnappy, true
	case CompressionNone:
		return packet.CompressionAlgorithmNone, true
	}
	return 0, false
}

// Config is the root configuration.
type Config struct {
	// DataDir is the directory holding the bundled resource and mapping files.
	DataDir string `yaml:"dataDir,omitempty" json:"dataDir,omitempty"`
	// Versions restricts the supported protocol versions to the listed
	// labels, e.g. "1.20.10". The newest known version is always supported.
	// Empty means all known versions.
	Versions []string `yaml:"versions,omitempty" json:"versions,omitempty"`

	Compression          Compression `yaml:"compression,omitempty" json:"compression,omitempty"`
	CompressionThreshold uint16      `yaml:"compressionThreshold,omitempty" json:"compressionThreshold,omitempty"` // in bytes

	Debug bool `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// Registry returns the protocol registry of the configured versions.
func (c *Config) Registry() (*version.Registry, error) {
	return version.Default.Filter(c.Versions)
}

// Validate validates a Config.
func (c *Config) Validate() (warns []error, errs []error) {
	e := func(m string, args ...any) { errs = append(errs, fmt.Errorf(m, args...)) }
	w := func(m string, args ...any) { warns = append(warns, fmt.Errorf(m, args...)) }
	if c == nil {
		e("config must not be nil")
		return
	}

	if strings.TrimSpace(c.DataDir) == "" {
		e("Data directory must not be empty")
	}

	seen := map[string]bool{}
	for _, label := range c.Versions {
		if seen[label] {
			w("Version %q is listed more than once", label)
			continue
		}
		seen[label] = true
		if _, ok := version.Default.ByVersion(label); !ok {
			e("Unknown version %q, must be within %s", label, version.Default)
		}
	}
	if len(c.Versions) != 0 && !seen[version.Default.Canonical().Version] {
		w("Version list does not contain the canonical version %s, it is supported anyway",
			version.Default.Canonical().Version)
	}

	algorithm, ok := c.Compression.Algorithm()
	if !ok {
		e("Invalid compression %q: must be one of %s,%s,%s",
			c.Compression, CompressionFlate, CompressionSnappy, CompressionNone)
	}
	if ok && algorithm == packet.CompressionAlgorithmNone && c.CompressionThreshold != 0 {
		w("Compression threshold %d has no effect without compression", c.CompressionThreshold)
	}

	return
}
