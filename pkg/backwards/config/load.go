package config

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SetDefaults sets the DefaultConfig values as viper defaults.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dataDir", DefaultConfig.DataDir)
	v.SetDefault("compression", string(DefaultConfig.Compression))
	v.SetDefault("compressionThreshold", DefaultConfig.CompressionThreshold)
	v.SetDefault("debug", DefaultConfig.Debug)
}

// Load reads and validates the Config from v.
// Validation warnings are logged, validation errors are returned.
//
// The default compression threshold is dropped when compression is
// disabled and no threshold was configured.
func Load(v *viper.Viper, log logr.Logger) (*Config, error) {
	// IsSet also reports defaults, so ask before setting them.
	thresholdSet := v.IsSet("compressionThreshold")
	SetDefaults(v)
	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if algorithm, ok := cfg.Compression.Algorithm(); ok && algorithm == packet.CompressionAlgorithmNone && !thresholdSet {
		cfg.CompressionThreshold = 0
	}

	warns, errs := cfg.Validate()
	for _, w := range warns {
		log.Info("config validation warning", "warn", w)
	}
	if len(errs) != 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// Marshal encodes c as yaml.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
