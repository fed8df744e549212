package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/jnidzwetzki/timescaledb/pkg/logging"
)

// Load decodes a TOML file into a Config seeded with Default(), the same
// direct toml.DecodeFile usage the teacher's cmd/main uses rather than
// routing a one-shot file load through viper.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		logging.Error("config load failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}
