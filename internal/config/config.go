// Package config loads wadinfo settings from a TOML file.
package config

import (
	"io"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/obsidian-level/wad"
)

// Config holds the settings shared by all wadinfo commands.
//
//	log_level = "debug"
//	level_lumps = ["TEXTMAP", "ZNODES", "ENDMAP"]
//	replace_level_lumps = false
type Config struct {
	LogLevel string `toml:"log_level"`
	// LevelLumps extends the built-in level lump names, or replaces them when
	// ReplaceLevelLumps is set.
	LevelLumps        []string `toml:"level_lumps"`
	ReplaceLevelLumps bool     `toml:"replace_level_lumps"`
}

// Default returns the settings used without a config file.
func Default() Config {
	return Config{LogLevel: logrus.WarnLevel.String()}
}

// Load reads path on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Logger builds a text logger at the configured level.
func (c Config) Logger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	return l, nil
}

// WADOptions translates the settings into options for wad.Open.
func (c Config) WADOptions(log logrus.FieldLogger) []wad.Option {
	opts := []wad.Option{wad.WithLogger(log)}
	switch {
	case c.ReplaceLevelLumps:
		opts = append(opts, wad.WithLevelLumps(c.LevelLumps...))
	case len(c.LevelLumps) > 0:
		opts = append(opts, wad.WithExtraLevelLumps(c.LevelLumps...))
	}
	return opts
}
