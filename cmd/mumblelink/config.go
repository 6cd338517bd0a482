package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/srediag/mumble-link/internal/logging"
	"github.com/srediag/mumble-link/pkg/link"
	"github.com/srediag/mumble-link/pkg/shm"
)

// Config is the CLI configuration, merged from flags, MUMBLELINK_* env and
// an optional mumblelink.{yaml,json,toml} file.
type Config struct {
	Name         string        `mapstructure:"name"`
	Description  string        `mapstructure:"description"`
	Segment      string        `mapstructure:"segment"`
	RecheckEvery uint32        `mapstructure:"recheckEvery"`
	LogLevel     int           `mapstructure:"logLevel"`
	Listen       string        `mapstructure:"listen"`
	Rate         float64       `mapstructure:"rate"`
	Frames       int           `mapstructure:"frames"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Context      string        `mapstructure:"context"`
	Identity     string        `mapstructure:"identity"`
	Position     string        `mapstructure:"position"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "mumblelink")
	v.SetDefault("description", "mumblelink command line publisher")
	v.SetDefault("segment", shm.DefaultName())
	v.SetDefault("recheckEvery", 100)
	v.SetDefault("logLevel", logging.LevelWarn)
	v.SetDefault("listen", "127.0.0.1:9477")
	v.SetDefault("rate", 50.0)
	v.SetDefault("frames", 0)
	v.SetDefault("timeout", "1m")
	v.SetDefault("context", "")
	v.SetDefault("identity", "")
	v.SetDefault("position", "0,0,0")
}

func newFlagSet(cmd string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.String("config", "", "config file (default ./mumblelink.yaml)")
	fs.String("name", "", "application name announced to Mumble")
	fs.String("description", "", "application description announced to Mumble")
	fs.String("segment", "", "shared memory object name")
	fs.Uint32("recheck-every", 0, "updates between shared link ownership checks")
	fs.Int("log-level", logging.LevelWarn, "0 trace, 1 debug, 2 info, 3 warn, 4 error, 5 silent")
	fs.String("listen", "", "address for /live, /ready and /metrics (publish)")
	fs.Float64("rate", 0, "updates per second (publish)")
	fs.Int("frames", 0, "stop after this many updates, 0 runs until interrupted (publish)")
	fs.Duration("timeout", 0, "give up after this long (wait)")
	fs.String("context", "", "context token (publish)")
	fs.String("identity", "", "player identity (publish)")
	fs.String("position", "", "avatar position x,y,z in meters (publish)")
	return fs
}

var flagKeys = map[string]string{
	"name":          "name",
	"description":   "description",
	"segment":       "segment",
	"recheck-every": "recheckEvery",
	"log-level":     "logLevel",
	"listen":        "listen",
	"rate":          "rate",
	"frames":        "frames",
	"timeout":       "timeout",
	"context":       "context",
	"identity":      "identity",
	"position":      "position",
}

// loadConfig parses args for cmd and merges every configuration source.
func loadConfig(cmd string, args []string) (*Config, error) {
	fs := newFlagSet(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MUMBLELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	path, _ := fs.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mumblelink")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		// only the implicit ./mumblelink.* lookup is optional
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := cfg.AvatarPosition(); err != nil {
		return nil, err
	}
	if cfg.Rate <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %v", cfg.Rate)
	}
	return &cfg, nil
}

// AvatarPosition parses Position as "x,y,z", facing +Z with +Y up.
func (c *Config) AvatarPosition() (link.Position, error) {
	pos := link.DefaultPosition()
	parts := strings.Split(c.Position, ",")
	if len(parts) != 3 {
		return pos, fmt.Errorf("position needs 3 components, got %q", c.Position)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return pos, fmt.Errorf("position component %d: %w", i, err)
		}
		pos.Position[i] = float32(f)
	}
	return pos, nil
}
