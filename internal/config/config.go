// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package config defines the configuration of the web service, and loads it
// from TOML, YAML or JSON files with environment overrides.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Markkimotho/json-parser/ast"
	"github.com/Markkimotho/json-parser/internal/logging"
	"github.com/spf13/afero"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvPort     = "PORT"
	EnvLogLevel = "JSONPARSER_LOG_LEVEL"
)

// Config is the complete service configuration.
type Config struct {
	Server ServerConfig `toml:"server" yaml:"server" json:"server"`
	Parser ast.Config   `toml:"parser" yaml:"parser" json:"parser"`
	Log    LogConfig    `toml:"log" yaml:"log" json:"log"`
}

// ServerConfig holds the settings of the HTTP listener.
type ServerConfig struct {
	Host string `toml:"host" yaml:"host" json:"host"`
	Port int    `toml:"port" yaml:"port" json:"port"`

	// MaxInputBytes caps the size of a request body.
	MaxInputBytes int64 `toml:"max_input_bytes" yaml:"max_input_bytes" json:"max_input_bytes"`

	ReadTimeout     Duration `toml:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// If true, responses are gzip-compressed for clients that accept it.
	Compress bool `toml:"compress" yaml:"compress" json:"compress"`
}

// Addr returns the host:port listening address.
func (s ServerConfig) Addr() string { return net.JoinHostPort(s.Host, strconv.Itoa(s.Port)) }

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" json:"level"`
	Format string `toml:"format" yaml:"format" json:"format"`
}

// Duration wraps time.Duration so it can be written as a string such as
// "30s" in any of the supported file formats.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			MaxInputBytes:   10 << 20,
			ReadTimeout:     Duration{30 * time.Second},
			WriteTimeout:    Duration{30 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
			Compress:        true,
		},
		Parser: ast.PermissiveConfig(),
		Log:    LogConfig{Level: "info", Format: "logfmt"},
	}
}

// Load reads the configuration file at path from fsys, on top of Default.
// The format is chosen by the file extension: ".toml", ".yaml" or ".yml",
// and ".json" or ".hujson" (JSON with comments and trailing commas). If path
// is empty, Load returns Default.
func Load(fsys afero.Fs, path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.decode(filepath.Ext(path), data); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(ext string, data []byte) error {
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), c)
		if err != nil {
			return err
		}
		if keys := md.Undecoded(); len(keys) != 0 {
			return fmt.Errorf("unknown keys: %v", keys)
		}
		return nil

	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil

	case ".json", ".hujson":
		std, err := hujson.Standardize(data)
		if err != nil {
			return err
		}
		dec := json.NewDecoder(bytes.NewReader(std))
		dec.DisallowUnknownFields()
		return dec.Decode(c)
	}
	return fmt.Errorf("unsupported config format %q", ext)
}

// ApplyEnv overrides c from environment variables, fetched by lookup (for
// example os.LookupEnv). PORT sets the listening port, and
// JSONPARSER_LOG_LEVEL sets the log level.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate reports every problem with c, or nil if there are none.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Server.MaxInputBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_input_bytes must be positive, got %d", c.Server.MaxInputBytes))
	}
	for _, d := range []struct {
		name string
		d    Duration
	}{
		{"read_timeout", c.Server.ReadTimeout},
		{"write_timeout", c.Server.WriteTimeout},
		{"shutdown_timeout", c.Server.ShutdownTimeout},
	} {
		if d.d.Duration < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", d.name, d.d))
		}
	}
	if c.Parser.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("parser max_depth must not be negative, got %d", c.Parser.MaxDepth))
	}
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	if c.Log.Format != "" && !slices.Contains(logging.Formats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
