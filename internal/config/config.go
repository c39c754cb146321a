// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

// Package config loads AuthDir configuration from defaults, an optional YAML
// file and command-line flags, in increasing order of precedence.
package config

import (
	"os"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/authdir/authdir/internal/auth"
	"github.com/authdir/authdir/internal/logging"
)

// Default values.
const (
	DefaultLogFormat  = "text"
	DefaultLogLevel   = "info"
	DefaultListenAddr = "127.0.0.1:4300"
)

// Config is the effective AuthDir configuration.
type Config struct {
	AdminEmail  string `koanf:"admin-email" json:"admin-email,omitempty" yaml:"admin-email" jsonschema:"description=Reserved administrator email address"`
	LogFormat   string `koanf:"log-format" json:"log-format,omitempty" yaml:"log-format" jsonschema:"enum=json,enum=text"`
	LogLevel    string `koanf:"log-level" json:"log-level,omitempty" yaml:"log-level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	MetricsAddr string `koanf:"metrics-addr" json:"metrics-addr,omitempty" yaml:"metrics-addr" jsonschema:"description=Metrics and health HTTP address; empty disables"`
	ListenAddr  string `koanf:"listen-addr" json:"listen-addr,omitempty" yaml:"listen-addr" jsonschema:"description=TCP address for the serve command"`
	SeedFile    string `koanf:"seed-file" json:"seed-file,omitempty" yaml:"seed-file" jsonschema:"description=YAML file of users registered at startup"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AdminEmail: auth.DefaultAdminEmail,
		LogFormat:  DefaultLogFormat,
		LogLevel:   DefaultLogLevel,
		ListenAddr: DefaultListenAddr,
	}
}

// RegisterFlags adds one flag per configuration key to fs, defaulting to
// Default().
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("admin-email", d.AdminEmail, "reserved administrator email")
	fs.String("log-format", d.LogFormat, "log format (json or text)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String("metrics-addr", d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("listen-addr", d.ListenAddr, "listen address for the serve command")
	fs.String("seed-file", d.SeedFile, "YAML file of users to register at startup")
}

// Load builds the configuration. path may be empty to skip the file; flags
// may be nil. Explicitly set flags override the file.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
		if err != nil {
			return Config{}, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateSchema(data); err != nil {
			return Config{}, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that the schema cannot express.
func (c Config) Validate() error {
	if !auth.NewDefaultValidator().IsValidEmail(c.AdminEmail) {
		return oops.Code("CONFIG_INVALID").
			With("admin-email", c.AdminEmail).
			Errorf("admin-email must be a valid email address, got %q", c.AdminEmail)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return nil
}

// YAML renders the configuration in the file format Load accepts.
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, oops.Code("CONFIG_ENCODE_FAILED").Wrap(err)
	}
	return out, nil
}
