// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/authdir/authdir/internal/auth"
	"github.com/authdir/authdir/pkg/errutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authdir.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, auth.DefaultAdminEmail, cfg.AdminEmail)
}

func TestLoad_FlagDefaultsMatchBuiltIns(t *testing.T) {
	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
admin-email: root@example.com
log-format: json
log-level: debug
metrics-addr: 127.0.0.1:9100
seed-file: users.yaml
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", cfg.AdminEmail)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.Equal(t, "users.yaml", cfg.SeedFile)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr, "unset keys keep defaults")
}

func TestLoad_ExplicitFlagOverridesFile(t *testing.T) {
	path := writeConfig(t, "log-level: debug\nadmin-email: root@example.com\n")

	cfg, err := Load(path, newFlags(t, "--log-level=warn"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "root@example.com", cfg.AdminEmail, "unchanged flag must not clobber file value")
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		flags   []string
	}{
		{name: "unknown key", content: "admin_email: root@example.com\n"},
		{name: "bad log format", content: "log-format: xml\n"},
		{name: "bad log level", content: "log-level: loud\n"},
		{name: "wrong type", content: "log-level: [debug]\n"},
		{name: "invalid admin email", content: "admin-email: not-an-email\n"},
		{name: "invalid flag value", flags: []string{"--log-format=xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.content != "" {
				path = writeConfig(t, tt.content)
			}
			_, err := Load(path, newFlags(t, tt.flags...))
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_READ_FAILED")
}

func TestConfig_YAMLRoundTripsThroughLoad(t *testing.T) {
	want := Default()
	want.AdminEmail = "root@example.com"
	want.MetricsAddr = "127.0.0.1:9100"

	out, err := want.YAML()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Contains(t, doc, "admin-email")

	got, err := Load(writeConfig(t, string(out)), nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
