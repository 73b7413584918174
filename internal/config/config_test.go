package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.NotEmpty(t, cfg.Data.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 30, cfg.Reminders.IntervalMinutes)
	require.Equal(t, 24, cfg.Reminders.LeadHours)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OIKIO_TRANSPORT_MODE", "http")
	t.Setenv("OIKIO_SERVER_HOST", "127.0.0.1")
	t.Setenv("OIKIO_SERVER_PORT", "9090")
	t.Setenv("OIKIO_DATA_PATH", "/tmp/custom.json")
	t.Setenv("OIKIO_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/tmp/custom.json", cfg.Data.Path)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transport:
  mode: http
server:
  port: 3000
reminders:
  interval_minutes: 5
  lead_hours: 4
`), 0o644))
	t.Setenv("OIKIO_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, 3000, cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 5, cfg.Reminders.IntervalMinutes)
	require.Equal(t, 4, cfg.Reminders.LeadHours)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport:\n  mode: http\n"), 0o644))
	t.Setenv("OIKIO_CONFIG_PATH", path)
	t.Setenv("OIKIO_TRANSPORT_MODE", "stdio")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "stdio", cfg.Transport.Mode)
}

func TestLoad_InvalidTransportMode(t *testing.T) {
	t.Setenv("OIKIO_TRANSPORT_MODE", "carrier-pigeon")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("OIKIO_SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("OIKIO_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
}
