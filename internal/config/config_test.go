package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/entities-sink/ksink/internal/config"
)

func TestKeysBindEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example/db")
	v, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "postgres://example/db", v.GetString("database-url"))
}

func TestKeysApplyDefaults(t *testing.T) {
	v, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "5432", v.GetString("postgres-port"))
	require.False(t, v.GetBool("ui"))
}

func TestValidateRejectsBadPort(t *testing.T) {
	v := viper.New()
	v.Set("postgres-port", "not-a-port")
	_, err := config.Resolve(v)
	require.Error(t, err)
}

func TestResolveMapsSettingsToStoreConfig(t *testing.T) {
	v, err := config.New()
	require.NoError(t, err)
	v.Set("postgres-host", "db.internal")
	v.Set("postgres-port", "5433")
	v.Set("max-connections", "4")

	settings, err := config.Resolve(v)
	require.NoError(t, err)
	require.Equal(t, "db.internal", settings.PostgresHost)
	require.Equal(t, 5433, settings.PostgresPort)

	sc := settings.StoreConfig()
	require.Equal(t, "db.internal", sc.Host)
	require.Equal(t, 5433, sc.Port)
	require.Equal(t, 4, sc.MaxOpenConns)
}

func TestSaveWritesReadableConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	settings := config.Settings{
		SubstreamsEndpoint: "https://substreams.example",
		Package:            "knowledge-graph-v1.spkg",
		Module:             "map_entries",
		DatabaseURL:        "postgres://example/db",
		PostgresHost:       "db.internal",
		PostgresUser:       "ksink",
		PostgresDatabase:   "ksink",
	}
	require.NoError(t, config.Save(settings))

	dir, err := os.UserConfigDir()
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "ksink", "config.toml"))
	require.NoError(t, err)
	require.Contains(t, string(data), `database-url = "postgres://example/db"`)

	v, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "postgres://example/db", v.GetString("database-url"))
}
