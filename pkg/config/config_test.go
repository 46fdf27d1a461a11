package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                 "8080",
		DataBackend:          BackendPostgres,
		PostgresConnStr:      "postgres://localhost/feed",
		AuthProvider:         AuthSupabase,
		SupabaseURL:          "https://proj.supabase.co",
		SupabaseJWTSecret:    "secret",
		PlaceholderAvatarURL: DefaultAvatarURL,
		Timezone:             "UTC",
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "AUTH_PROVIDER", "LIVE_UPDATES", "AUTO_MIGRATE", "PLACEHOLDER_AVATAR_URL"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.DataBackend)
	assert.Equal(t, AuthSupabase, cfg.AuthProvider)
	assert.True(t, cfg.LiveUpdates)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, DefaultAvatarURL, cfg.PlaceholderAvatarURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATA_BACKEND", "mongo")
	t.Setenv("LIVE_UPDATES", "false")
	t.Setenv("AUTO_MIGRATE", "not-a-bool")
	cfg := Load()

	assert.Equal(t, BackendMongo, cfg.DataBackend)
	assert.False(t, cfg.LiveUpdates)
	assert.False(t, cfg.AutoMigrate, "unparsable booleans fall back to the default")
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := map[string]func(c *Config){
		"unknown backend":           func(c *Config) { c.DataBackend = "sqlite" },
		"postgres without conn str": func(c *Config) { c.PostgresConnStr = "" },
		"mongo without uri":         func(c *Config) { c.DataBackend = BackendMongo; c.MongoDatabase = "feed" },
		"supabase without secret":   func(c *Config) { c.SupabaseJWTSecret = "" },
		"firebase without creds":    func(c *Config) { c.AuthProvider = AuthFirebase },
		"missing supabase url":      func(c *Config) { c.SupabaseURL = "" },
		"bad timezone":              func(c *Config) { c.Timezone = "Mars/Olympus" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_MongoBackend(t *testing.T) {
	cfg := validConfig()
	cfg.DataBackend = BackendMongo
	cfg.PostgresConnStr = ""
	cfg.MongoURI = "mongodb://localhost:27017"
	cfg.MongoDatabase = "beawarely"
	assert.NoError(t, cfg.Validate())
}
