package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/go-ioc/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	t.Setenv(key, val) // automatically restored after test
}

// unsetAfter removes keys that godotenv wrote into the process environment.
func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"App.Name", cfg.App.Name, "GoIoC"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Port", cfg.App.Port, "8000"},
		{"App.URL", cfg.App.URL, "http://localhost"},
		{"Mail.Driver", cfg.Mail.Driver, "log"},
		{"Mail.From", cfg.Mail.From, "noreply@example.com"},
		{"Users.SeedFile", cfg.Users.SeedFile, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.True(t, cfg.App.Debug)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	setEnv(t, "APP_NAME", "MyApp")
	setEnv(t, "APP_ENV", "production")
	setEnv(t, "APP_PORT", "9000")
	setEnv(t, "USERS_SEED_FILE", "seed.yaml")

	cfg := config.Load("testdata/empty.env")

	assert.Equal(t, "MyApp", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "seed.yaml", cfg.Users.SeedFile)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	unsetAfter(t, "APP_NAME", "MAIL_FROM_ADDRESS", "USERS_SEED_FILE")

	cfg := config.Load("testdata/app.env")

	assert.Equal(t, "FromFile", cfg.App.Name)
	assert.Equal(t, "hello@example.com", cfg.Mail.From)
	assert.Equal(t, "database/seeds/users.yaml", cfg.Users.SeedFile)
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	setEnv(t, "APP_NAME", "FromEnv")
	unsetAfter(t, "MAIL_FROM_ADDRESS", "USERS_SEED_FILE")

	cfg := config.Load("testdata/app.env")

	assert.Equal(t, "FromEnv", cfg.App.Name)
}

func TestLoad_MissingFileIsNotFatal(t *testing.T) {
	cfg := config.Load("testdata/does-not-exist.env")
	assert.NotNil(t, cfg)
}

func TestLoad_AppDebug(t *testing.T) {
	setEnv(t, "APP_DEBUG", "false")
	assert.False(t, config.Load("testdata/empty.env").App.Debug)

	setEnv(t, "APP_DEBUG", "true")
	assert.True(t, config.Load("testdata/empty.env").App.Debug)
}

// ── Get / GetInt / GetBool ───────────────────────────────────────────────────

func TestGet(t *testing.T) {
	setEnv(t, "CUSTOM_KEY", "hello")
	assert.Equal(t, "hello", config.Get("CUSTOM_KEY", "default"))

	_ = os.Unsetenv("MISSING_KEY")
	assert.Equal(t, "fallback", config.Get("MISSING_KEY", "fallback"))
}

func TestGetInt(t *testing.T) {
	setEnv(t, "SOME_INT", "42")
	assert.Equal(t, 42, config.GetInt("SOME_INT", 0))

	setEnv(t, "SOME_INT", "notanint")
	assert.Equal(t, 99, config.GetInt("SOME_INT", 99))
}

func TestGetBool(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		setEnv(t, "BOOL_KEY", val)
		assert.True(t, config.GetBool("BOOL_KEY", false), "expected true for %q", val)
	}

	setEnv(t, "BOOL_KEY", "false")
	assert.False(t, config.GetBool("BOOL_KEY", true))

	setEnv(t, "BOOL_KEY", "notabool")
	assert.True(t, config.GetBool("BOOL_KEY", true))
}
