package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	t.Setenv("DB_DRIVER", DriverPostgres)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HINT_CREDITS_INITIAL", "")
	t.Setenv("HINT_CREDITS_CAP", "")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-flash")

	Load()
	require.NotNil(t, AppConfig)
	assert.Equal(t, "8080", AppConfig.APIPort)
	assert.Equal(t, DriverPostgres, AppConfig.DBDriver)
	assert.Contains(t, AppConfig.DBConnStr, "dbname=mathquest")
	assert.Equal(t, 3, AppConfig.HintCreditsInitial)
	assert.Equal(t, 5, AppConfig.HintCreditsCap)
	assert.Equal(t, 24*time.Hour, AppConfig.ProblemCacheTTL)
	assert.Equal(t, 30*time.Second, AppConfig.LLMTimeout)
	assert.Equal(t, "gemini-2.5-flash", AppConfig.GeminiModel)
}

func TestLoadSQLiteAndOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("SQLITE_PATH", "/tmp/mq.db")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("HINT_CREDITS_CAP", "4")
	t.Setenv("HINT_CREDITS_INITIAL", "9")

	Load()
	assert.Equal(t, "/tmp/mq.db", AppConfig.DBConnStr)
	assert.Equal(t, "g-key", AppConfig.GeminiAPIKey)
	assert.Equal(t, 4, AppConfig.HintCreditsCap)
	assert.Equal(t, 4, AppConfig.HintCreditsInitial, "initial credits are clamped to the cap")
}
