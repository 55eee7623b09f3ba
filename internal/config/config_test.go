package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load("")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
auth:
  jwt_secret: from-file
  bcrypt_cost: 12
store:
  driver: sqlite
  dsn: /tmp/meetup.db
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	// 环境变量存在时会覆盖文件里的值
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestValidateStoreDriver(t *testing.T) {
	cfg := Config{Auth: AuthConfig{JWTSecret: "x", BcryptCost: 10}, Store: StoreConfig{Driver: "mysql"}}
	assert.ErrorContains(t, cfg.Validate(), "STORE_DSN")

	cfg.Store.Driver = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "unsupported")

	cfg.Store.Driver = "redis"
	assert.NoError(t, cfg.Validate())
}

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger(LogConfig{Level: "debug"})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger = NewLogger(LogConfig{Level: "bogus"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
