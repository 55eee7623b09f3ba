package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Store     StoreConfig     `yaml:"store"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:":8080"`
	Mode            string        `yaml:"mode" env:"GIN_MODE" env-default:"release"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"168h"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// StoreConfig Driver 取值 file / mysql / sqlite / redis
type StoreConfig struct {
	Driver        string `yaml:"driver" env:"STORE_DRIVER" env-default:"file"`
	Path          string `yaml:"path" env:"STORE_PATH" env-default:"data/database.json"`
	DSN           string `yaml:"dsn" env:"STORE_DSN"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	RedisKey      string `yaml:"redis_key" env:"REDIS_KEY" env-default:"meetup:snapshot"`
}

type KafkaConfig struct {
	Brokers       []string      `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic         string        `yaml:"topic" env:"KAFKA_TOPIC" env-default:"meetup-events"`
	FlushInterval time.Duration `yaml:"flush_interval" env:"KAFKA_FLUSH_INTERVAL" env-default:"1s"`
	BufferSize    int           `yaml:"buffer_size" env:"KAFKA_BUFFER_SIZE" env-default:"1024"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"NoReply <no-reply@example.com>"`
}

type RateLimitConfig struct {
	AuthPerMinute int `yaml:"auth_per_minute" env:"RATE_LIMIT_AUTH" env-default:"30"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Load 指定 path 时读取 yaml 文件（环境变量仍可覆盖），否则只读环境变量
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	switch strings.ToLower(c.Store.Driver) {
	case "file", "redis":
	case "mysql", "sqlite":
		if c.Store.DSN == "" {
			return fmt.Errorf("STORE_DSN is required for driver %s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}
