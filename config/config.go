package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode"

	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	// MaxUpcomingLimit bounds the public "up next" list.
	MaxUpcomingLimit = 5
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Queue  QueueConfig
	Broker BrokerConfig
	Store  StoreConfig
}

type AppConfig struct {
	Port       string
	Env        string
	LogLevel   string
	Timezone   *time.Location
	CORSOrigin string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type QueueConfig struct {
	TokenPrefix   string
	UpcomingLimit int
	PollInterval  time.Duration
}

type BrokerConfig struct {
	URL   string
	Queue string
}

type StoreConfig struct {
	Driver string
}

// IsDevelopment reports whether the service runs with APP_ENV=development.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "5000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_TIMEZONE", "Local")
	viper.SetDefault("CORS_ALLOWED_ORIGIN", "*")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("JWT_ACCESS_EXPIRY", "12h")
	viper.SetDefault("QUEUE_TOKEN_PREFIX", "A")
	viper.SetDefault("QUEUE_UPCOMING_LIMIT", MaxUpcomingLimit)
	viper.SetDefault("QUEUE_POLL_INTERVAL", "3s")
	viper.SetDefault("BROKER_QUEUE", "patient_notifications")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
}

// LoadConfig reads configuration from an optional .env file in the working
// directory and from the process environment, environment taking precedence.
func LoadConfig() (*Config, error) {
	viper.Reset()
	setDefaults()
	viper.AutomaticEnv()

	if _, err := os.Stat(".env"); err == nil {
		viper.SetConfigFile(".env")
		viper.SetConfigType("env")
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRY %q: %w", viper.GetString("JWT_ACCESS_EXPIRY"), err)
	}
	if accessExpiry <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_EXPIRY must be positive, got %s", accessExpiry)
	}

	pollInterval, err := time.ParseDuration(viper.GetString("QUEUE_POLL_INTERVAL"))
	if err != nil || pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	location, err := time.LoadLocation(viper.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", viper.GetString("APP_TIMEZONE"), err)
	}

	upcomingLimit := viper.GetInt("QUEUE_UPCOMING_LIMIT")
	if upcomingLimit < 1 || upcomingLimit > MaxUpcomingLimit {
		upcomingLimit = MaxUpcomingLimit
	}

	config := &Config{
		App: AppConfig{
			Port:       viper.GetString("APP_PORT"),
			Env:        viper.GetString("APP_ENV"),
			LogLevel:   viper.GetString("LOG_LEVEL"),
			Timezone:   location,
			CORSOrigin: viper.GetString("CORS_ALLOWED_ORIGIN"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Queue: QueueConfig{
			TokenPrefix:   viper.GetString("QUEUE_TOKEN_PREFIX"),
			UpcomingLimit: upcomingLimit,
			PollInterval:  pollInterval,
		},
		Broker: BrokerConfig{
			URL:   viper.GetString("BROKER_URL"),
			Queue: viper.GetString("BROKER_QUEUE"),
		},
		Store: StoreConfig{
			Driver: viper.GetString("STORE_DRIVER"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that cannot be defaulted safely.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}

	prefix := []rune(c.Queue.TokenPrefix)
	if len(prefix) != 1 || prefix[0] > unicode.MaxASCII || !unicode.IsUpper(prefix[0]) {
		return fmt.Errorf("QUEUE_TOKEN_PREFIX must be a single uppercase letter, got %q", c.Queue.TokenPrefix)
	}

	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	return nil
}
