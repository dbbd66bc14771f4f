package config

import (
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	POS       POSConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// IsDevelopment reports whether the server runs outside production.
func (s ServerConfig) IsDevelopment() bool {
	return s.Env != "production"
}

type StoreConfig struct {
	Backend string // memory, redis or postgres
	Prefix  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

type POSConfig struct {
	DefaultTaxRate decimal.Decimal
	NodeID         int64
	DisplayChannel string
}

type RateLimitConfig struct {
	LoginRequests int
	WindowSeconds int
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("STORE_BACKEND", StoreMemory)
	viper.SetDefault("STORE_PREFIX", "pos_")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("POS_DEFAULT_TAX_RATE", "0.21")
	viper.SetDefault("POS_NODE_ID", 1)
	viper.SetDefault("DISPLAY_CHANNEL", "customer_display")
	viper.SetDefault("RATE_LIMIT_LOGIN", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	taxRate, err := decimal.NewFromString(viper.GetString("POS_DEFAULT_TAX_RATE"))
	if err != nil {
		log.Printf("Warning: invalid POS_DEFAULT_TAX_RATE, using 0.21: %v", err)
		taxRate = decimal.RequireFromString("0.21")
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(viper.GetString("STORE_BACKEND")),
			Prefix:  viper.GetString("STORE_PREFIX"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		POS: POSConfig{
			DefaultTaxRate: taxRate,
			NodeID:         viper.GetInt64("POS_NODE_ID"),
			DisplayChannel: viper.GetString("DISPLAY_CHANNEL"),
		},
		RateLimit: RateLimitConfig{
			LoginRequests: viper.GetInt("RATE_LIMIT_LOGIN"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
