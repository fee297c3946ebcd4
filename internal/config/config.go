/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the transfer-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort            string `mapstructure:"SERVER_PORT"`
	DatabaseURL           string `mapstructure:"DATABASE_URL"`
	RedisURL              string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix  string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL           string `mapstructure:"RABBITMQ_URL"`
	EventExchange         string `mapstructure:"EVENT_EXCHANGE"`
	GatewayEventQueue     string `mapstructure:"GATEWAY_EVENT_QUEUE"`
	PaystackBaseURL       string `mapstructure:"PAYSTACK_BASE_URL"`
	PaystackSecretKey     string `mapstructure:"PAYSTACK_SECRET_KEY"`
	PaystackMaxRetries    int    `mapstructure:"PAYSTACK_MAX_RETRIES"`
	DefaultCurrency       string `mapstructure:"DEFAULT_CURRENCY"`
	DefaultTransferReason string `mapstructure:"DEFAULT_TRANSFER_REASON"`
	ServiceJWTSecret      string `mapstructure:"SERVICE_JWT_SECRET"`
	BankCacheTTLHours     int    `mapstructure:"BANK_CACHE_TTL_HOURS"`
	ReconcileSchedule     string `mapstructure:"RECONCILE_SCHEDULE"`
	RateLimitPerMinute    int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8084")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "tizlion:rate_limit")
	viper.SetDefault("EVENT_EXCHANGE", "tizlion.events")
	viper.SetDefault("GATEWAY_EVENT_QUEUE", "transfer-service.gateway-events")
	viper.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	viper.SetDefault("PAYSTACK_MAX_RETRIES", 3)
	viper.SetDefault("DEFAULT_CURRENCY", "NGN")
	viper.SetDefault("DEFAULT_TRANSFER_REASON", "Transfer via TizLion AI")
	viper.SetDefault("BANK_CACHE_TTL_HOURS", 24)
	viper.SetDefault("RECONCILE_SCHEDULE", "@every 5m")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 30)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "TRANSFER_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("EVENT_EXCHANGE")
	_ = viper.BindEnv("GATEWAY_EVENT_QUEUE")
	_ = viper.BindEnv("PAYSTACK_BASE_URL")
	_ = viper.BindEnv("PAYSTACK_SECRET_KEY", "PAYSTACK_SECRET_KEY", "PAYSTACK_API_KEY")
	_ = viper.BindEnv("PAYSTACK_MAX_RETRIES")
	_ = viper.BindEnv("DEFAULT_CURRENCY")
	_ = viper.BindEnv("DEFAULT_TRANSFER_REASON")
	_ = viper.BindEnv("SERVICE_JWT_SECRET", "SERVICE_JWT_SECRET", "JWT_SECRET")
	_ = viper.BindEnv("BANK_CACHE_TTL_HOURS")
	_ = viper.BindEnv("RECONCILE_SCHEDULE")
	_ = viper.BindEnv("RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.PaystackSecretKey = strings.TrimSpace(config.PaystackSecretKey)
	if config.PaystackSecretKey == "" {
		config.PaystackSecretKey = strings.TrimSpace(os.Getenv("PAYSTACK_API_KEY"))
	}
	config.ServiceJWTSecret = strings.TrimSpace(config.ServiceJWTSecret)
	if config.ServiceJWTSecret == "" {
		config.ServiceJWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "tizlion:rate_limit"
	}
	config.PaystackBaseURL = strings.TrimSpace(strings.TrimSuffix(config.PaystackBaseURL, "/"))

	if config.PaystackMaxRetries < 0 {
		log.Printf("level=warn component=config msg=\"negative retry count configured; coercing to zero\" max_retries=%d", config.PaystackMaxRetries)
		config.PaystackMaxRetries = 0
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = "NGN"
	}
	if config.BankCacheTTLHours <= 0 {
		config.BankCacheTTLHours = 24
	}
	if config.ReconcileSchedule == "" {
		config.ReconcileSchedule = "@every 5m"
	}
	if config.RateLimitPerMinute <= 0 {
		config.RateLimitPerMinute = 30
	}

	return
}
