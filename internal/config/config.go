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
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the monetization-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort                  string `mapstructure:"SERVER_PORT"`
	DatabaseURL                 string `mapstructure:"DATABASE_URL"`
	RedisURL                    string `mapstructure:"REDIS_URL"`
	RedisCachePrefix            string `mapstructure:"REDIS_CACHE_PREFIX"`
	RabbitMQURL                 string `mapstructure:"RABBITMQ_URL"`
	EventExchange               string `mapstructure:"EVENT_EXCHANGE"`
	StorageBaseURL              string `mapstructure:"STORAGE_BASE_URL"`
	StorageBucket               string `mapstructure:"STORAGE_BUCKET"`
	StorageServiceKey           string `mapstructure:"STORAGE_SERVICE_KEY"`
	PaymentLinkAPIBaseURL       string `mapstructure:"PAYMENT_LINK_API_BASE_URL"`
	PaymentLinkAPIKey           string `mapstructure:"PAYMENT_LINK_API_KEY"`
	JWKSURL                     string `mapstructure:"JWKS_URL"`
	ExternalCallTimeoutSeconds  int    `mapstructure:"EXTERNAL_CALL_TIMEOUT_SECONDS"`
	ListingCacheTTLSeconds      int    `mapstructure:"LISTING_CACHE_TTL_SECONDS"`
	PipelineCompensationEnabled bool   `mapstructure:"PIPELINE_COMPENSATION_ENABLED"`
	OrphanSweepSchedule         string `mapstructure:"ORPHAN_SWEEP_SCHEDULE"`
	OrphanSweepBatchSize        int    `mapstructure:"ORPHAN_SWEEP_BATCH_SIZE"`
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
	viper.SetDefault("SERVER_PORT", "8086")
	viper.SetDefault("REDIS_CACHE_PREFIX", "monetize:listings")
	viper.SetDefault("EVENT_EXCHANGE", "monetize.events")
	viper.SetDefault("STORAGE_BUCKET", "product-images")
	viper.SetDefault("EXTERNAL_CALL_TIMEOUT_SECONDS", 30)
	viper.SetDefault("LISTING_CACHE_TTL_SECONDS", 60)
	viper.SetDefault("PIPELINE_COMPENSATION_ENABLED", false)
	viper.SetDefault("ORPHAN_SWEEP_SCHEDULE", "@every 15m")
	viper.SetDefault("ORPHAN_SWEEP_BATCH_SIZE", 50)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_CACHE_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("EVENT_EXCHANGE")
	_ = viper.BindEnv("STORAGE_BASE_URL")
	_ = viper.BindEnv("STORAGE_BUCKET")
	_ = viper.BindEnv("STORAGE_SERVICE_KEY")
	_ = viper.BindEnv("PAYMENT_LINK_API_BASE_URL")
	_ = viper.BindEnv("PAYMENT_LINK_API_KEY")
	_ = viper.BindEnv("JWKS_URL")
	_ = viper.BindEnv("EXTERNAL_CALL_TIMEOUT_SECONDS")
	_ = viper.BindEnv("LISTING_CACHE_TTL_SECONDS")
	_ = viper.BindEnv("PIPELINE_COMPENSATION_ENABLED")
	_ = viper.BindEnv("ORPHAN_SWEEP_SCHEDULE")
	_ = viper.BindEnv("ORPHAN_SWEEP_BATCH_SIZE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisCachePrefix = strings.TrimSpace(config.RedisCachePrefix)
	if config.RedisCachePrefix == "" {
		config.RedisCachePrefix = "monetize:listings"
	}

	if strings.TrimSpace(config.DatabaseURL) == "" {
		err = errors.New("DATABASE_URL must be configured")
		return
	}
	if strings.TrimSpace(config.PaymentLinkAPIBaseURL) == "" {
		err = errors.New("PAYMENT_LINK_API_BASE_URL must be configured")
		return
	}
	if strings.TrimSpace(config.StorageBaseURL) == "" {
		err = errors.New("STORAGE_BASE_URL must be configured")
		return
	}

	if config.ExternalCallTimeoutSeconds <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive external call timeout; using default\" timeout_seconds=%d", config.ExternalCallTimeoutSeconds)
		config.ExternalCallTimeoutSeconds = 30
	}
	if config.ListingCacheTTLSeconds <= 0 {
		config.ListingCacheTTLSeconds = 60
	}
	if config.OrphanSweepBatchSize <= 0 {
		config.OrphanSweepBatchSize = 50
	}
	if strings.TrimSpace(config.OrphanSweepSchedule) == "" {
		config.OrphanSweepSchedule = "@every 15m"
	}

	return
}
