package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/evan-burke/nscheck/internal/logger"
	"github.com/evan-burke/nscheck/internal/tracing"
)

type Config struct {
	AppConfig       *AppConfig
	Logger          *logger.Config
	Tracing         *tracing.JaegerConfig
	DNSConfig       *DNSConfig
	RateLimitConfig *RateLimitConfig
	CheckLogConfig  *CheckLogConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:       &AppConfig{},
		Logger:          &logger.Config{},
		Tracing:         &tracing.JaegerConfig{},
		DNSConfig:       &DNSConfig{},
		RateLimitConfig: &RateLimitConfig{},
		CheckLogConfig:  &CheckLogConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading nscheck config: %v", err)
	}

	return config, nil
}
