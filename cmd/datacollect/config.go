package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/EternisAI/datacollect/internal/api/http"
	"github.com/EternisAI/datacollect/internal/auth"
	"github.com/EternisAI/datacollect/internal/datacollect"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log         LogConfig
	Http        http.Config
	Auth        auth.Config
	Grpc        GrpcConfig
	DataCollect datacollect.Config
}

type GrpcConfig struct {
	Port int       `mapstructure:"port"`
	TLS  TLSConfig `mapstructure:"tls"`
}

type TLSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
	CAFile     string `mapstructure:"ca_file"`
	ClientAuth string `mapstructure:"client_auth"`
}

var config Config

func loadConfig() error {
	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/datacollect")
	viper.AddConfigPath("/etc/datacollect")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("log.level", LOG_LEVEL_INFO)
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("auth.token_ttl", auth.DefaultTokenTTL)

	_ = viper.BindEnv("http.admin_api_key", "DATACOLLECT_ADMIN_API_KEY")
	_ = viper.BindEnv("auth.jwt_secret", "DATACOLLECT_JWT_SECRET")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func InitConfig() {
	if err := loadConfig(); err != nil {
		panic(err)
	}

	// Initialize logger with configured log level
	initLogger(config.Log.Level)

	// Pretty print config as JSON (only at DEBUG level)
	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		redacted := config
		if redacted.Http.AdminAPIKey != "" {
			redacted.Http.AdminAPIKey = "***"
		}
		if redacted.Auth.JWTSecret != "" {
			redacted.Auth.JWTSecret = "***"
		}
		configJSON, err := json.MarshalIndent(redacted, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
