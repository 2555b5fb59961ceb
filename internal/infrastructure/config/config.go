package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	sharedConfig "planpay/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Auth     sharedConfig.AuthConfig     `mapstructure:"auth"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	Gateway  sharedConfig.GatewayConfig  `mapstructure:"gateway" validate:"required"`
	Billing  sharedConfig.BillingConfig  `mapstructure:"billing"`
	Alert    sharedConfig.AlertConfig    `mapstructure:"alert"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("PLANPAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// validate rejects a config that would fail at the first gateway call rather
// than at startup. Missing credentials surface here, not mid-sweep.
func validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(&cfg.Gateway); err != nil {
		return fmt.Errorf("invalid gateway config: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "planpay_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	viper.SetDefault("auth.jwt.secret", "change-me-in-production")
	viper.SetDefault("auth.jwt.access_exp_minutes", 15)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Gateway defaults (credentials must come from config or env)
	viper.SetDefault("gateway.base_url", "")
	viper.SetDefault("gateway.epi_id", "")
	viper.SetDefault("gateway.hmac_key", "")
	viper.SetDefault("gateway.timeout_seconds", 30)

	// Billing defaults
	viper.SetDefault("billing.sweep_time", "06:00")
	viper.SetDefault("billing.gateway_call_gap_seconds", 1)
	viper.SetDefault("billing.timezone", "America/New_York")

	// Alert defaults (disabled until SMTP and ops address are set)
	viper.SetDefault("alert.smtp_host", "")
	viper.SetDefault("alert.smtp_port", 587)
	viper.SetDefault("alert.smtp_user", "")
	viper.SetDefault("alert.smtp_password", "")
	viper.SetDefault("alert.from_address", "billing@planpay.local")
	viper.SetDefault("alert.ops_address", "")
}
