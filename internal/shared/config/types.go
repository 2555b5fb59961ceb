package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig holds the card-network gateway connection settings.
// EPIID is the merchant/terminal identifier string sent with every request;
// HMACKey signs the request path and body.
type GatewayConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	EPIID          string `mapstructure:"epi_id" validate:"required"`
	HMACKey        string `mapstructure:"hmac_key" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=1"`
}

func (g *GatewayConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// BillingConfig controls the daily sweep.
// SweepTime is a "HH:MM" wall-clock time in the business timezone.
type BillingConfig struct {
	SweepTime             string `mapstructure:"sweep_time"`
	GatewayCallGapSeconds int    `mapstructure:"gateway_call_gap_seconds"`
	Timezone              string `mapstructure:"timezone"`
}

func (b *BillingConfig) GatewayCallGap() time.Duration {
	if b.GatewayCallGapSeconds <= 0 {
		return time.Second
	}
	return time.Duration(b.GatewayCallGapSeconds) * time.Second
}

type AlertConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	OpsAddress   string `mapstructure:"ops_address"`
}

func (a *AlertConfig) Configured() bool {
	return a.SMTPHost != "" && a.OpsAddress != ""
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}
