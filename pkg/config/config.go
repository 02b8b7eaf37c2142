package config

import "fmt"

// Config holds runtime configuration for the shop bot.
type Config struct {
	AppEnv string

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// BotConfig configures the Telegram transport and operator binding.
type BotConfig struct {
	Token           string `mapstructure:"token" validate:"required"`
	PollTimeoutSecs int    `mapstructure:"poll_timeout_secs"`
	// AdminID pre-binds the operator chat. Zero defers to the admin file
	// and the /admin first-writer claim.
	AdminID   int64  `mapstructure:"admin_id"`
	AdminFile string `mapstructure:"admin_file"`
}

// StorageConfig selects the session snapshot backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"omitempty,oneof=file redis"`
	File    string `mapstructure:"file"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// DatabaseConfig configures the optional profile lookup backend.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// TermOption is one subscription offer.
type TermOption struct {
	Months int `mapstructure:"months" validate:"gt=0"`
	USD    int `mapstructure:"usd" validate:"gt=0"`
}

// PricingConfig overrides the built-in catalog. Empty sections keep the
// defaults.
type PricingConfig struct {
	RateRUBPerUSD int          `mapstructure:"rate_rub_per_usd" validate:"gte=0"`
	Terms         []TermOption `mapstructure:"terms" validate:"dive"`
	TopupAmounts  []int        `mapstructure:"topup_amounts" validate:"dive,gt=0"`
}

// PaymentConfig carries the rail details rendered into payment prompts.
type PaymentConfig struct {
	BankName     string `mapstructure:"bank_name"`
	BankReceiver string `mapstructure:"bank_receiver"`
	BankAccount  string `mapstructure:"bank_account"`

	CoinAddresses map[string]string `mapstructure:"coin_addresses"`

	SupportContact string `mapstructure:"support_contact"`
	SupportURL     string `mapstructure:"support_url"`

	WorkdayStartHour int `mapstructure:"workday_start_hour" validate:"gte=0,lte=23"`
	WorkdayEndHour   int `mapstructure:"workday_end_hour" validate:"gte=0,lte=24"`
}

// LoggerConfig configures slog output and file rotation.
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`

	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting. Empty DSN disables it.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// HTTPConfig configures the health and metrics listener.
type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

// RateLimitConfig throttles per-user update handling. A zero limit
// disables throttling entirely.
type RateLimitConfig struct {
	PerUserLimit int     `mapstructure:"per_user_limit" validate:"gte=0"`
	WindowSecs   int     `mapstructure:"window_secs" validate:"gte=0"`
	Whitelist    []int64 `mapstructure:"whitelist"`
}
