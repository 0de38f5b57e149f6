package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is built once at
// startup and passed down by value reference; no component reads
// configuration ambiently.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Ledger      LedgerConfig      `mapstructure:"ledger"`
	RindeGastos RindeGastosConfig `mapstructure:"rindegastos"`
	Run         RunConfig         `mapstructure:"run"`
	Logger      LoggerConfig      `mapstructure:"logger"`
}

// DatabaseConfig holds SQL Server connection settings
type DatabaseConfig struct {
	Server   string `mapstructure:"server"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// LedgerConfig holds the accounting backend object names
type LedgerConfig struct {
	MovementsTable     string `mapstructure:"movements_table"`
	VoucherProcedure   string `mapstructure:"voucher_procedure"`
	MovementsProcedure string `mapstructure:"movements_procedure"`
}

// RindeGastosConfig holds Report Provider API settings
type RindeGastosConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIToken   string        `mapstructure:"api_token"`
	APITimeout time.Duration `mapstructure:"api_timeout"`
}

// RunConfig holds batch execution settings
type RunConfig struct {
	// Schedule is a cron expression; empty means a single one-shot run
	Schedule string `mapstructure:"schedule"`
	Timezone string `mapstructure:"timezone"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("rindegastos.base_url", "https://api.rindegastos.com/v1")
	v.SetDefault("rindegastos.api_timeout", 30*time.Second)

	v.SetDefault("run.timezone", "America/Santiago")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration, keeping the
// variable names the deployed integration already uses.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("database.server", "DB_SERVER")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("ledger.movements_table", "TABLE_MOVIM")
	v.BindEnv("ledger.voucher_procedure", "PROC_INSERT_CBTE")
	v.BindEnv("ledger.movements_procedure", "PROC_INSERT_MOVS")
	v.BindEnv("rindegastos.api_token", "TOKEN")
}

// Validate validates the configuration. Every backend and provider
// setting is required; a missing one aborts startup before any report
// is touched.
func (c *Config) Validate() error {
	if c.Database.Server == "" {
		return fmt.Errorf("database.server is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required")
	}

	if c.Ledger.MovementsTable == "" {
		return fmt.Errorf("ledger.movements_table is required")
	}
	if c.Ledger.VoucherProcedure == "" {
		return fmt.Errorf("ledger.voucher_procedure is required")
	}
	if c.Ledger.MovementsProcedure == "" {
		return fmt.Errorf("ledger.movements_procedure is required")
	}

	if c.RindeGastos.APIToken == "" {
		return fmt.Errorf("rindegastos.api_token is required")
	}

	return nil
}
