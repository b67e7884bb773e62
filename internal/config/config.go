package config

import (
	"fmt"

	"github.com/Veraticus/balance-history/internal/common"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath = "database.path"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
	KeyHistoryDays  = "history.days"
	KeyServerAddr   = "server.addr"
	KeyCurrency     = "display.currency"
)

// Defaults.
const (
	DefaultDatabasePath = "$HOME/.local/share/balance/balance.db"
	DefaultHistoryDays  = 10
	DefaultServerAddr   = ":8080"
	DefaultCurrency     = "USD"
)

// Config is the resolved application configuration.
type Config struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	ServerAddr   string
	Currency     string
	HistoryDays  int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyHistoryDays, DefaultHistoryDays)
	v.SetDefault(KeyServerAddr, DefaultServerAddr)
	v.SetDefault(KeyCurrency, DefaultCurrency)
}

// Load reads the typed configuration from v, expanding the database path.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
		ServerAddr:   v.GetString(KeyServerAddr),
		Currency:     v.GetString(KeyCurrency),
		HistoryDays:  v.GetInt(KeyHistoryDays),
	}

	if cfg.DatabasePath == "" {
		return Config{}, fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyDatabasePath)
	}
	if cfg.HistoryDays <= 0 {
		return Config{}, fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyHistoryDays, cfg.HistoryDays)
	}
	if _, err := common.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
