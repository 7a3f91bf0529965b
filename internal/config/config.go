// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Sources   SourcesConfig
	Replenish ReplenishConfig
	ShortShip ShortShipConfig
	Outbox    OutboxConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// SourcesConfig holds the endpoints of the externally-owned row feeds. Each
// returns a JSON array of loosely-typed row objects.
type SourcesConfig struct {
	UsageURL     string
	StockURL     string
	ReferenceURL string

	DiffReportURL      string
	DailyReportURL     string
	MonthlyReportURL   string
	QuarterlyReportURL string
	RemarksURL         string
	SaveURL            string

	FetchTimeoutSeconds int
}

// ReplenishConfig carries the default replenishment parameters. Requests may
// override them per query; out-of-range values fall back to these.
type ReplenishConfig struct {
	LeadTimeDays int
	SafetyDays   int
	CoverDays    int
}

type ShortShipConfig struct {
	GeneralLabel    string
	ConsumableLabel string
	WindowDays      int
}

type OutboxConfig struct {
	Path                 string
	DrainIntervalSeconds int
	DeliveryDelayMillis  int
	CompactThreshold     int
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
	ReportsTTLSeconds   int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

		viper.SetDefault("SOURCE_USAGE_URL", "")
		viper.SetDefault("SOURCE_STOCK_URL", "")
		viper.SetDefault("SOURCE_REFERENCE_URL", "")
		viper.SetDefault("SOURCE_DIFF_REPORT_URL", "")
		viper.SetDefault("SOURCE_DAILY_REPORT_URL", "")
		viper.SetDefault("SOURCE_MONTHLY_REPORT_URL", "")
		viper.SetDefault("SOURCE_QUARTERLY_REPORT_URL", "")
		viper.SetDefault("SOURCE_REMARKS_URL", "")
		viper.SetDefault("SOURCE_SAVE_URL", "")
		viper.SetDefault("SOURCE_FETCH_TIMEOUT_SECONDS", 30)

		viper.SetDefault("REPLENISH_LEAD_TIME_DAYS", 5)
		viper.SetDefault("REPLENISH_SAFETY_DAYS", 3)
		viper.SetDefault("REPLENISH_COVER_DAYS", 40)

		viper.SetDefault("SHORTSHIP_GENERAL_LABEL", "General")
		viper.SetDefault("SHORTSHIP_CONSUMABLE_LABEL", "Consumable")
		viper.SetDefault("SHORTSHIP_WINDOW_DAYS", 30)

		viper.SetDefault("OUTBOX_PATH", "./data/outbox.log")
		viper.SetDefault("OUTBOX_DRAIN_INTERVAL_SECONDS", 60)
		viper.SetDefault("OUTBOX_DELIVERY_DELAY_MILLIS", 500)
		viper.SetDefault("OUTBOX_COMPACT_THRESHOLD", 256)

		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("CACHE_REPORTS_TTL_SECONDS", 300)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Sources: SourcesConfig{
				UsageURL:            viper.GetString("SOURCE_USAGE_URL"),
				StockURL:            viper.GetString("SOURCE_STOCK_URL"),
				ReferenceURL:        viper.GetString("SOURCE_REFERENCE_URL"),
				DiffReportURL:       viper.GetString("SOURCE_DIFF_REPORT_URL"),
				DailyReportURL:      viper.GetString("SOURCE_DAILY_REPORT_URL"),
				MonthlyReportURL:    viper.GetString("SOURCE_MONTHLY_REPORT_URL"),
				QuarterlyReportURL:  viper.GetString("SOURCE_QUARTERLY_REPORT_URL"),
				RemarksURL:          viper.GetString("SOURCE_REMARKS_URL"),
				SaveURL:             viper.GetString("SOURCE_SAVE_URL"),
				FetchTimeoutSeconds: viper.GetInt("SOURCE_FETCH_TIMEOUT_SECONDS"),
			},
			Replenish: ReplenishConfig{
				LeadTimeDays: viper.GetInt("REPLENISH_LEAD_TIME_DAYS"),
				SafetyDays:   viper.GetInt("REPLENISH_SAFETY_DAYS"),
				CoverDays:    viper.GetInt("REPLENISH_COVER_DAYS"),
			},
			ShortShip: ShortShipConfig{
				GeneralLabel:    viper.GetString("SHORTSHIP_GENERAL_LABEL"),
				ConsumableLabel: viper.GetString("SHORTSHIP_CONSUMABLE_LABEL"),
				WindowDays:      viper.GetInt("SHORTSHIP_WINDOW_DAYS"),
			},
			Outbox: OutboxConfig{
				Path:                 viper.GetString("OUTBOX_PATH"),
				DrainIntervalSeconds: viper.GetInt("OUTBOX_DRAIN_INTERVAL_SECONDS"),
				DeliveryDelayMillis:  viper.GetInt("OUTBOX_DELIVERY_DELAY_MILLIS"),
				CompactThreshold:     viper.GetInt("OUTBOX_COMPACT_THRESHOLD"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
				ReportsTTLSeconds:   viper.GetInt("CACHE_REPORTS_TTL_SECONDS"),
			},
		}
	})

	return instance
}
