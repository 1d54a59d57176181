package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration values.
type Config struct {
	Env         string
	HTTPPort    string
	StoreDriver string
	DatabaseDSN string

	OrdersFile      string
	HospitalsFile   string
	InventoryFile   string
	ConsumptionFile string

	LowStockThreshold int64
	ExpiryHorizonDays int
	StrictStatusOrder bool
	MetricsEnabled    bool

	AMQPURL      string
	AMQPExchange string
}

var drivers = []string{"csv", "sqlite", "postgres"}

// Load reads configuration from environment variables with reasonable defaults.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("STORE_DRIVER", "csv")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("ORDERS_FILE", "orders.csv")
	v.SetDefault("HOSPITALS_FILE", "hospitals.csv")
	v.SetDefault("INVENTORY_FILE", "data/inventory_dataset.csv")
	v.SetDefault("CONSUMPTION_FILE", "data/consumption_dataset.csv")
	v.SetDefault("LOW_STOCK_THRESHOLD", 50)
	v.SetDefault("EXPIRY_HORIZON_DAYS", 90)
	v.SetDefault("STRICT_STATUS_ORDER", false)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "order_status")

	c := Config{
		Env:               v.GetString("APP_ENV"),
		HTTPPort:          strings.TrimSpace(v.GetString("HTTP_PORT")),
		StoreDriver:       strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		OrdersFile:        v.GetString("ORDERS_FILE"),
		HospitalsFile:     v.GetString("HOSPITALS_FILE"),
		InventoryFile:     v.GetString("INVENTORY_FILE"),
		ConsumptionFile:   v.GetString("CONSUMPTION_FILE"),
		LowStockThreshold: v.GetInt64("LOW_STOCK_THRESHOLD"),
		ExpiryHorizonDays: v.GetInt("EXPIRY_HORIZON_DAYS"),
		StrictStatusOrder: v.GetBool("STRICT_STATUS_ORDER"),
		MetricsEnabled:    v.GetBool("METRICS_ENABLED"),
		AMQPURL:           v.GetString("AMQP_URL"),
		AMQPExchange:      v.GetString("AMQP_EXCHANGE"),
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		slog.Warn("invalid HTTP_PORT value, defaulting to 8080", "value", c.HTTPPort)
		c.HTTPPort = "8080"
	}

	if !validDriver(c.StoreDriver) {
		return c, fmt.Errorf("unsupported STORE_DRIVER %q, want one of %s", c.StoreDriver, strings.Join(drivers, ", "))
	}
	if c.StoreDriver != "csv" && c.DatabaseDSN == "" {
		return c, fmt.Errorf("DATABASE_DSN is required for the %s store", c.StoreDriver)
	}
	if c.LowStockThreshold < 0 || c.ExpiryHorizonDays < 0 {
		return c, fmt.Errorf("alert thresholds must not be negative")
	}
	return c, nil
}

func validDriver(d string) bool {
	for _, known := range drivers {
		if d == known {
			return true
		}
	}
	return false
}
