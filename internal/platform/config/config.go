package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	DBDriver    string
	DBDSN       string
	MetricsAddr string

	// ReconcileSchedule is a cron expression for the grant audit pass.
	ReconcileSchedule string

	LogLevel string
}

// Load reads process configuration from the environment. A local .env file
// is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "policy-engine"
	}

	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "postgres"
	}

	schedule := os.Getenv("RECONCILE_SCHEDULE")
	if schedule == "" {
		schedule = "*/15 * * * *"
	}

	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9464"
	}

	return Config{
		ServiceName:       service,
		DBDriver:          driver,
		DBDSN:             os.Getenv("DB_DSN"),
		MetricsAddr:       metricsAddr,
		ReconcileSchedule: schedule,
		LogLevel:          strings.ToLower(os.Getenv("LOG_LEVEL")),
	}, nil
}
