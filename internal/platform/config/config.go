package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	DBDriver     string
	PostgresDSN  string
	SQLitePath   string
	KafkaBrokers []string

	// StartBarcode seeds replacement-form barcode generation.
	StartBarcode int64
	// OCVCenterMin is the first out-of-country-voting center code. Centers
	// below it file reconciliation forms.
	OCVCenterMin int

	// QuarantineConfigPath points at the TOML quarantine check seed file.
	QuarantineConfigPath string

	PrintCoverInIntake         bool
	PrintCoverInClearance      bool
	PrintCoverInQualityControl bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "quorum"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	driver := strings.TrimSpace(strings.ToLower(os.Getenv("DB_DRIVER")))
	if driver == "" {
		driver = "postgres"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		DBDriver:     driver,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		SQLitePath:   envString("SQLITE_PATH", "quorum.db"),
		KafkaBrokers: brokers,

		StartBarcode: envInt64("START_BARCODE", 10000000),
		OCVCenterMin: envInt("OCV_CENTER_MIN", 80001),

		QuarantineConfigPath: os.Getenv("QUARANTINE_CONFIG"),

		PrintCoverInIntake:         envBool("PRINT_COVER_IN_INTAKE", true),
		PrintCoverInClearance:      envBool("PRINT_COVER_IN_CLEARANCE", true),
		PrintCoverInQualityControl: envBool("PRINT_COVER_IN_QUALITY_CONTROL", true),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envInt64(name string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
