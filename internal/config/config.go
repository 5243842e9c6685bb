package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config agrupa la configuración por env vars.
// Las mains cargan .env con godotenv antes de llamar Load().
type Config struct {
	Port string

	DBDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Gateway de notificaciones: si WebhookURL está vacío se usa el gateway de log.
	NotifyWebhookURL string
	NotifyAPIKey     string

	// Servicios externos: auth introspection y directorio de cuentas.
	// Vacíos => modo dev (headers de debug y directorio en memoria).
	AuthSvcURL    string
	AccountSvcURL string
	AccountAPIKey string

	// Cadencias de los jobs del worker.
	CleanupEvery time.Duration
	ScanEvery    time.Duration

	MetricsEnabled bool
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		DBDSN: os.Getenv("DB_DSN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		NotifyAPIKey:     os.Getenv("NOTIFY_API_KEY"),

		AuthSvcURL:    os.Getenv("AUTH_SVC_URL"),
		AccountSvcURL: os.Getenv("ACCOUNT_SVC_URL"),
		AccountAPIKey: os.Getenv("ACCOUNT_API_KEY"),

		CleanupEvery: getEnvDuration("CLEANUP_EVERY", 5*time.Minute),
		ScanEvery:    getEnvDuration("SCAN_EVERY", 24*time.Hour),

		MetricsEnabled: !strings.EqualFold(os.Getenv("METRICS_ENABLED"), "false"),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
