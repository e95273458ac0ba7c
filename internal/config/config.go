package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultGeminiURL    = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	defaultGeocodingURL = "https://maps.googleapis.com/maps/api/geocode/json"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	DBMaxConns     int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"json"`
	SecretKey      string `env:"SECRET_KEY"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`

	// Redis Config (пустой адрес отключает кеш инцидентов)
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPass        string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	IncidentCacheTTL time.Duration `env:"INCIDENT_CACHE_TTL" envDefault:"5m"`

	// LLM Config
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiAPIURL  string        `env:"GEMINI_API_URL"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"30s"`

	// Geocoding Config
	MapsAPIKey       string        `env:"GOOGLE_MAPS_API_KEY"`
	GeocodingAPIURL  string        `env:"GEOCODING_API_URL"`
	GeocodingTimeout time.Duration `env:"GEOCODING_TIMEOUT" envDefault:"10s"`

	// SMTP Config
	SMTPServer   string        `env:"SMTP_SERVER" envDefault:"smtp.gmail.com"`
	SMTPPort     int           `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SenderEmail  string        `env:"SENDER_EMAIL"`
	SenderName   string        `env:"SENDER_NAME"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	BaseURL      string        `env:"BASE_URL"`

	// Incidents
	UploadsDir        string        `env:"UPLOADS_DIR" envDefault:"uploads"`
	DuplicateWindow   time.Duration `env:"DUPLICATE_WINDOW" envDefault:"1h"`
	NotifySubscribers bool          `env:"NOTIFY_SUBSCRIBERS"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBMaxConns:         int32(getEnvAsInt("DB_MAX_CONNS", 10)),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		SecretKey:          os.Getenv("SECRET_KEY"),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "file://migrations"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPass:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		IncidentCacheTTL:   getEnvAsDuration("INCIDENT_CACHE_TTL", 5*time.Minute),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiAPIURL:       getEnv("GEMINI_API_URL", defaultGeminiURL),
		GeminiTimeout:      getEnvAsDuration("GEMINI_TIMEOUT", 30*time.Second),
		MapsAPIKey:         os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeocodingAPIURL:    getEnv("GEOCODING_API_URL", defaultGeocodingURL),
		GeocodingTimeout:   getEnvAsDuration("GEOCODING_TIMEOUT", 10*time.Second),
		SMTPServer:         getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:           getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		SenderEmail:        os.Getenv("SENDER_EMAIL"),
		SenderName:         os.Getenv("SENDER_NAME"),
		SMTPTimeout:        getEnvAsDuration("SMTP_TIMEOUT", 30*time.Second),
		BaseURL:            strings.TrimRight(os.Getenv("BASE_URL"), "/"),
		UploadsDir:         getEnv("UPLOADS_DIR", "uploads"),
		DuplicateWindow:    getEnvAsDuration("DUPLICATE_WINDOW", time.Hour),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	// Без явного значения рассылка включена, если почта настроена полностью
	cfg.NotifySubscribers = getEnvAsBool("NOTIFY_SUBSCRIBERS", cfg.SMTPConfigured())

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// SMTPConfigured сообщает, заданы ли все параметры, без которых письмо не отправить
func (c *Config) SMTPConfigured() bool {
	return c.SMTPServer != "" && c.SMTPPort != 0 && c.SMTPUsername != "" &&
		c.SMTPPassword != "" && c.SenderEmail != ""
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список, разделенный запятыми
func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
