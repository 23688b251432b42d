// Пакет config — загрузка и валидация конфигурации Framework Portal
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Framework Portal.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Базовый URL сервиса для OAuth redirect_uri
	BaseURL string
	// Разрешённые CORS origins (через запятую)
	CORSOrigins []string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Google OIDC ---

	// Client ID OAuth-приложения Google
	GoogleClientID string
	// Client Secret OAuth-приложения Google
	GoogleClientSecret string
	// Issuer ID-токенов
	OIDCIssuer string
	// Authorize endpoint
	OIDCAuthorizeURL string
	// Token endpoint
	OIDCTokenURL string
	// JWKS endpoint для проверки подписи ID-токенов
	OIDCJWKSURL string
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration

	// --- Доступ ---

	// Email-адреса, получающие роль ADMIN при входе
	AdminEmails []string
	// Домены email, дающие роль ADMIN при входе
	AdminDomains []string

	// --- Сессии ---

	// Секрет для шифрования session cookie (AES-256-GCM)
	SessionSecret string
	// Secure flag для cookies (true при работе за HTTPS)
	SecureCookie bool

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// FP_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("FP_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("FP_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("FP_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// FP_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("FP_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("FP_LOG_LEVEL: %w", err)
	}

	// FP_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("FP_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("FP_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// FP_BASE_URL — базовый URL сервиса, используется в OAuth redirect_uri
	cfg.BaseURL = strings.TrimRight(getEnvDefault("FP_BASE_URL", "http://localhost:8080"), "/")

	// FP_CORS_ORIGINS — разрешённые origins (пусто = same-origin)
	cfg.CORSOrigins = parseCSV(getEnvDefault("FP_CORS_ORIGINS", ""))

	// --- PostgreSQL ---

	// FP_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("FP_DB_HOST")
	if err != nil {
		return nil, err
	}

	// FP_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("FP_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("FP_DB_PORT: %w", err)
	}

	// FP_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("FP_DB_NAME")
	if err != nil {
		return nil, err
	}

	// FP_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("FP_DB_USER")
	if err != nil {
		return nil, err
	}

	// FP_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("FP_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// FP_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("FP_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("FP_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Google OIDC ---

	// FP_GOOGLE_CLIENT_ID — обязательный
	cfg.GoogleClientID, err = getEnvRequired("FP_GOOGLE_CLIENT_ID")
	if err != nil {
		return nil, err
	}

	// FP_GOOGLE_CLIENT_SECRET — обязательный
	cfg.GoogleClientSecret, err = getEnvRequired("FP_GOOGLE_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}

	// FP_OIDC_ISSUER — issuer ID-токенов (по умолчанию Google)
	cfg.OIDCIssuer = getEnvDefault("FP_OIDC_ISSUER", "https://accounts.google.com")

	// FP_OIDC_AUTHORIZE_URL — authorize endpoint (по умолчанию Google)
	cfg.OIDCAuthorizeURL = getEnvDefault("FP_OIDC_AUTHORIZE_URL",
		"https://accounts.google.com/o/oauth2/v2/auth")

	// FP_OIDC_TOKEN_URL — token endpoint (по умолчанию Google)
	cfg.OIDCTokenURL = getEnvDefault("FP_OIDC_TOKEN_URL",
		"https://oauth2.googleapis.com/token")

	// FP_OIDC_JWKS_URL — JWKS endpoint (по умолчанию Google)
	cfg.OIDCJWKSURL = getEnvDefault("FP_OIDC_JWKS_URL",
		"https://www.googleapis.com/oauth2/v3/certs")

	// FP_JWKS_REFRESH_INTERVAL — интервал обновления JWKS (по умолчанию 1h)
	cfg.JWKSRefreshInterval, err = getEnvDuration("FP_JWKS_REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("FP_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// --- Доступ ---

	// FP_ADMIN_EMAILS — email-адреса администраторов (через запятую)
	cfg.AdminEmails = parseCSV(getEnvDefault("FP_ADMIN_EMAILS", ""))

	// FP_ADMIN_DOMAINS — домены администраторов (через запятую)
	cfg.AdminDomains = parseCSV(getEnvDefault("FP_ADMIN_DOMAINS", ""))

	// --- Сессии ---

	// FP_SESSION_SECRET — секрет session cookie (если пустой — случайный при старте)
	cfg.SessionSecret = getEnvDefault("FP_SESSION_SECRET", "")

	// FP_SECURE_COOKIE — Secure flag для cookies (по умолчанию false)
	cfg.SecureCookie = strings.EqualFold(getEnvDefault("FP_SECURE_COOKIE", "false"), "true")

	// --- Graceful shutdown ---

	// FP_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("FP_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("FP_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// RedirectURL возвращает OAuth redirect_uri — callback-эндпоинт сервиса.
func (c *Config) RedirectURL() string {
	return c.BaseURL + "/auth/callback"
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
