// Пакет config — загрузка и валидация конфигурации сервиса сводок встреч
// из переменных окружения (и необязательного .env-файла).
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Режимы определения владельца записей.
const (
	// AuthModeStatic — владелец берётся из MS_DEFAULT_OWNER_ID (режим разработки).
	AuthModeStatic = "static"
	// AuthModeJWT — владелец берётся из sub проверенного JWT.
	AuthModeJWT = "jwt"
)

// Провайдеры генерации сводок.
const (
	GeneratorMock   = "mock"
	GeneratorOpenAI = "openai"
	GeneratorGemini = "gemini"
)

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Файл логов с ротацией (пусто — только stdout)
	LogFile string
	// Максимальный размер файла логов в мегабайтах до ротации
	LogMaxSizeMB int
	// Количество хранимых архивных файлов логов
	LogMaxBackups int
	// Срок хранения архивных файлов логов в днях
	LogMaxAgeDays int

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Максимальный размер тела запроса в байтах
	MaxBodyBytes int64
	// Разрешённые CORS origins (пусто — CORS выключен)
	CORSAllowedOrigins []string

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Максимальное число соединений в пуле
	DBMaxConns int

	// --- Время ---

	// Часовой пояс для границ суток в фильтрах списка и заголовков по умолчанию
	Location *time.Location

	// --- Владелец записей ---

	// Режим: static или jwt
	AuthMode string
	// Идентификатор владельца для режима static
	DefaultOwnerID string
	// URL JWKS endpoint (режим jwt)
	JWTJWKSURL string
	// Ожидаемый issuer JWT (пусто — не проверяется)
	JWTIssuer string
	// Ожидаемый audience JWT (пусто — не проверяется)
	JWTAudience string
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration
	// Интервал обновления ключей JWKS
	JWKSRefreshInterval time.Duration

	// --- Генерация сводок ---

	// Провайдер: mock, openai, gemini
	GeneratorProvider string
	// Общий таймаут одного вызова генератора
	GeneratorTimeout time.Duration
	// Имитация задержки mock-генератора
	GeneratorMockDelay time.Duration
	// Параметры OpenAI-совместимого API
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	// Параметры Gemini
	GeminiAPIKey string
	GeminiModel  string
	// Размер кэша результатов генерации (0 — кэш выключен)
	GenerationCacheSize int
	// Время жизни записи кэша генерации
	GenerationCacheTTL time.Duration

	// --- Мониторинг зависимостей ---

	// Группа сервиса для topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// LoadDotEnv подгружает переменные из .env-файла (путь задаёт MS_ENV_FILE).
// Отсутствие файла не считается ошибкой, уже заданные переменные не перезаписываются.
func LoadDotEnv() error {
	path := getEnvDefault("MS_ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("загрузка %s: %w", path, err)
	}
	return nil
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// MS_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("MS_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("MS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("MS_PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	// MS_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("MS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("MS_LOG_LEVEL: %w", err)
	}

	// MS_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("MS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("MS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// MS_LOG_FILE — файл логов (по умолчанию не задан)
	cfg.LogFile = os.Getenv("MS_LOG_FILE")

	cfg.LogMaxSizeMB, err = getEnvInt("MS_LOG_MAX_SIZE_MB", 100)
	if err != nil {
		return nil, fmt.Errorf("MS_LOG_MAX_SIZE_MB: %w", err)
	}
	cfg.LogMaxBackups, err = getEnvInt("MS_LOG_MAX_BACKUPS", 3)
	if err != nil {
		return nil, fmt.Errorf("MS_LOG_MAX_BACKUPS: %w", err)
	}
	cfg.LogMaxAgeDays, err = getEnvInt("MS_LOG_MAX_AGE_DAYS", 28)
	if err != nil {
		return nil, fmt.Errorf("MS_LOG_MAX_AGE_DAYS: %w", err)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("MS_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("MS_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("MS_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// MS_MAX_BODY_BYTES — лимит тела запроса (по умолчанию 1 MiB)
	maxBody, err := getEnvInt("MS_MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return nil, fmt.Errorf("MS_MAX_BODY_BYTES: %w", err)
	}
	if maxBody <= 0 {
		return nil, fmt.Errorf("MS_MAX_BODY_BYTES: значение должно быть > 0")
	}
	cfg.MaxBodyBytes = int64(maxBody)

	// MS_CORS_ALLOWED_ORIGINS — список origins через запятую
	cfg.CORSAllowedOrigins = parseCSV(os.Getenv("MS_CORS_ALLOWED_ORIGINS"))

	// --- PostgreSQL ---

	// MS_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("MS_DB_HOST")
	if err != nil {
		return nil, err
	}

	cfg.DBPort, err = getEnvInt("MS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("MS_DB_PORT: %w", err)
	}

	// MS_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("MS_DB_NAME")
	if err != nil {
		return nil, err
	}

	// MS_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("MS_DB_USER")
	if err != nil {
		return nil, err
	}

	// MS_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("MS_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// MS_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("MS_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("MS_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	cfg.DBMaxConns, err = getEnvInt("MS_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("MS_DB_MAX_CONNS: %w", err)
	}
	if cfg.DBMaxConns < 1 {
		return nil, fmt.Errorf("MS_DB_MAX_CONNS: значение должно быть >= 1")
	}

	// --- Время ---

	// MS_TIMEZONE — IANA-имя часового пояса (по умолчанию UTC)
	tz := getEnvDefault("MS_TIMEZONE", "UTC")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("MS_TIMEZONE: неизвестный часовой пояс %q: %w", tz, err)
	}

	// --- Владелец записей ---

	cfg.AuthMode = getEnvDefault("MS_AUTH_MODE", AuthModeStatic)
	switch cfg.AuthMode {
	case AuthModeStatic:
		// MS_DEFAULT_OWNER_ID — обязателен в режиме static
		cfg.DefaultOwnerID, err = getEnvRequired("MS_DEFAULT_OWNER_ID")
		if err != nil {
			return nil, err
		}
	case AuthModeJWT:
		// MS_JWT_JWKS_URL — обязателен в режиме jwt
		cfg.JWTJWKSURL, err = getEnvRequired("MS_JWT_JWKS_URL")
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("MS_AUTH_MODE: недопустимое значение %q, допустимые: static, jwt", cfg.AuthMode)
	}

	cfg.JWTIssuer = os.Getenv("MS_JWT_ISSUER")
	cfg.JWTAudience = os.Getenv("MS_JWT_AUDIENCE")

	cfg.JWTLeeway, err = getEnvDuration("MS_JWT_LEEWAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_JWT_LEEWAY: %w", err)
	}
	cfg.JWKSClientTimeout, err = getEnvDuration("MS_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_JWKS_CLIENT_TIMEOUT: %w", err)
	}
	cfg.JWKSRefreshInterval, err = getEnvDuration("MS_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MS_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// --- Генерация сводок ---

	cfg.GeneratorProvider = getEnvDefault("MS_GENERATOR_PROVIDER", GeneratorMock)
	switch cfg.GeneratorProvider {
	case GeneratorMock:
	case GeneratorOpenAI:
		cfg.OpenAIAPIKey, err = getEnvRequired("MS_OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
	case GeneratorGemini:
		cfg.GeminiAPIKey, err = getEnvRequired("MS_GEMINI_API_KEY")
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("MS_GENERATOR_PROVIDER: недопустимое значение %q, допустимые: mock, openai, gemini", cfg.GeneratorProvider)
	}

	cfg.OpenAIBaseURL = os.Getenv("MS_OPENAI_BASE_URL")
	cfg.OpenAIModel = getEnvDefault("MS_OPENAI_MODEL", "gpt-4o-mini")
	cfg.GeminiModel = getEnvDefault("MS_GEMINI_MODEL", "gemini-2.5-flash")

	cfg.GeneratorTimeout, err = getEnvPositiveDuration("MS_GENERATOR_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_GENERATOR_TIMEOUT: %w", err)
	}
	cfg.GeneratorMockDelay, err = getEnvDuration("MS_GENERATOR_MOCK_DELAY", 200*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("MS_GENERATOR_MOCK_DELAY: %w", err)
	}

	cfg.GenerationCacheSize, err = getEnvInt("MS_GENERATION_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("MS_GENERATION_CACHE_SIZE: %w", err)
	}
	if cfg.GenerationCacheSize < 0 {
		return nil, fmt.Errorf("MS_GENERATION_CACHE_SIZE: значение должно быть >= 0")
	}
	cfg.GenerationCacheTTL, err = getEnvPositiveDuration("MS_GENERATION_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MS_GENERATION_CACHE_TTL: %w", err)
	}

	// --- Мониторинг зависимостей ---

	cfg.DephealthGroup = getEnvDefault("MS_DEPHEALTH_GROUP", "meeting-summary")
	cfg.DephealthCheckInterval, err = getEnvDuration("MS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("MS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode, c.DBMaxConns,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
// Если задан LogFile, записи дублируются в файл с ротацией.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		})
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
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

// getEnvPositiveDuration — как getEnvDuration, но значение должно быть > 0.
func getEnvPositiveDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
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
