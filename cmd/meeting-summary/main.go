// Точка входа сервиса сводок встреч.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт генератор сводок, сервисный слой и API handlers,
// запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dackow/meeting-summary/internal/api/handlers"
	"github.com/dackow/meeting-summary/internal/api/middleware"
	"github.com/dackow/meeting-summary/internal/api/openapi"
	"github.com/dackow/meeting-summary/internal/config"
	"github.com/dackow/meeting-summary/internal/database"
	"github.com/dackow/meeting-summary/internal/generator"
	"github.com/dackow/meeting-summary/internal/repository"
	"github.com/dackow/meeting-summary/internal/server"
	"github.com/dackow/meeting-summary/internal/service"
)

// publicPrefixes — пути без аутентификации и владельца.
var publicPrefixes = []string{"/health/", "/metrics", "/openapi.json"}

func main() {
	os.Exit(run())
}

// run собирает и запускает сервис. Возвращает код завершения процесса;
// отложенные Close/Stop выполняются до выхода.
func run() int {
	// 1. Загрузка конфигурации (.env, затем переменные окружения)
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("Ошибка чтения .env", slog.String("error", err.Error()))
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		return 1
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Meeting Summary запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("auth_mode", cfg.AuthMode),
		slog.String("generator", cfg.GeneratorProvider),
	)
	if cfg.AuthMode == config.AuthModeStatic {
		logger.Warn("MS_AUTH_MODE=static: все запросы выполняются от имени одного пользователя",
			slog.String("owner_id", cfg.DefaultOwnerID),
		)
	}

	// 3. Контракт API
	ctx := context.Background()
	openapiJSON, err := openapi.JSON(ctx)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI контракта", slog.String("error", err.Error()))
		return 1
	}

	// 4. Подключение к PostgreSQL (pgxpool, с ожиданием готовности БД)
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		return 1
	}
	defer pool.Close()

	// 5. Применение миграций БД (PostgreSQL уже доступен)
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(ctx, cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		return 1
	}

	// 5.1 Адаптер pgxpool → *sql.DB для topologymetrics (проверки идут через тот же пул).
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 6. Генератор сводок
	gen, err := generator.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка создания генератора сводок", slog.String("error", err.Error()))
		return 1
	}
	var cache *service.GenerationCache
	if cfg.GenerationCacheSize > 0 {
		cache = service.NewGenerationCache(cfg.GenerationCacheSize, cfg.GenerationCacheTTL)
	}

	// 7. Repositories и services
	summaryRepo := repository.NewSummaryRepository(pool)
	summarySvc := service.NewSummaryService(summaryRepo, cfg.Location, logger)
	generationSvc := service.NewGenerationService(gen, cfg.GeneratorTimeout, cache, logger)

	// 8. Аутентификация и определение владельца
	var (
		authMiddlewares []func(http.Handler) http.Handler
		jwksChecker     handlers.ReadinessChecker
	)
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		jwtAuth, err := middleware.NewJWTAuth(middleware.JWTAuthConfig{
			JWKSURL:         cfg.JWTJWKSURL,
			Issuer:          cfg.JWTIssuer,
			Audience:        cfg.JWTAudience,
			ClientTimeout:   cfg.JWKSClientTimeout,
			RefreshInterval: cfg.JWKSRefreshInterval,
			Leeway:          cfg.JWTLeeway,
		}, logger)
		if err != nil {
			logger.Error("Ошибка инициализации JWT", slog.String("error", err.Error()))
			return 1
		}
		authMiddlewares = append(authMiddlewares,
			server.WithExclusions(jwtAuth.Middleware(), publicPrefixes...),
			server.WithExclusions(middleware.RequireOwner(middleware.ClaimsOwnerResolver{}, logger), publicPrefixes...),
		)
		jwksChecker = middleware.NewJWKSReadinessChecker(cfg.JWTJWKSURL, cfg.JWKSClientTimeout)
	default:
		authMiddlewares = append(authMiddlewares,
			server.WithExclusions(middleware.RequireOwner(middleware.StaticOwnerResolver{OwnerID: cfg.DefaultOwnerID}, logger), publicPrefixes...),
		)
	}

	// 9. Health и API handlers
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), jwksChecker)
	apiHandler := handlers.NewAPIHandler(
		summarySvc,
		generationSvc,
		healthHandler,
		openapiJSON,
		cfg.MaxBodyBytes,
		cfg.Location,
		logger,
	)

	// 10. topologymetrics — мониторинг PostgreSQL (и JWKS в режиме jwt)
	dephealthCfg := service.DephealthConfig{
		ServiceID:     "meeting-summary",
		Group:         cfg.DephealthGroup,
		DB:            pgDB,
		PostgresURL:   service.PostgresURL(cfg.DBHost, cfg.DBPort, cfg.DBName),
		CheckInterval: cfg.DephealthCheckInterval,
	}
	if cfg.AuthMode == config.AuthModeJWT {
		dephealthCfg.JWKSURL = cfg.JWTJWKSURL
	}
	dephealthSvc, dephealthErr := service.NewDephealthService(dephealthCfg, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
	} else {
		defer dephealthSvc.Stop()
	}

	// 11. HTTP-сервер: metrics → logging → auth → owner
	middlewares := append([]func(http.Handler) http.Handler{
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	}, authMiddlewares...)
	srv := server.New(cfg, logger, apiHandler, middlewares...)

	// 12. Запуск сервера (блокируется до SIGINT/SIGTERM, затем graceful shutdown)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Сервер завершился с ошибкой", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("Meeting Summary остановлен")
	return 0
}
