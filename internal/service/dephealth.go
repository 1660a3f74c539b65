// dephealth.go — мониторинг зависимостей через topologymetrics SDK.
//
// Всегда мониторится PostgreSQL (SQL checker через существующий pgxpool, critical).
// В режиме MS_AUTH_MODE=jwt дополнительно мониторится JWKS identity provider
// (HTTP checker, non-critical — ранее загруженные ключи продолжают работать).
// Генератор сводок не мониторится: его сбои видны в ms_generation_total{status="error"}.
//
// Метрики публикуются на /metrics:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для JWKS
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthConfig — параметры мониторинга зависимостей.
type DephealthConfig struct {
	// ServiceID — имя вершины графа текущего приложения.
	ServiceID string
	// Group — имя группы в метриках (MS_DEPHEALTH_GROUP).
	Group string
	// DB — *sql.DB, полученный из pgxpool через stdlib.OpenDBFromPool().
	DB *sql.DB
	// PostgresURL — URL PostgreSQL для лейблов (см. PostgresURL).
	PostgresURL string
	// JWKSURL — JWKS endpoint; пустой — зависимость не регистрируется.
	JWKSURL string
	// CheckInterval — интервал проверки (MS_DEPHEALTH_CHECK_INTERVAL).
	CheckInterval time.Duration
	// Registerer — Prometheus registerer; nil — глобальный registry.
	Registerer prometheus.Registerer
}

// DephealthService — сервис мониторинга зависимостей.
type DephealthService struct {
	dh           *dephealth.DepHealth
	dependencies []string
	logger       *slog.Logger
}

// PostgresURL формирует URL PostgreSQL для лейблов метрик (без учётных данных).
func PostgresURL(host string, port int, dbName string) string {
	return fmt.Sprintf("postgres://%s/%s", net.JoinHostPort(host, strconv.Itoa(port)), dbName)
}

// jwksHealthPath возвращает path JWKS URL для HTTP-проверки.
// По умолчанию dephealth проверяет /health, которого у IdP на основном порту может не быть.
func jwksHealthPath(jwksURL string) string {
	if parsed, err := url.Parse(jwksURL); err == nil && parsed.Path != "" {
		return parsed.Path
	}
	return "/health"
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.DB)),
			dephealth.FromURL(cfg.PostgresURL),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		),
	}
	deps := []string{"postgresql"}

	if cfg.JWKSURL != "" {
		opts = append(opts, dephealth.HTTP("idp-jwks",
			dephealth.FromURL(cfg.JWKSURL),
			dephealth.WithHTTPHealthPath(jwksHealthPath(cfg.JWKSURL)),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(false),
		))
		deps = append(deps, "idp-jwks")
	}

	if cfg.Registerer != nil {
		opts = append(opts, dephealth.WithRegisterer(cfg.Registerer))
	}

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, fmt.Errorf("создание dephealth: %w", err)
	}

	return &DephealthService{
		dh:           dh,
		dependencies: deps,
		logger:       logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен",
		slog.String("dependencies", strings.Join(ds.dependencies, ",")),
	)
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}
