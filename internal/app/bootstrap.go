package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gunvolt24/salesops/config"
	cachemem "github.com/Gunvolt24/salesops/internal/cache/memory"
	"github.com/Gunvolt24/salesops/internal/cache/rediscache"
	"github.com/Gunvolt24/salesops/internal/kafka"
	"github.com/Gunvolt24/salesops/internal/ports"
	"github.com/Gunvolt24/salesops/internal/repo/memory"
	"github.com/Gunvolt24/salesops/internal/repo/postgres"
	rest "github.com/Gunvolt24/salesops/internal/transport/http"
	"github.com/Gunvolt24/salesops/internal/usecase"
	"github.com/Gunvolt24/salesops/migrations"
	"github.com/Gunvolt24/salesops/pkg/auth"
	"github.com/Gunvolt24/salesops/pkg/logger"
	"github.com/Gunvolt24/salesops/pkg/metrics"
	"github.com/Gunvolt24/salesops/pkg/telemetry"
	"github.com/Gunvolt24/salesops/pkg/validate"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, метрики, consumer).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP API
	MetricsServer   *http.Server          // отдельный /metrics (nil — только на HTTPServer)
	KafkaConsumer   ports.MessageConsumer // приём размещений (nil — Kafka выключена)
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-серверов
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// closers — освобождение ресурсов в обратном порядке.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// storage — хранилища и граница транзакции выбранного драйвера.
type storage struct {
	stores ports.Stores
	tx     ports.TxManager
}

// openStorage — Postgres (с миграциями goose при AutoMigrate) или память.
func openStorage(ctx context.Context, cfg *config.Config, log ports.Logger, cl *closers) (storage, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warnf(ctx, "storage driver=memory: data is lost on restart")
		store := memory.NewStore()
		return storage{stores: store.Stores(), tx: store}, nil
	}

	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(cfg.Postgres.DSN, migrations.FS); err != nil {
			return storage{}, fmt.Errorf("migrate: %w", err)
		}
		log.Infof(ctx, "postgres migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return storage{}, err
	}
	cl.add(pool.Close)
	return storage{stores: postgres.NewStores(pool), tx: postgres.NewTxManager(pool)}, nil
}

// openCache — кэш заказов: LRU в процессе или Redis.
func openCache(ctx context.Context, cfg *config.Config, log ports.Logger, cl *closers) (ports.OrderCache, error) {
	if cfg.Cache.Backend != "redis" {
		return cachemem.NewLRUCacheTTL(cfg.Cache.Capacity, cfg.Cache.TTL), nil
	}

	rdb, err := rediscache.NewClient(ctx, cfg.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	cl.add(func() {
		if err := rdb.Close(); err != nil {
			log.Warnf(ctx, "redis close: %v", err)
		}
	})
	return rediscache.NewOrderCache(rdb, cfg.Cache.TTL, log), nil
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	var cl closers
	cl.add(func() {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
	})
	fail := func(err error) (*App, Cleanup, error) {
		logg.Errorf(ctx, "bootstrap failed: %v", err)
		cl.run()
		return nil, func() {}, err
	}

	// Проверка токенов обязательна: без секрета API не поднимаем.
	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return fail(err)
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	if cfg.Tracing.Enabled {
		shutdownTrace, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			cl.add(func() {
				if terr := shutdownTrace(context.Background()); terr != nil {
					logg.Warnf(ctx, "shutdown tracing: %v", terr)
				}
			})
		}
	}

	store, err := openStorage(ctx, cfg, logg, &cl)
	if err != nil {
		return fail(err)
	}
	orderCache, err := openCache(ctx, cfg, logg, &cl)
	if err != nil {
		return fail(err)
	}

	// Сборка доменного слоя.
	inputValidator := validate.NewValidator()
	orderService := usecase.NewOrderService(store.stores, store.tx, orderCache, logg, inputValidator)
	services := rest.Services{
		Orders:  orderService,
		Catalog: usecase.NewCatalogService(store.stores.Products, logg, inputValidator),
		Clients: usecase.NewClientService(store.stores.Clients, logg, inputValidator),
		Reports: usecase.NewReportService(store.stores.Orders),
	}

	// Прогрев кэша
	if n := cfg.Cache.WarmUpN; n > 0 {
		if err := orderService.WarmUpCache(ctx, n); err != nil {
			logg.Warnf(ctx, "warm-up cache failed: %v", err)
		}
	}

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	router := rest.NewRouter(rest.NewHandler(services, logg, cfg.HTTP.HandlerTimeout), verifier, otelServiceName)
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// /metrics на отдельном порту, если он задан и не совпадает с API.
	if addr := cfg.Metrics.Addr; addr != "" && addr != cfg.HTTP.Addr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		app.MetricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout}
	}

	// Консьюмер размещений заказов.
	if cfg.Kafka.Enabled {
		kafkaCfg := &kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}
		if err := kafkaCfg.Validate(); err != nil {
			return fail(err)
		}
		consumer := kafka.NewConsumer(kafkaCfg, orderService, logg)
		app.KafkaConsumer = consumer
		cl.add(func() {
			if err := consumer.Close(); err != nil {
				logg.Warnf(ctx, "kafka consumer close error: %v", err)
			}
		})
	} else {
		logg.Infof(ctx, "kafka intake disabled")
	}

	logg.Infof(ctx, "bootstrap done storage=%s cache=%s kafka=%t", cfg.Storage.Driver, cfg.Cache.Backend, cfg.Kafka.Enabled)
	return app, cl.run, nil
}

// Run — запускает HTTP-серверы и консьюмера; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	// Запуск консьюмера.
	if a.KafkaConsumer != nil {
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-серверов.
	for _, srv := range a.servers() {
		go func(srv *http.Server) {
			a.Logger.Infof(ctx, "http server starting (addr=%s)", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv)
	}

	// Ожидание сигнала остановки или фоновой ошибки.
	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Errorf(ctx, "background error: %v", err)
			runErr = err
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-серверов.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	for _, srv := range a.servers() {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warnf(ctx, "http server shutdown failed addr=%s: %v", srv.Addr, err)
		} else {
			a.Logger.Infof(ctx, "http server stopped gracefully addr=%s", srv.Addr)
		}
	}

	// Остановка Kafka-консьюмера
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return runErr
}

func (a *App) servers() []*http.Server {
	out := []*http.Server{a.HTTPServer}
	if a.MetricsServer != nil {
		out = append(out, a.MetricsServer)
	}
	return out
}
