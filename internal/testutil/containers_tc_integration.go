//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/testcontainers/testcontainers-go/wait"

	pgrepo "github.com/Gunvolt24/salesops/internal/repo/postgres"
)

// Образы можно переопределить, например на зеркало в CI.
const (
	defaultPostgresImage = "postgres:16-alpine"
	defaultRedpandaImage = "docker.redpanda.com/redpandadata/redpanda:v23.3.8"
)

var tcLogger = log.New(os.Stdout, "[tc] ", log.LstdFlags)

func imageFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// lifecycle — короткий лог этапов контейнера с меткой компонента.
func lifecycle(component string) tc.ContainerLifecycleHooks {
	short := func(c tc.Container) string {
		id := c.GetContainerID()
		if len(id) > 12 {
			return id[:12]
		}
		return id
	}
	step := func(what string) tc.ContainerHook {
		return func(_ context.Context, c tc.Container) error {
			tcLogger.Printf("%s %s id=%s", component, what, short(c))
			return nil
		}
	}
	return tc.ContainerLifecycleHooks{
		PreCreates: []tc.ContainerRequestHook{
			func(_ context.Context, req tc.ContainerRequest) error {
				tcLogger.Printf("%s creating image=%s", component, req.Image)
				return nil
			},
		},
		PostStarts:     []tc.ContainerHook{step("started")},
		PostReadies:    []tc.ContainerHook{step("ready")},
		PreTerminates:  []tc.ContainerHook{step("terminating")},
		PostTerminates: []tc.ContainerHook{step("terminated")},
	}
}

// PGContainer — Postgres для интеграционных тестов и пул поверх него.
type PGContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresTC — поднимает Postgres; пул создаётся тем же конструктором, что и в сервисе.
func StartPostgresTC(ctx context.Context) (*PGContainer, func(context.Context) error, error) {
	pg, err := postgres.Run(
		ctx,
		imageFromEnv("TC_POSTGRES_IMAGE", defaultPostgresImage),
		tc.WithLifecycleHooks(lifecycle("postgres")),
		tc.WithExposedPorts("5432/tcp"),
		postgres.WithDatabase("salesops"),
		postgres.WithUsername("app"),
		postgres.WithPassword("app"),
		// лог "ready" Postgres печатает дважды: после initdb и после рестарта
		tc.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(90*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run postgres: %w", err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, nil, fmt.Errorf("conn string: %w", err)
	}

	pool, err := pgrepo.NewPool(ctx, dsn, 5)
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, nil, fmt.Errorf("new pool: %w", err)
	}

	stop := func(c context.Context) error {
		pool.Close()
		return pg.Terminate(c)
	}
	return &PGContainer{Container: pg, DSN: dsn, Pool: pool}, stop, nil
}

// KafkaEnv — Kafka-совместимый брокер (Redpanda) для тестов консьюмера размещений.
type KafkaEnv struct {
	Container *redpanda.Container
	Brokers   []string
	BaseTopic string // префикс имён топиков, см. NewTopic
}

// StartKafkaTC — поднимает Redpanda и отдаёт адрес seed-брокера.
func StartKafkaTC(ctx context.Context, baseTopic string) (*KafkaEnv, func(context.Context) error, error) {
	rp, err := redpanda.Run(
		ctx,
		imageFromEnv("TC_REDPANDA_IMAGE", defaultRedpandaImage),
		tc.WithLifecycleHooks(lifecycle("redpanda")),
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run redpanda: %w", err)
	}

	seed, err := rp.KafkaSeedBroker(ctx)
	if err != nil {
		_ = tc.TerminateContainer(rp)
		return nil, nil, fmt.Errorf("seed broker: %w", err)
	}

	env := &KafkaEnv{Container: rp, Brokers: []string{seed}, BaseTopic: baseTopic}
	stop := func(_ context.Context) error { return tc.TerminateContainer(rp) }
	return env, stop, nil
}
