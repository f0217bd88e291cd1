//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	cachemem "github.com/Gunvolt24/salesops/internal/cache/memory"
	"github.com/Gunvolt24/salesops/internal/domain"
	ikafka "github.com/Gunvolt24/salesops/internal/kafka"
	"github.com/Gunvolt24/salesops/internal/ports"
	pgrepo "github.com/Gunvolt24/salesops/internal/repo/postgres"
	"github.com/Gunvolt24/salesops/internal/testutil"
	"github.com/Gunvolt24/salesops/internal/usecase"
	"github.com/Gunvolt24/salesops/pkg/logger"
	"github.com/Gunvolt24/salesops/pkg/validate"
)

var reUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func safe(t *testing.T) string { return reUnsafe.ReplaceAllString(t.Name(), "-") }

type stack struct {
	ctx    context.Context
	pool   *pgxpool.Pool
	stores ports.Stores
	svc    *usecase.OrderService
	log    ports.Logger
	kf     *testutil.KafkaEnv
}

// placementJSON — сообщение топика размещений.
func placementJSON(t *testing.T, id, salespersonID, clientID, productID string, qty int) []byte {
	t.Helper()
	raw, err := json.Marshal(domain.Placement{
		SalespersonID: salespersonID,
		OrderInput: domain.OrderInput{
			ID:       id,
			ClientID: clientID,
			Items:    []domain.LineItem{{ProductID: productID, Quantity: qty}},
		},
	})
	require.NoError(t, err)
	return raw
}

// seed — продавец, его клиент и товар с остатком stock.
func seed(t *testing.T, st *stack, stock int) (sp string, client domain.Client, product domain.Product) {
	t.Helper()
	sp = "sp-" + testutil.UniqSuffix()
	client = testutil.MakeClient(sp)
	product = testutil.MakeProduct(stock, 250)
	require.NoError(t, st.stores.Clients.Create(st.ctx, &client))
	require.NoError(t, st.stores.Products.Create(st.ctx, &product))
	return sp, client, product
}

func startConsumer(t *testing.T, st *stack, startOffset string, saver interface {
	PlaceFromMessage(ctx context.Context, raw []byte) error
}) (topic string) {
	t.Helper()
	topic, group, err := st.kf.NewTopic(st.ctx, safe(t))
	require.NoError(t, err)

	consumer := ikafka.NewConsumer(&ikafka.ConsumerConfig{
		Brokers:        st.kf.Brokers,
		Topic:          topic,
		GroupID:        group,
		StartOffset:    startOffset,
		ProcessTimeout: 5 * time.Second,
		RetryInitial:   200 * time.Millisecond,
		RetryMax:       2 * time.Second,
	}, saver, st.log)

	runCtx, cancelRun := context.WithCancel(st.ctx)
	t.Cleanup(func() {
		cancelRun()
		_ = consumer.Close()
	})
	go func() { _ = consumer.Run(runCtx) }()

	// даём консьюмеру присоединиться к группе/получить assignment
	time.Sleep(1500 * time.Millisecond)
	return topic
}

func waitOrder(t *testing.T, st *stack, id string) *domain.Order {
	t.Helper()
	deadline := time.Now().Add(20 * time.Second)
	for {
		got, err := st.stores.Orders.GetByID(st.ctx, id)
		require.NoError(t, err)
		if got != nil {
			return got
		}
		if time.Now().After(deadline) {
			t.Fatalf("order %s not placed in time", id)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func stockOf(t *testing.T, st *stack, productID string) int {
	t.Helper()
	p, err := st.stores.Products.GetByID(st.ctx, productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

// 1) Размещение из Kafka проводится через движок: заказ создан, остаток списан
func TestKafka_Placement_Fulfilled_TC(t *testing.T) {
	st := newStack(t)
	sp, client, product := seed(t, st, 10)
	topic := startConsumer(t, st, "first", st.svc)

	id := uuid.NewString()
	writeMsg(t, st.ctx, st.kf.Brokers, topic, placementJSON(t, id, sp, client.ID, product.ID, 4))

	got := waitOrder(t, st, id)
	require.Equal(t, sp, got.SalespersonID)
	require.Equal(t, domain.StatusPending, got.Status)
	require.Equal(t, int64(1000), got.Total)
	require.Equal(t, 6, stockOf(t, st, product.ID))
}

// 2) Мусор и отклонённые размещения пропускаются, следующее валидное проводится
func TestKafka_Skip_Rejected_Then_PlaceValid_TC(t *testing.T) {
	st := newStack(t)
	sp, client, product := seed(t, st, 3)
	topic := startConsumer(t, st, "first", st.svc)

	tooMuch := uuid.NewString()
	foreign := uuid.NewString()
	writeMsg(t, st.ctx, st.kf.Brokers, topic, []byte("not-a-json"))
	writeMsg(t, st.ctx, st.kf.Brokers, topic, placementJSON(t, tooMuch, sp, client.ID, product.ID, 99))
	writeMsg(t, st.ctx, st.kf.Brokers, topic, placementJSON(t, foreign, "someone-else", client.ID, product.ID, 1))

	ok := uuid.NewString()
	writeMsg(t, st.ctx, st.kf.Brokers, topic, placementJSON(t, ok, sp, client.ID, product.ID, 2))

	waitOrder(t, st, ok)
	for _, id := range []string{tooMuch, foreign} {
		got, err := st.stores.Orders.GetByID(st.ctx, id)
		require.NoError(t, err)
		require.Nil(t, got)
	}
	require.Equal(t, 1, stockOf(t, st, product.ID))
}

// 3) StartOffset="last": сообщения, опубликованные до старта консьюмера, игнорируются
func TestKafka_StartOffset_Last_IgnoresOld_TC(t *testing.T) {
	st := newStack(t)
	sp, client, product := seed(t, st, 100)

	topic, group, err := st.kf.NewTopic(st.ctx, "last-"+safe(t))
	require.NoError(t, err)

	old := uuid.NewString()
	writeMsg(t, st.ctx, st.kf.Brokers, topic, placementJSON(t, old, sp, client.ID, product.ID, 1))

	consumer := ikafka.NewConsumer(&ikafka.ConsumerConfig{
		Brokers:     st.kf.Brokers,
		Topic:       topic,
		GroupID:     group,
		StartOffset: "last",
	}, st.svc, st.log)
	runCtx, cancelRun := context.WithCancel(st.ctx)
	defer cancelRun()
	go func() { _ = consumer.Run(runCtx) }()

	// Публикуем новое, пока оно не появится: одно из повторов окажется после
	// базовой позиции консьюмера, а остальные отсекутся по id.
	fresh := uuid.NewString()
	raw := placementJSON(t, fresh, sp, client.ID, product.ID, 1)

	deadline := time.Now().Add(20 * time.Second)
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	for {
		writeMsg(t, st.ctx, st.kf.Brokers, topic, raw)

		got, err := st.stores.Orders.GetByID(st.ctx, fresh)
		require.NoError(t, err)
		if got != nil {
			gotOld, err := st.stores.Orders.GetByID(st.ctx, old)
			require.NoError(t, err)
			require.Nil(t, gotOld)
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("new order %s not placed in time", fresh)
		}
		<-ticker.C
	}
}

// 4) At-least-once через рестарт: временная ошибка без коммита — передоставка после перезапуска
func TestKafka_Redelivery_AfterRestart_NoCommit_TC(t *testing.T) {
	st := newStack(t)
	sp, client, product := seed(t, st, 5)

	topic, group, err := st.kf.NewTopic(st.ctx, "redelivery-"+safe(t))
	require.NoError(t, err)

	id := uuid.NewString()
	writeMsg(t, st.ctx, st.kf.Brokers, topic, placementJSON(t, id, sp, client.ID, product.ID, 5))

	// Фаза 1: всегда временная ошибка => оффсет НЕ коммитится
	failing := ikafka.NewConsumer(&ikafka.ConsumerConfig{
		Brokers:        st.kf.Brokers,
		Topic:          topic,
		GroupID:        group,
		StartOffset:    "first",
		ProcessTimeout: 300 * time.Millisecond,
		RetryInitial:   100 * time.Millisecond,
		RetryMax:       300 * time.Millisecond,
	}, alwaysTempFailSaver{}, st.log)

	runCtx1, cancelRun1 := context.WithCancel(st.ctx)
	go func() { _ = failing.Run(runCtx1) }()
	time.Sleep(2 * time.Second)
	cancelRun1()
	_ = failing.Close()

	// Фаза 2: та же группа, настоящий движок — перехватываем некоммиченное
	healthy := ikafka.NewConsumer(&ikafka.ConsumerConfig{
		Brokers:     st.kf.Brokers,
		Topic:       topic,
		GroupID:     group,
		StartOffset: "first",
	}, st.svc, st.log)
	runCtx2, cancelRun2 := context.WithCancel(st.ctx)
	defer cancelRun2()
	go func() { _ = healthy.Run(runCtx2) }()

	waitOrder(t, st, id)
	require.Equal(t, 0, stockOf(t, st, product.ID))
}

// 5) Идемпотентность: один и тот же размещённый заказ дважды — остаток списан один раз
func TestKafka_Idempotent_DuplicateMessage_TC(t *testing.T) {
	st := newStack(t)
	sp, client, product := seed(t, st, 10)
	topic := startConsumer(t, st, "first", st.svc)

	id := uuid.NewString()
	raw := placementJSON(t, id, sp, client.ID, product.ID, 3)
	writeMsg(t, st.ctx, st.kf.Brokers, topic, raw)
	writeMsg(t, st.ctx, st.kf.Brokers, topic, raw)

	// маркер: после него дубликат гарантированно разобран
	marker := uuid.NewString()
	writeMsg(t, st.ctx, st.kf.Brokers, topic, placementJSON(t, marker, sp, client.ID, product.ID, 1))

	got := waitOrder(t, st, id)
	require.Len(t, got.Items, 1)
	waitOrder(t, st, marker)
	require.Equal(t, 6, stockOf(t, st, product.ID))
}

// -----------------функции-помощники-----------------

func newStack(t *testing.T) *stack {
	t.Helper()

	// Длинный контекст — на контейнеры
	ctxStart, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancelStart)

	pg, stopPG, err := testutil.StartPostgresTC(ctxStart)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopPG(context.Background()) })
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	kf, stopKF, err := testutil.StartKafkaTC(ctxStart, "orders-itc")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stopKF(context.Background()) })

	// Короткий контекст — сам тест
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	t.Cleanup(cancel)

	pool, err := pgrepo.NewPool(ctx, pg.DSN, 10)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	logg, closer, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer() })

	stores := pgrepo.NewStores(pool)
	svc := usecase.NewOrderService(
		stores, pgrepo.NewTxManager(pool),
		cachemem.NewLRUCacheTTL(100, time.Minute), logg, validate.NewValidator(),
	)
	return &stack{ctx: ctx, pool: pool, stores: stores, svc: svc, log: logg, kf: kf}
}

func writeMsg(t *testing.T, ctx context.Context, brokers []string, topic string, payload []byte) {
	t.Helper()
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
	}
	defer w.Close()
	require.NoError(t, w.WriteMessages(ctx, kafka.Message{Value: payload}))
}

// временная "сетеподобная" ошибка
type tempNetErr struct{}

func (tempNetErr) Error() string   { return "temporary failure" }
func (tempNetErr) Temporary() bool { return true }
func (tempNetErr) Timeout() bool   { return true } // как у net.Error

type alwaysTempFailSaver struct{}

func (alwaysTempFailSaver) PlaceFromMessage(context.Context, []byte) error {
	return tempNetErr{}
}
