package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Gunvolt24/salesops/internal/domain"
)

func newOrder(id string) *domain.Order {
	return &domain.Order{
		ID:    id,
		Items: []domain.LineItem{{ProductID: "x", Quantity: 1}},
	}
}

func TestSetGet_HitMiss(t *testing.T) {
	c := NewLRUCacheTTL(2, 5*time.Minute)
	ctx := context.Background()

	// miss
	if _, ok := c.Get(ctx, "id-1"); ok {
		t.Fatalf("expected miss before Set")
	}

	// hit после Set
	_ = c.Set(ctx, newOrder("id-1"))
	got, ok := c.Get(ctx, "id-1")
	if !ok || got.ID != "id-1" {
		t.Fatalf("expected hit for id-1")
	}
}

// fakeClock — управляемые часы для проверки TTL без sleep.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestTTL_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCacheTTL(2, time.Minute, WithClock(clock.now))
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("ttl"))
	if _, ok := c.Get(ctx, "ttl"); !ok {
		t.Fatalf("expected hit right after Set")
	}

	// попадание продлевает TTL
	clock.advance(50 * time.Second)
	if _, ok := c.Get(ctx, "ttl"); !ok {
		t.Fatalf("expected hit within TTL")
	}
	clock.advance(50 * time.Second)
	if _, ok := c.Get(ctx, "ttl"); !ok {
		t.Fatalf("expected hit: TTL is sliding")
	}

	clock.advance(61 * time.Second)
	if _, ok := c.Get(ctx, "ttl"); ok {
		t.Fatalf("expected miss after TTL expires")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry must be removed, len=%d", c.Len())
	}
}

func TestSet_PrunesExpiredTail(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCacheTTL(10, time.Minute, WithClock(clock.now))
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("old-1"))
	_ = c.Set(ctx, newOrder("old-2"))
	clock.advance(2 * time.Minute)
	_ = c.Set(ctx, newOrder("fresh"))

	if c.Len() != 1 {
		t.Fatalf("expired tail must be pruned on Set, len=%d", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRUCacheTTL(2, 0) // 0 = без TTL
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("A"))
	_ = c.Set(ctx, newOrder("B"))
	// A сделать «свежим»
	if _, ok := c.Get(ctx, "A"); !ok {
		t.Fatalf("expected hit for A")
	}
	// Добавляем C — вытеснит B (самый старый)
	_ = c.Set(ctx, newOrder("C"))

	if _, ok := c.Get(ctx, "B"); ok {
		t.Fatalf("expected B to be evicted")
	}
	if _, ok := c.Get(ctx, "A"); !ok || c.ll.Len() != 2 {
		t.Fatalf("expected A & C to stay in cache")
	}
}

func TestCloneImmutability(t *testing.T) {
	c := NewLRUCacheTTL(1, 0)
	ctx := context.Background()
	orig := newOrder("Z")
	_ = c.Set(ctx, orig)

	// меняем то, что вернул Get — не должно влиять на кэш
	o1, _ := c.Get(ctx, "Z")
	o1.Items[0].ProductID = "changed"

	o2, _ := c.Get(ctx, "Z")
	if o2.Items[0].ProductID == "changed" {
		t.Fatalf("cache should return clones, not pointers to internal value")
	}
}

func TestDelete(t *testing.T) {
	c := NewLRUCacheTTL(2, 0)
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("D"))
	if err := c.Delete(ctx, "D"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Get(ctx, "D"); ok {
		t.Fatalf("expected miss after Delete")
	}
	// повторное удаление — не ошибка
	if err := c.Delete(ctx, "D"); err != nil {
		t.Fatalf("unexpected error on second Delete: %v", err)
	}
}

func TestWarmUp_CanceledContext(t *testing.T) {
	c := NewLRUCacheTTL(10, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.WarmUp(ctx, []*domain.Order{newOrder("a"), newOrder("b")})
	if err == nil {
		t.Fatalf("expected context error")
	}
	if c.ll.Len() != 0 {
		t.Fatalf("nothing must be loaded after cancel, got %d", c.ll.Len())
	}
}

func TestWarmUp_NewestStayInHead(t *testing.T) {
	c := NewLRUCacheTTL(2, 0)
	ctx := context.Background()

	// LastN отдаёт заказы от новых к старым
	if err := c.WarmUp(ctx, []*domain.Order{newOrder("newest"), newOrder("middle"), newOrder("oldest")}); err != nil {
		t.Fatalf("warm-up: %v", err)
	}

	if _, ok := c.Get(ctx, "oldest"); ok {
		t.Fatalf("oldest order must be evicted first")
	}
	for _, id := range []string{"newest", "middle"} {
		if _, ok := c.Get(ctx, id); !ok {
			t.Fatalf("expected %s in cache", id)
		}
	}
}
