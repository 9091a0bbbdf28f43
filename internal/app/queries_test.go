package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

func newRedisCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestListHotels_FiltersRoomsNotHotels(t *testing.T) {
	store := newMemStore()
	store.seedSample()
	q := app.NewQueryService(store, nil, time.Minute)
	ctx := context.Background()

	all, err := q.ListHotels(ctx, domain.HotelFilter{})
	if err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Fatalf("want hotels 1,2 in order, got %+v", all)
	}

	big, _ := q.ListHotels(ctx, domain.HotelFilter{MinGuests: 3})
	if len(big) != 2 {
		t.Fatalf("minGuests must keep every hotel, got %d", len(big))
	}
	if len(big[0].Rooms) != 1 || big[0].Rooms[0].ID != 12 {
		t.Fatalf("want only room 12, got %+v", big[0].Rooms)
	}
	if big[1].Rooms == nil || len(big[1].Rooms) != 0 {
		t.Fatalf("hotel without rooms should carry an empty list, got %#v", big[1].Rooms)
	}

	byCity, _ := q.ListHotels(ctx, domain.HotelFilter{Location: "Budapest"})
	if len(byCity) != 1 || byCity[0].Name != "The Grand Budapest" {
		t.Fatalf("location filter: %+v", byCity)
	}
	if lower, _ := q.ListHotels(ctx, domain.HotelFilter{Location: "budapest"}); len(lower) != 0 {
		t.Fatalf("location filter is case-sensitive, got %+v", lower)
	}
}

func TestGetHotel_NotFound(t *testing.T) {
	q := app.NewQueryService(newMemStore(), nil, time.Minute)
	if _, err := q.GetHotel(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGetHotel_CacheMissThenHit(t *testing.T) {
	store := newMemStore()
	store.seedSample()
	cache, _ := newRedisCache(t)
	q := app.NewQueryService(store, cache, 10*time.Minute)
	ctx := context.Background()

	h, err := q.GetHotel(ctx, 1)
	if err != nil || h.Name != "The Grand Budapest" || len(h.Rooms) != 2 {
		t.Fatalf("miss: %+v %v", h, err)
	}

	// mutate the store; the second read must come from cache
	store.hotels[1] = domain.Hotel{ID: 1, Name: "SHOULD NOT SEE THIS"}
	h2, err := q.GetHotel(ctx, 1)
	if err != nil || h2.Name != "The Grand Budapest" {
		t.Fatalf("hit: %+v %v", h2, err)
	}
	if store.getCalls != 1 {
		t.Fatalf("repo called %d times, want 1", store.getCalls)
	}
}

func TestListHotels_CacheExpires(t *testing.T) {
	store := newMemStore()
	store.seedSample()
	cache, mr := newRedisCache(t)
	q := app.NewQueryService(store, cache, time.Minute)
	ctx := context.Background()

	if _, err := q.ListHotels(ctx, domain.HotelFilter{Location: "Swiss"}); err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if _, err := q.ListHotels(ctx, domain.HotelFilter{Location: "Swiss"}); err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("second read should hit cache, repo calls = %d", store.listCalls)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := q.ListHotels(ctx, domain.HotelFilter{Location: "Swiss"}); err != nil {
		t.Fatalf("ListHotels: %v", err)
	}
	if store.listCalls != 2 {
		t.Fatalf("expired entry should reload, repo calls = %d", store.listCalls)
	}
}

func TestQueries_CacheFailureFallsThrough(t *testing.T) {
	store := newMemStore()
	store.seedSample()
	q := app.NewQueryService(store, failingCache{}, time.Minute)

	hs, err := q.ListHotels(context.Background(), domain.HotelFilter{})
	if err != nil || len(hs) != 2 {
		t.Fatalf("ListHotels with broken cache: %+v %v", hs, err)
	}
}

func TestListHotels_RepoErrorSurfaces(t *testing.T) {
	store := newMemStore()
	store.failList = errors.New("db gone")
	q := app.NewQueryService(store, nil, time.Minute)
	if _, err := q.ListHotels(context.Background(), domain.HotelFilter{}); err == nil {
		t.Fatal("expected repo error")
	}
}

func TestListHotels_ConcurrentReaders(t *testing.T) {
	store := newMemStore()
	store.seedSample()
	cache, _ := newRedisCache(t)
	q := app.NewQueryService(store, cache, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hs, err := q.ListHotels(context.Background(), domain.HotelFilter{MinGuests: 2})
			if err != nil || len(hs) != 2 {
				t.Errorf("ListHotels: %d hotels, %v", len(hs), err)
			}
		}()
	}
	wg.Wait()
}

// blockingStore holds GetHotel until release is closed, failing if the
// context it was given ends first.
type blockingStore struct {
	*memStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return domain.Hotel{}, ctx.Err()
	}
	return b.memStore.GetHotel(ctx, id)
}

func TestGetHotel_CancelledCallerDoesNotFailOthers(t *testing.T) {
	store := newMemStore()
	store.seedSample()
	bs := &blockingStore{memStore: store, started: make(chan struct{}), release: make(chan struct{})}
	q := app.NewQueryService(bs, nil, time.Minute)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := q.GetHotel(ctxA, 1)
		errA <- err
	}()
	<-bs.started

	type result struct {
		h   domain.Hotel
		err error
	}
	resB := make(chan result, 1)
	go func() {
		h, err := q.GetHotel(context.Background(), 1)
		resB <- result{h, err}
	}()

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: want context.Canceled, got %v", err)
	}
	close(bs.release)

	select {
	case r := <-resB:
		if r.err != nil || r.h.Name != "The Grand Budapest" {
			t.Fatalf("other caller: %+v %v", r.h, r.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("other caller never returned")
	}
}
