package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hotel_booking/internal/domain"
)

const hotelListPrefix = "hotels:list:"

// loadTimeout bounds a shared repository load, which outlives the request
// that started it.
const loadTimeout = 10 * time.Second

func hotelKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }

func hotelListKey(f domain.HotelFilter) string {
	return fmt.Sprintf("%s%s:%d", hotelListPrefix, f.Location, f.MinGuests)
}

// QueryService serves the public catalog reads. The cache is optional;
// with a nil cache every read goes to the repository.
type QueryService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
	group    singleflight.Group
}

func NewQueryService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// ListHotels returns hotels in id order with their rooms nested. MinGuests
// drops rooms below that capacity but keeps hotels left with no rooms.
func (s *QueryService) ListHotels(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	if f.MinGuests < 0 {
		f.MinGuests = 0
	}
	key := hotelListKey(f)
	var out []domain.Hotel
	if s.cacheGet(ctx, key, &out) {
		return out, nil
	}

	v, err := s.load(ctx, key, func(ctx context.Context) (any, error) {
		hs, err := s.repo.ListHotels(ctx, f)
		if err != nil {
			return nil, err
		}
		if hs == nil {
			hs = []domain.Hotel{}
		}
		s.cacheSet(ctx, key, hs)
		return hs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Hotel), nil
}

func (s *QueryService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if s.cacheGet(ctx, key, &h) {
		return h, nil
	}

	v, err := s.load(ctx, key, func(ctx context.Context) (any, error) {
		h, err := s.repo.GetHotel(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, h)
		return h, nil
	})
	if err != nil {
		return domain.Hotel{}, err
	}
	return v.(domain.Hotel), nil
}

// load runs fn once per key for all concurrent callers. fn gets a context
// detached from any single caller; each caller still stops waiting when
// its own ctx is done.
func (s *QueryService) load(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return fn(lctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *QueryService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return ok
}

func (s *QueryService) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
