package app

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/domain"
)

//go:embed seed_hotels.json
var seedHotelsJSON []byte

// seedHotel keeps the fixed ids of the sample catalog so a fresh database
// always exposes the same hotel and room ids.
type seedHotel struct {
	ID int64 `json:"id"`
	domain.HotelInput
	Rooms []seedRoom `json:"rooms"`
}

type seedRoom struct {
	ID int64 `json:"id"`
	domain.RoomInput
}

// SeedCatalog parses the embedded sample catalog.
func SeedCatalog() ([]domain.Hotel, error) {
	var raw []seedHotel
	if err := json.Unmarshal(seedHotelsJSON, &raw); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	out := make([]domain.Hotel, 0, len(raw))
	for _, sh := range raw {
		in := trimHotelInput(sh.HotelInput)
		if err := validateStruct(in); err != nil {
			return nil, fmt.Errorf("seed hotel %d: %w", sh.ID, err)
		}
		h := hotelFromInput(in)
		h.ID = sh.ID
		for _, sr := range sh.Rooms {
			rin := trimRoomInput(sr.RoomInput)
			if err := validateStruct(rin); err != nil {
				return nil, fmt.Errorf("seed room %d: %w", sr.ID, err)
			}
			r := roomFromInput(h.ID, rin)
			r.ID = sr.ID
			h.Rooms = append(h.Rooms, r)
		}
		out = append(out, h)
	}
	return out, nil
}

type Seeder struct {
	repo    domain.HotelRepository
	workers int64
}

func NewSeeder(r domain.HotelRepository, workers int) *Seeder {
	if workers < 1 {
		workers = 1
	}
	return &Seeder{repo: r, workers: int64(workers)}
}

// SeedIfEmpty inserts the sample catalog when no hotel exists yet and
// reports how many hotels it wrote. Hotels are written concurrently, at
// most `workers` at a time, each together with its rooms. If any hotel
// fails the hotels already written are removed again, so a later call
// starts from an empty catalog.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (int, error) {
	n, err := s.repo.CountHotels(ctx)
	if err != nil {
		return 0, fmt.Errorf("count hotels: %w", err)
	}
	if n > 0 {
		log.Info().Int("hotels", n).Msg("catalog present, seeding skipped")
		return 0, nil
	}

	hotels, err := SeedCatalog()
	if err != nil {
		return 0, err
	}

	sem := semaphore.NewWeighted(s.workers)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		written []int64
	)
	for _, h := range hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)
			if err := s.repo.CreateHotelWithRooms(ctx, &h); err != nil {
				log.Warn().Int64("id", h.ID).Err(err).Msg("seed hotel failed")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			mu.Lock()
			written = append(written, h.ID)
			mu.Unlock()
			log.Debug().Int64("id", h.ID).Str("name", h.Name).Msg("seeded hotel")
		}(h)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return 0, errors.Join(err, s.undo(context.WithoutCancel(ctx), written))
	}
	log.Info().Int("hotels", len(hotels)).Msg("catalog seeded")
	return len(hotels), nil
}

// undo removes partially seeded hotels; their rooms go with them.
func (s *Seeder) undo(ctx context.Context, ids []int64) error {
	var errs []error
	for _, id := range ids {
		if err := s.repo.DeleteHotel(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, fmt.Errorf("undo hotel %d: %w", id, err))
		}
	}
	if len(ids) > 0 {
		log.Warn().Int("hotels", len(ids)).Msg("partial seed rolled back")
	}
	return errors.Join(errs...)
}
