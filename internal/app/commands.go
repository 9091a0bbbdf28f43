package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

// CatalogService holds the admin writes on hotels and rooms. Every
// successful write evicts the affected hotel and all cached listings.
type CatalogService struct {
	repo  domain.HotelRepository
	cache domain.Cache
}

func NewCatalogService(r domain.HotelRepository, c domain.Cache) *CatalogService {
	return &CatalogService{repo: r, cache: c}
}

func (s *CatalogService) CreateHotel(ctx context.Context, in domain.HotelInput) (domain.Hotel, error) {
	in = trimHotelInput(in)
	if err := validateStruct(in); err != nil {
		return domain.Hotel{}, err
	}
	h := hotelFromInput(in)
	if err := s.repo.CreateHotel(ctx, &h); err != nil {
		return domain.Hotel{}, err
	}
	s.invalidate(ctx, h.ID)
	return h, nil
}

// UpdateHotel merges the patch into the stored hotel and revalidates the
// result as a whole.
func (s *CatalogService) UpdateHotel(ctx context.Context, id int64, p domain.HotelPatch) (domain.Hotel, error) {
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	p.Apply(&h)
	in := trimHotelInput(inputFromHotel(h))
	if err := validateStruct(in); err != nil {
		return domain.Hotel{}, err
	}
	merged := hotelFromInput(in)
	merged.ID, merged.Rooms = h.ID, h.Rooms
	if err := s.repo.UpdateHotel(ctx, merged); err != nil {
		return domain.Hotel{}, err
	}
	s.invalidate(ctx, id)
	return merged, nil
}

// DeleteHotel removes the hotel and its rooms. It fails with ErrConflict
// while bookings still reference the hotel.
func (s *CatalogService) DeleteHotel(ctx context.Context, id int64) error {
	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *CatalogService) CreateRoom(ctx context.Context, hotelID int64, in domain.RoomInput) (domain.Room, error) {
	in = trimRoomInput(in)
	if err := validateStruct(in); err != nil {
		return domain.Room{}, err
	}
	if _, err := s.repo.GetHotel(ctx, hotelID); err != nil {
		return domain.Room{}, err
	}
	r := roomFromInput(hotelID, in)
	if err := s.repo.CreateRoom(ctx, &r); err != nil {
		return domain.Room{}, err
	}
	s.invalidate(ctx, hotelID)
	return r, nil
}

func (s *CatalogService) UpdateRoom(ctx context.Context, id int64, p domain.RoomPatch) (domain.Room, error) {
	r, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	p.Apply(&r)
	in := trimRoomInput(domain.RoomInput{
		Type: r.Type, Price: r.Price, Capacity: r.Capacity, Amenities: r.Amenities, Image: r.Image,
	})
	if err := validateStruct(in); err != nil {
		return domain.Room{}, err
	}
	merged := roomFromInput(r.HotelID, in)
	merged.ID = r.ID
	if err := s.repo.UpdateRoom(ctx, merged); err != nil {
		return domain.Room{}, err
	}
	s.invalidate(ctx, r.HotelID)
	return merged, nil
}

// DeleteRoom fails with ErrConflict while bookings reference the room.
func (s *CatalogService) DeleteRoom(ctx context.Context, id int64) error {
	r, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, r.HotelID)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, hotelID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, hotelKey(hotelID)); err != nil {
		log.Warn().Err(err).Int64("hotel_id", hotelID).Msg("cache evict failed")
	}
	if err := s.cache.DelPrefix(ctx, hotelListPrefix); err != nil {
		log.Warn().Err(err).Msg("cache evict listings failed")
	}
}

func trimHotelInput(in domain.HotelInput) domain.HotelInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	in.Amenities = cleanList(in.Amenities)
	return in
}

func trimRoomInput(in domain.RoomInput) domain.RoomInput {
	in.Type = strings.TrimSpace(in.Type)
	in.Image = strings.TrimSpace(in.Image)
	in.Amenities = cleanList(in.Amenities)
	return in
}

// cleanList trims entries, drops blanks and never returns nil.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hotelFromInput(in domain.HotelInput) domain.Hotel {
	return domain.Hotel{
		Name:        in.Name,
		Location:    in.Location,
		Description: in.Description,
		Rating:      in.Rating,
		Price:       in.Price,
		Image:       in.Image,
		Amenities:   cleanList(in.Amenities),
		Rooms:       []domain.Room{},
	}
}

func inputFromHotel(h domain.Hotel) domain.HotelInput {
	return domain.HotelInput{
		Name:        h.Name,
		Location:    h.Location,
		Description: h.Description,
		Rating:      h.Rating,
		Price:       h.Price,
		Image:       h.Image,
		Amenities:   h.Amenities,
	}
}

func roomFromInput(hotelID int64, in domain.RoomInput) domain.Room {
	return domain.Room{
		HotelID:   hotelID,
		Type:      in.Type,
		Price:     in.Price,
		Capacity:  in.Capacity,
		Amenities: cleanList(in.Amenities),
		Image:     in.Image,
	}
}
