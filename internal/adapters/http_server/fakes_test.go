package httpserver_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"hotel_booking/internal/domain"
)

// store is a minimal in-memory backing for the services under test.
type store struct {
	mu       sync.Mutex
	hotels   map[int64]domain.Hotel
	rooms    map[int64]domain.Room
	users    map[int64]domain.User
	bookings []domain.Booking
	next     int64
}

func newStore() *store {
	s := &store{
		hotels: map[int64]domain.Hotel{},
		rooms:  map[int64]domain.Room{},
		users:  map[int64]domain.User{},
		next:   100,
	}
	s.hotels[1] = domain.Hotel{ID: 1, Name: "The Grand Budapest", Location: "Budapest, Hungary",
		Description: "d", Rating: 4.8, Price: 350, Image: "img", Amenities: []string{}}
	s.rooms[11] = domain.Room{ID: 11, HotelID: 1, Type: "Deluxe King Room", Price: 100, Capacity: 2, Image: "r", Amenities: []string{}}
	s.rooms[12] = domain.Room{ID: 12, HotelID: 1, Type: "Presidential Suite", Price: 1200, Capacity: 4, Image: "r", Amenities: []string{}}
	return s
}

func (s *store) nextID() int64 { s.next++; return s.next }

func (s *store) roomsOf(id int64, minCap int) []domain.Room {
	out := []domain.Room{}
	for _, r := range s.rooms {
		if r.HotelID == id && r.Capacity >= minCap {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) ListHotels(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Hotel{}
	for _, h := range s.hotels {
		if strings.Contains(h.Location, f.Location) {
			h.Rooms = s.roomsOf(h.ID, f.MinGuests)
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *store) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	h.Rooms = s.roomsOf(id, 0)
	return h, nil
}

func (s *store) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *store) CountHotels(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hotels), nil
}

func (s *store) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.nextID()
	s.hotels[h.ID] = *h
	return nil
}

func (s *store) CreateHotelWithRooms(ctx context.Context, h *domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.nextID()
	for i := range h.Rooms {
		h.Rooms[i].ID = s.nextID()
		h.Rooms[i].HotelID = h.ID
		s.rooms[h.Rooms[i].ID] = h.Rooms[i]
	}
	stored := *h
	stored.Rooms = nil
	s.hotels[h.ID] = stored
	return nil
}

func (s *store) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; !ok {
		return domain.ErrNotFound
	}
	s.hotels[h.ID] = h
	return nil
}

func (s *store) DeleteHotel(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	for _, b := range s.bookings {
		if b.HotelID == id {
			return fmt.Errorf("%w: hotel has bookings", domain.ErrConflict)
		}
	}
	for rid, r := range s.rooms {
		if r.HotelID == id {
			delete(s.rooms, rid)
		}
	}
	delete(s.hotels, id)
	return nil
}

func (s *store) CreateRoom(ctx context.Context, r *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID()
	s.rooms[r.ID] = *r
	return nil
}

func (s *store) UpdateRoom(ctx context.Context, r domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
	return nil
}

func (s *store) DeleteRoom(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

func (s *store) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if e.Email == u.Email {
			return domain.ErrConflict
		}
	}
	u.ID = s.nextID()
	s.users[u.ID] = *u
	return nil
}

func (s *store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *store) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *store) CreateBooking(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[b.UserID]; !ok {
		return fmt.Errorf("%w: user %d", domain.ErrNotFound, b.UserID)
	}
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s *store) ListBookingsByEmail(ctx context.Context, email string) ([]domain.BookingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.BookingView{}
	for _, b := range s.bookings {
		if b.Email == email {
			out = append(out, domain.BookingView{ID: b.ID, HotelName: s.hotels[b.HotelID].Name,
				RoomType: s.rooms[b.RoomID].Type, CheckIn: b.CheckIn, CheckOut: b.CheckOut,
				Price: b.TotalPrice, Status: b.Status})
		}
	}
	return out, nil
}
