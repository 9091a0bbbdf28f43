package app_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hotel_booking/internal/domain"
)

// ---- in-memory store ----

// memStore implements the hotel, user and booking repositories with the
// same referential rules as the MySQL schema.
type memStore struct {
	mu       sync.Mutex
	hotels   map[int64]domain.Hotel
	rooms    map[int64]domain.Room
	users    map[int64]domain.User
	bookings []domain.Booking
	nextID   int64

	listCalls int
	getCalls  int
	failList  error

	// failHotel makes the next CreateHotelWithRooms for that hotel id
	// fail with failErr after its rooms were checked.
	failHotel int64
	failErr   error
}

func newMemStore() *memStore {
	return &memStore{
		hotels: map[int64]domain.Hotel{},
		rooms:  map[int64]domain.Room{},
		users:  map[int64]domain.User{},
		nextID: 1000,
	}
}

func (m *memStore) id(fixed int64) int64 {
	if fixed != 0 {
		return fixed
	}
	m.nextID++
	return m.nextID
}

func copyList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func (m *memStore) roomsOf(hotelID int64, minGuests int) []domain.Room {
	out := []domain.Room{}
	for _, r := range m.rooms {
		if r.HotelID == hotelID && r.Capacity >= minGuests {
			r.Amenities = copyList(r.Amenities)
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ListHotels(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.failList != nil {
		return nil, m.failList
	}
	out := []domain.Hotel{}
	for _, h := range m.hotels {
		if !strings.Contains(h.Location, f.Location) {
			continue
		}
		h.Amenities = copyList(h.Amenities)
		h.Rooms = m.roomsOf(h.ID, f.MinGuests)
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	h, ok := m.hotels[id]
	if !ok {
		return domain.Hotel{}, fmt.Errorf("%w: hotel %d", domain.ErrNotFound, id)
	}
	h.Amenities = copyList(h.Amenities)
	h.Rooms = m.roomsOf(id, 0)
	return h, nil
}

func (m *memStore) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, fmt.Errorf("%w: room %d", domain.ErrNotFound, id)
	}
	return r, nil
}

func (m *memStore) CountHotels(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hotels), nil
}

func (m *memStore) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = m.id(h.ID)
	if _, dup := m.hotels[h.ID]; dup {
		return fmt.Errorf("%w: hotel %d", domain.ErrConflict, h.ID)
	}
	stored := *h
	stored.Rooms = nil
	m.hotels[h.ID] = stored
	return nil
}

func (m *memStore) CreateHotelWithRooms(ctx context.Context, h *domain.Hotel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.ID != 0 {
		if _, dup := m.hotels[h.ID]; dup {
			return fmt.Errorf("%w: hotel %d", domain.ErrConflict, h.ID)
		}
	}
	for _, r := range h.Rooms {
		if _, dup := m.rooms[r.ID]; r.ID != 0 && dup {
			return fmt.Errorf("%w: room %d", domain.ErrConflict, r.ID)
		}
	}
	if m.failErr != nil && h.ID == m.failHotel {
		err := m.failErr
		m.failErr = nil
		return err
	}
	h.ID = m.id(h.ID)
	for i := range h.Rooms {
		h.Rooms[i].ID = m.id(h.Rooms[i].ID)
		h.Rooms[i].HotelID = h.ID
		m.rooms[h.Rooms[i].ID] = h.Rooms[i]
	}
	stored := *h
	stored.Rooms = nil
	m.hotels[h.ID] = stored
	return nil
}

func (m *memStore) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hotels[h.ID]; !ok {
		return domain.ErrNotFound
	}
	h.Rooms = nil
	m.hotels[h.ID] = h
	return nil
}

func (m *memStore) DeleteHotel(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hotels[id]; !ok {
		return fmt.Errorf("%w: hotel %d", domain.ErrNotFound, id)
	}
	for _, b := range m.bookings {
		if b.HotelID == id {
			return fmt.Errorf("%w: hotel has bookings", domain.ErrConflict)
		}
	}
	for rid, r := range m.rooms {
		if r.HotelID == id {
			delete(m.rooms, rid)
		}
	}
	delete(m.hotels, id)
	return nil
}

func (m *memStore) CreateRoom(ctx context.Context, r *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hotels[r.HotelID]; !ok {
		return fmt.Errorf("%w: hotel %d", domain.ErrNotFound, r.HotelID)
	}
	r.ID = m.id(r.ID)
	m.rooms[r.ID] = *r
	return nil
}

func (m *memStore) UpdateRoom(ctx context.Context, r domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.ID]; !ok {
		return domain.ErrNotFound
	}
	m.rooms[r.ID] = r
	return nil
}

func (m *memStore) DeleteRoom(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return fmt.Errorf("%w: room %d", domain.ErrNotFound, id)
	}
	for _, b := range m.bookings {
		if b.RoomID == id {
			return fmt.Errorf("%w: room has bookings", domain.ErrConflict)
		}
	}
	delete(m.rooms, id)
	return nil
}

func (m *memStore) CreateUser(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: duplicate email", domain.ErrConflict)
		}
	}
	u.ID = m.id(0)
	u.CreatedAt = time.Now().UTC()
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.ID == b.ID {
			return fmt.Errorf("%w: duplicate booking id", domain.ErrConflict)
		}
	}
	m.bookings = append(m.bookings, *b)
	return nil
}

func (m *memStore) ListBookingsByEmail(ctx context.Context, email string) ([]domain.BookingView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.BookingView{}
	for i := len(m.bookings) - 1; i >= 0; i-- {
		b := m.bookings[i]
		if b.Email != email {
			continue
		}
		h, r := m.hotels[b.HotelID], m.rooms[b.RoomID]
		out = append(out, domain.BookingView{
			ID: b.ID, HotelName: h.Name, Location: h.Location,
			CheckIn: b.CheckIn, CheckOut: b.CheckOut, RoomType: r.Type,
			Price: b.TotalPrice, Status: b.Status, Image: h.Image,
		})
	}
	return out, nil
}

// seedSample stores one hotel with two rooms: 11 (capacity 2, 100/night)
// and 12 (capacity 4, 250/night).
func (m *memStore) seedSample() {
	m.hotels[1] = domain.Hotel{ID: 1, Name: "The Grand Budapest", Location: "Budapest, Hungary",
		Description: "d", Rating: 4.8, Price: 350, Image: "img", Amenities: []string{"Spa"}}
	m.hotels[2] = domain.Hotel{ID: 2, Name: "Alpine Lodge", Location: "Swiss Alps",
		Description: "d", Rating: 4.7, Price: 420, Image: "img2", Amenities: []string{}}
	m.rooms[11] = domain.Room{ID: 11, HotelID: 1, Type: "Deluxe King Room", Price: 100, Capacity: 2, Image: "r", Amenities: []string{}}
	m.rooms[12] = domain.Room{ID: 12, HotelID: 1, Type: "Presidential Suite", Price: 250, Capacity: 4, Image: "r", Amenities: []string{}}
}

// ---- publisher ----

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BookingConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingConfirmed(ctx context.Context, ev domain.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

// ---- caches ----

// failingCache errors on every call; reads must fall through to the store.
type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	return false, errCacheDown
}
func (failingCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	return errCacheDown
}
func (failingCache) Del(ctx context.Context, keys ...string) error      { return errCacheDown }
func (failingCache) DelPrefix(ctx context.Context, prefix string) error { return errCacheDown }
