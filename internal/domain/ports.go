package domain

import (
	"context"
	"time"
)

type HotelRepository interface {
	// Read paths
	ListHotels(ctx context.Context, f HotelFilter) ([]Hotel, error)
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	CountHotels(ctx context.Context) (int, error)

	// Write paths; Create* set the generated ID on the argument.
	CreateHotel(ctx context.Context, h *Hotel) error
	// CreateHotelWithRooms stores h and h.Rooms atomically.
	CreateHotelWithRooms(ctx context.Context, h *Hotel) error
	UpdateHotel(ctx context.Context, h Hotel) error
	DeleteHotel(ctx context.Context, id int64) error
	CreateRoom(ctx context.Context, r *Room) error
	UpdateRoom(ctx context.Context, r Room) error
	DeleteRoom(ctx context.Context, id int64) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, b *Booking) error
	ListBookingsByEmail(ctx context.Context, email string) ([]BookingView, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DelPrefix(ctx context.Context, prefix string) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

type TokenIssuer interface {
	Issue(c Claims) (Token, error)
	Verify(raw string) (Claims, error)
}

type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error
}
