package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

const (
	bookingIDPrefix = "BK-"
	bookingIDLen    = 9
	idAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	publishTimeout  = 2 * time.Second
)

// NewBookingID returns "BK-" followed by nine random base36 characters.
func NewBookingID() (string, error) {
	var b strings.Builder
	b.Grow(len(bookingIDPrefix) + bookingIDLen)
	b.WriteString(bookingIDPrefix)
	base := big.NewInt(int64(len(idAlphabet)))
	for range bookingIDLen {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		b.WriteByte(idAlphabet[n.Int64()])
	}
	return b.String(), nil
}

type BookingService struct {
	hotels   domain.HotelRepository
	bookings domain.BookingRepository
	events   domain.EventPublisher
	newID    func() (string, error)
	now      func() time.Time
}

func NewBookingService(h domain.HotelRepository, b domain.BookingRepository, ev domain.EventPublisher) *BookingService {
	return &BookingService{hotels: h, bookings: b, events: ev, newID: NewBookingID, now: time.Now}
}

// WithIDGenerator swaps the booking id source; tests use it for fixed ids.
func (s *BookingService) WithIDGenerator(gen func() (string, error)) *BookingService {
	s.newID = gen
	return s
}

// CreateBooking prices the stay from the room's current price and stores it
// as Confirmed. Overlapping stays on the same room are not rejected.
func (s *BookingService) CreateBooking(ctx context.Context, in domain.BookingInput, caller domain.Claims) (domain.Booking, error) {
	room, err := s.hotels.GetRoom(ctx, in.RoomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, fmt.Errorf("%w: %d", domain.ErrRoomNotFound, in.RoomID)
		}
		return domain.Booking{}, err
	}
	if in.HotelID != 0 && in.HotelID != room.HotelID {
		return domain.Booking{}, fmt.Errorf("%w: room %d does not belong to hotel %d", domain.ErrValidation, room.ID, in.HotelID)
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		in.Email = caller.Email
	}
	if err := validateStruct(in); err != nil {
		return domain.Booking{}, err
	}
	if in.CheckIn.IsZero() || in.CheckOut.IsZero() {
		return domain.Booking{}, fmt.Errorf("%w: checkIn and checkOut are required", domain.ErrValidation)
	}
	if !in.CheckOut.After(in.CheckIn.Time) {
		return domain.Booking{}, fmt.Errorf("%w: checkOut must be after checkIn", domain.ErrValidation)
	}

	id, err := s.newID()
	if err != nil {
		return domain.Booking{}, fmt.Errorf("generate booking id: %w", err)
	}
	nights := domain.Nights(in.CheckIn.Time, in.CheckOut.Time)
	b := domain.Booking{
		ID:         id,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		CheckIn:    in.CheckIn,
		CheckOut:   in.CheckOut,
		Status:     domain.BookingConfirmed,
		TotalPrice: nights * room.Price,
		UserID:     caller.UserID,
		HotelID:    room.HotelID,
		RoomID:     room.ID,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.bookings.CreateBooking(ctx, &b); err != nil {
		// a referenced user or room vanished after it was read
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, fmt.Errorf("%w: booking references a user or room that no longer exists", domain.ErrConflict)
		}
		return domain.Booking{}, err
	}
	observability.ObserveBooking(b.TotalPrice)
	s.publishConfirmed(ctx, b, room, nights)
	return b, nil
}

// publishConfirmed is best-effort: the booking is already stored.
func (s *BookingService) publishConfirmed(ctx context.Context, b domain.Booking, room domain.Room, nights int) {
	if s.events == nil {
		return
	}
	ev := domain.BookingConfirmedEvent{
		EventID:     uuid.NewString(),
		BookingID:   b.ID,
		UserID:      b.UserID,
		HotelID:     b.HotelID,
		RoomID:      b.RoomID,
		RoomType:    room.Type,
		Email:       b.Email,
		CheckIn:     b.CheckIn.String(),
		CheckOut:    b.CheckOut.String(),
		Nights:      nights,
		TotalPrice:  b.TotalPrice,
		ConfirmedAt: b.CreatedAt.Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.PublishBookingConfirmed(pctx, ev); err != nil {
		log.Warn().Err(err).Str("booking_id", b.ID).Msg("publish booking.confirmed failed")
	}
}

// ListBookingsByEmail returns every booking under email, newest first,
// joined with hotel and room details.
func (s *BookingService) ListBookingsByEmail(ctx context.Context, email string) ([]domain.BookingView, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	out, err := s.bookings.ListBookingsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.BookingView{}
	}
	return out, nil
}
