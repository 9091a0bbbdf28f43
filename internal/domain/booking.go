package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

type BookingStatus string

const BookingConfirmed BookingStatus = "Confirmed"

type Booking struct {
	ID         string        `json:"id"`
	FirstName  string        `json:"firstName"`
	LastName   string        `json:"lastName"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	CheckIn    Date          `json:"checkIn"`
	CheckOut   Date          `json:"checkOut"`
	Status     BookingStatus `json:"status"`
	TotalPrice int           `json:"totalPrice"`
	UserID     int64         `json:"userId"`
	HotelID    int64         `json:"hotelId"`
	RoomID     int64         `json:"roomId"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// BookingInput is the request body of a booking. Email falls back to the
// caller's email when empty.
type BookingInput struct {
	HotelID   int64  `json:"hotelId"`
	RoomID    int64  `json:"roomId" validate:"required"`
	CheckIn   Date   `json:"checkIn"`
	CheckOut  Date   `json:"checkOut"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"required"`
}

// BookingView is the flattened booking+hotel+room row shown in "my bookings".
type BookingView struct {
	ID        string        `json:"id"`
	HotelName string        `json:"hotelName"`
	Location  string        `json:"location"`
	CheckIn   Date          `json:"checkIn"`
	CheckOut  Date          `json:"checkOut"`
	RoomType  string        `json:"roomType"`
	Price     int           `json:"price"`
	Status    BookingStatus `json:"status"`
	Image     string        `json:"image"`
}

// Nights is the ceiling of the stay length in whole days.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// DateLayout is the wire format of check-in/check-out dates.
const DateLayout = "2006-01-02"

// Date is a calendar date. It accepts "2006-01-02" or RFC 3339 timestamps and
// always encodes as "2006-01-02".
type Date struct{ time.Time }

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return Date{t.UTC()}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: date must be a string", ErrValidation)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// BookingConfirmedEvent is published once a booking is persisted.
type BookingConfirmedEvent struct {
	EventID     string `json:"eventId"`
	BookingID   string `json:"bookingId"`
	UserID      int64  `json:"userId"`
	HotelID     int64  `json:"hotelId"`
	RoomID      int64  `json:"roomId"`
	RoomType    string `json:"roomType"`
	Email       string `json:"email"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Nights      int    `json:"nights"`
	TotalPrice  int    `json:"totalPrice"`
	ConfirmedAt string `json:"confirmedAt"`
}
