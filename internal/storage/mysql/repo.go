package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hotel_booking/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func marshalList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func unmarshalList(b []byte) ([]string, error) {
	out := []string{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode amenities: %w", err)
	}
	return out, nil
}

func scanHotel(s rowScanner) (domain.Hotel, error) {
	var h domain.Hotel
	var amen []byte
	if err := s.Scan(&h.ID, &h.Name, &h.Location, &h.Description, &h.Rating, &h.Price, &h.Image, &amen); err != nil {
		return domain.Hotel{}, err
	}
	var err error
	if h.Amenities, err = unmarshalList(amen); err != nil {
		return domain.Hotel{}, err
	}
	h.Rooms = []domain.Room{}
	return h, nil
}

func scanRoom(s rowScanner) (domain.Room, error) {
	var r domain.Room
	var amen []byte
	if err := s.Scan(&r.ID, &r.HotelID, &r.Type, &r.Price, &r.Capacity, &amen, &r.Image); err != nil {
		return domain.Room{}, err
	}
	var err error
	if r.Amenities, err = unmarshalList(amen); err != nil {
		return domain.Room{}, err
	}
	return r, nil
}

// ---- hotels & rooms ----

func (r *Repo) ListHotels(ctx context.Context, f domain.HotelFilter) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL, f.Location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Hotel{}
	index := map[int64]int{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		index[h.ID] = len(out)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	rrows, err := r.db.QueryContext(ctx, listRoomsForHotelsSQL, f.Location, f.MinGuests)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		room, err := scanRoom(rrows)
		if err != nil {
			return nil, err
		}
		// a hotel inserted between the two queries is simply not listed
		if i, ok := index[room.HotelID]; ok {
			out[i].Rooms = append(out[i].Rooms, room)
		}
	}
	return out, rrows.Err()
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Hotel{}, fmt.Errorf("%w: hotel %d", domain.ErrNotFound, id)
		}
		return domain.Hotel{}, err
	}

	rows, err := r.db.QueryContext(ctx, listRoomsByHotelSQL, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	defer rows.Close()
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return domain.Hotel{}, err
		}
		h.Rooms = append(h.Rooms, room)
	}
	return h, rows.Err()
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, getRoomSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, fmt.Errorf("%w: room %d", domain.ErrNotFound, id)
		}
		return domain.Room{}, err
	}
	return room, nil
}

func (r *Repo) CountHotels(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countHotelsSQL).Scan(&n)
	return n, err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertHotel(ctx context.Context, ex execer, h *domain.Hotel) error {
	amen, err := marshalList(h.Amenities)
	if err != nil {
		return err
	}
	res, err := ex.ExecContext(ctx, insertHotelSQL,
		h.ID, h.Name, h.Location, h.Description, h.Rating, h.Price, h.Image, amen)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

func insertRoom(ctx context.Context, ex execer, room *domain.Room) error {
	amen, err := marshalList(room.Amenities)
	if err != nil {
		return err
	}
	res, err := ex.ExecContext(ctx, insertRoomSQL,
		room.ID, room.HotelID, room.Type, room.Price, room.Capacity, amen, room.Image)
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = id
	return nil
}

func (r *Repo) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	if err := insertHotel(ctx, r.db, h); err != nil {
		return err
	}
	if h.Rooms == nil {
		h.Rooms = []domain.Room{}
	}
	return nil
}

// CreateHotelWithRooms writes the hotel and its nested rooms in one
// transaction; on any error nothing is kept.
func (r *Repo) CreateHotelWithRooms(ctx context.Context, h *domain.Hotel) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if err = insertHotel(ctx, tx, h); err != nil {
		return fmt.Errorf("hotel %d: %w", h.ID, err)
	}
	for i := range h.Rooms {
		h.Rooms[i].HotelID = h.ID
		if err = insertRoom(ctx, tx, &h.Rooms[i]); err != nil {
			return fmt.Errorf("room %d: %w", h.Rooms[i].ID, err)
		}
	}
	if h.Rooms == nil {
		h.Rooms = []domain.Room{}
	}
	return nil
}

func (r *Repo) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	amen, err := marshalList(h.Amenities)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, updateHotelSQL,
		h.Name, h.Location, h.Description, h.Rating, h.Price, h.Image, amen, h.ID)
	if err != nil {
		return classify(err)
	}
	// an unchanged row reports zero affected rows, so existence is checked separately
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetHotel(ctx, h.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, deleteHotelSQL, "hotel", id)
}

func (r *Repo) CreateRoom(ctx context.Context, room *domain.Room) error {
	return insertRoom(ctx, r.db, room)
}

func (r *Repo) UpdateRoom(ctx context.Context, room domain.Room) error {
	amen, err := marshalList(room.Amenities)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, updateRoomSQL,
		room.Type, room.Price, room.Capacity, amen, room.Image, room.ID)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetRoom(ctx, room.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) DeleteRoom(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, deleteRoomSQL, "room", id)
}

func (r *Repo) deleteByID(ctx context.Context, query, what string, id int64) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", domain.ErrNotFound, what, id)
	}
	return nil
}

// ---- users ----

func scanUser(s rowScanner) (domain.User, error) {
	var u domain.User
	var role string
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Role))
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	return u, err
}

func (r *Repo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	return u, err
}

// ---- bookings ----

func (r *Repo) CreateBooking(ctx context.Context, b *domain.Booking) error {
	if b.Status == "" {
		b.Status = domain.BookingConfirmed
	}
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID, b.UserID, b.HotelID, b.RoomID,
		b.FirstName, b.LastName, b.Email, b.Phone,
		b.CheckIn.Format(domain.DateLayout), b.CheckOut.Format(domain.DateLayout),
		string(b.Status), b.TotalPrice, b.CreatedAt.UTC(),
	)
	return classify(err)
}

func (r *Repo) ListBookingsByEmail(ctx context.Context, email string) ([]domain.BookingView, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsByEmailSQL, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BookingView{}
	for rows.Next() {
		var v domain.BookingView
		var status string
		if err := rows.Scan(&v.ID, &v.HotelName, &v.Location, &v.CheckIn.Time, &v.CheckOut.Time,
			&v.RoomType, &v.Price, &status, &v.Image); err != nil {
			return nil, err
		}
		v.Status = domain.BookingStatus(status)
		out = append(out, v)
	}
	return out, rows.Err()
}
