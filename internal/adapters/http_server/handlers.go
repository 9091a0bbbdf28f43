package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Auth     *app.AuthService
	Q        *app.QueryService
	Bookings *app.BookingService
	Catalog  *app.CatalogService
	// AuthLimiter throttles signup and login per client IP; nil disables it.
	AuthLimiter *IPRateLimiter
	// Ready reports whether backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)

	s.mux.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if h.AuthLimiter != nil {
					r.Use(h.AuthLimiter.Middleware)
				}
				r.Post("/signup", h.signup)
				r.Post("/login", h.login)
			})
			r.With(RequireAuth(h.Auth)).Get("/me", h.me)
		})

		api.Get("/hotels", h.listHotels)
		api.Get("/hotels/{id}", h.getHotel)

		api.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.Auth))
			r.Post("/bookings", h.createBooking)
			r.Get("/bookings", h.listBookings)
		})

		api.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.Auth), RequireRole(domain.RoleAdmin))
			r.Post("/hotels", h.createHotel)
			r.Put("/hotels/{id}", h.updateHotel)
			r.Delete("/hotels/{id}", h.deleteHotel)
			r.Post("/hotels/{id}/rooms", h.createRoom)
			r.Put("/rooms/{id}", h.updateRoom)
			r.Delete("/rooms/{id}", h.deleteRoom)
		})
	})
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", domain.ErrValidation)
	}
	return id, nil
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ready(ctx); err != nil {
			writeMessage(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeMessage(w, http.StatusOK, "ready")
}

// ---- auth ----

func (h *Handlers) signup(w http.ResponseWriter, r *http.Request) {
	var in app.SignupInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Auth.Signup(r.Context(), in)
	if err != nil {
		// an already registered email is reported as a bad request
		if errors.Is(err, domain.ErrConflict) {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in app.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	c, _ := ClaimsFrom(r.Context())
	u, err := h.Auth.Me(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ---- catalog reads ----

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

// writeConditional answers 304 when If-None-Match carries the current ETag.
func writeConditional(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write catalog body failed")
	}
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.HotelFilter{Location: q.Get("city")}
	if gs := strings.TrimSpace(q.Get("guests")); gs != "" {
		g, err := strconv.Atoi(gs)
		if err != nil || g < 0 {
			writeMessage(w, http.StatusBadRequest, "guests must be a non-negative integer")
			return
		}
		f.MinGuests = g
	}
	hs, err := h.Q.ListHotels(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeConditional(w, r, hs)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		// a malformed id can never name a hotel
		writeMessage(w, http.StatusNotFound, "Hotel not found")
		return
	}
	hotel, err := h.Q.GetHotel(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Hotel not found")
			return
		}
		writeError(w, r, err)
		return
	}
	writeConditional(w, r, hotel)
}

// ---- bookings ----

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var in domain.BookingInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, _ := ClaimsFrom(r.Context())
	b, err := h.Bookings.CreateBooking(r.Context(), in, c)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeMessage(w, http.StatusNotFound, "Room not found")
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Bookings.ListBookingsByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- catalog admin ----

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.HotelInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Catalog.CreateHotel(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p domain.HotelPatch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Catalog.UpdateHotel(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Catalog.DeleteHotel(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Hotel deleted")
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.RoomInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.Catalog.CreateRoom(r.Context(), hotelID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p domain.RoomPatch
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.Catalog.UpdateRoom(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Catalog.DeleteRoom(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Room deleted")
}
