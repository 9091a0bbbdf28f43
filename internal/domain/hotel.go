package domain

type Hotel struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Rating      float64  `json:"rating"`
	Price       int      `json:"price"` // base price for display; stays are priced per room
	Image       string   `json:"image"`
	Amenities   []string `json:"amenities"`
	Rooms       []Room   `json:"rooms"`
}

type Room struct {
	ID        int64    `json:"id"`
	HotelID   int64    `json:"hotelId"`
	Type      string   `json:"type"`
	Price     int      `json:"price"`
	Capacity  int      `json:"capacity"`
	Amenities []string `json:"amenities"`
	Image     string   `json:"image"`
}

// HotelFilter narrows ListHotels. Location is a case-sensitive substring;
// MinGuests filters the nested rooms only, never the hotels themselves.
type HotelFilter struct {
	Location  string
	MinGuests int
}

// HotelInput is the full field set accepted when creating a hotel.
type HotelInput struct {
	Name        string   `json:"name" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=5"`
	Price       int      `json:"price" validate:"gte=0"`
	Image       string   `json:"image" validate:"required"`
	Amenities   []string `json:"amenities"`
}

// HotelPatch carries the fields of a partial hotel update; nil means unchanged.
type HotelPatch struct {
	Name        *string   `json:"name"`
	Location    *string   `json:"location"`
	Description *string   `json:"description"`
	Rating      *float64  `json:"rating"`
	Price       *int      `json:"price"`
	Image       *string   `json:"image"`
	Amenities   *[]string `json:"amenities"`
}

// Apply merges the non-nil fields of p into h.
func (p HotelPatch) Apply(h *Hotel) {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Location != nil {
		h.Location = *p.Location
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.Rating != nil {
		h.Rating = *p.Rating
	}
	if p.Price != nil {
		h.Price = *p.Price
	}
	if p.Image != nil {
		h.Image = *p.Image
	}
	if p.Amenities != nil {
		h.Amenities = *p.Amenities
	}
}

type RoomInput struct {
	Type      string   `json:"type" validate:"required"`
	Price     int      `json:"price" validate:"gte=0"`
	Capacity  int      `json:"capacity" validate:"gte=1"`
	Amenities []string `json:"amenities"`
	Image     string   `json:"image" validate:"required"`
}

type RoomPatch struct {
	Type      *string   `json:"type"`
	Price     *int      `json:"price"`
	Capacity  *int      `json:"capacity"`
	Amenities *[]string `json:"amenities"`
	Image     *string   `json:"image"`
}

func (p RoomPatch) Apply(r *Room) {
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.Capacity != nil {
		r.Capacity = *p.Capacity
	}
	if p.Amenities != nil {
		r.Amenities = *p.Amenities
	}
	if p.Image != nil {
		r.Image = *p.Image
	}
}
