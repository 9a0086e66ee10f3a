package httpserver

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"hotel_booking/internal/domain"
)

type hotelRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	City        string `json:"city" validate:"max=120"`
	Address     string `json:"address" validate:"max=200"`
	Stars       int    `json:"stars" validate:"omitempty,min=1,max=5"`
	Description string `json:"description"`
}

func (q hotelRequest) hotel(id int64) domain.Hotel {
	return domain.Hotel{ID: id, Name: q.Name, City: q.City, Address: q.Address, Stars: q.Stars, Description: q.Description}
}

type roomRequest struct {
	HotelID       int64           `json:"hotel_id" validate:"required,gt=0"`
	Number        string          `json:"number" validate:"required,max=10"`
	Type          string          `json:"room_type" validate:"required"`
	Capacity      int             `json:"capacity" validate:"omitempty,min=1,max=65535"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Active        *bool           `json:"is_active"`
	Image         *string         `json:"image" validate:"omitempty,max=255"`
	Spaces        *string         `json:"spaces" validate:"omitempty,max=50"`
	Description   *string         `json:"description"`
}

func (q roomRequest) room(id int64) (domain.Room, error) {
	t, ok := domain.ParseRoomType(q.Type)
	if !ok {
		return domain.Room{}, invalidField("room_type", "unknown room type "+strconv.Quote(q.Type))
	}
	active := true
	if q.Active != nil {
		active = *q.Active
	}
	return domain.Room{
		ID: id, HotelID: q.HotelID, Number: q.Number, Type: t, Capacity: q.Capacity,
		PricePerNight: q.PricePerNight, Active: active,
		Image: q.Image, Spaces: q.Spaces, Description: q.Description,
	}, nil
}

type roomView struct {
	ID            int64   `json:"id"`
	HotelID       int64   `json:"hotel_id"`
	Number        string  `json:"number"`
	Type          string  `json:"room_type"`
	TypeLabel     string  `json:"room_type_label"`
	Capacity      int     `json:"capacity"`
	PricePerNight string  `json:"price_per_night"`
	Active        bool    `json:"is_active"`
	Image         *string `json:"image,omitempty"`
	Spaces        *string `json:"spaces,omitempty"`
	Description   *string `json:"description,omitempty"`
}

func toRoomView(r domain.Room) roomView {
	return roomView{
		ID: r.ID, HotelID: r.HotelID, Number: r.Number,
		Type: string(r.Type), TypeLabel: r.Type.Label(),
		Capacity: r.Capacity, PricePerNight: r.PricePerNight.StringFixed(2), Active: r.Active,
		Image: r.Image, Spaces: r.Spaces, Description: r.Description,
	}
}

func toRoomViews(rs []domain.Room) []roomView {
	out := make([]roomView, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRoomView(r))
	}
	return out
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Catalog.ListHotels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if hs == nil {
		hs = []domain.Hotel{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": hs})
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	hotel, err := h.Catalog.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, hotel)
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var req hotelRequest
	if !decode(w, r, &req) {
		return
	}
	hotel, err := h.Catalog.CreateHotel(r.Context(), req.hotel(0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req hotelRequest
	if !decode(w, r, &req) {
		return
	}
	hotel, err := h.Catalog.UpdateHotel(r.Context(), req.hotel(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Catalog.DeleteHotel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- rooms ----

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	var q domain.RoomsQuery
	if v := r.URL.Query().Get("hotel_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, invalidField("hotel_id", "must be a positive number"))
			return
		}
		q.HotelID = &id
	}
	if v := r.URL.Query().Get("room_type"); v != "" {
		t, ok := domain.ParseRoomType(v)
		if !ok {
			writeError(w, invalidField("room_type", "unknown room type "+strconv.Quote(v)))
			return
		}
		q.Type = &t
	}
	q.ActiveOnly = r.URL.Query().Get("active") == "true"

	rooms, err := h.Catalog.ListRooms(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": toRoomViews(rooms)})
}

func (h *Handlers) roomPicker(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Catalog.RoomPicker(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, map[string]any{"items": toRoomViews(rooms)})
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	room, err := h.Catalog.GetRoom(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, toRoomView(room))
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if !decode(w, r, &req) {
		return
	}
	room, err := req.room(0)
	if err != nil {
		writeError(w, err)
		return
	}
	room, err = h.Catalog.CreateRoom(r.Context(), room)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomView(room))
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req roomRequest
	if !decode(w, r, &req) {
		return
	}
	room, err := req.room(id)
	if err != nil {
		writeError(w, err)
		return
	}
	room, err = h.Catalog.UpdateRoom(r.Context(), room)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomView(room))
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Catalog.DeleteRoom(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) roomAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	in, err := queryDate(r, "check_in")
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := queryDate(r, "check_out")
	if err != nil {
		writeError(w, err)
		return
	}
	av, err := h.Reservations.Availability(r.Context(), id, in, out, ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityView(av))
}
