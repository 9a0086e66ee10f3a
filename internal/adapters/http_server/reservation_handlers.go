package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/xlsx"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

type reservationRequest struct {
	RoomID    int64  `json:"room_id" validate:"omitempty,gt=0"`
	GuestName string `json:"guest_name" validate:"max=120"`
	CheckIn   string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut  string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Notes     string `json:"notes" validate:"max=2000"`
}

func (q reservationRequest) input() (domain.ReservationInput, error) {
	in, err := domain.ParseDate(q.CheckIn)
	if err != nil {
		return domain.ReservationInput{}, err
	}
	out, err := domain.ParseDate(q.CheckOut)
	if err != nil {
		return domain.ReservationInput{}, err
	}
	return domain.ReservationInput{RoomID: q.RoomID, GuestName: q.GuestName, CheckIn: in, CheckOut: out, Notes: q.Notes}, nil
}

type reservationView struct {
	ID        int64   `json:"id"`
	Reference string  `json:"reference"`
	RoomID    int64   `json:"room_id"`
	GuestName string  `json:"guest_name"`
	CheckIn   string  `json:"check_in"`
	CheckOut  string  `json:"check_out"`
	Nights    int     `json:"nights"`
	Notes     string  `json:"notes,omitempty"`
	Status    string  `json:"status"`
	OwnerID   *string `json:"owner_id,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toReservationView(r domain.Reservation) reservationView {
	return reservationView{
		ID: r.ID, Reference: r.Reference, RoomID: r.RoomID, GuestName: r.GuestName,
		CheckIn:   r.CheckIn.Format(domain.DateLayout),
		CheckOut:  r.CheckOut.Format(domain.DateLayout),
		Nights:    r.Nights(),
		Notes:     r.Notes,
		Status:    string(r.Status),
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type summaryView struct {
	ReservationID int64  `json:"reservation_id"`
	Nights        int    `json:"nights"`
	PricePerNight string `json:"price_per_night"`
	Subtotal      string `json:"subtotal"`
	Taxes         string `json:"taxes"`
	Discount      string `json:"discount"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
}

func toSummaryView(s app.Summary) summaryView {
	return summaryView{
		ReservationID: s.ReservationID,
		Nights:        s.Nights,
		PricePerNight: s.PricePerNight.StringFixed(2),
		Subtotal:      s.Subtotal.StringFixed(2),
		Taxes:         s.Taxes.StringFixed(2),
		Discount:      s.Discount.StringFixed(2),
		Total:         s.Total.StringFixed(2),
		Currency:      s.Currency,
	}
}

type busyView struct {
	ReservationID int64  `json:"reservation_id,omitempty"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
}

type availabilityView struct {
	RoomID    int64      `json:"room_id"`
	CheckIn   string     `json:"check_in"`
	CheckOut  string     `json:"check_out"`
	Available bool       `json:"available"`
	Busy      []busyView `json:"busy"`
}

func toAvailabilityView(a domain.Availability) availabilityView {
	v := availabilityView{
		RoomID:    a.RoomID,
		CheckIn:   a.CheckIn.Format(domain.DateLayout),
		CheckOut:  a.CheckOut.Format(domain.DateLayout),
		Available: a.Available,
		Busy:      make([]busyView, 0, len(a.Busy)),
	}
	for _, b := range a.Busy {
		v.Busy = append(v.Busy, busyView{
			ReservationID: b.ReservationID,
			CheckIn:       b.CheckIn.Format(domain.DateLayout),
			CheckOut:      b.CheckOut.Format(domain.DateLayout),
		})
	}
	return v
}

func (h *Handlers) listMyReservations(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Reservations.ListForUser(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]reservationView, 0, len(rs))
	for _, res := range rs {
		items = append(items, toReservationView(res))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) getReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Reservations.Get(r.Context(), id, ActorFrom(r.Context()))
	if err != nil {
		writeHiddenError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationView(res))
}

func (h *Handlers) reservationSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Reservations.Get(r.Context(), id, ActorFrom(r.Context()))
	if err != nil {
		writeHiddenError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryView(h.Pricing.Summarize(r.Context(), res)))
}

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.RoomID == 0 {
		writeError(w, invalidField("room_id", "is required"))
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Reservations.Create(r.Context(), in, ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/reservations/"+strconv.FormatInt(res.ID, 10))
	writeJSON(w, http.StatusCreated, toReservationView(res))
}

func (h *Handlers) updateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req reservationRequest
	if !decode(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Reservations.Update(r.Context(), id, in, ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationView(res))
}

func (h *Handlers) cancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Reservations.Cancel(r.Context(), id, ActorFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportReservations streams the actor's reservations as a workbook. Staff may
// pass room_id or hotel_id to export across owners instead.
func (h *Handlers) exportReservations(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	var q *domain.ReservationsQuery
	roomID, err := queryID(r, "room_id")
	if err != nil {
		writeError(w, err)
		return
	}
	hotelID, err := queryID(r, "hotel_id")
	if err != nil {
		writeError(w, err)
		return
	}
	if roomID != nil || hotelID != nil {
		q = &domain.ReservationsQuery{RoomID: roomID, HotelID: hotelID, IncludeCancelled: true}
	}
	lines, err := h.Export.Lines(r.Context(), actor, q)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.xlsx"`)
	if err := xlsx.WriteReservations(w, lines); err != nil {
		log.Error().Err(err).Msg("xlsx export failed")
	}
}
