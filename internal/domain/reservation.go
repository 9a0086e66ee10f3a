package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	ID        int64             `json:"id"`
	Reference string            `json:"reference"`
	RoomID    int64             `json:"room_id"`
	GuestName string            `json:"guest_name"`
	CheckIn   time.Time         `json:"check_in"`
	CheckOut  time.Time         `json:"check_out"`
	Notes     string            `json:"notes"`
	OwnerID   *string           `json:"owner_id,omitempty"` // nil for anonymous/legacy reservations
	Status    ReservationStatus `json:"status"`

	// Financial overrides. Valid=false means "not set", which is distinct from an explicit zero.
	Taxes    decimal.NullDecimal `json:"taxes"`
	Discount decimal.NullDecimal `json:"discount"`
	Total    decimal.NullDecimal `json:"total"`
	Currency *string             `json:"currency,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r Reservation) Cancelled() bool { return r.Status == StatusCancelled }

// Nights is the whole-day length of the stay, never negative.
func (r Reservation) Nights() int {
	n := DaysBetween(r.CheckIn, r.CheckOut)
	if n < 0 {
		return 0
	}
	return n
}

// Overlaps reports whether r occupies any night of [in, out).
func (r Reservation) Overlaps(in, out time.Time) bool {
	return RangesOverlap(r.CheckIn, r.CheckOut, in, out)
}

// ReservationInput carries the caller-supplied fields for create and update.
type ReservationInput struct {
	RoomID    int64
	GuestName string
	CheckIn   time.Time
	CheckOut  time.Time
	Notes     string
}

// Actor is the identity handed to the engine by the identity collaborator.
type Actor struct {
	ID    string
	Name  string
	Staff bool
}

// Anonymous reports whether no identity was supplied.
func (a Actor) Anonymous() bool { return a.ID == "" }

// CanAccess is the ownership predicate: owner or staff.
func (a Actor) CanAccess(r Reservation) bool {
	if a.Staff {
		return true
	}
	return r.OwnerID != nil && a.ID != "" && *r.OwnerID == a.ID
}
