package domain

import (
	"context"
	"time"
)

type CatalogRepository interface {
	// Hotels
	CreateHotel(ctx context.Context, h Hotel) (int64, error)
	UpdateHotel(ctx context.Context, h Hotel) error
	// DeleteHotel removes the hotel and its rooms. Fails with ErrConflict while any
	// of its rooms is referenced by a reservation.
	DeleteHotel(ctx context.Context, id int64) error
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)

	// Rooms
	CreateRoom(ctx context.Context, r Room) (int64, error)
	UpdateRoom(ctx context.Context, r Room) error
	// DeleteRoom fails with ErrConflict while any reservation references the room.
	DeleteRoom(ctx context.Context, id int64) error
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context, q RoomsQuery) ([]Room, error)
}

// RoomReader is the read-only view of the catalog the engine and pricing need.
type RoomReader interface {
	GetRoom(ctx context.Context, id int64) (Room, error)
}

type ReservationRepository interface {
	GetReservation(ctx context.Context, id int64) (Reservation, error)
	ListReservations(ctx context.Context, q ReservationsQuery) ([]Reservation, error)
	SetStatus(ctx context.Context, id int64, st ReservationStatus) error

	// WithRoomLock runs fn inside one transaction that holds an exclusive lock on
	// the room row. Overlap checks and writes done through tx are atomic with
	// respect to every other writer on the same room. Returns ErrNotFound when
	// the room does not exist.
	WithRoomLock(ctx context.Context, roomID int64, fn func(tx ReservationTx, room Room) error) error
}

// ReservationTx is the write side of the reservation store, valid only inside WithRoomLock.
type ReservationTx interface {
	// Reservation reads and locks a single reservation.
	Reservation(ctx context.Context, id int64) (Reservation, error)
	// Overlapping returns non-cancelled reservations on roomID with
	// check_in < out AND check_out > in, ordered by check_in then id.
	// excludeID (when > 0) is left out of the result.
	Overlapping(ctx context.Context, roomID int64, in, out time.Time, excludeID int64) ([]Reservation, error)
	Insert(ctx context.Context, r Reservation) (int64, error)
	Update(ctx context.Context, r Reservation) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries
type RoomsQuery struct {
	HotelID    *int64
	Type       *RoomType
	ActiveOnly bool
	OrderByID  bool // default order is (hotel name, number)
}

type ReservationsQuery struct {
	OwnerID          *string
	RoomID           *int64
	HotelID          *int64
	IncludeCancelled bool
}

// Availability answers whether a room is free for a range.
type Availability struct {
	RoomID    int64        `json:"room_id"`
	CheckIn   time.Time    `json:"check_in"`
	CheckOut  time.Time    `json:"check_out"`
	Available bool         `json:"available"`
	Busy      []BusyPeriod `json:"busy,omitempty"`
}

type BusyPeriod struct {
	ReservationID int64     `json:"reservation_id,omitempty"` // staff only
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
}
