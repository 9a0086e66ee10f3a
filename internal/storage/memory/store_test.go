package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func day(s string) time.Time {
	t, _ := domain.ParseDate(s)
	return t
}

func seed(t *testing.T) (*Store, domain.Room) {
	t.Helper()
	ctx := context.Background()
	s := New()
	hid, err := s.CreateHotel(ctx, domain.Hotel{Name: "Costa", Stars: 4})
	require.NoError(t, err)
	room := domain.Room{HotelID: hid, Number: "101", Type: domain.RoomStandard, Capacity: 2, PricePerNight: decimal.NewFromInt(100), Active: true}
	room.ID, err = s.CreateRoom(ctx, room)
	require.NoError(t, err)
	return s, room
}

func TestWithRoomLock_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s, room := seed(t)
	boom := errors.New("boom")

	err := s.WithRoomLock(ctx, room.ID, func(tx domain.ReservationTx, _ domain.Room) error {
		_, err := tx.Insert(ctx, domain.Reservation{RoomID: room.ID, CheckIn: day("2024-05-01"), CheckOut: day("2024-05-03")})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	rs, err := s.ListReservations(ctx, domain.ReservationsQuery{IncludeCancelled: true})
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestWithRoomLock_UnknownRoom(t *testing.T) {
	s, _ := seed(t)
	err := s.WithRoomLock(context.Background(), 999, func(domain.ReservationTx, domain.Room) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOverlapping_HalfOpenAndCancelled(t *testing.T) {
	ctx := context.Background()
	s, room := seed(t)

	var keep, gone int64
	require.NoError(t, s.WithRoomLock(ctx, room.ID, func(tx domain.ReservationTx, _ domain.Room) error {
		var err error
		keep, err = tx.Insert(ctx, domain.Reservation{RoomID: room.ID, CheckIn: day("2024-05-10"), CheckOut: day("2024-05-12"), Status: domain.StatusPending})
		if err != nil {
			return err
		}
		gone, err = tx.Insert(ctx, domain.Reservation{RoomID: room.ID, CheckIn: day("2024-05-12"), CheckOut: day("2024-05-14"), Status: domain.StatusPending})
		return err
	}))
	require.NoError(t, s.SetStatus(ctx, gone, domain.StatusCancelled))

	_ = s.WithRoomLock(ctx, room.ID, func(tx domain.ReservationTx, _ domain.Room) error {
		// touching at the boundary is not an overlap
		got, err := tx.Overlapping(ctx, room.ID, day("2024-05-12"), day("2024-05-15"), 0)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = tx.Overlapping(ctx, room.ID, day("2024-05-11"), day("2024-05-13"), 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, keep, got[0].ID)

		got, err = tx.Overlapping(ctx, room.ID, day("2024-05-11"), day("2024-05-13"), keep)
		require.NoError(t, err)
		assert.Empty(t, got)
		return nil
	})
}

func TestDeleteRoom_ConflictWhileReferenced(t *testing.T) {
	ctx := context.Background()
	s, room := seed(t)
	require.NoError(t, s.WithRoomLock(ctx, room.ID, func(tx domain.ReservationTx, _ domain.Room) error {
		_, err := tx.Insert(ctx, domain.Reservation{RoomID: room.ID, CheckIn: day("2024-05-01"), CheckOut: day("2024-05-02")})
		return err
	}))

	assert.ErrorIs(t, s.DeleteRoom(ctx, room.ID), domain.ErrConflict)
	assert.ErrorIs(t, s.DeleteHotel(ctx, room.HotelID), domain.ErrConflict)
	_, err := s.GetRoom(ctx, room.ID)
	assert.NoError(t, err)
}

func TestCreateRoom_DuplicateNumber(t *testing.T) {
	s, room := seed(t)
	dup := room
	dup.ID = 0
	_, err := s.CreateRoom(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestListRooms_Order(t *testing.T) {
	ctx := context.Background()
	s := New()
	b, _ := s.CreateHotel(ctx, domain.Hotel{Name: "Bravo"})
	a, _ := s.CreateHotel(ctx, domain.Hotel{Name: "Alpha"})
	r1, _ := s.CreateRoom(ctx, domain.Room{HotelID: b, Number: "1", Type: domain.RoomStandard, Active: true})
	r2, _ := s.CreateRoom(ctx, domain.Room{HotelID: a, Number: "2", Type: domain.RoomStandard, Active: true})
	r3, _ := s.CreateRoom(ctx, domain.Room{HotelID: a, Number: "1", Type: domain.RoomStandard, Active: false})

	rooms, err := s.ListRooms(ctx, domain.RoomsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []int64{r3, r2, r1}, ids(rooms))

	rooms, err = s.ListRooms(ctx, domain.RoomsQuery{ActiveOnly: true, OrderByID: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{r1, r2}, ids(rooms))
}

func ids(rs []domain.Room) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}
