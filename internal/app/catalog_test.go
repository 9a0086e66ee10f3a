package app

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func TestCatalog_Defaults(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, domain.DefaultStars, e.hotel.Stars)
	assert.Equal(t, domain.DefaultCapacity, e.room.Capacity)
}

func TestCatalog_CreateRoomValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.catalog.CreateRoom(ctx, domain.Room{HotelID: e.hotel.ID, Number: "x", Type: domain.RoomStandard, PricePerNight: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = e.catalog.CreateRoom(ctx, domain.Room{HotelID: 999, Number: "x", Type: domain.RoomStandard, PricePerNight: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.catalog.CreateRoom(ctx, domain.Room{HotelID: e.hotel.ID, Number: "101", Type: domain.RoomStandard, PricePerNight: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCatalog_UpdateKeepsCreateDefaults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	h, err := e.catalog.UpdateHotel(ctx, domain.Hotel{ID: e.hotel.ID, Name: "Renamed", City: e.hotel.City})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStars, h.Stars)

	upd := e.room
	upd.Capacity = 0
	r, err := e.catalog.UpdateRoom(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCapacity, r.Capacity)

	got, err := e.catalog.GetRoom(ctx, e.room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCapacity, got.Capacity)
}

func TestCatalog_RejectsValuesWiderThanColumns(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.catalog.CreateRoom(ctx, domain.Room{HotelID: e.hotel.ID, Number: "ROOM-00001", Type: domain.RoomStandard, PricePerNight: decimal.NewFromInt(1)})
	require.NoError(t, err, "ten characters fit")

	_, err = e.catalog.CreateRoom(ctx, domain.Room{HotelID: e.hotel.ID, Number: "ROOM-000002", Type: domain.RoomStandard, PricePerNight: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = e.catalog.CreateRoom(ctx, domain.Room{HotelID: e.hotel.ID, Number: "B1", Type: domain.RoomStandard, PricePerNight: decimal.RequireFromString("100000000")})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = e.catalog.CreateHotel(ctx, domain.Hotel{Name: strings.Repeat("n", domain.MaxHotelName+1)})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = e.catalog.UpdateHotel(ctx, domain.Hotel{ID: e.hotel.ID, Name: "ok", Address: strings.Repeat("a", domain.MaxAddress+1)})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestCatalog_GetRoomSeesUpdates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.catalog.GetRoom(ctx, e.room.ID) // warm the cache
	require.NoError(t, err)

	upd := e.room
	upd.PricePerNight = decimal.RequireFromString("120.50")
	_, err = e.catalog.UpdateRoom(ctx, upd)
	require.NoError(t, err)

	got, err := e.catalog.GetRoom(ctx, e.room.ID)
	require.NoError(t, err)
	assert.Equal(t, "120.50", got.PricePerNight.StringFixed(2))
}

func TestCatalog_DeleteRoomRefusedWhileBooked(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.book(t, guest, "2024-05-01", "2024-05-02")

	assert.ErrorIs(t, e.catalog.DeleteRoom(ctx, e.room.ID), domain.ErrConflict)
	assert.ErrorIs(t, e.catalog.DeleteHotel(ctx, e.hotel.ID), domain.ErrConflict)

	// cancellation does not release the reference
	require.NoError(t, e.res.Cancel(ctx, r.ID, guest))
	assert.ErrorIs(t, e.catalog.DeleteRoom(ctx, e.room.ID), domain.ErrConflict)
}

func TestCatalog_DeleteHotelCascadesRooms(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.catalog.GetRoom(ctx, e.room.ID)
	require.NoError(t, err)

	require.NoError(t, e.catalog.DeleteHotel(ctx, e.hotel.ID))

	_, err = e.catalog.GetHotel(ctx, e.hotel.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.catalog.GetRoom(ctx, e.room.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalog_RoomPicker(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	price := decimal.NewFromInt(200)
	mk := func(n string, rt domain.RoomType, active bool) domain.Room {
		r, err := e.catalog.CreateRoom(ctx, domain.Room{HotelID: e.hotel.ID, Number: n, Type: rt, PricePerNight: price, Active: active})
		require.NoError(t, err)
		return r
	}
	mk("201", domain.RoomDeluxe, false)
	dlx := mk("202", domain.RoomDeluxe, true)
	mk("203", domain.RoomDeluxe, true)

	picked, err := e.catalog.RoomPicker(ctx)
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, e.room.ID, picked[0].ID)
	assert.Equal(t, dlx.ID, picked[1].ID)

	// adding a suite evicts the cached picker
	ste := mk("301", domain.RoomSuite, true)
	picked, err = e.catalog.RoomPicker(ctx)
	require.NoError(t, err)
	require.Len(t, picked, 3)
	assert.Equal(t, ste.ID, picked[2].ID)
}

func TestCatalog_ListActiveRoomsByTypeRejectsUnknown(t *testing.T) {
	e := newEnv(t)
	_, err := e.catalog.ListActiveRoomsByType(context.Background(), domain.RoomType("VIP"))
	assert.ErrorIs(t, err, domain.ErrInvalid)
}
