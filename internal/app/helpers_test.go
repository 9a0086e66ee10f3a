package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

var (
	guest = domain.Actor{ID: "u-1", Name: "Ana Rojas"}
	other = domain.Actor{ID: "u-2", Name: "Luis Vera"}
	staff = domain.Actor{ID: "s-1", Name: "Front Desk", Staff: true}
)

type outcomes struct {
	mu  sync.Mutex
	got []string
}

func (o *outcomes) add(s string) {
	o.mu.Lock()
	o.got = append(o.got, s)
	o.mu.Unlock()
}

type env struct {
	store    *memory.Store
	catalog  *CatalogService
	res      *ReservationService
	pricing  *Calculator
	outcomes *outcomes
	hotel    domain.Hotel
	room     domain.Room
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

// newEnv wires the services over the in-memory store and a miniredis cache,
// with one hotel holding one active 100/night room.
func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	store := memory.New()
	l := zerolog.Nop()
	e := &env{store: store, outcomes: &outcomes{}}
	e.catalog = NewCatalogService(store, cache, time.Minute, l)
	e.res = NewReservationService(store, store, l, WithObserver(e.outcomes.add))
	e.pricing = NewCalculator(store, "", l, nil)

	ctx := context.Background()
	var err error
	e.hotel, err = e.catalog.CreateHotel(ctx, domain.Hotel{Name: "Hotel Costa", City: "Valparaíso"})
	require.NoError(t, err)
	e.room, err = e.catalog.CreateRoom(ctx, domain.Room{
		HotelID: e.hotel.ID, Number: "101", Type: domain.RoomStandard,
		PricePerNight: decimal.NewFromInt(100), Active: true,
	})
	require.NoError(t, err)
	return e
}

func (e *env) book(t *testing.T, actor domain.Actor, in, out string) domain.Reservation {
	t.Helper()
	r, err := e.res.Create(context.Background(), domain.ReservationInput{
		RoomID: e.room.ID, CheckIn: day(t, in), CheckOut: day(t, out),
	}, actor)
	require.NoError(t, err)
	return r
}
