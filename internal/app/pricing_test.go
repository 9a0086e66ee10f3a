package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func TestCompute(t *testing.T) {
	mk := func(in, out string) domain.Reservation {
		return domain.Reservation{ID: 1, CheckIn: day(t, in), CheckOut: day(t, out)}
	}
	usd := "usd"

	cases := []struct {
		name     string
		res      domain.Reservation
		price    string
		subtotal string
		total    string
		currency string
	}{
		{"three nights", mk("2024-05-01", "2024-05-04"), "100", "300", "300", "CLP"},
		{"zero nights", mk("2024-05-01", "2024-05-01"), "100", "0", "0", "CLP"},
		{"inverted range counts as zero", mk("2024-05-04", "2024-05-01"), "100", "0", "0", "CLP"},
		{"taxes and discount", func() domain.Reservation {
			r := mk("2024-05-01", "2024-05-03")
			r.Taxes, r.Discount = nd("38"), nd("20.5")
			return r
		}(), "100", "200", "217.5", "CLP"},
		{"explicit total wins", func() domain.Reservation {
			r := mk("2024-05-01", "2024-05-03")
			r.Taxes, r.Total = nd("38"), nd("150")
			return r
		}(), "100", "200", "150", "CLP"},
		{"explicit zero total is honoured", func() domain.Reservation {
			r := mk("2024-05-01", "2024-05-03")
			r.Total = nd("0")
			return r
		}(), "100", "200", "0", "CLP"},
		{"currency override", func() domain.Reservation {
			r := mk("2024-05-01", "2024-05-02")
			r.Currency = &usd
			return r
		}(), "89.90", "89.9", "89.9", "USD"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := Compute(c.res, dec(c.price), DefaultCurrency)
			assert.True(t, dec(c.subtotal).Equal(s.Subtotal), "subtotal %s", s.Subtotal)
			assert.True(t, dec(c.total).Equal(s.Total), "total %s", s.Total)
			assert.Equal(t, c.currency, s.Currency)
		})
	}
}

func TestCompute_IsPure(t *testing.T) {
	r := domain.Reservation{CheckIn: day(t, "2024-05-01"), CheckOut: day(t, "2024-05-04"), Taxes: nd("10")}
	a := Compute(r, dec("100"), "CLP")
	b := Compute(r, dec("100"), "CLP")
	assert.Equal(t, a, b)
}

func TestSummarize_UsesRoomPrice(t *testing.T) {
	e := newEnv(t)
	r := e.book(t, guest, "2024-05-01", "2024-05-04")

	s := e.pricing.Summarize(context.Background(), r)
	assert.Equal(t, 3, s.Nights)
	assert.Equal(t, "300.00", s.Total.StringFixed(2))
	assert.Equal(t, DefaultCurrency, s.Currency)
	assert.Equal(t, r.ID, s.ReservationID)
}

func TestSummarize_MissingRoomDefaultsToZero(t *testing.T) {
	e := newEnv(t)
	var defaults []string
	calc := NewCalculator(e.store, "USD", zerolog.Nop(), func(f string) { defaults = append(defaults, f) })

	s := calc.Summarize(context.Background(), domain.Reservation{RoomID: 777, CheckIn: day(t, "2024-05-01"), CheckOut: day(t, "2024-05-03")})
	assert.True(t, s.Total.IsZero())
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, []string{"price_per_night"}, defaults)
}

type mockRooms struct{ mock.Mock }

func (m *mockRooms) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Room), args.Error(1)
}

func TestSummarizeAll_LooksUpEachRoomOnce(t *testing.T) {
	rooms := &mockRooms{}
	rooms.On("GetRoom", mock.Anything, int64(1)).Return(domain.Room{ID: 1, PricePerNight: dec("100")}, nil)
	rooms.On("GetRoom", mock.Anything, int64(2)).Return(domain.Room{ID: 2, PricePerNight: dec("-5")}, nil)

	var defaults []string
	calc := NewCalculator(rooms, "", zerolog.Nop(), func(f string) { defaults = append(defaults, f) })
	rs := []domain.Reservation{
		{ID: 10, RoomID: 1, CheckIn: day(t, "2024-05-01"), CheckOut: day(t, "2024-05-02")},
		{ID: 11, RoomID: 1, CheckIn: day(t, "2024-05-02"), CheckOut: day(t, "2024-05-04")},
		{ID: 12, RoomID: 2, CheckIn: day(t, "2024-05-02"), CheckOut: day(t, "2024-05-04")},
	}
	sums := calc.SummarizeAll(context.Background(), rs)

	require.Len(t, sums, 3)
	assert.Equal(t, "100.00", sums[0].Total.StringFixed(2))
	assert.Equal(t, "200.00", sums[1].Total.StringFixed(2))
	assert.True(t, sums[2].Total.IsZero(), "negative stored price is replaced by zero")
	assert.Equal(t, []string{"price_per_night"}, defaults)
	rooms.AssertNumberOfCalls(t, "GetRoom", 2)
	rooms.AssertExpectations(t)
}
