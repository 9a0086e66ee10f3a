package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"hotel_booking/internal/domain"
)

const DefaultCurrency = "CLP"

// Summary is the financial breakdown shown next to a reservation.
type Summary struct {
	ReservationID int64           `json:"reservation_id"`
	Nights        int             `json:"nights"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Taxes         decimal.Decimal `json:"taxes"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
}

// Calculator derives summaries. It never fails: a missing room or an
// unusable stored price is replaced by zero and logged.
type Calculator struct {
	rooms     domain.RoomReader
	currency  string
	onDefault func(field string)
	log       zerolog.Logger
}

// NewCalculator builds a Calculator. onDefault, when non-nil, is told about
// every zero substitution.
func NewCalculator(rooms domain.RoomReader, currency string, l zerolog.Logger, onDefault func(field string)) *Calculator {
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}
	if onDefault == nil {
		onDefault = func(string) {}
	}
	return &Calculator{
		rooms:     rooms,
		currency:  currency,
		onDefault: onDefault,
		log:       l.With().Str("component", "pricing").Logger(),
	}
}

func (c *Calculator) Summarize(ctx context.Context, r domain.Reservation) Summary {
	return Compute(r, c.nightlyPrice(ctx, r), c.currency)
}

func (c *Calculator) SummarizeAll(ctx context.Context, rs []domain.Reservation) []Summary {
	out := make([]Summary, 0, len(rs))
	prices := map[int64]decimal.Decimal{}
	for _, r := range rs {
		p, ok := prices[r.RoomID]
		if !ok {
			p = c.nightlyPrice(ctx, r)
			prices[r.RoomID] = p
		}
		out = append(out, Compute(r, p, c.currency))
	}
	return out
}

func (c *Calculator) nightlyPrice(ctx context.Context, r domain.Reservation) decimal.Decimal {
	room, err := c.rooms.GetRoom(ctx, r.RoomID)
	if err != nil {
		c.log.Warn().Err(err).
			Int64("reservation_id", r.ID).
			Int64("room_id", r.RoomID).
			Str("field", "price_per_night").
			Msg("room unavailable, substituting 0")
		c.onDefault("price_per_night")
		return decimal.Zero
	}
	if room.PricePerNight.IsNegative() {
		c.log.Warn().
			Int64("reservation_id", r.ID).
			Int64("room_id", r.RoomID).
			Str("field", "price_per_night").
			Str("stored", room.PricePerNight.String()).
			Msg("negative nightly price, substituting 0")
		c.onDefault("price_per_night")
		return decimal.Zero
	}
	return room.PricePerNight
}

// Compute is the pure pricing rule:
//
//	subtotal = price_per_night * nights   (a zero-night stay costs nothing)
//	total    = override, else subtotal + taxes - discount
//
// Unset taxes and discount count as zero. An explicit zero override is honoured.
func Compute(r domain.Reservation, pricePerNight decimal.Decimal, defaultCurrency string) Summary {
	nights := r.Nights()
	s := Summary{
		ReservationID: r.ID,
		Nights:        nights,
		PricePerNight: pricePerNight,
		Subtotal:      pricePerNight.Mul(decimal.NewFromInt(int64(nights))),
		Taxes:         orZero(r.Taxes),
		Discount:      orZero(r.Discount),
		Currency:      defaultCurrency,
	}
	if r.Total.Valid {
		s.Total = r.Total.Decimal
	} else {
		s.Total = s.Subtotal.Add(s.Taxes).Sub(s.Discount)
	}
	if r.Currency != nil && strings.TrimSpace(*r.Currency) != "" {
		s.Currency = strings.ToUpper(strings.TrimSpace(*r.Currency))
	}
	return s
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}
