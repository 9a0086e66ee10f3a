package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func TestExportLines(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	exp := NewExportService(e.res, e.pricing)

	mine := e.book(t, guest, "2024-05-01", "2024-05-04")
	e.book(t, other, "2024-05-10", "2024-05-11")

	lines, err := exp.Lines(ctx, guest, nil)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, mine.ID, lines[0].Reservation.ID)
	assert.Equal(t, "300.00", lines[0].Summary.Total.StringFixed(2))

	_, err = exp.Lines(ctx, guest, &domain.ReservationsQuery{RoomID: &e.room.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	lines, err = exp.Lines(ctx, staff, &domain.ReservationsQuery{HotelID: &e.hotel.ID})
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}
