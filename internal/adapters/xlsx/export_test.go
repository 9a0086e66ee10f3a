package xlsx_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hotel_booking/internal/adapters/xlsx"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

func TestWriteReservations(t *testing.T) {
	res := domain.Reservation{
		ID: 12, Reference: "ref-12", RoomID: 3, GuestName: "Ana",
		CheckIn:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC),
		Status:   domain.StatusPending,
	}
	sum := app.Compute(res, decimal.RequireFromString("100"), "CLP")

	var buf bytes.Buffer
	require.NoError(t, xlsx.WriteReservations(&buf, []app.ExportLine{{Reservation: res, Summary: sum}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Reservations")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Reference", rows[0][1])
	assert.Equal(t, "ref-12", rows[1][1])
	assert.Equal(t, "2024-05-01", rows[1][4])
	assert.Equal(t, "3", rows[1][7])
	assert.Equal(t, "300.00", rows[1][12])
	assert.Equal(t, "CLP", rows[1][13])
}

func TestWriteReservations_EmptyHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, xlsx.WriteReservations(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Reservations")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
