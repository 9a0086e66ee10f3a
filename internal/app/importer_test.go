package app

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

const catalogYAML = `
hotels:
  - name: Hotel Costa
    city: Valparaíso
    stars: 4
    rooms:
      - number: "101"
        type: standard
        price_per_night: 95
      - number: "102"
        room_type: DLX
        price: "140,50"
        capacity: 3
      - number: "103"
        type: suite
  - hotel_name: Andes Lodge
    address:
      line: Camino Farellones 1200
      city: Santiago
    habitaciones:
      - numero: 1
        kind: penthouse
        nightly_rate: 210.499
        enabled: "false"
`

func TestParseCatalog_Shapes(t *testing.T) {
	docs, err := ParseCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = ParseCatalog(strings.NewReader("- name: A\n- name: B\n- not-a-hotel\n"))
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = ParseCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = ParseCatalog(strings.NewReader("name: lonely"))
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestMapRoom_Aliases(t *testing.T) {
	docs, err := ParseCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	h := mapHotel(docs[1])
	assert.Equal(t, "Andes Lodge", h.Name)
	assert.Equal(t, "Santiago", h.City)
	assert.Equal(t, "Camino Farellones 1200", h.Address)
	assert.Equal(t, domain.DefaultStars, h.Stars)

	rooms := aliasSlice(docs[1], hotelAliases, "rooms")
	require.Len(t, rooms, 1)
	r, ok := mapRoom(9, rooms[0])
	require.True(t, ok)
	assert.Equal(t, "1", r.Number)
	assert.Equal(t, domain.RoomStandard, r.Type, "unknown types fall back to standard")
	assert.Equal(t, "210.50", r.PricePerNight.StringFixed(2))
	assert.False(t, r.Active)
	assert.Equal(t, domain.DefaultCapacity, r.Capacity)

	_, ok = mapRoom(9, map[string]any{"number": "9"})
	assert.False(t, ok)
}

func TestImportAll_CreatesThenUpdates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	imp := NewImportService(e.catalog, zerolog.Nop())

	docs, err := ParseCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)

	rep, err := imp.ImportAll(ctx, docs, 2)
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Hotels: 2, Rooms: 3, Skipped: 1}, rep)

	hotels, err := e.catalog.ListHotels(ctx)
	require.NoError(t, err)
	require.Len(t, hotels, 2, "Hotel Costa matches the existing hotel by name and city")

	// a second run matches by (name, city) and room number instead of duplicating
	rep, err = imp.ImportAll(ctx, docs, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Hotels)
	assert.Zero(t, rep.Failed)

	hotels, err = e.catalog.ListHotels(ctx)
	require.NoError(t, err)
	assert.Len(t, hotels, 2)

	rooms, err := e.catalog.ListRooms(ctx, domain.RoomsQuery{HotelID: &e.hotel.ID})
	require.NoError(t, err)
	require.Len(t, rooms, 2, "101 updated in place, 102 added")
	for _, r := range rooms {
		if r.Number == "102" {
			assert.Equal(t, "140.50", r.PricePerNight.StringFixed(2))
			assert.Equal(t, domain.RoomDeluxe, r.Type)
			assert.Equal(t, 3, r.Capacity)
		}
		if r.Number == "101" {
			assert.Equal(t, "95.00", r.PricePerNight.StringFixed(2))
		}
	}
}

func TestImportAll_CancelledContext(t *testing.T) {
	e := newEnv(t)
	imp := NewImportService(e.catalog, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := imp.ImportAll(ctx, []map[string]any{{"name": "X"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
