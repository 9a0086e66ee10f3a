package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Limits of the relational schema columns; string widths count characters.
const (
	MaxHotelName  = 120
	MaxCity       = 120
	MaxAddress    = 200
	MaxRoomNumber = 10
	MaxImage      = 255
	MaxSpaces     = 50
	MaxGuestName  = 120
	MaxCapacity   = 65535
)

// MaxPricePerNight is the largest DECIMAL(10,2) value.
var MaxPricePerNight = decimal.RequireFromString("99999999.99")

func tooLong(s string, n int) bool { return utf8.RuneCountInString(s) > n }

func tooLongPtr(s *string, n int) bool { return s != nil && tooLong(*s, n) }

type Hotel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Stars       int    `json:"stars"`
	Description string `json:"description"`
}

const DefaultStars = 3

// RoomType is the stored room category code.
type RoomType string

const (
	RoomStandard RoomType = "STD"
	RoomDeluxe   RoomType = "DLX"
	RoomSuite    RoomType = "STE"
)

// RoomTypes lists every room type in picker order.
var RoomTypes = []RoomType{RoomStandard, RoomDeluxe, RoomSuite}

func (t RoomType) Valid() bool {
	switch t {
	case RoomStandard, RoomDeluxe, RoomSuite:
		return true
	}
	return false
}

func (t RoomType) Label() string {
	switch t {
	case RoomStandard:
		return "Standard"
	case RoomDeluxe:
		return "Deluxe"
	case RoomSuite:
		return "Suite"
	}
	return string(t)
}

// ParseRoomType accepts either the code (STD) or the label (standard).
func ParseRoomType(s string) (RoomType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range RoomTypes {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t, true
		}
	}
	return "", false
}

type Room struct {
	ID            int64           `json:"id"`
	HotelID       int64           `json:"hotel_id"`
	Number        string          `json:"number"`
	Type          RoomType        `json:"room_type"`
	Capacity      int             `json:"capacity"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Active        bool            `json:"is_active"`
	Image         *string         `json:"image,omitempty"`
	Spaces        *string         `json:"spaces,omitempty"`
	Description   *string         `json:"description,omitempty"`
}

const DefaultCapacity = 2

// Validate checks the invariants a room must satisfy before it is stored.
func (r Room) Validate() error {
	switch {
	case r.HotelID <= 0:
		return invalidf("hotel is required")
	case strings.TrimSpace(r.Number) == "":
		return invalidf("room number is required")
	case tooLong(r.Number, MaxRoomNumber):
		return invalidf("room number exceeds %d characters", MaxRoomNumber)
	case !r.Type.Valid():
		return invalidf("unknown room type %q", r.Type)
	case r.Capacity <= 0:
		return invalidf("capacity must be positive")
	case r.Capacity > MaxCapacity:
		return invalidf("capacity exceeds %d", MaxCapacity)
	case r.PricePerNight.IsNegative():
		return invalidf("price per night must not be negative")
	case r.PricePerNight.GreaterThan(MaxPricePerNight):
		return invalidf("price per night exceeds %s", MaxPricePerNight.StringFixed(2))
	case tooLongPtr(r.Image, MaxImage):
		return invalidf("image exceeds %d characters", MaxImage)
	case tooLongPtr(r.Spaces, MaxSpaces):
		return invalidf("spaces exceeds %d characters", MaxSpaces)
	}
	return nil
}

func (h Hotel) Validate() error {
	switch {
	case strings.TrimSpace(h.Name) == "":
		return invalidf("hotel name is required")
	case tooLong(h.Name, MaxHotelName):
		return invalidf("hotel name exceeds %d characters", MaxHotelName)
	case tooLong(h.City, MaxCity):
		return invalidf("city exceeds %d characters", MaxCity)
	case tooLong(h.Address, MaxAddress):
		return invalidf("address exceeds %d characters", MaxAddress)
	case h.Stars <= 0:
		return invalidf("stars must be positive")
	}
	return nil
}

// ValidGuestName reports whether name fits the stored guest column.
func ValidGuestName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalidf("guest name is required")
	}
	if tooLong(name, MaxGuestName) {
		return invalidf("guest name exceeds %d characters", MaxGuestName)
	}
	return nil
}
