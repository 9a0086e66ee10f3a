package app

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"hotel_booking/internal/domain"
)

/********** alias registries (single source of truth) **********/

var hotelAliases = map[string][]string{
	"name":        {"name", "hotel_name", "title"},
	"city":        {"city", "address.city", "location.city"},
	"address":     {"address.line", "location.address", "address", "address_raw", "street"},
	"stars":       {"stars", "rating.stars", "category"},
	"description": {"description", "about", "summary"},
	"rooms":       {"rooms", "habitaciones", "inventory"},
}

var roomAliases = map[string][]string{
	"number":      {"number", "room_number", "numero", "no"},
	"type":        {"type", "room_type", "category", "kind"},
	"capacity":    {"capacity", "max_guests", "occupancy", "guests"},
	"price":       {"price_per_night", "price", "nightly_rate", "rate"},
	"active":      {"active", "is_active", "enabled"},
	"image":       {"image", "image_url", "photo"},
	"spaces":      {"spaces", "layout"},
	"description": {"description", "notes"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstAlias returns the first value present for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) any {
	for _, p := range aliases[key] {
		if v := lookupAny(m, p); v != nil {
			return v
		}
	}
	return nil
}

func aliasStr(m map[string]any, aliases map[string][]string, key string) string {
	switch v := firstAlias(m, aliases, key).(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func aliasPtrStr(m map[string]any, aliases map[string][]string, key string) *string {
	if s := aliasStr(m, aliases, key); s != "" {
		return &s
	}
	return nil
}

// aliasInt: int from int/float64/string values.
func aliasInt(m map[string]any, aliases map[string][]string, key string, def int) int {
	switch v := firstAlias(m, aliases, key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func aliasBool(m map[string]any, aliases map[string][]string, key string, def bool) bool {
	switch v := firstAlias(m, aliases, key).(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// aliasDecimal accepts "120.50", "120,50", 120.5 or 120. Floats are rounded to cents.
func aliasDecimal(m map[string]any, aliases map[string][]string, key string) (decimal.Decimal, bool) {
	switch v := firstAlias(m, aliases, key).(type) {
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v).Round(2), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if d, err := decimal.NewFromString(s); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func aliasSlice(m map[string]any, aliases map[string][]string, key string) []map[string]any {
	raw, ok := firstAlias(m, aliases, key).([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

/********** catalog document mappers **********/

func mapHotel(doc map[string]any) domain.Hotel {
	return domain.Hotel{
		Name:        aliasStr(doc, hotelAliases, "name"),
		City:        aliasStr(doc, hotelAliases, "city"),
		Address:     aliasStr(doc, hotelAliases, "address"),
		Stars:       aliasInt(doc, hotelAliases, "stars", domain.DefaultStars),
		Description: aliasStr(doc, hotelAliases, "description"),
	}
}

// mapRoom returns ok=false when the document has no usable nightly price.
func mapRoom(hotelID int64, doc map[string]any) (domain.Room, bool) {
	price, ok := aliasDecimal(doc, roomAliases, "price")
	if !ok {
		return domain.Room{}, false
	}
	rt, known := domain.ParseRoomType(aliasStr(doc, roomAliases, "type"))
	if !known {
		rt = domain.RoomStandard
	}
	return domain.Room{
		HotelID:       hotelID,
		Number:        aliasStr(doc, roomAliases, "number"),
		Type:          rt,
		Capacity:      aliasInt(doc, roomAliases, "capacity", domain.DefaultCapacity),
		PricePerNight: price,
		Active:        aliasBool(doc, roomAliases, "active", true),
		Image:         aliasPtrStr(doc, roomAliases, "image"),
		Spaces:        aliasPtrStr(doc, roomAliases, "spaces"),
		Description:   aliasPtrStr(doc, roomAliases, "description"),
	}, true
}
