package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hotel_booking/internal/domain"
)

// CatalogService owns hotels and rooms. Reads go through the cache; every
// write evicts the keys it can affect.
type CatalogService struct {
	repo     domain.CatalogRepository
	cache    domain.Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewCatalogService(r domain.CatalogRepository, c domain.Cache, ttl time.Duration, l zerolog.Logger) *CatalogService {
	return &CatalogService{repo: r, cache: c, cacheTTL: ttl, log: l.With().Str("component", "catalog").Logger()}
}

func (s *CatalogService) ttl() int { return int(s.cacheTTL.Seconds()) }

// ---- hotels ----

// prepareHotel applies the create/replace defaults and validates h.
func prepareHotel(h domain.Hotel) (domain.Hotel, error) {
	if h.Stars == 0 {
		h.Stars = domain.DefaultStars
	}
	h.Name = strings.TrimSpace(h.Name)
	return h, h.Validate()
}

func (s *CatalogService) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	h, err := prepareHotel(h)
	if err != nil {
		return domain.Hotel{}, err
	}
	id, err := s.repo.CreateHotel(ctx, h)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("create hotel: %w", err)
	}
	h.ID = id
	s.log.Info().Int64("hotel_id", id).Str("name", h.Name).Msg("hotel created")
	return h, nil
}

// UpdateHotel replaces every field; omitted stars fall back to the default as on create.
func (s *CatalogService) UpdateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	h, err := prepareHotel(h)
	if err != nil {
		return domain.Hotel{}, err
	}
	if err := s.repo.UpdateHotel(ctx, h); err != nil {
		return domain.Hotel{}, fmt.Errorf("update hotel %d: %w", h.ID, err)
	}
	s.evictHotel(ctx, h.ID)
	return h, nil
}

// DeleteHotel cascades to the hotel's rooms; it is refused while any of those
// rooms still has reservations.
func (s *CatalogService) DeleteHotel(ctx context.Context, id int64) error {
	rooms, err := s.repo.ListRooms(ctx, domain.RoomsQuery{HotelID: &id})
	if err != nil {
		return fmt.Errorf("list rooms of hotel %d: %w", id, err)
	}
	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		return fmt.Errorf("delete hotel %d: %w", id, err)
	}
	s.evictHotel(ctx, id)
	for _, r := range rooms {
		s.evictRoom(ctx, r.ID)
	}
	s.log.Info().Int64("hotel_id", id).Int("rooms", len(rooms)).Msg("hotel deleted")
	return nil
}

func (s *CatalogService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := fmt.Sprintf("hotel:%d", id)
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	_ = s.cache.Set(ctx, key, h, s.ttl())
	return h, nil
}

func (s *CatalogService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	return s.repo.ListHotels(ctx)
}

// ---- rooms ----

func prepareRoom(r domain.Room) (domain.Room, error) {
	if r.Capacity == 0 {
		r.Capacity = domain.DefaultCapacity
	}
	r.Number = strings.TrimSpace(r.Number)
	return r, r.Validate()
}

func (s *CatalogService) CreateRoom(ctx context.Context, r domain.Room) (domain.Room, error) {
	r, err := prepareRoom(r)
	if err != nil {
		return domain.Room{}, err
	}
	if _, err := s.repo.GetHotel(ctx, r.HotelID); err != nil {
		return domain.Room{}, fmt.Errorf("hotel %d: %w", r.HotelID, err)
	}
	id, err := s.repo.CreateRoom(ctx, r)
	if err != nil {
		return domain.Room{}, fmt.Errorf("create room %s: %w", r.Number, err)
	}
	r.ID = id
	s.evictPicker(ctx)
	s.log.Info().Int64("room_id", id).Int64("hotel_id", r.HotelID).Str("number", r.Number).Msg("room created")
	return r, nil
}

func (s *CatalogService) UpdateRoom(ctx context.Context, r domain.Room) (domain.Room, error) {
	r, err := prepareRoom(r)
	if err != nil {
		return domain.Room{}, err
	}
	if err := s.repo.UpdateRoom(ctx, r); err != nil {
		return domain.Room{}, fmt.Errorf("update room %d: %w", r.ID, err)
	}
	s.evictRoom(ctx, r.ID)
	return r, nil
}

// DeleteRoom is refused with domain.ErrConflict while reservations reference the room.
func (s *CatalogService) DeleteRoom(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRoom(ctx, id); err != nil {
		return fmt.Errorf("delete room %d: %w", id, err)
	}
	s.evictRoom(ctx, id)
	s.log.Info().Int64("room_id", id).Msg("room deleted")
	return nil
}

func (s *CatalogService) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	key := fmt.Sprintf("room:%d", id)
	var r domain.Room
	if ok, _ := s.cache.Get(ctx, key, &r); ok {
		return r, nil
	}
	r, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	_ = s.cache.Set(ctx, key, r, s.ttl())
	return r, nil
}

func (s *CatalogService) ListRooms(ctx context.Context, q domain.RoomsQuery) ([]domain.Room, error) {
	return s.repo.ListRooms(ctx, q)
}

// ListActiveRoomsByType returns active rooms of one type ordered by id.
func (s *CatalogService) ListActiveRoomsByType(ctx context.Context, t domain.RoomType) ([]domain.Room, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown room type %q", domain.ErrInvalid, t)
	}
	return s.repo.ListRooms(ctx, domain.RoomsQuery{Type: &t, ActiveOnly: true, OrderByID: true})
}

// RoomPicker offers at most one active room per type: the lowest id of each.
func (s *CatalogService) RoomPicker(ctx context.Context) ([]domain.Room, error) {
	const key = "rooms:picker"
	var out []domain.Room
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out = make([]domain.Room, 0, len(domain.RoomTypes))
	for _, t := range domain.RoomTypes {
		rooms, err := s.ListActiveRoomsByType(ctx, t)
		if err != nil {
			return nil, err
		}
		if len(rooms) > 0 {
			out = append(out, rooms[0])
		}
	}
	_ = s.cache.Set(ctx, key, out, s.ttl())
	return out, nil
}

// ---- cache eviction ----

func (s *CatalogService) evictHotel(ctx context.Context, id int64) {
	_ = s.cache.Del(ctx, fmt.Sprintf("hotel:%d", id))
	s.evictPicker(ctx)
}

func (s *CatalogService) evictRoom(ctx context.Context, id int64) {
	_ = s.cache.Del(ctx, fmt.Sprintf("room:%d", id))
	s.evictPicker(ctx)
}

func (s *CatalogService) evictPicker(ctx context.Context) {
	_ = s.cache.Del(ctx, "rooms:picker")
}
