// Package memory is a process-local implementation of the catalog and
// reservation repositories. It backs MYSQL_DSN=memory runs and the service
// tests; it follows the same conflict rules as the MySQL store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hotel_booking/internal/domain"
)

var (
	_ domain.CatalogRepository     = (*Store)(nil)
	_ domain.ReservationRepository = (*Store)(nil)
	_ domain.ReservationTx         = (*memTx)(nil)
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	hotels   map[int64]domain.Hotel
	rooms    map[int64]domain.Room
	bookings map[int64]domain.Reservation
}

func New() *Store {
	return &Store{
		hotels:   map[int64]domain.Hotel{},
		rooms:    map[int64]domain.Room{},
		bookings: map[int64]domain.Reservation{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// ---- hotels ----

func (s *Store) CreateHotel(_ context.Context, h domain.Hotel) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.id()
	s.hotels[h.ID] = h
	return h.ID, nil
}

func (s *Store) UpdateHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; !ok {
		return domain.ErrNotFound
	}
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) DeleteHotel(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	var rooms []int64
	for _, r := range s.rooms {
		if r.HotelID != id {
			continue
		}
		if s.referenced(r.ID) {
			return domain.ErrConflict
		}
		rooms = append(rooms, r.ID)
	}
	for _, rid := range rooms {
		delete(s.rooms, rid)
	}
	delete(s.hotels, id)
	return nil
}

func (s *Store) GetHotel(_ context.Context, id int64) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (s *Store) ListHotels(_ context.Context) ([]domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Hotel, 0, len(s.hotels))
	for _, h := range s.hotels {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ---- rooms ----

func (s *Store) CreateRoom(_ context.Context, r domain.Room) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[r.HotelID]; !ok {
		return 0, domain.ErrNotFound
	}
	if s.numberTaken(r) {
		return 0, domain.ErrConflict
	}
	r.ID = s.id()
	s.rooms[r.ID] = r
	return r.ID, nil
}

func (s *Store) UpdateRoom(_ context.Context, r domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[r.ID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := s.hotels[r.HotelID]; !ok {
		return domain.ErrNotFound
	}
	if s.numberTaken(r) {
		return domain.ErrConflict
	}
	s.rooms[r.ID] = r
	return nil
}

func (s *Store) DeleteRoom(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	if s.referenced(id) {
		return domain.ErrConflict
	}
	delete(s.rooms, id)
	return nil
}

func (s *Store) GetRoom(_ context.Context, id int64) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListRooms(_ context.Context, q domain.RoomsQuery) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Room{}
	for _, r := range s.rooms {
		if q.HotelID != nil && r.HotelID != *q.HotelID {
			continue
		}
		if q.Type != nil && r.Type != *q.Type {
			continue
		}
		if q.ActiveOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !q.OrderByID {
			if ha, hb := s.hotels[a.HotelID].Name, s.hotels[b.HotelID].Name; ha != hb {
				return ha < hb
			}
			if a.Number != b.Number {
				return a.Number < b.Number
			}
		}
		return a.ID < b.ID
	})
	return out, nil
}

// numberTaken mirrors the (hotel_id, number) unique key.
func (s *Store) numberTaken(r domain.Room) bool {
	for _, o := range s.rooms {
		if o.ID != r.ID && o.HotelID == r.HotelID && strings.EqualFold(o.Number, r.Number) {
			return true
		}
	}
	return false
}

// referenced reports whether any reservation, cancelled or not, points at the room.
func (s *Store) referenced(roomID int64) bool {
	for _, b := range s.bookings {
		if b.RoomID == roomID {
			return true
		}
	}
	return false
}

// ---- reservations ----

func (s *Store) GetReservation(_ context.Context, id int64) (domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.bookings[id]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListReservations(_ context.Context, q domain.ReservationsQuery) ([]domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Reservation{}
	for _, b := range s.bookings {
		if !q.IncludeCancelled && b.Cancelled() {
			continue
		}
		if q.OwnerID != nil && (b.OwnerID == nil || *b.OwnerID != *q.OwnerID) {
			continue
		}
		if q.RoomID != nil && b.RoomID != *q.RoomID {
			continue
		}
		if q.HotelID != nil && s.rooms[b.RoomID].HotelID != *q.HotelID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].CheckIn.After(out[j].CheckIn)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) SetStatus(_ context.Context, id int64, st domain.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = st
	r.UpdatedAt = time.Now().UTC()
	s.bookings[id] = r
	return nil
}

// WithRoomLock holds the store mutex for the whole callback, which is a
// coarser lock than the MySQL row lock but gives the same guarantee. Writes
// made through tx are applied only when fn returns nil.
func (s *Store) WithRoomLock(ctx context.Context, roomID int64, fn func(tx domain.ReservationTx, room domain.Room) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return domain.ErrNotFound
	}
	tx := &memTx{s: s, pending: map[int64]domain.Reservation{}}
	if err := fn(tx, room); err != nil {
		return err
	}
	for id, r := range tx.pending {
		s.bookings[id] = r
	}
	return nil
}

type memTx struct {
	s       *Store
	pending map[int64]domain.Reservation
}

func (t *memTx) get(id int64) (domain.Reservation, bool) {
	if r, ok := t.pending[id]; ok {
		return r, true
	}
	r, ok := t.s.bookings[id]
	return r, ok
}

func (t *memTx) Reservation(_ context.Context, id int64) (domain.Reservation, error) {
	r, ok := t.get(id)
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return r, nil
}

func (t *memTx) Overlapping(_ context.Context, roomID int64, in, out time.Time, excludeID int64) ([]domain.Reservation, error) {
	seen := map[int64]bool{}
	var res []domain.Reservation
	visit := func(b domain.Reservation) {
		if seen[b.ID] {
			return
		}
		seen[b.ID] = true
		if b.RoomID != roomID || b.Cancelled() || (excludeID > 0 && b.ID == excludeID) {
			return
		}
		if b.Overlaps(in, out) {
			res = append(res, b)
		}
	}
	for _, b := range t.pending {
		visit(b)
	}
	for _, b := range t.s.bookings {
		visit(b)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CheckIn.Equal(res[j].CheckIn) {
			return res[i].CheckIn.Before(res[j].CheckIn)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (t *memTx) Insert(_ context.Context, r domain.Reservation) (int64, error) {
	for _, b := range t.s.bookings {
		if r.Reference != "" && b.Reference == r.Reference {
			return 0, domain.ErrConflict
		}
	}
	r.ID = t.s.id() // ids burnt by a rolled back tx are not reused, as with AUTO_INCREMENT
	t.pending[r.ID] = r
	return r.ID, nil
}

func (t *memTx) Update(_ context.Context, r domain.Reservation) error {
	if _, ok := t.get(r.ID); !ok {
		return domain.ErrNotFound
	}
	t.pending[r.ID] = r
	return nil
}
