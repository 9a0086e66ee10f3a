package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	"hotel_booking/internal/domain"
)

// ImportService loads a catalog document (hotels with nested rooms) into the
// store, updating hotels matched by (name, city) and rooms matched by number.
type ImportService struct {
	catalog *CatalogService
	log     zerolog.Logger
}

func NewImportService(c *CatalogService, l zerolog.Logger) *ImportService {
	return &ImportService{catalog: c, log: l.With().Str("component", "import").Logger()}
}

type ImportReport struct {
	Hotels  int `json:"hotels"`
	Rooms   int `json:"rooms"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ParseCatalog accepts either a top-level list of hotels or a {hotels: [...]} mapping.
func ParseCatalog(r io.Reader) ([]map[string]any, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if m, ok := raw.(map[string]any); ok {
		raw = m["hotels"]
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: catalog must be a list of hotels", domain.ErrInvalid)
	}
	out := make([]map[string]any, 0, len(list))
	for _, it := range list {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

func hotelKey(name, city string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(city))
}

// ImportAll imports every hotel document with at most `workers` in flight.
// Per-hotel failures are logged and counted; only context cancellation aborts the run.
func (s *ImportService) ImportAll(ctx context.Context, docs []map[string]any, workers int) (ImportReport, error) {
	if workers <= 0 {
		workers = 1
	}
	existing, err := s.catalog.ListHotels(ctx)
	if err != nil {
		return ImportReport{}, fmt.Errorf("list hotels: %w", err)
	}
	byKey := make(map[string]domain.Hotel, len(existing))
	for _, h := range existing {
		byKey[hotelKey(h.Name, h.City)] = h
	}

	var (
		mu  sync.Mutex
		rep ImportReport
		wg  sync.WaitGroup
	)
	sem := semaphore.NewWeighted(int64(workers))

	for i, doc := range docs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, err
		}
		h := mapHotel(doc)
		prev, found := byKey[hotelKey(h.Name, h.City)]

		wg.Add(1)
		go func(idx int, doc map[string]any, h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)

			var cur *domain.Hotel
			if found {
				cur = &prev
			}
			rooms, skipped, err := s.ImportHotel(ctx, doc, cur)

			mu.Lock()
			defer mu.Unlock()
			rep.Rooms += rooms
			rep.Skipped += skipped
			if err != nil {
				rep.Failed++
				s.log.Warn().Int("index", idx).Str("hotel", h.Name).Err(err).Msg("import failed")
				return
			}
			rep.Hotels++
			s.log.Info().Int("index", idx).Str("hotel", h.Name).Int("rooms", rooms).Msg("import ok")
		}(i, doc, h)
	}

	wg.Wait()
	return rep, nil
}

// ImportHotel upserts one hotel and its rooms. existing is the already-stored
// hotel matching the document, if any.
func (s *ImportService) ImportHotel(ctx context.Context, doc map[string]any, existing *domain.Hotel) (rooms, skipped int, err error) {
	h := mapHotel(doc)
	if existing != nil {
		h.ID = existing.ID
		h, err = s.catalog.UpdateHotel(ctx, h)
	} else {
		h, err = s.catalog.CreateHotel(ctx, h)
	}
	if err != nil {
		return 0, 0, err
	}

	stored, err := s.catalog.ListRooms(ctx, domain.RoomsQuery{HotelID: &h.ID})
	if err != nil {
		return 0, 0, err
	}
	byNumber := make(map[string]int64, len(stored))
	for _, r := range stored {
		byNumber[r.Number] = r.ID
	}

	for _, rd := range aliasSlice(doc, hotelAliases, "rooms") {
		room, ok := mapRoom(h.ID, rd)
		if !ok {
			skipped++
			s.log.Warn().Int64("hotel_id", h.ID).Str("number", aliasStr(rd, roomAliases, "number")).Msg("room without price skipped")
			continue
		}
		if id, ok := byNumber[room.Number]; ok {
			room.ID = id
			_, err = s.catalog.UpdateRoom(ctx, room)
		} else {
			_, err = s.catalog.CreateRoom(ctx, room)
		}
		if err != nil {
			if errors.Is(err, domain.ErrInvalid) {
				skipped++
				s.log.Warn().Int64("hotel_id", h.ID).Str("number", room.Number).Err(err).Msg("room skipped")
				continue
			}
			return rooms, skipped, err
		}
		rooms++
	}
	return rooms, skipped, nil
}
