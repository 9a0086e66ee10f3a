package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

type Handlers struct {
	Catalog      *app.CatalogService
	Reservations *app.ReservationService
	Pricing      *app.Calculator
	Export       *app.ExportService
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(v1 chi.Router) {
		v1.Get("/hotels", h.listHotels)
		v1.Get("/hotels/{id}", h.getHotel)
		v1.Get("/rooms", h.listRooms)
		v1.Get("/rooms/picker", h.roomPicker)
		v1.Get("/rooms/{id}", h.getRoom)
		v1.Get("/rooms/{id}/availability", h.roomAvailability)

		v1.Group(func(staff chi.Router) {
			staff.Use(RequireStaff, s.limiter.Middleware)
			staff.Post("/hotels", h.createHotel)
			staff.Put("/hotels/{id}", h.updateHotel)
			staff.Delete("/hotels/{id}", h.deleteHotel)
			staff.Post("/rooms", h.createRoom)
			staff.Put("/rooms/{id}", h.updateRoom)
			staff.Delete("/rooms/{id}", h.deleteRoom)
		})

		v1.Route("/reservations", func(rr chi.Router) {
			rr.Use(RequireActor)
			rr.Get("/", h.listMyReservations)
			rr.Get("/export.xlsx", h.exportReservations)
			rr.Get("/{id}", h.getReservation)
			rr.Get("/{id}/summary", h.reservationSummary)
			rr.Group(func(wr chi.Router) {
				wr.Use(s.limiter.Middleware)
				wr.Post("/", h.createReservation)
				wr.Put("/{id}", h.updateReservation)
				wr.Post("/{id}/cancel", h.cancelReservation)
			})
		})
	})
}

// ---- helpers ----

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive number", domain.ErrInvalid)
	}
	return id, nil
}

// decode reads a JSON body into dst and runs struct validation. It writes the
// error response itself and reports whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body: "+err.Error(), nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeValidation(w, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable answers 304 when the client already holds this version.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write cacheable body")
	}
}

func invalidField(field, msg string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrInvalid, field, msg)
}

func queryDate(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, invalidField(key, "is required")
	}
	return domain.ParseDate(v)
}

func queryID(r *http.Request, key string) (*int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, invalidField(key, "must be a positive number")
	}
	return &id, nil
}
