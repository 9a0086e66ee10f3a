package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type conflictInfo struct {
	ReservationID int64  `json:"reservation_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
}

type problem struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Status   int           `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Errors   []fieldError  `json:"errors,omitempty"`
	Conflict *conflictInfo `json:"conflict,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, extend func(*problem)) {
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail}
	if extend != nil {
		extend(&p)
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var ov *domain.OverlapError
	switch {
	case errors.As(err, &ov):
		writeProblem(w, http.StatusConflict, "Overlap Conflict", ov.Error(), func(p *problem) {
			p.Conflict = &conflictInfo{
				ReservationID: ov.ConflictID,
				CheckIn:       ov.CheckIn.Format(domain.DateLayout),
				CheckOut:      ov.CheckOut.Format(domain.DateLayout),
			}
		})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "not allowed", nil)
	case errors.Is(err, domain.ErrDateOrder):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid Date Range", err.Error(), nil)
	case errors.Is(err, domain.ErrRoomInactive),
		errors.Is(err, domain.ErrReservationCancelled),
		errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalid):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("unhandled service error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "", nil)
	}
}

// writeHiddenError is writeError for reads of owned resources: a forbidden
// read is reported as not found so existence does not leak.
func writeHiddenError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrForbidden) {
		writeProblem(w, http.StatusNotFound, "Not Found", "reservation not found", nil)
		return
	}
	writeError(w, err)
}

func writeValidation(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error(), nil)
		return
	}
	fields := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldError{Field: fe.Field(), Message: "failed on " + fe.Tag()})
	}
	writeProblem(w, http.StatusUnprocessableEntity, "Validation Error", fields[0].Field+": "+fields[0].Message, func(p *problem) {
		p.Errors = fields
	})
}
