package app

import (
	"context"

	"hotel_booking/internal/domain"
)

// ExportLine pairs a reservation with its financial summary.
type ExportLine struct {
	Reservation domain.Reservation
	Summary     Summary
}

type ExportService struct {
	reservations *ReservationService
	pricing      *Calculator
}

func NewExportService(r *ReservationService, c *Calculator) *ExportService {
	return &ExportService{reservations: r, pricing: c}
}

// Lines returns the actor's own reservations, or, when q is given, the
// staff-only filtered listing.
func (e *ExportService) Lines(ctx context.Context, actor domain.Actor, q *domain.ReservationsQuery) ([]ExportLine, error) {
	var (
		rs  []domain.Reservation
		err error
	)
	if q == nil {
		rs, err = e.reservations.ListForUser(ctx, actor)
	} else {
		rs, err = e.reservations.List(ctx, *q, actor)
	}
	if err != nil {
		return nil, err
	}
	sums := e.pricing.SummarizeAll(ctx, rs)
	out := make([]ExportLine, len(rs))
	for i := range rs {
		out[i] = ExportLine{Reservation: rs[i], Summary: sums[i]}
	}
	return out, nil
}
