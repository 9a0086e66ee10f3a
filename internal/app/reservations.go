package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotel_booking/internal/domain"
)

// Outcome labels reported to the reservation observer.
const (
	OutcomeCreated   = "created"
	OutcomeUpdated   = "updated"
	OutcomeCancelled = "cancelled"
	OutcomeOverlap   = "overlap"
	OutcomeRejected  = "rejected"
)

// ReservationService enforces date ordering and the no-overlap rule and owns
// the reservation lifecycle.
type ReservationService struct {
	repo    domain.ReservationRepository
	rooms   domain.RoomReader
	now     func() time.Time
	observe func(outcome string)
	log     zerolog.Logger
}

type ReservationOption func(*ReservationService)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) ReservationOption {
	return func(s *ReservationService) { s.now = now }
}

// WithObserver receives one outcome label per create/update/cancel attempt.
func WithObserver(fn func(outcome string)) ReservationOption {
	return func(s *ReservationService) { s.observe = fn }
}

func NewReservationService(r domain.ReservationRepository, rooms domain.RoomReader, l zerolog.Logger, opts ...ReservationOption) *ReservationService {
	s := &ReservationService{
		repo:    r,
		rooms:   rooms,
		now:     time.Now,
		observe: func(string) {},
		log:     l.With().Str("component", "reservations").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func normalize(in domain.ReservationInput) (domain.ReservationInput, error) {
	in.CheckIn = domain.DateOf(in.CheckIn)
	in.CheckOut = domain.DateOf(in.CheckOut)
	in.GuestName = strings.TrimSpace(in.GuestName)
	if !in.CheckOut.After(in.CheckIn) {
		return in, domain.ErrDateOrder
	}
	if in.RoomID <= 0 {
		return in, fmt.Errorf("%w: room is required", domain.ErrInvalid)
	}
	if in.GuestName != "" {
		if err := domain.ValidGuestName(in.GuestName); err != nil {
			return in, err
		}
	}
	return in, nil
}

// firstOverlap turns a non-empty candidate list into a typed OverlapError.
func firstOverlap(rs []domain.Reservation) error {
	if len(rs) == 0 {
		return nil
	}
	c := rs[0]
	return &domain.OverlapError{ConflictID: c.ID, CheckIn: c.CheckIn, CheckOut: c.CheckOut}
}

func (s *ReservationService) finish(outcome string, err error) {
	switch {
	case err == nil:
		s.observe(outcome)
	case errors.Is(err, domain.ErrOverlap):
		s.observe(OutcomeOverlap)
	default:
		s.observe(OutcomeRejected)
	}
}

// Create books a room for [check_in, check_out). The room must exist and be
// active, and no live reservation on it may intersect the range.
func (s *ReservationService) Create(ctx context.Context, in domain.ReservationInput, actor domain.Actor) (res domain.Reservation, err error) {
	defer func() { s.finish(OutcomeCreated, err) }()

	in, err = normalize(in)
	if err != nil {
		return domain.Reservation{}, err
	}
	if in.GuestName == "" {
		in.GuestName = strings.TrimSpace(actor.Name)
	}
	if err := domain.ValidGuestName(in.GuestName); err != nil {
		return domain.Reservation{}, err
	}

	now := s.now().UTC()
	res = domain.Reservation{
		Reference: uuid.NewString(),
		RoomID:    in.RoomID,
		GuestName: in.GuestName,
		CheckIn:   in.CheckIn,
		CheckOut:  in.CheckOut,
		Notes:     in.Notes,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !actor.Anonymous() {
		owner := actor.ID
		res.OwnerID = &owner
	}

	err = s.repo.WithRoomLock(ctx, in.RoomID, func(tx domain.ReservationTx, room domain.Room) error {
		if !room.Active {
			return domain.ErrRoomInactive
		}
		clash, err := tx.Overlapping(ctx, room.ID, res.CheckIn, res.CheckOut, 0)
		if err != nil {
			return err
		}
		if err := firstOverlap(clash); err != nil {
			return err
		}
		id, err := tx.Insert(ctx, res)
		if err != nil {
			return err
		}
		res.ID = id
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Int64("room_id", in.RoomID).Msg("reservation refused")
		return domain.Reservation{}, err
	}
	s.log.Info().
		Int64("reservation_id", res.ID).
		Int64("room_id", res.RoomID).
		Str("check_in", res.CheckIn.Format(domain.DateLayout)).
		Str("check_out", res.CheckOut.Format(domain.DateLayout)).
		Msg("reservation created")
	return res, nil
}

// Update reschedules (or moves) a reservation. The reservation itself is left
// out of the overlap check so a stay can be shifted onto its own nights.
func (s *ReservationService) Update(ctx context.Context, id int64, in domain.ReservationInput, actor domain.Actor) (res domain.Reservation, err error) {
	defer func() { s.finish(OutcomeUpdated, err) }()

	cur, err := s.authorized(ctx, id, actor)
	if err != nil {
		return domain.Reservation{}, err
	}
	if in.RoomID == 0 {
		in.RoomID = cur.RoomID
	}
	in, err = normalize(in)
	if err != nil {
		return domain.Reservation{}, err
	}

	err = s.repo.WithRoomLock(ctx, in.RoomID, func(tx domain.ReservationTx, room domain.Room) error {
		// re-read under lock: a concurrent cancel must win over a stale update
		locked, err := tx.Reservation(ctx, id)
		if err != nil {
			return err
		}
		if locked.Cancelled() {
			return domain.ErrReservationCancelled
		}
		if room.ID != locked.RoomID && !room.Active {
			return domain.ErrRoomInactive
		}
		clash, err := tx.Overlapping(ctx, room.ID, in.CheckIn, in.CheckOut, id)
		if err != nil {
			return err
		}
		if err := firstOverlap(clash); err != nil {
			return err
		}
		res = locked
		res.RoomID = room.ID
		res.CheckIn = in.CheckIn
		res.CheckOut = in.CheckOut
		res.Notes = in.Notes
		if in.GuestName != "" {
			res.GuestName = in.GuestName
		}
		res.UpdatedAt = s.now().UTC()
		return tx.Update(ctx, res)
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	s.log.Info().Int64("reservation_id", id).Str("actor", actor.ID).Msg("reservation rescheduled")
	return res, nil
}

// Cancel marks the reservation cancelled. Cancelling twice is a no-op.
func (s *ReservationService) Cancel(ctx context.Context, id int64, actor domain.Actor) (err error) {
	defer func() { s.finish(OutcomeCancelled, err) }()

	cur, err := s.authorized(ctx, id, actor)
	if err != nil {
		return err
	}
	if cur.Cancelled() {
		return nil
	}
	if err := s.repo.SetStatus(ctx, id, domain.StatusCancelled); err != nil {
		return fmt.Errorf("cancel reservation %d: %w", id, err)
	}
	s.log.Info().Int64("reservation_id", id).Str("actor", actor.ID).Msg("reservation cancelled")
	return nil
}

// Get returns the reservation to its owner or to staff.
func (s *ReservationService) Get(ctx context.Context, id int64, actor domain.Actor) (domain.Reservation, error) {
	return s.authorized(ctx, id, actor)
}

// ListForUser returns the actor's own reservations, latest check-in first.
func (s *ReservationService) ListForUser(ctx context.Context, actor domain.Actor) ([]domain.Reservation, error) {
	if actor.Anonymous() {
		return nil, domain.ErrForbidden
	}
	owner := actor.ID
	return s.repo.ListReservations(ctx, domain.ReservationsQuery{OwnerID: &owner, IncludeCancelled: true})
}

// List is the staff-wide listing used by exports.
func (s *ReservationService) List(ctx context.Context, q domain.ReservationsQuery, actor domain.Actor) ([]domain.Reservation, error) {
	if !actor.Staff {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListReservations(ctx, q)
}

// Availability reports whether a room is free for [in, out). It is a
// snapshot read and takes no lock. Only staff see which reservations hold the
// busy periods.
func (s *ReservationService) Availability(ctx context.Context, roomID int64, in, out time.Time, actor domain.Actor) (domain.Availability, error) {
	in, out = domain.DateOf(in), domain.DateOf(out)
	if !out.After(in) {
		return domain.Availability{}, domain.ErrDateOrder
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Availability{}, err
	}
	booked, err := s.repo.ListReservations(ctx, domain.ReservationsQuery{RoomID: &roomID})
	if err != nil {
		return domain.Availability{}, err
	}
	av := domain.Availability{RoomID: roomID, CheckIn: in, CheckOut: out}
	for i := len(booked) - 1; i >= 0; i-- { // listing is check_in descending
		c := booked[i]
		if !c.Overlaps(in, out) {
			continue
		}
		bp := domain.BusyPeriod{CheckIn: c.CheckIn, CheckOut: c.CheckOut}
		if actor.Staff {
			bp.ReservationID = c.ID
		}
		av.Busy = append(av.Busy, bp)
	}
	av.Available = room.Active && len(av.Busy) == 0
	return av, nil
}

func (s *ReservationService) authorized(ctx context.Context, id int64, actor domain.Actor) (domain.Reservation, error) {
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if !actor.CanAccess(r) {
		s.log.Warn().Int64("reservation_id", id).Str("actor", actor.ID).Msg("reservation access denied")
		return domain.Reservation{}, domain.ErrForbidden
	}
	return r, nil
}
