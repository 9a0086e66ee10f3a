package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrDateOrder            = errors.New("check-out must be after check-in")
	ErrOverlap              = errors.New("room already booked in that range")
	ErrConflict             = errors.New("conflict")
	ErrInvalid              = errors.New("invalid input")
	ErrRoomInactive         = errors.New("room is not active")
	ErrReservationCancelled = errors.New("reservation is cancelled")
)

// OverlapError identifies the first existing reservation that blocks a booking.
type OverlapError struct {
	ConflictID int64
	CheckIn    time.Time
	CheckOut   time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: reservation %d holds %s to %s", ErrOverlap, e.ConflictID,
		e.CheckIn.Format(DateLayout), e.CheckOut.Format(DateLayout))
}

func (e *OverlapError) Is(target error) bool { return target == ErrOverlap }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
