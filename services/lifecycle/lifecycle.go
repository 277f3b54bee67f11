package lifecycle

import (
	"errors"
	"fmt"

	bookingModel "lab-booking/models/booking"
	"lab-booking/storage"
)

// ErrInvalidStatus is returned when the target status is not one of the
// canonical lifecycle values.
var ErrInvalidStatus = errors.New("invalid booking status")

// ErrStepTooLarge is returned when a status update tries to skip stages.
// Operators may move one step forward or backward (or repeat the current
// stage); only report creation jumps straight to completed.
var ErrStepTooLarge = errors.New("status can only move one step at a time")

// Manager enforces the booking status state machine on top of a storage
// backend.
type Manager struct {
	store storage.Storage
}

func NewManager(store storage.Storage) *Manager {
	return &Manager{store: store}
}

// Advance moves a booking to status, appending a history event. The target
// must be canonical and adjacent to the current stage.
func (m *Manager) Advance(bookingID uint, status bookingModel.BookingStatus, notes *string) (*bookingModel.Booking, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	current, err := m.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}

	from := current.Status.Index()
	to := status.Index()
	if diff := to - from; diff > 1 || diff < -1 {
		return nil, fmt.Errorf("%w: %s -> %s", ErrStepTooLarge, current.Status, status)
	}

	return m.store.UpdateBookingStatus(bookingID, status, notes)
}

// AllowedNext returns the statuses an operator may move to from current:
// the previous stage, the current stage and the next stage.
func AllowedNext(current bookingModel.BookingStatus) []bookingModel.BookingStatus {
	all := bookingModel.GetAllBookingStatuses()
	idx := current.Index()
	if idx < 0 {
		return nil
	}

	var out []bookingModel.BookingStatus
	for _, offset := range []int{-1, 0, 1} {
		if i := idx + offset; i >= 0 && i < len(all) {
			out = append(out, all[i])
		}
	}
	return out
}
