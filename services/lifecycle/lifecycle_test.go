package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingModel "lab-booking/models/booking"
	"lab-booking/storage"
)

func newTestBooking(t *testing.T, store *storage.MemoryStore) *bookingModel.Booking {
	t.Helper()
	address := "12 Lake Road"
	b := &bookingModel.Booking{
		TestID:         1,
		UserID:         1,
		ScheduledDate:  time.Now().Add(24 * time.Hour),
		CollectionType: bookingModel.CollectionHome,
		Address:        &address,
	}
	require.NoError(t, store.CreateBooking(b))
	return b
}

func TestAdvance(t *testing.T) {
	t.Run("initial state", func(t *testing.T) {
		store := storage.NewMemoryStore()
		b := newTestBooking(t, store)

		assert.Equal(t, bookingModel.StatusBooked, b.Status)

		events, err := store.GetBookingStatusEvents(b.ID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, bookingModel.StatusBooked, events[0].Status)
	})

	t.Run("one step forward", func(t *testing.T) {
		store := storage.NewMemoryStore()
		m := NewManager(store)
		b := newTestBooking(t, store)

		updated, err := m.Advance(b.ID, bookingModel.StatusSampleCollected, nil)
		require.NoError(t, err)
		assert.Equal(t, bookingModel.StatusSampleCollected, updated.Status)

		events, err := store.GetBookingStatusEvents(b.ID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, bookingModel.StatusSampleCollected, events[1].Status)
	})

	t.Run("one step backward", func(t *testing.T) {
		store := storage.NewMemoryStore()
		m := NewManager(store)
		b := newTestBooking(t, store)

		_, err := m.Advance(b.ID, bookingModel.StatusSampleCollected, nil)
		require.NoError(t, err)

		updated, err := m.Advance(b.ID, bookingModel.StatusBooked, nil)
		require.NoError(t, err)
		assert.Equal(t, bookingModel.StatusBooked, updated.Status)
	})

	t.Run("no-op repeat allowed", func(t *testing.T) {
		store := storage.NewMemoryStore()
		m := NewManager(store)
		b := newTestBooking(t, store)

		updated, err := m.Advance(b.ID, bookingModel.StatusBooked, nil)
		require.NoError(t, err)
		assert.Equal(t, bookingModel.StatusBooked, updated.Status)
	})

	t.Run("rejects skipping stages", func(t *testing.T) {
		store := storage.NewMemoryStore()
		m := NewManager(store)
		b := newTestBooking(t, store)

		_, err := m.Advance(b.ID, bookingModel.StatusProcessing, nil)
		assert.ErrorIs(t, err, ErrStepTooLarge)

		_, err = m.Advance(b.ID, bookingModel.StatusCompleted, nil)
		assert.ErrorIs(t, err, ErrStepTooLarge)

		// The failed attempts must not leave history behind.
		events, eventsErr := store.GetBookingStatusEvents(b.ID)
		require.NoError(t, eventsErr)
		assert.Len(t, events, 1)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		store := storage.NewMemoryStore()
		m := NewManager(store)
		b := newTestBooking(t, store)

		_, err := m.Advance(b.ID, bookingModel.BookingStatus("shipped"), nil)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown booking", func(t *testing.T) {
		store := storage.NewMemoryStore()
		m := NewManager(store)

		_, err := m.Advance(99, bookingModel.StatusBooked, nil)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("history timestamps are ordered", func(t *testing.T) {
		store := storage.NewMemoryStore()
		m := NewManager(store)
		b := newTestBooking(t, store)

		for _, status := range []bookingModel.BookingStatus{
			bookingModel.StatusSampleCollected,
			bookingModel.StatusProcessing,
			bookingModel.StatusAnalyzing,
		} {
			_, err := m.Advance(b.ID, status, nil)
			require.NoError(t, err)
		}

		events, err := store.GetBookingStatusEvents(b.ID)
		require.NoError(t, err)
		require.Len(t, events, 4)
		for i := 1; i < len(events); i++ {
			assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
		}

		current, err := store.GetBooking(b.ID)
		require.NoError(t, err)
		assert.Equal(t, events[len(events)-1].Status, current.Status)
	})
}

func TestAllowedNext(t *testing.T) {
	t.Run("from first stage", func(t *testing.T) {
		next := AllowedNext(bookingModel.StatusBooked)
		assert.Equal(t, []bookingModel.BookingStatus{
			bookingModel.StatusBooked,
			bookingModel.StatusSampleCollected,
		}, next)
	})

	t.Run("from middle stage", func(t *testing.T) {
		next := AllowedNext(bookingModel.StatusProcessing)
		assert.Equal(t, []bookingModel.BookingStatus{
			bookingModel.StatusSampleCollected,
			bookingModel.StatusProcessing,
			bookingModel.StatusAnalyzing,
		}, next)
	})

	t.Run("from terminal stage", func(t *testing.T) {
		next := AllowedNext(bookingModel.StatusCompleted)
		assert.Equal(t, []bookingModel.BookingStatus{
			bookingModel.StatusAnalyzing,
			bookingModel.StatusCompleted,
		}, next)
	})

	t.Run("unknown status", func(t *testing.T) {
		assert.Nil(t, AllowedNext(bookingModel.BookingStatus("shipped")))
	})
}
