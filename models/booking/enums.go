package booking

// BookingStatus is the current stage of a booking in its fixed lifecycle.
type BookingStatus string

// Canonical statuses, in lifecycle order.
const (
	StatusBooked          BookingStatus = "booked"
	StatusSampleCollected BookingStatus = "sample_collected"
	StatusProcessing      BookingStatus = "processing"
	StatusAnalyzing       BookingStatus = "analyzing"
	StatusCompleted       BookingStatus = "completed"
)

func (bs BookingStatus) String() string {
	return string(bs)
}

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case StatusBooked, StatusSampleCollected, StatusProcessing, StatusAnalyzing, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsCompleted returns true if the booking has reached its terminal state
func (bs BookingStatus) IsCompleted() bool {
	return bs == StatusCompleted
}

// Index returns the position of the status in the lifecycle order, or -1
// for an unknown status.
func (bs BookingStatus) Index() int {
	for i, s := range GetAllBookingStatuses() {
		if s == bs {
			return i
		}
	}
	return -1
}

// GetAllBookingStatuses returns all valid booking statuses in lifecycle order
func GetAllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		StatusBooked,
		StatusSampleCollected,
		StatusProcessing,
		StatusAnalyzing,
		StatusCompleted,
	}
}
