package booking

import (
	"time"
)

// BookingStatusEvent is one row of the append-only status audit trail.
// History is never updated or deleted; the booking's current status field
// always equals the most recent event's status.
type BookingStatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for booking relationship
	BookingID uint    `gorm:"not null;index" json:"booking_id"`
	Booking   Booking `gorm:"foreignKey:BookingID" json:"-"`

	Status    BookingStatus `gorm:"type:varchar(20);not null" json:"status"`
	Timestamp time.Time     `gorm:"not null" json:"timestamp"`
	Notes     *string       `gorm:"type:text" json:"notes,omitempty"`
}

// TableName sets the table name for the BookingStatusEvent model
func (BookingStatusEvent) TableName() string {
	return "booking_status_events"
}
