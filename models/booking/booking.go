package booking

import (
	"time"

	"lab-booking/models/catalog"
	"lab-booking/models/user"
)

// Collection type values.
const (
	CollectionHome = "home"
	CollectionLab  = "lab"
)

// Booking represents a scheduled diagnostic test for one user.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// BookingID is the external-facing code (OIS-LAB-######). Relational
	// references always use the numeric primary key.
	BookingID string `gorm:"type:varchar(20);not null;unique" json:"booking_id"`

	// Foreign key for test relationship
	TestID uint         `gorm:"not null;index" json:"test_id"`
	Test   catalog.Test `gorm:"foreignKey:TestID" json:"-"`

	// Foreign key for user relationship
	UserID uint      `gorm:"not null;index" json:"user_id"`
	User   user.User `gorm:"foreignKey:UserID" json:"-"`

	ScheduledDate  time.Time     `gorm:"not null" json:"scheduled_date"`
	CollectionType string        `gorm:"type:varchar(10);not null" json:"collection_type"`
	Status         BookingStatus `gorm:"type:varchar(20);not null" json:"status"`
	Address        *string       `gorm:"type:text" json:"address,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// IsValidCollectionType reports whether ct is a known collection type.
func IsValidCollectionType(ct string) bool {
	return ct == CollectionHome || ct == CollectionLab
}
