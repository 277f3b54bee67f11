package storage

import (
	"errors"

	"lab-booking/models/booking"
	"lab-booking/models/catalog"
	"lab-booking/models/report"
	"lab-booking/models/user"
)

// ErrNotFound is returned when a lookup by id or code matches nothing.
// Handlers map it to 404; every other storage error is a 500.
var ErrNotFound = errors.New("record not found")

// ErrCodeExhausted is returned when no unique external code could be
// produced. With a 900k code space this only happens near exhaustion.
var ErrCodeExhausted = errors.New("external code space exhausted")

// Storage is the repository contract shared by the in-memory and Postgres
// backends. Multi-write operations (booking creation, status updates,
// report creation) are atomic units in both implementations.
type Storage interface {
	// Users
	GetUser(id uint) (*user.User, error)
	GetUserByUsername(username string) (*user.User, error)
	GetUserByEmail(email string) (*user.User, error)
	CreateUser(u *user.User) error

	// Test categories
	GetTestCategories() ([]catalog.TestCategory, error)
	GetTestCategory(id uint) (*catalog.TestCategory, error)
	CreateTestCategory(c *catalog.TestCategory) error

	// Tests
	GetTests() ([]catalog.Test, error)
	GetTest(id uint) (*catalog.Test, error)
	GetTestsByCategory(categoryID uint) ([]catalog.Test, error)
	CreateTest(t *catalog.Test) error

	// Bookings. CreateBooking assigns the external code, forces the
	// initial booked status and appends the first history event.
	// UpdateBookingStatus overwrites the current status and appends a
	// history event with a server timestamp, as one unit.
	GetBookings() ([]booking.Booking, error)
	GetBooking(id uint) (*booking.Booking, error)
	GetBookingByCode(code string) (*booking.Booking, error)
	GetUserBookings(userID uint) ([]booking.Booking, error)
	CreateBooking(b *booking.Booking) error
	UpdateBookingStatus(id uint, status booking.BookingStatus, notes *string) (*booking.Booking, error)
	GetBookingStatusEvents(bookingID uint) ([]booking.BookingStatusEvent, error)

	// Reports. CreateReport assigns the external code and expiry, and
	// completes the owning booking (status overwrite + history event)
	// in the same atomic unit.
	GetReports() ([]report.Report, error)
	GetReport(id uint) (*report.Report, error)
	GetReportByCode(code string) (*report.Report, error)
	GetUserReports(userID uint) ([]report.Report, error)
	CreateReport(r *report.Report) error
}
