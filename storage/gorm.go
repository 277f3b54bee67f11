package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lab-booking/models/booking"
	"lab-booking/models/catalog"
	"lab-booking/models/report"
	"lab-booking/models/user"
)

// GormStore is the persistent Postgres backend.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Users

func (s *GormStore) GetUser(id uint) (*user.User, error) {
	var u user.User
	if err := s.db.First(&u, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByUsername(username string) (*user.User, error) {
	var u user.User
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(email string) (*user.User, error) {
	var u user.User
	if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(u *user.User) error {
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	return s.db.Create(u).Error
}

// Test categories

func (s *GormStore) GetTestCategories() ([]catalog.TestCategory, error) {
	var categories []catalog.TestCategory
	if err := s.db.Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *GormStore) GetTestCategory(id uint) (*catalog.TestCategory, error) {
	var c catalog.TestCategory
	if err := s.db.First(&c, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *GormStore) CreateTestCategory(c *catalog.TestCategory) error {
	if c.Icon == "" {
		c.Icon = "science"
	}
	return s.db.Create(c).Error
}

// Tests

func (s *GormStore) GetTests() ([]catalog.Test, error) {
	var tests []catalog.Test
	if err := s.db.Order("id").Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (s *GormStore) GetTest(id uint) (*catalog.Test, error) {
	var t catalog.Test
	if err := s.db.First(&t, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (s *GormStore) GetTestsByCategory(categoryID uint) ([]catalog.Test, error) {
	var tests []catalog.Test
	if err := s.db.Where("category_id = ?", categoryID).Order("id").Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (s *GormStore) CreateTest(t *catalog.Test) error {
	var c catalog.TestCategory
	if err := s.db.First(&c, t.CategoryID).Error; err != nil {
		return mapErr(err)
	}
	return s.db.Create(t).Error
}

// Bookings

func (s *GormStore) GetBookings() ([]booking.Booking, error) {
	var bookings []booking.Booking
	if err := s.db.Order("id").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *GormStore) GetBooking(id uint) (*booking.Booking, error) {
	var b booking.Booking
	if err := s.db.First(&b, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (s *GormStore) GetBookingByCode(code string) (*booking.Booking, error) {
	var b booking.Booking
	if err := s.db.Where("booking_id = ?", code).First(&b).Error; err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (s *GormStore) GetUserBookings(userID uint) ([]booking.Booking, error) {
	var bookings []booking.Booking
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *GormStore) CreateBooking(b *booking.Booking) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		code, err := uniqueCode(BookingCodePrefix, nextSequence(tx, &booking.Booking{}), func(c string) bool {
			var count int64
			tx.Model(&booking.Booking{}).Where("booking_id = ?", c).Count(&count)
			return count > 0
		})
		if err != nil {
			return err
		}

		b.BookingID = code
		b.Status = booking.StatusBooked

		if err := tx.Create(b).Error; err != nil {
			return err
		}

		notes := "Test booked successfully"
		event := booking.BookingStatusEvent{
			BookingID: b.ID,
			Status:    booking.StatusBooked,
			Timestamp: time.Now(),
			Notes:     &notes,
		}
		return tx.Create(&event).Error
	})
}

// UpdateBookingStatus overwrites the current status and appends the audit
// row inside one transaction, holding a row lock on the booking so
// concurrent updates and report completion serialize.
func (s *GormStore) UpdateBookingStatus(id uint, status booking.BookingStatus, notes *string) (*booking.Booking, error) {
	var b booking.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return updateBookingStatusTx(tx, &b, id, status, notes)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func updateBookingStatusTx(tx *gorm.DB, b *booking.Booking, id uint, status booking.BookingStatus, notes *string) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(b, id).Error; err != nil {
		return mapErr(err)
	}

	b.Status = status
	if err := tx.Model(b).Update("status", status).Error; err != nil {
		return err
	}

	if notes == nil {
		defaultNote := "Status updated to " + status.String()
		notes = &defaultNote
	}
	event := booking.BookingStatusEvent{
		BookingID: b.ID,
		Status:    status,
		Timestamp: time.Now(),
		Notes:     notes,
	}
	return tx.Create(&event).Error
}

func (s *GormStore) GetBookingStatusEvents(bookingID uint) ([]booking.BookingStatusEvent, error) {
	var events []booking.BookingStatusEvent
	if err := s.db.Where("booking_id = ?", bookingID).Order("timestamp, id").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Reports

func (s *GormStore) GetReports() ([]report.Report, error) {
	var reports []report.Report
	if err := s.db.Order("id").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *GormStore) GetReport(id uint) (*report.Report, error) {
	var r report.Report
	if err := s.db.First(&r, id).Error; err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (s *GormStore) GetReportByCode(code string) (*report.Report, error) {
	var r report.Report
	if err := s.db.Where("report_id = ?", code).First(&r).Error; err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}

func (s *GormStore) GetUserReports(userID uint) ([]report.Report, error) {
	var reports []report.Report
	err := s.db.
		Joins("JOIN bookings ON bookings.id = reports.booking_id").
		Where("bookings.user_id = ?", userID).
		Order("reports.id").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// CreateReport persists the report and completes the owning booking in one
// transaction: both writes succeed or both roll back.
func (s *GormStore) CreateReport(r *report.Report) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var b booking.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, r.BookingID).Error; err != nil {
			return mapErr(err)
		}

		code, err := uniqueCode(ReportCodePrefix, nextSequence(tx, &report.Report{}), func(c string) bool {
			var count int64
			tx.Model(&report.Report{}).Where("report_id = ?", c).Count(&count)
			return count > 0
		})
		if err != nil {
			return err
		}

		r.ReportID = code
		r.GeneratedDate = time.Now()
		r.ExpiryDate = r.GeneratedDate.Add(report.ExpiryWindow)

		if err := tx.Create(r).Error; err != nil {
			return err
		}

		return updateBookingStatusTx(tx, &b, b.ID, booking.StatusCompleted, nil)
	})
}

// nextSequence estimates the next primary key for the sequence-derived
// code fallback. Only consulted after repeated random collisions.
func nextSequence(tx *gorm.DB, model interface{}) uint64 {
	var maxID uint64
	tx.Model(model).Select("COALESCE(MAX(id), 0)").Scan(&maxID)
	return maxID + 1
}
