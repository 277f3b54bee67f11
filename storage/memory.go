package storage

import (
	"sort"
	"sync"
	"time"

	"lab-booking/models/booking"
	"lab-booking/models/catalog"
	"lab-booking/models/report"
	"lab-booking/models/user"
)

// MemoryStore is the transient map-backed backend used for tests and
// demos. A single mutex guards every operation, so the multi-write units
// (booking creation, status updates, report creation) are serialized.
type MemoryStore struct {
	mu sync.Mutex

	users        map[uint]*user.User
	categories   map[uint]*catalog.TestCategory
	tests        map[uint]*catalog.Test
	bookings     map[uint]*booking.Booking
	statusEvents map[uint]*booking.BookingStatusEvent
	reports      map[uint]*report.Report

	nextUserID     uint
	nextCategoryID uint
	nextTestID     uint
	nextBookingID  uint
	nextEventID    uint
	nextReportID   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[uint]*user.User),
		categories:     make(map[uint]*catalog.TestCategory),
		tests:          make(map[uint]*catalog.Test),
		bookings:       make(map[uint]*booking.Booking),
		statusEvents:   make(map[uint]*booking.BookingStatusEvent),
		reports:        make(map[uint]*report.Report),
		nextUserID:     1,
		nextCategoryID: 1,
		nextTestID:     1,
		nextBookingID:  1,
		nextEventID:    1,
		nextReportID:   1,
	}
}

// Users

func (s *MemoryStore) GetUser(id uint) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) GetUserByUsername(username string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByEmail(email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextUserID
	s.nextUserID++
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	u.CreatedAt = time.Now()
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

// Test categories

func (s *MemoryStore) GetTestCategories() ([]catalog.TestCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.TestCategory, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetTestCategory(id uint) (*catalog.TestCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *MemoryStore) CreateTestCategory(c *catalog.TestCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextCategoryID
	s.nextCategoryID++
	if c.Icon == "" {
		c.Icon = "science"
	}
	copied := *c
	s.categories[c.ID] = &copied
	return nil
}

// Tests

func (s *MemoryStore) GetTests() ([]catalog.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Test, 0, len(s.tests))
	for _, t := range s.tests {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetTest(id uint) (*catalog.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *MemoryStore) GetTestsByCategory(categoryID uint) ([]catalog.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []catalog.Test
	for _, t := range s.tests {
		if t.CategoryID == categoryID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateTest(t *catalog.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[t.CategoryID]; !ok {
		return ErrNotFound
	}
	t.ID = s.nextTestID
	s.nextTestID++
	copied := *t
	s.tests[t.ID] = &copied
	return nil
}

// Bookings

func (s *MemoryStore) GetBookings() ([]booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]booking.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetBooking(id uint) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (s *MemoryStore) GetBookingByCode(code string) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.BookingID == code {
			copied := *b
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserBookings(userID uint) ([]booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateBooking(b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := uniqueCode(BookingCodePrefix, uint64(s.nextBookingID), s.bookingCodeTaken)
	if err != nil {
		return err
	}

	b.ID = s.nextBookingID
	s.nextBookingID++
	b.BookingID = code
	b.Status = booking.StatusBooked
	b.CreatedAt = time.Now()

	copied := *b
	s.bookings[b.ID] = &copied

	notes := "Test booked successfully"
	s.appendStatusEvent(b.ID, booking.StatusBooked, &notes)
	return nil
}

func (s *MemoryStore) UpdateBookingStatus(id uint, status booking.BookingStatus, notes *string) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateBookingStatusLocked(id, status, notes)
}

func (s *MemoryStore) updateBookingStatusLocked(id uint, status booking.BookingStatus, notes *string) (*booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}

	b.Status = status
	b.UpdatedAt = time.Now()

	if notes == nil {
		defaultNote := "Status updated to " + status.String()
		notes = &defaultNote
	}
	s.appendStatusEvent(id, status, notes)

	copied := *b
	return &copied, nil
}

func (s *MemoryStore) appendStatusEvent(bookingID uint, status booking.BookingStatus, notes *string) {
	event := &booking.BookingStatusEvent{
		ID:        s.nextEventID,
		BookingID: bookingID,
		Status:    status,
		Timestamp: time.Now(),
		Notes:     notes,
	}
	s.nextEventID++
	s.statusEvents[event.ID] = event
}

func (s *MemoryStore) GetBookingStatusEvents(bookingID uint) ([]booking.BookingStatusEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.BookingStatusEvent
	for _, e := range s.statusEvents {
		if e.BookingID == bookingID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) bookingCodeTaken(code string) bool {
	for _, b := range s.bookings {
		if b.BookingID == code {
			return true
		}
	}
	return false
}

// Reports

func (s *MemoryStore) GetReports() ([]report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]report.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetReport(id uint) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (s *MemoryStore) GetReportByCode(code string) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.ReportID == code {
			copied := *r
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserReports(userID uint) ([]report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make(map[uint]bool)
	for _, b := range s.bookings {
		if b.UserID == userID {
			owned[b.ID] = true
		}
	}

	var out []report.Report
	for _, r := range s.reports {
		if owned[r.BookingID] {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateReport persists the report and completes the owning booking under
// the same lock, so the two writes are never observed apart.
func (s *MemoryStore) CreateReport(r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[r.BookingID]; !ok {
		return ErrNotFound
	}

	code, err := uniqueCode(ReportCodePrefix, uint64(s.nextReportID), s.reportCodeTaken)
	if err != nil {
		return err
	}

	r.ID = s.nextReportID
	s.nextReportID++
	r.ReportID = code
	r.GeneratedDate = time.Now()
	r.ExpiryDate = r.GeneratedDate.Add(report.ExpiryWindow)

	copied := *r
	s.reports[r.ID] = &copied

	if _, err := s.updateBookingStatusLocked(r.BookingID, booking.StatusCompleted, nil); err != nil {
		delete(s.reports, r.ID)
		return err
	}
	return nil
}

func (s *MemoryStore) reportCodeTaken(code string) bool {
	for _, r := range s.reports {
		if r.ReportID == code {
			return true
		}
	}
	return false
}
