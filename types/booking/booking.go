package booking

// BookingCreateRequest is the payload for POST /api/bookings.
type BookingCreateRequest struct {
	TestID         uint   `json:"test_id"`
	ScheduledDate  string `json:"scheduled_date"`
	CollectionType string `json:"collection_type"`
	Address        string `json:"address"`
}

// StatusUpdateRequest is the payload for the admin status patch.
type StatusUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}
