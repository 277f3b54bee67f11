package report

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"lab-booking/models/booking"
)

// ExpiryWindow is how long the public report-by-code link stays valid.
const ExpiryWindow = 72 * time.Hour

// TestResult is one measured parameter of a report. Value is numeric for
// quantitative parameters and free text otherwise, so it stays untyped.
type TestResult struct {
	Name           string      `json:"name"`
	Value          interface{} `json:"value"`
	Unit           string      `json:"unit"`
	ReferenceRange string      `json:"referenceRange"`
}

// Report is the finalized result set for a completed booking.
type Report struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for booking relationship; effectively 1:1 once created.
	BookingID uint            `gorm:"not null;index" json:"booking_id"`
	Booking   booking.Booking `gorm:"foreignKey:BookingID" json:"-"`

	// ReportID is the external-facing code (OIS-REP-######) used for
	// public downloads.
	ReportID string `gorm:"type:varchar(20);not null;unique" json:"report_id"`

	Results  datatypes.JSON `gorm:"type:json" json:"results"`
	Insights datatypes.JSON `gorm:"type:json" json:"insights,omitempty"`

	GeneratedDate time.Time `gorm:"not null" json:"generated_date"`
	ExpiryDate    time.Time `gorm:"not null" json:"expiry_date"`
}

// TableName sets the table name for the Report model
func (Report) TableName() string {
	return "reports"
}

// IsExpired reports whether the public download link is past its window.
func (r *Report) IsExpired(at time.Time) bool {
	return at.After(r.ExpiryDate)
}

// DecodeResults unmarshals the stored results column.
func (r *Report) DecodeResults() ([]TestResult, error) {
	var results []TestResult
	if len(r.Results) == 0 {
		return results, nil
	}
	if err := json.Unmarshal(r.Results, &results); err != nil {
		return nil, err
	}
	return results, nil
}
