package report

import (
	reportModel "lab-booking/models/report"
)

// CreateReportRequest is the payload for POST /api/admin/reports. Insights
// may be supplied pre-built; when absent they are generated server-side.
type CreateReportRequest struct {
	BookingID uint                     `json:"booking_id"`
	Results   []reportModel.TestResult `json:"results"`
	Insights  interface{}              `json:"insights"`
}

// GenerateInsightsRequest is the payload for the ad hoc insights endpoint.
type GenerateInsightsRequest struct {
	Results []reportModel.TestResult `json:"results"`
}
