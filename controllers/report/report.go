package report

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"lab-booking/logger"
	"lab-booking/middleware"
	bookingModel "lab-booking/models/booking"
	catalogModel "lab-booking/models/catalog"
	reportModel "lab-booking/models/report"
	"lab-booking/services/insights"
	"lab-booking/storage"
	"lab-booking/types"
	reportTypes "lab-booking/types/report"
)

// ReportController handles the user-facing and public report endpoints.
type ReportController struct {
	Store    storage.Storage
	Insights *insights.Service
}

func NewReportController(store storage.Storage, insightsService *insights.Service) *ReportController {
	return &ReportController{Store: store, Insights: insightsService}
}

type reportWithContext struct {
	reportModel.Report
	Booking *bookingModel.Booking `json:"booking"`
	Test    *catalogModel.Test    `json:"test"`
}

// Index lists the authenticated user's reports with booking and test
// context.
func (rc *ReportController) Index(c *fiber.Ctx) error {
	reports, err := rc.Store.GetUserReports(middleware.UserID(c))
	if err != nil {
		logger.Error("Failed to fetch reports", err)
		return internalError(c)
	}

	result := make([]reportWithContext, 0, len(reports))
	for _, r := range reports {
		enriched, err := rc.enrich(r)
		if err != nil {
			return internalError(c)
		}
		result = append(result, enriched)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Reports fetched",
		Data:    result,
	})
}

// Show fetches one report. Only the booking owner or an admin may read it.
func (rc *ReportController) Show(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid report id")
	}

	r, err := rc.Store.GetReport(uint(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(c, "Report not found")
		}
		logger.Error("Failed to fetch report", err)
		return internalError(c)
	}

	b, err := rc.Store.GetBooking(r.BookingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(c, "Booking not found")
		}
		logger.Error("Failed to fetch booking for report", err)
		return internalError(c)
	}

	if b.UserID != middleware.UserID(c) && !middleware.IsAdminRole(middleware.Role(c)) {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Unauthorized",
		})
	}

	test, err := rc.Store.GetTest(b.TestID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Failed to fetch test for report", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Report fetched",
		Data:    reportWithContext{Report: *r, Booking: b, Test: test},
	})
}

// Download fetches a report by its external code. The endpoint is public
// but time-boxed by the report's expiry date.
func (rc *ReportController) Download(c *fiber.Ctx) error {
	r, err := rc.Store.GetReportByCode(c.Params("reportId"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(c, "Report not found")
		}
		logger.Error("Failed to fetch report by code", err)
		return internalError(c)
	}

	if r.IsExpired(time.Now()) {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Report link has expired",
		})
	}

	b, err := rc.Store.GetBooking(r.BookingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(c, "Booking not found")
		}
		logger.Error("Failed to fetch booking for report", err)
		return internalError(c)
	}

	test, err := rc.Store.GetTest(b.TestID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Failed to fetch test for report", err)
		return internalError(c)
	}

	data := fiber.Map{
		"report":  r,
		"booking": b,
		"test":    test,
	}
	if owner, err := rc.Store.GetUser(b.UserID); err == nil {
		data["user"] = owner.Public()
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Report fetched",
		Data:    data,
	})
}

// GenerateInsights produces insights for an ad hoc result set.
func (rc *ReportController) GenerateInsights(c *fiber.Ctx) error {
	var req reportTypes.GenerateInsightsRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid test results format")
	}
	if req.Results == nil {
		return badRequest(c, "Invalid test results format")
	}

	generated := rc.Insights.Generate(c.Context(), req.Results)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Insights generated",
		Data:    generated,
	})
}

func (rc *ReportController) enrich(r reportModel.Report) (reportWithContext, error) {
	out := reportWithContext{Report: r}

	b, err := rc.Store.GetBooking(r.BookingID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return out, nil
		}
		logger.Error("Failed to fetch booking for report", err)
		return out, err
	}
	out.Booking = b

	test, err := rc.Store.GetTest(b.TestID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Failed to fetch test for report", err)
		return out, err
	}
	out.Test = test
	return out, nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
		Status:  fiber.StatusNotFound,
		Message: message,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
