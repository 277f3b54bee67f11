package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"lab-booking/logger"
	bookingModel "lab-booking/models/booking"
	reportModel "lab-booking/models/report"
	"lab-booking/services/insights"
	"lab-booking/services/lifecycle"
	"lab-booking/storage"
	"lab-booking/types"
	bookingTypes "lab-booking/types/booking"
	reportTypes "lab-booking/types/report"
)

// AdminController handles staff endpoints: the full booking list, status
// progression and report creation.
type AdminController struct {
	Store     storage.Storage
	Lifecycle *lifecycle.Manager
	Insights  *insights.Service
	Logger    *logger.AsyncLogger
}

func NewAdminController(store storage.Storage, manager *lifecycle.Manager, insightsService *insights.Service, asyncLogger *logger.AsyncLogger) *AdminController {
	return &AdminController{
		Store:     store,
		Lifecycle: manager,
		Insights:  insightsService,
		Logger:    asyncLogger,
	}
}

// Bookings lists every booking with its test and a limited view of the
// owning user.
func (ac *AdminController) Bookings(c *fiber.Ctx) error {
	bookings, err := ac.Store.GetBookings()
	if err != nil {
		logger.Error("Failed to fetch bookings", err)
		return internalError(c)
	}

	result := make([]fiber.Map, 0, len(bookings))
	for _, b := range bookings {
		entry := fiber.Map{"booking": b}

		if test, err := ac.Store.GetTest(b.TestID); err == nil {
			entry["test"] = test
		} else if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("Failed to fetch test for booking", err)
			return internalError(c)
		}

		if owner, err := ac.Store.GetUser(b.UserID); err == nil {
			entry["user"] = owner.Public()
		} else if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("Failed to fetch user for booking", err)
			return internalError(c)
		}

		result = append(result, entry)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Bookings fetched",
		Data:    result,
	})
}

// UpdateStatus advances a booking one lifecycle step.
func (ac *AdminController) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}

	var req bookingTypes.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}

	updated, err := ac.Lifecycle.Advance(uint(id), bookingModel.BookingStatus(req.Status), notes)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrInvalidStatus):
			return badRequest(c, "Invalid status")
		case errors.Is(err, lifecycle.ErrStepTooLarge):
			return badRequest(c, "Status can only move one step at a time")
		case errors.Is(err, storage.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
			})
		default:
			logger.Error("Failed to update booking status", err)
			return internalError(c)
		}
	}

	logger.Success(fmt.Sprintf("Booking %d status updated to %s", updated.ID, updated.Status))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking status updated",
		Data:    updated,
	})
}

// CreateReport stores raw results for a booking, generates insights and
// completes the booking. Insight generation degrades to the local fallback
// and never blocks the report write.
func (ac *AdminController) CreateReport(c *fiber.Ctx) error {
	var req reportTypes.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	if req.BookingID == 0 || req.Results == nil {
		return badRequest(c, "Missing required fields")
	}

	if _, err := ac.Store.GetBooking(req.BookingID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
			})
		}
		logger.Error("Failed to fetch booking", err)
		return internalError(c)
	}

	reportInsights := req.Insights
	if reportInsights == nil {
		reportInsights = ac.Insights.Generate(c.Context(), req.Results)
	}

	resultsJSON, err := json.Marshal(req.Results)
	if err != nil {
		return badRequest(c, "Invalid results payload")
	}
	insightsJSON, err := json.Marshal(reportInsights)
	if err != nil {
		logger.Error("Failed to encode insights", err)
		insightsJSON = nil
	}

	newReport := reportModel.Report{
		BookingID: req.BookingID,
		Results:   datatypes.JSON(resultsJSON),
		Insights:  datatypes.JSON(insightsJSON),
	}

	if err := ac.Store.CreateReport(&newReport); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
			})
		}
		logger.Error("Failed to create report", err)
		return internalError(c)
	}

	logger.Success(fmt.Sprintf("Report created successfully with ID: %d (%s)", newReport.ID, newReport.ReportID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Report created successfully",
		Data:    newReport,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
