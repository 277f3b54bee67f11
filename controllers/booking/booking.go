package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"

	"lab-booking/logger"
	"lab-booking/middleware"
	bookingModel "lab-booking/models/booking"
	catalogModel "lab-booking/models/catalog"
	"lab-booking/storage"
	"lab-booking/types"
	bookingTypes "lab-booking/types/booking"
)

// BookingController handles the user-facing booking endpoints.
type BookingController struct {
	Storage storage.Storage
	Logger *logger.AsyncLogger
}

func NewBookingController(store storage.Storage, asyncLogger *logger.AsyncLogger) *BookingController {
	return &BookingController{Storage: store, Logger: asyncLogger}
}

// bookingWithTest denormalizes the owning test into list responses.
type bookingWithTest struct {
	bookingModel.Booking
	Test *catalogModel.Test `json:"test"`
}

// Store creates a new booking for the authenticated user.
func (bc *BookingController) Store(c *fiber.Ctx) error {
	var req bookingTypes.BookingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}

	if req.TestID == 0 || req.ScheduledDate == "" || req.CollectionType == "" {
		return badRequest(c, "Missing required fields")
	}
	if !bookingModel.IsValidCollectionType(req.CollectionType) {
		return badRequest(c, "Invalid collection type")
	}
	if req.CollectionType == bookingModel.CollectionHome && strings.TrimSpace(req.Address) == "" {
		return badRequest(c, "Address is required for home collection")
	}

	scheduledDate, err := parseScheduledDate(req.ScheduledDate)
	if err != nil {
		return badRequest(c, "Invalid scheduled date")
	}
	if scheduledDate.Before(now.BeginningOfDay()) {
		return badRequest(c, "Scheduled date cannot be in the past")
	}

	if _, err := bc.Storage.GetTest(req.TestID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return badRequest(c, "Unknown test")
		}
		logger.Error("Failed to look up test", err)
		return internalError(c)
	}

	newBooking := bookingModel.Booking{
		TestID:         req.TestID,
		UserID:         middleware.UserID(c),
		ScheduledDate:  scheduledDate,
		CollectionType: req.CollectionType,
	}
	if req.CollectionType == bookingModel.CollectionHome {
		address := req.Address
		newBooking.Address = &address
	}

	if err := bc.Storage.CreateBooking(&newBooking); err != nil {
		logger.Error("Failed to create booking", err)
		return internalError(c)
	}

	logger.Success(fmt.Sprintf("Booking created successfully with ID: %d (%s)", newBooking.ID, newBooking.BookingID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Booking created successfully",
		Data:    newBooking,
	})
}

// Index lists the authenticated user's bookings with their tests.
func (bc *BookingController) Index(c *fiber.Ctx) error {
	bookings, err := bc.Storage.GetUserBookings(middleware.UserID(c))
	if err != nil {
		logger.Error("Failed to fetch bookings", err)
		return internalError(c)
	}

	result := make([]bookingWithTest, 0, len(bookings))
	for _, b := range bookings {
		test, err := bc.Storage.GetTest(b.TestID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Error("Failed to fetch test for booking", err)
			return internalError(c)
		}
		result = append(result, bookingWithTest{Booking: b, Test: test})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Bookings fetched",
		Data:    result,
	})
}

// Show fetches one booking with its test and status history. Only the
// owner or an admin may read it.
func (bc *BookingController) Show(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return badRequest(c, "Invalid booking id")
	}

	b, err := bc.Storage.GetBooking(uint(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: "Booking not found",
			})
		}
		logger.Error("Failed to fetch booking", err)
		return internalError(c)
	}

	if b.UserID != middleware.UserID(c) && !middleware.IsAdminRole(middleware.Role(c)) {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Unauthorized",
		})
	}

	statuses, err := bc.Storage.GetBookingStatusEvents(b.ID)
	if err != nil {
		logger.Error("Failed to fetch booking statuses", err)
		return internalError(c)
	}

	test, err := bc.Storage.GetTest(b.TestID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Failed to fetch test for booking", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Booking fetched",
		Data: fiber.Map{
			"booking":  b,
			"test":     test,
			"statuses": statuses,
		},
	})
}

// parseScheduledDate accepts RFC3339 timestamps or plain dates.
func parseScheduledDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
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
