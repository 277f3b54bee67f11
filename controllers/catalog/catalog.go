package catalog

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"lab-booking/logger"
	catalogModel "lab-booking/models/catalog"
	"lab-booking/storage"
	"lab-booking/types"
)

// CatalogController serves the public test catalog and its admin
// management endpoints.
type CatalogController struct {
	Store storage.Storage
}

func NewCatalogController(store storage.Storage) *CatalogController {
	return &CatalogController{Store: store}
}

// Categories lists all test categories.
func (cc *CatalogController) Categories(c *fiber.Ctx) error {
	categories, err := cc.Store.GetTestCategories()
	if err != nil {
		logger.Error("Failed to fetch test categories", err)
		return internalError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Test categories fetched",
		Data:    categories,
	})
}

// Category fetches one category by id.
func (cc *CatalogController) Category(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid category id")
	}

	category, err := cc.Store.GetTestCategory(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(c, "Test category not found")
		}
		logger.Error("Failed to fetch test category", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Test category fetched",
		Data:    category,
	})
}

// Tests lists all tests.
func (cc *CatalogController) Tests(c *fiber.Ctx) error {
	tests, err := cc.Store.GetTests()
	if err != nil {
		logger.Error("Failed to fetch tests", err)
		return internalError(c)
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Tests fetched",
		Data:    tests,
	})
}

// Test fetches one test by id.
func (cc *CatalogController) Test(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid test id")
	}

	test, err := cc.Store.GetTest(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFound(c, "Test not found")
		}
		logger.Error("Failed to fetch test", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Test fetched",
		Data:    test,
	})
}

// TestsByCategory lists the tests of one category.
func (cc *CatalogController) TestsByCategory(c *fiber.Ctx) error {
	categoryID, err := parseID(c, "categoryId")
	if err != nil {
		return badRequest(c, "Invalid category id")
	}

	tests, err := cc.Store.GetTestsByCategory(categoryID)
	if err != nil {
		logger.Error("Failed to fetch tests by category", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Tests fetched",
		Data:    tests,
	})
}

// CreateCategory adds a test category (admin).
func (cc *CatalogController) CreateCategory(c *fiber.Ctx) error {
	var category catalogModel.TestCategory
	if err := c.BodyParser(&category); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	if category.Name == "" {
		return badRequest(c, "Category name is required")
	}

	category.ID = 0
	if err := cc.Store.CreateTestCategory(&category); err != nil {
		logger.Error("Failed to create test category", err)
		return internalError(c)
	}

	logger.Success(fmt.Sprintf("Test category created with ID: %d", category.ID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Test category created",
		Data:    category,
	})
}

// CreateTest adds a test offering (admin).
func (cc *CatalogController) CreateTest(c *fiber.Ctx) error {
	var test catalogModel.Test
	if err := c.BodyParser(&test); err != nil {
		logger.Error("Failed to parse request body", err)
		return badRequest(c, "Invalid request body")
	}
	if test.Name == "" {
		return badRequest(c, "Test name is required")
	}
	if test.Price <= 0 {
		return badRequest(c, "Price must be a positive integer")
	}

	test.ID = 0
	if err := cc.Store.CreateTest(&test); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return badRequest(c, "Unknown test category")
		}
		logger.Error("Failed to create test", err)
		return internalError(c)
	}

	logger.Success(fmt.Sprintf("Test created with ID: %d", test.ID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Test created",
		Data:    test,
	})
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", c.Params(param))
	}
	return uint(id), nil
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
