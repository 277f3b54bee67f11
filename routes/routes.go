package routes

import (
	"github.com/gofiber/fiber/v2"

	"lab-booking/controllers/admin"
	"lab-booking/controllers/auth"
	"lab-booking/controllers/booking"
	"lab-booking/controllers/catalog"
	"lab-booking/controllers/report"
	"lab-booking/logger"
	"lab-booking/middleware"
	"lab-booking/services/insights"
	"lab-booking/services/lifecycle"
	"lab-booking/storage"
)

// SetupRoutes wires every endpoint against the given storage backend.
func SetupRoutes(app *fiber.App, store storage.Storage, asyncLogger *logger.AsyncLogger) {
	insightsService := insights.NewService()
	lifecycleManager := lifecycle.NewManager(store)

	authController := auth.NewAuthController(store, asyncLogger)
	catalogController := catalog.NewCatalogController(store)
	bookingController := booking.NewBookingController(store, asyncLogger)
	reportController := report.NewReportController(store, insightsService)
	adminController := admin.NewAdminController(store, lifecycleManager, insightsService, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	api := app.Group("/api", middleware.RequestLogger(asyncLogger))

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)

	api.Get("/test-categories", catalogController.Categories)
	api.Get("/test-categories/:id", catalogController.Category)
	api.Get("/tests", catalogController.Tests)
	api.Get("/tests/category/:categoryId", catalogController.TestsByCategory)
	api.Get("/tests/:id", catalogController.Test)

	// Public report download, time-boxed by expiry date.
	api.Get("/reports/download/:reportId", reportController.Download)

	/*=============================================================================
	| Authenticated Routes
	===============================================================================*/
	authed := api.Group("", middleware.RequireAuth())
	authed.Post("/logout", authController.Logout)
	authed.Get("/user", authController.Profile)

	authed.Post("/bookings", bookingController.Store)
	authed.Get("/bookings", bookingController.Index)
	authed.Get("/bookings/:id", bookingController.Show)

	authed.Get("/reports", reportController.Index)
	authed.Post("/reports/generate-insights", reportController.GenerateInsights)
	authed.Get("/reports/:id", reportController.Show)

	/*=============================================================================
	| Admin Routes
	===============================================================================*/
	adminGroup := api.Group("/admin", middleware.RequireAuth(), middleware.RequireAdmin())
	adminGroup.Get("/bookings", adminController.Bookings)
	adminGroup.Patch("/bookings/:id/status", adminController.UpdateStatus)
	adminGroup.Post("/reports", adminController.CreateReport)
	adminGroup.Post("/test-categories", catalogController.CreateCategory)
	adminGroup.Post("/tests", catalogController.CreateTest)
}
