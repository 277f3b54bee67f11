package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"lab-booking/database"
	"lab-booking/logger"
	"lab-booking/routes"
	"lab-booking/storage"
)

func main() {
	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768,
		WriteBufferSize: 32768,
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		BodyLimit:       10 * 1024 * 1024,
	})
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
		fmt.Println("Error loading .env file", err)
	}

	var store storage.Storage
	var asyncLogger *logger.AsyncLogger

	// STORAGE_BACKEND=memory runs the transient demo store with no
	// database dependency.
	if os.Getenv("STORAGE_BACKEND") == "memory" {
		logger.Warning("Using in-memory storage; all data is lost on restart")
		store = storage.NewMemoryStore()
		asyncLogger = logger.NewAsyncLogger(nil)
	} else {
		db, err := database.InitDB()
		if err != nil {
			logger.Error("Failed to connect to the database", err)
			return
		}
		store = storage.NewGormStore(db)
		asyncLogger = logger.NewAsyncLogger(db)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("FRONTEND_URL"),
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app, store, asyncLogger)

	appHost := os.Getenv("APP_HOST")
	appPort := os.Getenv("APP_PORT")
	logger.Success("Server is running on ip: " + appHost + " port: " + appPort)
	if err := app.Listen(appHost + ":" + appPort); err != nil {
		logger.Error("Server stopped", err)
	}
}
