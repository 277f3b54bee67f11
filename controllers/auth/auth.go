package auth

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"

	"lab-booking/constants"
	"lab-booking/logger"
	"lab-booking/middleware"
	userModel "lab-booking/models/user"
	"lab-booking/storage"
	"lab-booking/types"
	"lab-booking/utils"
)

// AuthController handles account registration and sessions.
type AuthController struct {
	Store  storage.Storage
	Logger *logger.AsyncLogger
}

func NewAuthController(store storage.Storage, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{Store: store, Logger: asyncLogger}
}

// setSecureCookie sets the session cookie, secure only in production.
func (ac *AuthController) setSecureCookie(c *fiber.Ctx, value string, maxAge int) {
	isProduction := os.Getenv("APP_ENV") == "production"

	c.Cookie(&fiber.Cookie{
		Name:     constants.AuthCookieName,
		Value:    value,
		HTTPOnly: true,
		Secure:   isProduction,
		SameSite: "Strict",
		MaxAge:   maxAge,
		Path:     "/",
	})
}

// Register creates a new patient account. The role is always "user";
// privileged accounts exist only through seeding.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req types.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if validationErr := req.Validate(); validationErr != "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: validationErr,
		})
	}

	if _, err := ac.Store.GetUserByUsername(req.Username); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Username already exists",
		})
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Failed to check existing username", err)
		return internalError(c)
	}

	if _, err := ac.Store.GetUserByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Email already exists",
		})
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Failed to check existing email", err)
		return internalError(c)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return internalError(c)
	}

	newUser := userModel.User{
		Username: req.Username,
		Password: hash,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     userModel.RoleUser,
	}
	if req.Phone != "" {
		newUser.Phone = &req.Phone
	}

	if err := ac.Store.CreateUser(&newUser); err != nil {
		logger.Error("Failed to create user", err)
		return internalError(c)
	}

	token, err := utils.GenerateToken(&newUser)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return internalError(c)
	}
	ac.setSecureCookie(c, token, int(utils.TokenTTL.Seconds()))

	logger.Success(fmt.Sprintf("User registered successfully with ID: %d", newUser.ID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Registration successful",
		Token:   token,
		Data:    newUser,
	})
}

// Login verifies credentials and starts a session.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req types.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	account, err := ac.Store.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Invalid username or password",
			})
		}
		logger.Error("Failed to look up user", err)
		return internalError(c)
	}

	if !utils.CheckPassword(account.Password, req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid username or password",
		})
	}

	token, err := utils.GenerateToken(account)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return internalError(c)
	}
	ac.setSecureCookie(c, token, int(utils.TokenTTL.Seconds()))

	logger.Success("User logged in: " + account.Username)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   token,
		Data:    account,
	})
}

// Logout clears the session cookie.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	ac.setSecureCookie(c, "", -1)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Logged out",
	})
}

// Profile returns the authenticated user's account.
func (ac *AuthController) Profile(c *fiber.Ctx) error {
	account, err := ac.Store.GetUser(middleware.UserID(c))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "User not found",
			})
		}
		logger.Error("Failed to load user", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Profile loaded",
		Data:    account,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
	})
}
