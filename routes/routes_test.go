package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-booking/logger"
	bookingModel "lab-booking/models/booking"
	catalogModel "lab-booking/models/catalog"
	reportModel "lab-booking/models/report"
	userModel "lab-booking/models/user"
	"lab-booking/services/insights"
	"lab-booking/storage"
	"lab-booking/utils"
)

// apiEnvelope mirrors types.ApiResponse with a raw Data payload so each
// test can decode it into the shape it expects.
type apiEnvelope struct {
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Token   string          `json:"token,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func newTestApp(t *testing.T, store storage.Storage) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("GEMINI_API_KEY", "")

	app := fiber.New()
	SetupRoutes(app, store, logger.NewAsyncLogger(nil))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var envelope apiEnvelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp, envelope
}

func seedCatalog(t *testing.T, store storage.Storage) *catalogModel.Test {
	t.Helper()
	category := &catalogModel.TestCategory{Name: "Blood Tests"}
	require.NoError(t, store.CreateTestCategory(category))
	test := &catalogModel.Test{Name: "Lipid Profile", Price: 1500, CategoryID: category.ID}
	require.NoError(t, store.CreateTest(test))
	return test
}

func seedAccount(t *testing.T, store storage.Storage, username, role string) (*userModel.User, string) {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	account := &userModel.User{
		Username: username,
		Password: hash,
		FullName: "Test " + username,
		Email:    username + "@lab.example",
		Role:     role,
	}
	require.NoError(t, store.CreateUser(account))

	token, err := utils.GenerateToken(account)
	require.NoError(t, err)
	return account, token
}

func tomorrow() string {
	return time.Now().Add(24 * time.Hour).Format("2006-01-02")
}

func TestRegisterAndLogin(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store)

	payload := fiber.Map{
		"username":  "jdoe",
		"password":  "secret123",
		"full_name": "Jane Doe",
		"email":     "jane@lab.example",
	}

	resp, envelope := doJSON(t, app, fiber.MethodPost, "/api/register", "", payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, envelope.Token)

	var created userModel.User
	require.NoError(t, json.Unmarshal(envelope.Data, &created))
	assert.Equal(t, userModel.RoleUser, created.Role)

	t.Run("password never echoed", func(t *testing.T) {
		assert.NotContains(t, string(envelope.Data), "secret123")
	})

	t.Run("registration cannot claim a role", func(t *testing.T) {
		elevated := fiber.Map{
			"username":  "sneaky",
			"password":  "secret123",
			"full_name": "Sneaky User",
			"email":     "sneaky@lab.example",
			"role":      userModel.RoleAdmin,
		}
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/register", "", elevated)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)

		stored, err := store.GetUserByUsername("sneaky")
		require.NoError(t, err)
		assert.Equal(t, userModel.RoleUser, stored.Role)
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup := fiber.Map{
			"username":  "jdoe",
			"password":  "secret123",
			"full_name": "Other Jane",
			"email":     "other@lab.example",
		}
		resp, envelope := doJSON(t, app, fiber.MethodPost, "/api/register", "", dup)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Username already exists", envelope.Message)
	})

	t.Run("short password", func(t *testing.T) {
		weak := fiber.Map{
			"username":  "weak",
			"password":  "12345",
			"full_name": "Weak Pass",
			"email":     "weak@lab.example",
		}
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/register", "", weak)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login with valid credentials", func(t *testing.T) {
		resp, envelope := doJSON(t, app, fiber.MethodPost, "/api/login", "", fiber.Map{
			"username": "jdoe",
			"password": "secret123",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, envelope.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, envelope := doJSON(t, app, fiber.MethodPost, "/api/login", "", fiber.Map{
			"username": "jdoe",
			"password": "wrong-password",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid username or password", envelope.Message)
	})

	t.Run("unknown username", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/login", "", fiber.Map{
			"username": "nobody",
			"password": "secret123",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthGuards(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store)
	_, userToken := seedAccount(t, store, "patient", userModel.RoleUser)

	t.Run("missing token", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/bookings", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/bookings", "not-a-token", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("plain user cannot reach admin routes", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/admin/bookings", userToken, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("profile round trip", func(t *testing.T) {
		resp, envelope := doJSON(t, app, fiber.MethodGet, "/api/user", userToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var account userModel.User
		require.NoError(t, json.Unmarshal(envelope.Data, &account))
		assert.Equal(t, "patient", account.Username)
	})
}

func TestBookingValidation(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store)
	test := seedCatalog(t, store)
	_, token := seedAccount(t, store, "patient", userModel.RoleUser)

	cases := []struct {
		name    string
		payload fiber.Map
		message string
	}{
		{
			name:    "missing fields",
			payload: fiber.Map{"test_id": test.ID},
			message: "Missing required fields",
		},
		{
			name: "invalid collection type",
			payload: fiber.Map{
				"test_id": test.ID, "scheduled_date": tomorrow(), "collection_type": "drone",
			},
			message: "Invalid collection type",
		},
		{
			name: "home collection without address",
			payload: fiber.Map{
				"test_id": test.ID, "scheduled_date": tomorrow(), "collection_type": bookingModel.CollectionHome,
			},
			message: "Address is required for home collection",
		},
		{
			name: "past date",
			payload: fiber.Map{
				"test_id": test.ID, "scheduled_date": "2020-01-01", "collection_type": bookingModel.CollectionLab,
			},
			message: "Scheduled date cannot be in the past",
		},
		{
			name: "unknown test",
			payload: fiber.Map{
				"test_id": 999, "scheduled_date": tomorrow(), "collection_type": bookingModel.CollectionLab,
			},
			message: "Unknown test",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, envelope := doJSON(t, app, fiber.MethodPost, "/api/bookings", token, tc.payload)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.message, envelope.Message)
		})
	}

	t.Run("today is allowed", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/bookings", token, fiber.Map{
			"test_id":         test.ID,
			"scheduled_date":  time.Now().Format(time.RFC3339),
			"collection_type": bookingModel.CollectionLab,
		})
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	})
}

func TestBookingOwnership(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store)
	test := seedCatalog(t, store)

	owner, ownerToken := seedAccount(t, store, "owner", userModel.RoleUser)
	_, otherToken := seedAccount(t, store, "other", userModel.RoleUser)
	_, adminToken := seedAccount(t, store, "staff", userModel.RoleAdmin)

	booked := &bookingModel.Booking{
		TestID:         test.ID,
		UserID:         owner.ID,
		ScheduledDate:  time.Now().Add(24 * time.Hour),
		CollectionType: bookingModel.CollectionLab,
	}
	require.NoError(t, store.CreateBooking(booked))
	path := fmt.Sprintf("/api/bookings/%d", booked.ID)

	t.Run("owner can read", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, path, ownerToken, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, path, otherToken, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin can read any booking", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, path, adminToken, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("unknown booking", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/bookings/999", ownerToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("list is scoped to the caller", func(t *testing.T) {
		resp, envelope := doJSON(t, app, fiber.MethodGet, "/api/bookings", otherToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var list []json.RawMessage
		require.NoError(t, json.Unmarshal(envelope.Data, &list))
		assert.Empty(t, list)
	})
}

func TestStatusUpdateEndpoint(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store)
	test := seedCatalog(t, store)

	owner, _ := seedAccount(t, store, "owner", userModel.RoleUser)
	_, adminToken := seedAccount(t, store, "staff", userModel.RoleAdmin)

	booked := &bookingModel.Booking{
		TestID:         test.ID,
		UserID:         owner.ID,
		ScheduledDate:  time.Now().Add(24 * time.Hour),
		CollectionType: bookingModel.CollectionLab,
	}
	require.NoError(t, store.CreateBooking(booked))
	path := fmt.Sprintf("/bookings/%d/status", booked.ID)

	t.Run("one step forward", func(t *testing.T) {
		resp, envelope := doJSON(t, app, fiber.MethodPatch, "/api/admin"+path, adminToken, fiber.Map{
			"status": "sample_collected",
			"notes":  "courier picked up the sample",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var updated bookingModel.Booking
		require.NoError(t, json.Unmarshal(envelope.Data, &updated))
		assert.Equal(t, bookingModel.StatusSampleCollected, updated.Status)
	})

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		resp, envelope := doJSON(t, app, fiber.MethodPatch, "/api/admin"+path, adminToken, fiber.Map{
			"status": "completed",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Status can only move one step at a time", envelope.Message)
	})

	t.Run("unknown status", func(t *testing.T) {
		resp, envelope := doJSON(t, app, fiber.MethodPatch, "/api/admin"+path, adminToken, fiber.Map{
			"status": "teleported",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid status", envelope.Message)
	})

	t.Run("unknown booking", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPatch, "/api/admin/bookings/999/status", adminToken, fiber.Map{
			"status": "sample_collected",
		})
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

// expiredReportStore forces every report code lookup to come back past its
// expiry window.
type expiredReportStore struct {
	*storage.MemoryStore
}

func (s *expiredReportStore) GetReportByCode(code string) (*reportModel.Report, error) {
	r, err := s.MemoryStore.GetReportByCode(code)
	if err != nil {
		return nil, err
	}
	r.ExpiryDate = time.Now().Add(-time.Hour)
	return r, nil
}

func TestReportDownload(t *testing.T) {
	t.Run("valid link is public", func(t *testing.T) {
		store := storage.NewMemoryStore()
		app := newTestApp(t, store)
		test := seedCatalog(t, store)
		owner, _ := seedAccount(t, store, "owner", userModel.RoleUser)

		booked := &bookingModel.Booking{
			TestID:         test.ID,
			UserID:         owner.ID,
			ScheduledDate:  time.Now().Add(24 * time.Hour),
			CollectionType: bookingModel.CollectionLab,
		}
		require.NoError(t, store.CreateBooking(booked))
		r := &reportModel.Report{BookingID: booked.ID}
		require.NoError(t, store.CreateReport(r))

		resp, envelope := doJSON(t, app, fiber.MethodGet, "/api/reports/download/"+r.ReportID, "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var data struct {
			Report reportModel.Report     `json:"report"`
			User   map[string]interface{} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(envelope.Data, &data))
		assert.Equal(t, r.ReportID, data.Report.ReportID)
		assert.Equal(t, owner.FullName, data.User["full_name"])
		assert.NotContains(t, data.User, "password")
	})

	t.Run("unknown code", func(t *testing.T) {
		store := storage.NewMemoryStore()
		app := newTestApp(t, store)

		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/reports/download/OIS-REP-000000", "", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("expired link", func(t *testing.T) {
		memory := storage.NewMemoryStore()
		store := &expiredReportStore{MemoryStore: memory}
		app := newTestApp(t, store)
		test := seedCatalog(t, memory)
		owner, _ := seedAccount(t, memory, "owner", userModel.RoleUser)

		booked := &bookingModel.Booking{
			TestID:         test.ID,
			UserID:         owner.ID,
			ScheduledDate:  time.Now().Add(24 * time.Hour),
			CollectionType: bookingModel.CollectionLab,
		}
		require.NoError(t, memory.CreateBooking(booked))
		r := &reportModel.Report{BookingID: booked.ID}
		require.NoError(t, memory.CreateReport(r))

		resp, envelope := doJSON(t, app, fiber.MethodGet, "/api/reports/download/"+r.ReportID, "", nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Report link has expired", envelope.Message)
	})
}

// TestPatientJourney runs the whole flow: register, book a test, staff
// advances the sample through the lab, results are posted, and the patient
// reads the finished report including the flagged LDL value.
func TestPatientJourney(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store)
	test := seedCatalog(t, store)
	_, adminToken := seedAccount(t, store, "staff", userModel.RoleAdmin)

	// Register and capture the session token.
	resp, envelope := doJSON(t, app, fiber.MethodPost, "/api/register", "", fiber.Map{
		"username":  "jdoe",
		"password":  "secret123",
		"full_name": "Jane Doe",
		"email":     "jane@lab.example",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	patientToken := envelope.Token
	require.NotEmpty(t, patientToken)

	// Book a home collection.
	resp, envelope = doJSON(t, app, fiber.MethodPost, "/api/bookings", patientToken, fiber.Map{
		"test_id":         test.ID,
		"scheduled_date":  tomorrow(),
		"collection_type": bookingModel.CollectionHome,
		"address":         "42 Harbor Lane",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var booked bookingModel.Booking
	require.NoError(t, json.Unmarshal(envelope.Data, &booked))
	assert.Equal(t, bookingModel.StatusBooked, booked.Status)
	assert.Regexp(t, regexp.MustCompile(`^OIS-LAB-\d{6}$`), booked.BookingID)

	// Staff walks the sample through the lab one stage at a time.
	statusPath := fmt.Sprintf("/api/admin/bookings/%d/status", booked.ID)
	for _, status := range []bookingModel.BookingStatus{
		bookingModel.StatusSampleCollected,
		bookingModel.StatusProcessing,
		bookingModel.StatusAnalyzing,
	} {
		resp, _ := doJSON(t, app, fiber.MethodPatch, statusPath, adminToken, fiber.Map{
			"status": status,
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "advancing to %s", status)
	}

	// Results come in; LDL is above range.
	resp, envelope = doJSON(t, app, fiber.MethodPost, "/api/admin/reports", adminToken, fiber.Map{
		"booking_id": booked.ID,
		"results": []fiber.Map{
			{"name": "LDL Cholesterol", "value": 180, "unit": "mg/dL", "referenceRange": "0-130"},
			{"name": "HDL Cholesterol", "value": 55, "unit": "mg/dL", "referenceRange": "40-60"},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created reportModel.Report
	require.NoError(t, json.Unmarshal(envelope.Data, &created))
	assert.Regexp(t, regexp.MustCompile(`^OIS-REP-\d{6}$`), created.ReportID)

	// The booking is completed by the report write.
	completed, err := store.GetBooking(booked.ID)
	require.NoError(t, err)
	assert.Equal(t, bookingModel.StatusCompleted, completed.Status)

	events, err := store.GetBookingStatusEvents(booked.ID)
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, bookingModel.StatusCompleted, events[4].Status)

	// Insights flag the high LDL value.
	var generated insights.Insights
	require.NoError(t, json.Unmarshal(created.Insights, &generated))
	require.Len(t, generated.AbnormalValues, 1)
	assert.Equal(t, "LDL Cholesterol", generated.AbnormalValues[0].Name)
	assert.Equal(t, insights.SeverityHigh, generated.AbnormalValues[0].Severity)
	assert.NotEmpty(t, generated.Recommendations)

	// The patient sees the report with its context.
	resp, envelope = doJSON(t, app, fiber.MethodGet, "/api/reports", patientToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list []struct {
		reportModel.Report
		Booking *bookingModel.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ReportID, list[0].ReportID)
	require.NotNil(t, list[0].Booking)
	assert.Equal(t, booked.ID, list[0].Booking.ID)

	// A stranger cannot read it through the authed endpoint...
	_, strangerToken := seedAccount(t, store, "stranger", userModel.RoleUser)
	resp, _ = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/reports/%d", created.ID), strangerToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// ...but anyone holding the code can download it while it is fresh.
	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/reports/download/"+created.ReportID, "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
