package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/mocks"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	donorEmail    = "donor@example.com"
	requesterMail = "requester@example.com"
	otherEmail    = "other@example.com"
)

type testServer struct {
	handler  http.Handler
	foods    *mocks.FoodStore
	requests *mocks.RequestStore
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            3000,
			LogLevel:        "debug",
			AllowedOrigins:  config.DefaultAllowedOrigins,
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{Driver: driverMongo, URL: "mongodb://localhost:27017", Name: "foodDB"},
		Auth:     config.AuthConfig{Provider: "hmac", CertsURL: config.GoogleSecureTokenCertsURL},
	}
}

// newTestServer wires the real router over in-memory stores and the saga decider.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	_, log := logger.NewTestLogger(t)
	foods := mocks.NewFoodStore()
	requests := mocks.NewRequestStore()

	verifier := mocks.NewVerifier()
	verifier.Issue("donor", donorEmail)
	verifier.Issue("requester", requesterMail)
	verifier.Issue("other", otherEmail)

	decider, err := service.NewSagaDecider(requests, foods, log)
	require.NoError(t, err)

	app := &application{
		config:       testConfig(),
		logger:       log,
		foodStore:    foods,
		requestStore: requests,
		decider:      decider,
		verifier:     verifier,
	}
	require.NoError(t, app.setupServices())

	return &testServer{handler: app.setupRouter(), foods: foods, requests: requests}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_RootAndHealth(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rootBanner, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_DonationLifecycle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	// Donor lists food; client-supplied system fields are ignored.
	rec := srv.do(t, http.MethodPost, "/foods", "donor", map[string]any{
		"food_name":     "Lentil soup",
		"food_quantity": 4,
		"food_status":   "Donated",
		"donator_email": "spoof@example.com",
		"featured":      true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, true, created["acknowledged"])
	foodID, _ := created["insertedId"].(string)
	require.NotEmpty(t, foodID)

	rec = srv.do(t, http.MethodGet, "/foods/"+foodID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	food := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, "Available", food["food_status"])
	assert.Equal(t, donorEmail, food["donator_email"])
	assert.Equal(t, "Lentil soup", food["food_name"])

	// Requester claims it once; the repeat is a conflict.
	rec = srv.do(t, http.MethodPost, "/requests", "requester", map[string]any{
		"food_id":   foodID,
		"user_name": "Rae",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reqBody := decodeJSON[map[string]any](t, rec)
	requestID, _ := reqBody["requestId"].(string)
	require.NotEmpty(t, requestID)

	rec = srv.do(t, http.MethodPost, "/requests", "requester", map[string]any{
		"food_id":   foodID,
		"user_name": "Rae",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, srv.requests.Count())

	// Someone other than the donor cannot decide.
	rec = srv.do(t, http.MethodPatch, "/requests/"+requestID, "other", map[string]any{"status": "Accepted"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domain.RequestStatusPending, srv.requests.Snapshot(requestID).Status)

	// The donor accepts and the food is donated.
	rec = srv.do(t, http.MethodPatch, "/requests/"+requestID, "donor", map[string]any{"status": "Accepted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Request accepted successfully.", decodeJSON[map[string]any](t, rec)["message"])

	rec = srv.do(t, http.MethodGet, "/foods/"+foodID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Donated", decodeJSON[map[string]any](t, rec)["food_status"])

	// Donated food leaves the public listings.
	rec = srv.do(t, http.MethodGet, "/foods", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[[]map[string]any](t, rec))

	rec = srv.do(t, http.MethodGet, "/foods/featured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[[]map[string]any](t, rec))

	// A second decision on the same request is refused.
	rec = srv.do(t, http.MethodPatch, "/requests/"+requestID, "donor", map[string]any{"status": "Rejected"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.RequestStatusAccepted, srv.requests.Snapshot(requestID).Status)
}

func TestRouter_AuthenticationAndSelfAccess(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
	}{
		{"anonymous create food", http.MethodPost, "/foods", "", map[string]any{"food_name": "Rice"}, http.StatusUnauthorized},
		{"unknown token", http.MethodPost, "/foods", "forged", map[string]any{"food_name": "Rice"}, http.StatusUnauthorized},
		{"anonymous my foods", http.MethodGet, "/my-foods/" + donorEmail, "", nil, http.StatusUnauthorized},
		{"foreign my foods", http.MethodGet, "/my-foods/" + donorEmail, "other", nil, http.StatusForbidden},
		{"own my foods", http.MethodGet, "/my-foods/" + donorEmail, "donor", nil, http.StatusOK},
		{"foreign requests", http.MethodGet, "/requests/" + requesterMail, "other", nil, http.StatusForbidden},
		{"own requests", http.MethodGet, "/requests/" + requesterMail, "requester", nil, http.StatusOK},
		{"public listing", http.MethodGet, "/foods", "", nil, http.StatusOK},
		{"malformed food id", http.MethodGet, "/foods/not-an-id", "", nil, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.do(t, tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_OwnerOnlyMutations(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	foodID := srv.foods.Seed(&domain.Food{
		DonatorEmail: donorEmail,
		Status:       domain.FoodStatusAvailable,
		Attributes:   domain.Attributes{"food_name": "Apples"},
	})

	rec := srv.do(t, http.MethodPut, "/foods/"+foodID, "other", map[string]any{"food_name": "Pears"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = srv.do(t, http.MethodDelete, "/foods/"+foodID, "other", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Apples", srv.foods.Snapshot(foodID).Attributes["food_name"])

	rec = srv.do(t, http.MethodPut, "/foods/"+foodID, "donor", map[string]any{"food_name": "Pears"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Pears", srv.foods.Snapshot(foodID).Attributes["food_name"])

	rec = srv.do(t, http.MethodDelete, "/foods/"+foodID, "donor", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, srv.foods.Snapshot(foodID))

	rec = srv.do(t, http.MethodDelete, "/foods/"+foodID, "donor", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/foods", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
		rec := httptest.NewRecorder()

		srv.handler.ServeHTTP(rec, req)

		assert.Contains(t, []int{http.StatusOK, http.StatusNoContent}, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin gets no grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()

		srv.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
