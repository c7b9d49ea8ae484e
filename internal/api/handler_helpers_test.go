package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/shareplate-api/internal/api/middleware"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/mocks"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/service"
	"github.com/stretchr/testify/require"
)

const (
	donorEmail     = "donor@example.com"
	recipientEmail = "recipient@example.com"
	strangerEmail  = "stranger@example.com"

	donorToken     = "donor-token"
	recipientToken = "recipient-token"
	strangerToken  = "stranger-token"
)

type testEnv struct {
	router   http.Handler
	foods    *mocks.FoodStore
	requests *mocks.RequestStore
	verifier *mocks.Verifier
	logs     *logger.TestLogBuffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logs, log := logger.NewTestLogger(t)
	foods := mocks.NewFoodStore()
	requests := mocks.NewRequestStore()

	decider, err := service.NewSagaDecider(requests, foods, log)
	require.NoError(t, err)
	foodService, err := service.NewFoodService(foods, log)
	require.NoError(t, err)
	requestService, err := service.NewRequestService(requests, foods, decider, log)
	require.NoError(t, err)

	verifier := mocks.NewVerifier()
	verifier.Issue(donorToken, donorEmail)
	verifier.Issue(recipientToken, recipientEmail)
	verifier.Issue(strangerToken, strangerEmail)

	foodHandler := NewFoodHandler(foodService, log)
	requestHandler := NewRequestHandler(requestService, log)
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(log))
	r.Get("/foods", foodHandler.ListFoods)
	r.Get("/foods/featured", foodHandler.ListFeaturedFoods)
	r.Get("/foods/{id}", foodHandler.GetFood)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/foods", foodHandler.CreateFood)
		r.Put("/foods/{id}", foodHandler.UpdateFood)
		r.Delete("/foods/{id}", foodHandler.DeleteFood)
		r.Get("/my-foods/{email}", foodHandler.ListMyFoods)
		r.Post("/requests", requestHandler.CreateRequest)
		r.Get("/requests/{id}", requestHandler.ListMyRequests)
		r.Patch("/requests/{id}", requestHandler.DecideRequest)
		r.Delete("/requests/{id}", requestHandler.DeleteRequest)
	})

	return &testEnv{router: r, foods: foods, requests: requests, verifier: verifier, logs: logs}
}

func (e *testEnv) seedFood(owner string, status domain.FoodStatus, attrs domain.Attributes) string {
	if attrs == nil {
		attrs = domain.Attributes{"food_name": "Bread"}
	}
	return e.foods.Seed(&domain.Food{DonatorEmail: owner, Status: status, Attributes: attrs})
}

func (e *testEnv) seedRequest(foodID, email string, status domain.RequestStatus) string {
	return e.requests.Seed(&domain.DonationRequest{
		FoodID:    foodID,
		UserName:  "Requester",
		UserEmail: email,
		Status:    status,
	})
}

// do sends a request with an optional JSON body. A string body is sent raw.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]any](t, rec)["message"].(string)
}
