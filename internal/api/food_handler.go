package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/shareplate-api/internal/api/shared"
	"github.com/phrazzld/shareplate-api/internal/authz"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/service"
)

// FoodHandler handles food listing HTTP requests
type FoodHandler struct {
	foodService service.FoodService
	logger      *slog.Logger
}

// NewFoodHandler creates a new FoodHandler
func NewFoodHandler(foodService service.FoodService, logger *slog.Logger) *FoodHandler {
	if foodService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("foodService cannot be nil for FoodHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FoodHandler")
	}

	return &FoodHandler{
		foodService: foodService,
		logger:      logger.With(slog.String("component", "food_handler")),
	}
}

// decodeAttributes reads a body that must be a single JSON object.
func decodeAttributes(r *http.Request) (domain.Attributes, error) {
	var attrs domain.Attributes
	if err := shared.DecodeJSON(r, &attrs); err != nil {
		return nil, err
	}
	if attrs == nil {
		return nil, errors.New("request body is not a JSON object")
	}
	return attrs, nil
}

// CreateFood handles POST /foods requests
// The donor email and status are set by the server, never by the body.
func (h *FoodHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}

	attrs, err := decodeAttributes(r)
	if err != nil {
		log.Warn("invalid food body", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	food, err := h.foodService.Create(r.Context(), principal, attrs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add food")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateFoodResponse{
		Acknowledged: true,
		InsertedID:   food.ID,
	})
}

// ListFoods handles GET /foods requests
func (h *FoodHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.foodService.ListAvailable(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch foods")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, foods)
}

// ListFeaturedFoods handles GET /foods/featured requests
func (h *FoodHandler) ListFeaturedFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.foodService.ListFeatured(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch featured foods")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, foods)
}

// GetFood handles GET /foods/{id} requests
func (h *FoodHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := pathParam(w, r, "id", log)
	if !ok {
		return
	}

	food, err := h.foodService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch food")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, food)
}

// ListMyFoods handles GET /my-foods/{email} requests
func (h *FoodHandler) ListMyFoods(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}
	email, ok := pathParam(w, r, "email", log)
	if !ok {
		return
	}

	foods, err := h.foodService.ListByOwner(r.Context(), principal, email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch user foods")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, foods)
}

// UpdateFood handles PUT /foods/{id} requests
// Only the keys present in the body change.
func (h *FoodHandler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "id", log)
	if !ok {
		return
	}

	attrs, err := decodeAttributes(r)
	if err != nil {
		log.Warn("invalid food body", slog.String("food_id", id), slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.foodService.Update(r.Context(), principal, id, attrs); err != nil {
		HandleAPIError(w, r, err, "Failed to update food")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Food updated successfully")
}

// DeleteFood handles DELETE /foods/{id} requests
func (h *FoodHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.foodService.Delete(r.Context(), principal, id); err != nil {
		if errors.Is(err, authz.ErrNotOwner) {
			shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, "Forbidden: Only owner can delete", err)
			return
		}
		HandleAPIError(w, r, err, "Failed to delete food")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Food deleted successfully")
}
