package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/shareplate-api/internal/api/shared"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/service"
	"github.com/phrazzld/shareplate-api/internal/store"
)

// RequestHandler handles donation request HTTP requests
type RequestHandler struct {
	requestService service.RequestService
	logger         *slog.Logger
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(requestService service.RequestService, logger *slog.Logger) *RequestHandler {
	if requestService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("requestService cannot be nil for RequestHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RequestHandler")
	}

	return &RequestHandler{
		requestService: requestService,
		logger:         logger.With(slog.String("component", "request_handler")),
	}
}

// CreateRequest handles POST /requests requests
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}

	var body CreateRequestBody
	if err := shared.DecodeJSON(r, &body); err != nil {
		log.Warn("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Missing required fields", err)
		return
	}
	body.FoodID = strings.TrimSpace(body.FoodID)
	body.UserName = strings.TrimSpace(body.UserName)
	if err := shared.ValidateRequest(&body); err != nil {
		log.Debug("request body failed validation", slog.String("reason", SanitizeValidationError(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Missing required fields", err)
		return
	}

	req, err := h.requestService.Create(r.Context(), principal, body.FoodID, body.UserName)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit request")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateRequestResponse{
		Message:   "Request submitted successfully",
		RequestID: req.ID,
	})
}

// DeleteRequest handles DELETE /requests/{id} requests
// Only the requester can withdraw a request; anything else reads as not found.
func (h *RequestHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.requestService.Delete(r.Context(), principal, id); err != nil {
		if errors.Is(err, store.ErrRequestNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, "Request not found or unauthorized", err)
			return
		}
		HandleAPIError(w, r, err, "Failed to delete request")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, "Request deleted successfully")
}

// ListMyRequests handles GET /requests/{email} requests
// The route shares its pattern with the id routes, so the value arrives as "id".
func (h *RequestHandler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}
	email, ok := pathParam(w, r, "id", log)
	if !ok {
		return
	}

	requests, err := h.requestService.ListByRequester(r.Context(), principal, email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch requests")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, requests)
}

// DecideRequest handles PATCH /requests/{id} requests
// The food's donor accepts or rejects a Pending request.
func (h *RequestHandler) DecideRequest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	principal, ok := principalOrAbort(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "id", log)
	if !ok {
		return
	}

	var body DecisionBody
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid status", err)
		return
	}
	if err := shared.ValidateRequest(&body); err != nil {
		log.Debug("decision failed validation", slog.String("reason", SanitizeValidationError(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid status", err)
		return
	}

	status := domain.RequestStatus(body.Status)
	if err := h.requestService.Decide(r.Context(), principal, id, status); err != nil {
		HandleAPIError(w, r, err, "Failed to update request")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK,
		fmt.Sprintf("Request %s successfully.", strings.ToLower(body.Status)))
}
