package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/store"
)

const requestColumns = `id::text, food_id::text, user_name, user_email, status, requested_at, updated_at`

// RequestStore implements the store.RequestStore interface
// using a PostgreSQL database as the storage backend.
type RequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewRequestStore creates a new PostgreSQL implementation of the RequestStore interface.
// If logger is nil, a default logger will be used.
func NewRequestStore(db store.DBTX, logger *slog.Logger) *RequestStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "request_store")),
	}
}

// Ensure RequestStore implements store.RequestStore interface
var _ store.RequestStore = (*RequestStore)(nil)

// WithTx returns a RequestStore that runs its queries inside tx.
func (s *RequestStore) WithTx(tx *sql.Tx) *RequestStore {
	return &RequestStore{db: tx, logger: s.logger}
}

// Create implements store.RequestStore.Create
// The requests_food_user_unique constraint turns a concurrent duplicate into
// store.ErrDuplicateRequest.
func (s *RequestStore) Create(ctx context.Context, req *domain.DonationRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := req.Validate(); err != nil {
		log.Warn("request validation failed during create", slog.String("error", err.Error()))
		return store.NewStoreError("request", "create", "validation failed", errors.Join(store.ErrInvalidEntity, err))
	}

	foodID, err := parseID(req.FoodID)
	if err != nil {
		return err
	}

	id := uuid.New()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO requests (id, food_id, user_name, user_email, status, requested_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, foodID, req.UserName, req.UserEmail, string(req.Status), req.RequestedAt, req.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("duplicate request rejected by unique constraint",
				slog.String("food_id", req.FoodID))
			return MapUniqueViolation(err, store.ErrDuplicateRequest)
		}
		log.Error("failed to create request", slog.String("error", err.Error()))
		return store.NewStoreError("request", "create", "insert failed", MapError(err))
	}

	req.ID = id.String()
	log.Debug("request created", slog.String("request_id", req.ID))
	return nil
}

// GetByID implements store.RequestStore.GetByID
func (s *RequestStore) GetByID(ctx context.Context, id string) (*domain.DonationRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	reqID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	req, err := scanRequest(s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`, reqID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRequestNotFound
		}
		log.Error("failed to get request by ID",
			slog.String("error", err.Error()),
			slog.String("request_id", id))
		return nil, store.NewStoreError("request", "get", "query failed", MapError(err))
	}
	return req, nil
}

// FindByFoodAndRequester implements store.RequestStore.FindByFoodAndRequester
func (s *RequestStore) FindByFoodAndRequester(
	ctx context.Context,
	foodID, userEmail string,
) (*domain.DonationRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	parsed, err := uuid.Parse(foodID)
	if err != nil {
		// No request can reference a malformed food id.
		return nil, store.ErrRequestNotFound
	}

	req, err := scanRequest(s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE food_id = $1 AND user_email = $2`,
		parsed, userEmail))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRequestNotFound
		}
		log.Error("failed to find request", slog.String("error", err.Error()))
		return nil, store.NewStoreError("request", "find", "query failed", MapError(err))
	}
	return req, nil
}

// ListByRequester implements store.RequestStore.ListByRequester
func (s *RequestStore) ListByRequester(ctx context.Context, userEmail string) ([]*domain.DonationRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE user_email = $1 ORDER BY seq`, userEmail)
	if err != nil {
		log.Error("failed to list requests", slog.String("error", err.Error()))
		return nil, store.NewStoreError("request", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	requests := make([]*domain.DonationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, store.NewStoreError("request", "list", "scan failed", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("request", "list", "iteration failed", MapError(err))
	}
	return requests, nil
}

// DeleteOwned implements store.RequestStore.DeleteOwned
func (s *RequestStore) DeleteOwned(ctx context.Context, id, userEmail string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	reqID, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM requests WHERE id = $1 AND user_email = $2`, reqID, userEmail)
	if err != nil {
		log.Error("failed to delete request",
			slog.String("error", err.Error()),
			slog.String("request_id", id))
		return store.NewStoreError("request", "delete", "delete failed", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrRequestNotFound)
}

// SetStatus implements store.RequestStore.SetStatus
func (s *RequestStore) SetStatus(ctx context.Context, id string, from, to domain.RequestStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	reqID, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE requests
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, reqID, string(from), string(to), time.Now().UTC())
	if err != nil {
		log.Error("failed to set request status",
			slog.String("error", err.Error()),
			slog.String("request_id", id))
		return store.NewStoreError("request", "set_status", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrRequestNotPending); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrRequestNotPending) {
		return err
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM requests WHERE id = $1)`, reqID).Scan(&exists); err != nil {
		return store.NewStoreError("request", "set_status", "existence check failed", MapError(err))
	}
	if !exists {
		return store.ErrRequestNotFound
	}
	return store.ErrRequestNotPending
}

func scanRequest(row rowScanner) (*domain.DonationRequest, error) {
	var req domain.DonationRequest
	var status string

	if err := row.Scan(
		&req.ID,
		&req.FoodID,
		&req.UserName,
		&req.UserEmail,
		&status,
		&req.RequestedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	req.Status = domain.RequestStatus(status)
	return &req, nil
}
