package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/store"
)

// Decider applies a decision to the requests and foods tables in a single
// transaction: both conditional updates commit together or neither does.
type Decider struct {
	db       *sql.DB
	foods    *FoodStore
	requests *RequestStore
	logger   *slog.Logger
}

// Ensure Decider implements store.Decider interface
var _ store.Decider = (*Decider)(nil)

// NewDecider creates a transactional decider over db.
func NewDecider(db *sql.DB, logger *slog.Logger) *Decider {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Decider{
		db:       db,
		foods:    NewFoodStore(db, logger),
		requests: NewRequestStore(db, logger),
		logger:   logger.With(slog.String("component", "decider")),
	}
}

// ApplyDecision implements store.Decider.
func (d *Decider) ApplyDecision(
	ctx context.Context,
	requestID, foodID string,
	status domain.RequestStatus,
) error {
	if !domain.IsDecision(status) {
		return domain.NewValidationError("status", "must be Accepted or Rejected", domain.ErrInvalidRequestStatus)
	}

	ctx = logger.WithLogger(ctx, logger.FromContextOrDefault(ctx, d.logger))

	return store.RunInTransaction(ctx, d.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := d.requests.WithTx(tx).SetStatus(ctx, requestID, domain.RequestStatusPending, status); err != nil {
			return err
		}
		if status != domain.RequestStatusAccepted {
			return nil
		}
		return d.foods.WithTx(tx).SetStatus(ctx, foodID, domain.FoodStatusAvailable, domain.FoodStatusDonated)
	})
}
