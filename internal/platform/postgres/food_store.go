package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/store"
)

const foodColumns = `id::text, donator_email, food_status, attributes, created_at, updated_at`

// FoodStore implements the store.FoodStore interface
// using a PostgreSQL database as the storage backend.
type FoodStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewFoodStore creates a new PostgreSQL implementation of the FoodStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewFoodStore(db store.DBTX, logger *slog.Logger) *FoodStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FoodStore{
		db:     db,
		logger: logger.With(slog.String("component", "food_store")),
	}
}

// Ensure FoodStore implements store.FoodStore interface
var _ store.FoodStore = (*FoodStore)(nil)

// WithTx returns a FoodStore that runs its queries inside tx.
func (s *FoodStore) WithTx(tx *sql.Tx) *FoodStore {
	return &FoodStore{db: tx, logger: s.logger}
}

// Create implements store.FoodStore.Create
// It assigns a new UUID and inserts the listing.
func (s *FoodStore) Create(ctx context.Context, food *domain.Food) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := food.Validate(); err != nil {
		log.Warn("food validation failed during create", slog.String("error", err.Error()))
		return store.NewStoreError("food", "create", "validation failed", errors.Join(store.ErrInvalidEntity, err))
	}

	attrs, err := encodeAttributes(food.Attributes)
	if err != nil {
		return store.NewStoreError("food", "create", "failed to encode attributes", errors.Join(store.ErrInvalidEntity, err))
	}

	id := uuid.New()
	query := `
		INSERT INTO foods (id, donator_email, food_status, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		id,
		food.DonatorEmail,
		string(food.Status),
		string(attrs),
		food.CreatedAt,
		food.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create food", slog.String("error", err.Error()))
		return store.NewStoreError("food", "create", "insert failed", MapError(err))
	}

	food.ID = id.String()
	log.Debug("food created", slog.String("food_id", food.ID))
	return nil
}

// GetByID implements store.FoodStore.GetByID
func (s *FoodStore) GetByID(ctx context.Context, id string) (*domain.Food, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	foodID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = $1`, foodID)
	food, err := scanFood(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("food not found", slog.String("food_id", id))
			return nil, store.ErrFoodNotFound
		}
		log.Error("failed to get food by ID",
			slog.String("error", err.Error()),
			slog.String("food_id", id))
		return nil, store.NewStoreError("food", "get", "query failed", MapError(err))
	}
	return food, nil
}

// List implements store.FoodStore.List
// Results are ordered by insertion.
func (s *FoodStore) List(ctx context.Context, filter store.FoodFilter) ([]*domain.Food, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args := buildFoodListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list foods", slog.String("error", err.Error()))
		return nil, store.NewStoreError("food", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	foods := make([]*domain.Food, 0)
	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			log.Error("failed to scan food row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("food", "list", "scan failed", err)
		}
		foods = append(foods, food)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating food rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("food", "list", "iteration failed", MapError(err))
	}

	log.Debug("listed foods", slog.Int("count", len(foods)))
	return foods, nil
}

// buildFoodListQuery renders the filter as a parameterized SELECT.
func buildFoodListQuery(filter store.FoodFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("food_status = $%d", len(args)))
	}
	if filter.DonatorEmail != "" {
		args = append(args, filter.DonatorEmail)
		conds = append(conds, fmt.Sprintf("donator_email = $%d", len(args)))
	}
	if filter.FeaturedOnly {
		conds = append(conds, `attributes @> '{"featured": true}'::jsonb`)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + foodColumns + ` FROM foods`)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY seq")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

// UpdateAttributes implements store.FoodStore.UpdateAttributes
// Keys in attrs overwrite stored keys; other stored keys are kept.
func (s *FoodStore) UpdateAttributes(ctx context.Context, id string, attrs domain.Attributes) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	foodID, err := parseID(id)
	if err != nil {
		return err
	}

	patch, err := encodeAttributes(attrs)
	if err != nil {
		return store.NewStoreError("food", "update", "failed to encode attributes", errors.Join(store.ErrInvalidEntity, err))
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE foods
		SET attributes = attributes || $2::jsonb, updated_at = $3
		WHERE id = $1
	`, foodID, string(patch), time.Now().UTC())
	if err != nil {
		log.Error("failed to update food attributes",
			slog.String("error", err.Error()),
			slog.String("food_id", id))
		return store.NewStoreError("food", "update", "update failed", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrFoodNotFound)
}

// Delete implements store.FoodStore.Delete
func (s *FoodStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	foodID, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM foods WHERE id = $1`, foodID)
	if err != nil {
		log.Error("failed to delete food",
			slog.String("error", err.Error()),
			slog.String("food_id", id))
		return store.NewStoreError("food", "delete", "delete failed", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrFoodNotFound)
}

// SetStatus implements store.FoodStore.SetStatus
// The UPDATE only matches a row still in from, so concurrent callers cannot
// both win.
func (s *FoodStore) SetStatus(ctx context.Context, id string, from, to domain.FoodStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	foodID, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE foods
		SET food_status = $3, updated_at = $4
		WHERE id = $1 AND food_status = $2
	`, foodID, string(from), string(to), time.Now().UTC())
	if err != nil {
		log.Error("failed to set food status",
			slog.String("error", err.Error()),
			slog.String("food_id", id))
		return store.NewStoreError("food", "set_status", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrFoodNotAvailable); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrFoodNotAvailable) {
		return err
	}

	// No row matched: tell a missing listing from one in another state.
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM foods WHERE id = $1)`, foodID).Scan(&exists); err != nil {
		return store.NewStoreError("food", "set_status", "existence check failed", MapError(err))
	}
	if !exists {
		return store.ErrFoodNotFound
	}
	log.Debug("food status changed concurrently",
		slog.String("food_id", id),
		slog.String("expected", string(from)))
	return store.ErrFoodNotAvailable
}

// encodeAttributes renders attrs as a JSON object; nil becomes {}.
func encodeAttributes(attrs domain.Attributes) ([]byte, error) {
	if attrs == nil {
		attrs = domain.Attributes{}
	}
	return json.Marshal(attrs)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFood(row rowScanner) (*domain.Food, error) {
	var food domain.Food
	var status string
	var attrs []byte

	if err := row.Scan(&food.ID, &food.DonatorEmail, &status, &attrs, &food.CreatedAt, &food.UpdatedAt); err != nil {
		return nil, err
	}

	food.Status = domain.FoodStatus(status)
	food.Attributes = domain.Attributes{}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &food.Attributes); err != nil {
			return nil, fmt.Errorf("failed to decode food attributes: %w", err)
		}
	}
	return &food, nil
}
