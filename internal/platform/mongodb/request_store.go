package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type requestDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FoodID      string             `bson:"food_id"`
	UserName    string             `bson:"user_name"`
	UserEmail   string             `bson:"user_email"`
	Status      string             `bson:"status"`
	RequestedAt time.Time          `bson:"requested_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d requestDocument) toDomain() *domain.DonationRequest {
	return &domain.DonationRequest{
		ID:          d.ID.Hex(),
		FoodID:      d.FoodID,
		UserName:    d.UserName,
		UserEmail:   d.UserEmail,
		Status:      domain.RequestStatus(d.Status),
		RequestedAt: d.RequestedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// RequestStore implements store.RequestStore over the requests collection.
type RequestStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewRequestStore creates a RequestStore backed by coll. The collection needs
// the indexes created by EnsureIndexes for duplicate detection.
func NewRequestStore(coll *mongo.Collection, logger *slog.Logger) *RequestStore {
	if coll == nil {
		panic("collection cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestStore{
		coll:   coll,
		logger: logger.With(slog.String("component", "request_store")),
	}
}

// Ensure RequestStore implements store.RequestStore interface
var _ store.RequestStore = (*RequestStore)(nil)

// Create implements store.RequestStore.Create
func (s *RequestStore) Create(ctx context.Context, req *domain.DonationRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := req.Validate(); err != nil {
		log.Warn("request validation failed during create", slog.String("error", err.Error()))
		return store.NewStoreError("request", "create", "validation failed", errors.Join(store.ErrInvalidEntity, err))
	}
	foodOID, err := parseObjectID(req.FoodID)
	if err != nil {
		return err
	}
	// Hex spellings are case-insensitive; the unique index needs one canonical key.
	req.FoodID = foodOID.Hex()

	doc := requestDocument{
		ID:          primitive.NewObjectID(),
		FoodID:      req.FoodID,
		UserName:    req.UserName,
		UserEmail:   req.UserEmail,
		Status:      string(req.Status),
		RequestedAt: req.RequestedAt,
		UpdatedAt:   req.UpdatedAt,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Debug("duplicate request rejected by unique index", slog.String("food_id", req.FoodID))
			return store.NewStoreError("request", "create", "duplicate", errors.Join(store.ErrDuplicateRequest, err))
		}
		log.Error("failed to create request", slog.String("error", err.Error()))
		return store.NewStoreError("request", "create", "insert failed", MapError(err))
	}

	req.ID = doc.ID.Hex()
	return nil
}

func (s *RequestStore) findOne(ctx context.Context, filter bson.M) (*domain.DonationRequest, error) {
	var doc requestDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrRequestNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find request",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("request", "get", "query failed", MapError(err))
	}
	return doc.toDomain(), nil
}

// GetByID implements store.RequestStore.GetByID
func (s *RequestStore) GetByID(ctx context.Context, id string) (*domain.DonationRequest, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// FindByFoodAndRequester implements store.RequestStore.FindByFoodAndRequester
func (s *RequestStore) FindByFoodAndRequester(
	ctx context.Context,
	foodID, userEmail string,
) (*domain.DonationRequest, error) {
	foodOID, err := parseObjectID(foodID)
	if err != nil {
		return nil, store.ErrRequestNotFound
	}
	return s.findOne(ctx, bson.M{"food_id": foodOID.Hex(), "user_email": userEmail})
}

// ListByRequester implements store.RequestStore.ListByRequester
func (s *RequestStore) ListByRequester(ctx context.Context, userEmail string) ([]*domain.DonationRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cursor, err := s.coll.Find(ctx, bson.M{"user_email": userEmail},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		log.Error("failed to list requests", slog.String("error", err.Error()))
		return nil, store.NewStoreError("request", "list", "query failed", MapError(err))
	}

	var docs []requestDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, store.NewStoreError("request", "list", "decode failed", err)
	}

	requests := make([]*domain.DonationRequest, 0, len(docs))
	for _, doc := range docs {
		requests = append(requests, doc.toDomain())
	}
	return requests, nil
}

// DeleteOwned implements store.RequestStore.DeleteOwned
func (s *RequestStore) DeleteOwned(ctx context.Context, id, userEmail string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid, "user_email": userEmail})
	if err != nil {
		log.Error("failed to delete request",
			slog.String("error", err.Error()),
			slog.String("request_id", id))
		return store.NewStoreError("request", "delete", "delete failed", MapError(err))
	}
	if result.DeletedCount == 0 {
		return store.ErrRequestNotFound
	}
	return nil
}

// SetStatus implements store.RequestStore.SetStatus
func (s *RequestStore) SetStatus(ctx context.Context, id string, from, to domain.RequestStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		log.Error("failed to set request status",
			slog.String("error", err.Error()),
			slog.String("request_id", id))
		return store.NewStoreError("request", "set_status", "update failed", MapError(err))
	}
	if result.MatchedCount > 0 {
		return nil
	}

	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return store.NewStoreError("request", "set_status", "existence check failed", MapError(err))
	}
	if n == 0 {
		return store.ErrRequestNotFound
	}
	return store.ErrRequestNotPending
}
