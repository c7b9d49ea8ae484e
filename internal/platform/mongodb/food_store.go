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

// foodDocument is the stored shape of a listing: system fields plus the
// donor's attributes inlined at the top level.
type foodDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	DonatorEmail string             `bson:"donator_email"`
	Status       string             `bson:"food_status"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
	Attributes   bson.M             `bson:",inline"`
}

func newFoodDocument(food *domain.Food) foodDocument {
	attrs := make(bson.M, len(food.Attributes))
	for k, v := range food.Attributes {
		attrs[k] = v
	}
	return foodDocument{
		DonatorEmail: food.DonatorEmail,
		Status:       string(food.Status),
		CreatedAt:    food.CreatedAt,
		UpdatedAt:    food.UpdatedAt,
		Attributes:   attrs,
	}
}

func (d foodDocument) toDomain() *domain.Food {
	attrs := make(domain.Attributes, len(d.Attributes))
	for k, v := range d.Attributes {
		attrs[k] = normalize(v)
	}
	return &domain.Food{
		ID:           d.ID.Hex(),
		DonatorEmail: d.DonatorEmail,
		Status:       domain.FoodStatus(d.Status),
		Attributes:   attrs,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// FoodStore implements store.FoodStore over the foods collection.
type FoodStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewFoodStore creates a FoodStore backed by coll.
// If logger is nil, a default logger will be used.
func NewFoodStore(coll *mongo.Collection, logger *slog.Logger) *FoodStore {
	if coll == nil {
		panic("collection cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FoodStore{
		coll:   coll,
		logger: logger.With(slog.String("component", "food_store")),
	}
}

// Ensure FoodStore implements store.FoodStore interface
var _ store.FoodStore = (*FoodStore)(nil)

// Create implements store.FoodStore.Create
func (s *FoodStore) Create(ctx context.Context, food *domain.Food) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := food.Validate(); err != nil {
		log.Warn("food validation failed during create", slog.String("error", err.Error()))
		return store.NewStoreError("food", "create", "validation failed", errors.Join(store.ErrInvalidEntity, err))
	}

	doc := newFoodDocument(food)
	doc.ID = primitive.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		log.Error("failed to create food", slog.String("error", err.Error()))
		return store.NewStoreError("food", "create", "insert failed", MapError(err))
	}

	food.ID = doc.ID.Hex()
	log.Debug("food created", slog.String("food_id", food.ID))
	return nil
}

// GetByID implements store.FoodStore.GetByID
func (s *FoodStore) GetByID(ctx context.Context, id string) (*domain.Food, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc foodDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrFoodNotFound
		}
		log.Error("failed to get food by ID",
			slog.String("error", err.Error()),
			slog.String("food_id", id))
		return nil, store.NewStoreError("food", "get", "query failed", MapError(err))
	}
	return doc.toDomain(), nil
}

// foodFilterDocument renders a store.FoodFilter as a query document.
func foodFilterDocument(filter store.FoodFilter) bson.M {
	q := bson.M{}
	if filter.Status != "" {
		q["food_status"] = string(filter.Status)
	}
	if filter.DonatorEmail != "" {
		q["donator_email"] = filter.DonatorEmail
	}
	if filter.FeaturedOnly {
		q[domain.FeaturedAttribute] = true
	}
	return q
}

// List implements store.FoodStore.List
// ObjectIDs grow with insertion time, so sorting on _id keeps insertion order.
func (s *FoodStore) List(ctx context.Context, filter store.FoodFilter) ([]*domain.Food, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.coll.Find(ctx, foodFilterDocument(filter), opts)
	if err != nil {
		log.Error("failed to list foods", slog.String("error", err.Error()))
		return nil, store.NewStoreError("food", "list", "query failed", MapError(err))
	}

	var docs []foodDocument
	if err := cursor.All(ctx, &docs); err != nil {
		log.Error("failed to decode foods", slog.String("error", err.Error()))
		return nil, store.NewStoreError("food", "list", "decode failed", err)
	}

	foods := make([]*domain.Food, 0, len(docs))
	for _, doc := range docs {
		foods = append(foods, doc.toDomain())
	}
	log.Debug("listed foods", slog.Int("count", len(foods)))
	return foods, nil
}

// UpdateAttributes implements store.FoodStore.UpdateAttributes
// Each attribute becomes its own $set entry, so unnamed fields are kept.
func (s *FoodStore) UpdateAttributes(ctx context.Context, id string, attrs domain.Attributes) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range attrs {
		set[k] = v
	}

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		log.Error("failed to update food attributes",
			slog.String("error", err.Error()),
			slog.String("food_id", id))
		return store.NewStoreError("food", "update", "update failed", MapError(err))
	}
	if result.MatchedCount == 0 {
		return store.ErrFoodNotFound
	}
	return nil
}

// Delete implements store.FoodStore.Delete
func (s *FoodStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		log.Error("failed to delete food",
			slog.String("error", err.Error()),
			slog.String("food_id", id))
		return store.NewStoreError("food", "delete", "delete failed", MapError(err))
	}
	if result.DeletedCount == 0 {
		return store.ErrFoodNotFound
	}
	return nil
}

// SetStatus implements store.FoodStore.SetStatus
func (s *FoodStore) SetStatus(ctx context.Context, id string, from, to domain.FoodStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "food_status": string(from)},
		bson.M{"$set": bson.M{"food_status": string(to), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		log.Error("failed to set food status",
			slog.String("error", err.Error()),
			slog.String("food_id", id))
		return store.NewStoreError("food", "set_status", "update failed", MapError(err))
	}
	if result.MatchedCount > 0 {
		return nil
	}

	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return store.NewStoreError("food", "set_status", "existence check failed", MapError(err))
	}
	if n == 0 {
		return store.ErrFoodNotFound
	}
	return store.ErrFoodNotAvailable
}
