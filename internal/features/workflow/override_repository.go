package workflow

import (
	"context"
	"time"

	"go-taller/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OverrideRepository stores per-order phase list overrides, keyed by order id.
type OverrideRepository interface {
	Get(ctx context.Context, orderID string) (*OrderOverride, error)
	Upsert(ctx context.Context, override *OrderOverride) error
	Delete(ctx context.Context, orderID string) error
	List(ctx context.Context) ([]OrderOverride, error)
	EnsureIndexes(ctx context.Context) error
}

type OverrideRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewOverrideRepository(mongodb *database.MongodbDB) OverrideRepository {
	return &OverrideRepositoryImpl{
		Collection: mongodb.DB.Collection("order_overrides"),
	}
}

func (r *OverrideRepositoryImpl) Get(ctx context.Context, orderID string) (*OrderOverride, error) {
	var override OrderOverride
	err := r.Collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&override)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &override, nil
}

func (r *OverrideRepositoryImpl) Upsert(ctx context.Context, override *OrderOverride) error {
	now := time.Now()
	if override.CreatedAt.IsZero() {
		override.CreatedAt = now
	}
	override.UpdatedAt = now

	filter := bson.M{"order_id": override.OrderID}
	update := bson.M{"$set": override}
	opts := options.Update().SetUpsert(true)
	_, err := r.Collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *OverrideRepositoryImpl) Delete(ctx context.Context, orderID string) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"order_id": orderID})
	return err
}

func (r *OverrideRepositoryImpl) List(ctx context.Context) ([]OrderOverride, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var overrides []OrderOverride
	if err := cursor.All(ctx, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *OverrideRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
