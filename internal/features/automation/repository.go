package automation

import (
	"context"
	"time"

	"go-taller/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type HookRepository interface {
	GetByID(ctx context.Context, id string) (*Hook, error)
	ListByEvent(ctx context.Context, event string) ([]Hook, error)
	List(ctx context.Context) ([]Hook, error)
	Upsert(ctx context.Context, hook *Hook) error
	Delete(ctx context.Context, id string) error
}

type HookRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewHookRepository(mongodb *database.MongodbDB) HookRepository {
	return &HookRepositoryImpl{
		Collection: mongodb.DB.Collection("automation_hooks"),
	}
}

func (r *HookRepositoryImpl) GetByID(ctx context.Context, id string) (*Hook, error) {
	var hook Hook
	err := r.Collection.FindOne(ctx, bson.M{"id": id}).Decode(&hook)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &hook, nil
}

func (r *HookRepositoryImpl) ListByEvent(ctx context.Context, event string) ([]Hook, error) {
	return r.find(ctx, bson.M{"event": event, "enabled": true})
}

func (r *HookRepositoryImpl) List(ctx context.Context) ([]Hook, error) {
	return r.find(ctx, bson.M{})
}

func (r *HookRepositoryImpl) find(ctx context.Context, filter bson.M) ([]Hook, error) {
	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var hooks []Hook
	if err := cursor.All(ctx, &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

func (r *HookRepositoryImpl) Upsert(ctx context.Context, hook *Hook) error {
	now := time.Now()
	if hook.CreatedAt.IsZero() {
		hook.CreatedAt = now
	}
	hook.UpdatedAt = now

	filter := bson.M{"id": hook.ID}
	update := bson.M{"$set": hook}
	opts := options.Update().SetUpsert(true)
	_, err := r.Collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *HookRepositoryImpl) Delete(ctx context.Context, id string) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"id": id})
	return err
}
