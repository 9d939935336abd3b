package workflow

import (
	"context"
	"time"

	"go-taller/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TemplateRepository owns the single global template per service category.
// There is no delete: a category always has exactly one template once seeded.
type TemplateRepository interface {
	Get(ctx context.Context, category ServiceCategory) (*WorkflowTemplate, error)
	Save(ctx context.Context, template *WorkflowTemplate) error
	EnsureIndexes(ctx context.Context) error
}

type TemplateRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewTemplateRepository(mongodb *database.MongodbDB) TemplateRepository {
	return &TemplateRepositoryImpl{
		Collection: mongodb.DB.Collection("workflow_templates"),
	}
}

func (r *TemplateRepositoryImpl) Get(ctx context.Context, category ServiceCategory) (*WorkflowTemplate, error) {
	var template WorkflowTemplate
	err := r.Collection.FindOne(ctx, bson.M{"category": category}).Decode(&template)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// Save replaces the stored phase list wholesale. It never touches order
// overrides.
func (r *TemplateRepositoryImpl) Save(ctx context.Context, template *WorkflowTemplate) error {
	template.UpdatedAt = time.Now()
	filter := bson.M{"category": template.Category}
	update := bson.M{"$set": template}
	opts := options.Update().SetUpsert(true)
	_, err := r.Collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *TemplateRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
