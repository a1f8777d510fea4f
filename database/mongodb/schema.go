package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// SchemaRepository 元信息集合
type SchemaRepository struct {
	db *mongo.Database
}

var _ repo.SchemaRepository = (*SchemaRepository)(nil)

func NewSchemaRepository(db *mongo.Database) *SchemaRepository {
	return &SchemaRepository{db: db}
}

func (r *SchemaRepository) Get(ctx context.Context) (*models.SchemaInfo, error) {
	var info models.SchemaInfo
	if err := r.db.Collection(schemaInfoCollection).FindOne(ctx, bson.M{}).Decode(&info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read schema info: %w", err)
	}
	return &info, nil
}

func (r *SchemaRepository) Ensure(ctx context.Context, version string) (*models.SchemaInfo, error) {
	info, err := r.Get(ctx)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	info = &models.SchemaInfo{
		ID:           uuid.NewString(),
		Version:      version,
		LoadDateTime: time.Now(),
	}
	if _, err := r.db.Collection(schemaInfoCollection).InsertOne(ctx, info); err != nil {
		return nil, fmt.Errorf("failed to create schema info: %w", err)
	}
	return info, nil
}

func (r *SchemaRepository) Counts(ctx context.Context) (*models.Counts, error) {
	counts := &models.Counts{}
	var err error
	if counts.User, err = r.db.Collection(usersCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if counts.Photo, err = r.db.Collection(photosCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("failed to count photos: %w", err)
	}
	if counts.SchemaInfo, err = r.db.Collection(schemaInfoCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("failed to count schema info: %w", err)
	}
	return counts, nil
}
