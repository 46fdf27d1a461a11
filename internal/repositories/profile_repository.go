package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/beawarely-feed/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ProfileRepository batch-reads author profiles
type ProfileRepository interface {
	GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// GetProfilesByIDs retrieves the profiles whose id is in ids
func (r *PostgresProfileRepository) GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := profilesByIDs(r.db.WithContext(ctx), ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}
	return profiles, nil
}

func profilesByIDs(tx *gorm.DB, ids []string) *gorm.DB {
	return tx.Select("id", "display_name", "avatar_url").Where("id IN ?", ids)
}

// MongoProfileRepository implements ProfileRepository for MongoDB
type MongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new MongoProfileRepository
func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{collection: db.Collection(models.TableProfiles)}
}

// GetProfilesByIDs retrieves the profiles whose id is in ids
func (r *MongoProfileRepository) GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	var profiles []models.Profile
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}
