package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/beawarely-feed/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// ToolIdeaRepository reads tool ideas. Moderation filtering is left to the caller
// because authors also see their own pending rows.
type ToolIdeaRepository interface {
	ListToolIdeas(ctx context.Context) ([]models.ToolIdea, error)
}

// WorkExperienceRepository reads work experiences
type WorkExperienceRepository interface {
	ListWorkExperiences(ctx context.Context) ([]models.WorkExperience, error)
}

// PostgresToolIdeaRepository implements ToolIdeaRepository for PostgreSQL
type PostgresToolIdeaRepository struct {
	db *gorm.DB
}

// NewPostgresToolIdeaRepository creates a new PostgresToolIdeaRepository
func NewPostgresToolIdeaRepository(db *gorm.DB) *PostgresToolIdeaRepository {
	return &PostgresToolIdeaRepository{db: db}
}

// ListToolIdeas returns every tool idea, newest first
func (r *PostgresToolIdeaRepository) ListToolIdeas(ctx context.Context) ([]models.ToolIdea, error) {
	var ideas []models.ToolIdea
	err := r.db.WithContext(ctx).
		Select("id", "author", "title", "details", "created_at", "status").
		Order("created_at DESC").
		Find(&ideas).Error
	if err != nil {
		return nil, fmt.Errorf("select tool_ideas: %w", err)
	}
	return ideas, nil
}

// PostgresWorkExperienceRepository implements WorkExperienceRepository for PostgreSQL
type PostgresWorkExperienceRepository struct {
	db *gorm.DB
}

// NewPostgresWorkExperienceRepository creates a new PostgresWorkExperienceRepository
func NewPostgresWorkExperienceRepository(db *gorm.DB) *PostgresWorkExperienceRepository {
	return &PostgresWorkExperienceRepository{db: db}
}

// ListWorkExperiences returns every work experience, newest first
func (r *PostgresWorkExperienceRepository) ListWorkExperiences(ctx context.Context) ([]models.WorkExperience, error) {
	var works []models.WorkExperience
	err := r.db.WithContext(ctx).
		Select("id", "author", "company", "role", "content", "created_at", "status").
		Order("created_at DESC").
		Find(&works).Error
	if err != nil {
		return nil, fmt.Errorf("select work_experiences: %w", err)
	}
	return works, nil
}

// MongoToolIdeaRepository implements ToolIdeaRepository for MongoDB
type MongoToolIdeaRepository struct {
	collection *mongo.Collection
}

// NewMongoToolIdeaRepository creates a new MongoToolIdeaRepository
func NewMongoToolIdeaRepository(db *mongo.Database) *MongoToolIdeaRepository {
	return &MongoToolIdeaRepository{collection: db.Collection(models.TableToolIdeas)}
}

// ListToolIdeas returns every tool idea, newest first
func (r *MongoToolIdeaRepository) ListToolIdeas(ctx context.Context) ([]models.ToolIdea, error) {
	var ideas []models.ToolIdea
	if err := findAllNewestFirst(ctx, r.collection, &ideas); err != nil {
		return nil, fmt.Errorf("select tool_ideas: %w", err)
	}
	return ideas, nil
}

// MongoWorkExperienceRepository implements WorkExperienceRepository for MongoDB
type MongoWorkExperienceRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkExperienceRepository creates a new MongoWorkExperienceRepository
func NewMongoWorkExperienceRepository(db *mongo.Database) *MongoWorkExperienceRepository {
	return &MongoWorkExperienceRepository{collection: db.Collection(models.TableWorkExperiences)}
}

// ListWorkExperiences returns every work experience, newest first
func (r *MongoWorkExperienceRepository) ListWorkExperiences(ctx context.Context) ([]models.WorkExperience, error) {
	var works []models.WorkExperience
	if err := findAllNewestFirst(ctx, r.collection, &works); err != nil {
		return nil, fmt.Errorf("select work_experiences: %w", err)
	}
	return works, nil
}

func findAllNewestFirst(ctx context.Context, collection *mongo.Collection, out interface{}) error {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
