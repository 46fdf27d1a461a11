package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// UserPostRepository defines the operations on personal posts
type UserPostRepository interface {
	CreatePost(ctx context.Context, post *models.UserPost) error
	ListByVisibility(ctx context.Context, visibility models.Visibility) ([]models.UserPost, error)
}

// PostgresUserPostRepository implements UserPostRepository for PostgreSQL
type PostgresUserPostRepository struct {
	db *gorm.DB
}

// NewPostgresUserPostRepository creates a new PostgresUserPostRepository
func NewPostgresUserPostRepository(db *gorm.DB) *PostgresUserPostRepository {
	return &PostgresUserPostRepository{db: db}
}

// CreatePost inserts a personal post
func (r *PostgresUserPostRepository) CreatePost(ctx context.Context, post *models.UserPost) error {
	prepareUserPost(post)
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("insert user_posts: %w", err)
	}
	return nil
}

// ListByVisibility returns posts with the given visibility, newest first
func (r *PostgresUserPostRepository) ListByVisibility(ctx context.Context, visibility models.Visibility) ([]models.UserPost, error) {
	var posts []models.UserPost
	if err := userPostsByVisibility(r.db.WithContext(ctx), visibility).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("select user_posts: %w", err)
	}
	return posts, nil
}

func userPostsByVisibility(tx *gorm.DB, visibility models.Visibility) *gorm.DB {
	return tx.Select("id", "author_id", "content", "created_at", "visibility").
		Where("visibility = ?", string(visibility)).
		Order("created_at DESC")
}

// MongoUserPostRepository implements UserPostRepository for MongoDB
type MongoUserPostRepository struct {
	collection *mongo.Collection
}

// NewMongoUserPostRepository creates a new MongoUserPostRepository
func NewMongoUserPostRepository(db *mongo.Database) *MongoUserPostRepository {
	return &MongoUserPostRepository{collection: db.Collection(models.TableUserPosts)}
}

// CreatePost inserts a personal post
func (r *MongoUserPostRepository) CreatePost(ctx context.Context, post *models.UserPost) error {
	prepareUserPost(post)
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert user_posts: %w", err)
	}
	return nil
}

// ListByVisibility returns posts with the given visibility, newest first
func (r *MongoUserPostRepository) ListByVisibility(ctx context.Context, visibility models.Visibility) ([]models.UserPost, error) {
	var posts []models.UserPost
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"visibility": visibility}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("select user_posts: %w", err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode user_posts: %w", err)
	}
	return posts, nil
}

func prepareUserPost(post *models.UserPost) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
}
