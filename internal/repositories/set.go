package repositories

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Set bundles the repositories backing the feed
type Set struct {
	UserPosts       UserPostRepository
	ToolIdeas       ToolIdeaRepository
	WorkExperiences WorkExperienceRepository
	Profiles        ProfileRepository
}

// NewPostgresSet builds a Set on a gorm connection
func NewPostgresSet(db *gorm.DB) *Set {
	return &Set{
		UserPosts:       NewPostgresUserPostRepository(db),
		ToolIdeas:       NewPostgresToolIdeaRepository(db),
		WorkExperiences: NewPostgresWorkExperienceRepository(db),
		Profiles:        NewPostgresProfileRepository(db),
	}
}

// NewMongoSet builds a Set on a mongo database
func NewMongoSet(db *mongo.Database) *Set {
	return &Set{
		UserPosts:       NewMongoUserPostRepository(db),
		ToolIdeas:       NewMongoToolIdeaRepository(db),
		WorkExperiences: NewMongoWorkExperienceRepository(db),
		Profiles:        NewMongoProfileRepository(db),
	}
}
