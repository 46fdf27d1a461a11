package models

import (
	"time"
)

// Visibility is the access tag on a personal post. It doubles as the feed tab.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
)

// ParseVisibility maps a tab name to a Visibility, falling back to public.
func ParseVisibility(s string) Visibility {
	if Visibility(s) == VisibilityFriends {
		return VisibilityFriends
	}
	return VisibilityPublic
}

// StatusApproved is the moderation status that makes a tool idea or work experience public
const StatusApproved = "approved"

// UserPost is a personal post, table user_posts
type UserPost struct {
	ID         string     `json:"id" gorm:"type:uuid;primaryKey" bson:"_id"`
	AuthorID   string     `json:"author_id" gorm:"index" bson:"author_id"`
	Content    string     `json:"content" bson:"content"`
	Visibility Visibility `json:"visibility" gorm:"index" bson:"visibility"`
	CreatedAt  time.Time  `json:"created_at" gorm:"index" bson:"created_at"`
}

func (UserPost) TableName() string { return "user_posts" }

// ToolIdea is a moderated tool suggestion, table tool_ideas
type ToolIdea struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey" bson:"_id"`
	Author    string    `json:"author" gorm:"index" bson:"author"`
	Title     string    `json:"title" bson:"title"`
	Details   string    `json:"details" bson:"details"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" gorm:"index" bson:"created_at"`
}

func (ToolIdea) TableName() string { return "tool_ideas" }

// WorkExperience is a moderated work story, table work_experiences
type WorkExperience struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey" bson:"_id"`
	Author    string    `json:"author" gorm:"index" bson:"author"`
	Company   string    `json:"company" bson:"company"`
	Role      string    `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" gorm:"index" bson:"created_at"`
}

func (WorkExperience) TableName() string { return "work_experiences" }

// CreatePostRequest defines the request body for submitting a personal post
type CreatePostRequest struct {
	Content    string `json:"content" form:"content" validate:"required,notblank,max=2000"`
	Visibility string `json:"visibility" form:"visibility" validate:"omitempty,oneof=public friends"`
}
