package models

import (
	"html/template"
	"time"
)

// SourceKind tags which table a feed entry was built from
type SourceKind string

const (
	KindUserPost       SourceKind = "user_post"
	KindToolIdea       SourceKind = "tool_idea"
	KindWorkExperience SourceKind = "work_exp"
)

// Table names of the three feed sources, in merge order
const (
	TableUserPosts       = "user_posts"
	TableToolIdeas       = "tool_ideas"
	TableWorkExperiences = "work_experiences"
	TableProfiles        = "profiles"
)

// SourceTables lists the tables whose changes trigger a feed reload.
var SourceTables = []string{TableUserPosts, TableToolIdeas, TableWorkExperiences}

// FeedEntry is a rendering-ready projection of one source record.
// Content is already escaped and safe to embed.
type FeedEntry struct {
	Kind      SourceKind    `json:"type"`
	AuthorID  string        `json:"author_id"`
	Content   template.HTML `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}
