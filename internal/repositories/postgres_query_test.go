package repositories

import (
	"sync"
	"testing"

	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=localhost user=feed dbname=feed sslmode=disable",
		PreferSimpleProtocol: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestUserPostsByVisibilityQuery(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var posts []models.UserPost
		return userPostsByVisibility(tx, models.VisibilityFriends).Find(&posts)
	})

	assert.Contains(t, sql, `FROM "user_posts"`)
	assert.Contains(t, sql, `visibility = 'friends'`)
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.Contains(t, sql, `"author_id"`)
}

func TestProfilesByIDsQuery(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var profiles []models.Profile
		return profilesByIDs(tx, []string{"a", "b"}).Find(&profiles)
	})

	assert.Contains(t, sql, `FROM "profiles"`)
	assert.Contains(t, sql, `id IN ('a','b')`)
}

func TestAuthorColumnsAcceptNonUUIDIDs(t *testing.T) {
	cache := &sync.Map{}
	naming := schema.NamingStrategy{}
	columns := map[interface{}]string{
		&models.Profile{}:        "id",
		&models.UserPost{}:       "author_id",
		&models.ToolIdea{}:       "author",
		&models.WorkExperience{}: "author",
	}
	for model, column := range columns {
		s, err := schema.Parse(model, cache, naming)
		require.NoError(t, err)
		field := s.LookUpField(column)
		require.NotNil(t, field, "%s.%s", s.Table, column)
		assert.NotEqual(t, "uuid", field.TagSettings["TYPE"], "%s.%s must hold Firebase UIDs", s.Table, column)
	}

	firebaseUID := "kT9xQ2mWbL7pR4sV1nY8cZ3dF6gH"
	sql := dryRunDB(t).ToSQL(func(tx *gorm.DB) *gorm.DB {
		var profiles []models.Profile
		return profilesByIDs(tx, []string{firebaseUID}).Find(&profiles)
	})
	assert.Contains(t, sql, "id IN ('"+firebaseUID+"')")
	assert.NotContains(t, sql, "::uuid")
}

func TestPrepareUserPost(t *testing.T) {
	post := &models.UserPost{AuthorID: "u1"}
	prepareUserPost(post)
	assert.Len(t, post.ID, 36)
	assert.False(t, post.CreatedAt.IsZero())

	kept := &models.UserPost{ID: "fixed", CreatedAt: post.CreatedAt}
	prepareUserPost(kept)
	assert.Equal(t, "fixed", kept.ID)
	assert.Equal(t, post.CreatedAt, kept.CreatedAt)
}
