package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/anonto42/beawarely-feed/internal/repositories"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

type fakeUserPosts struct {
	posts     []models.UserPost
	err       error
	createErr error
	calls     atomic.Int32

	mu      sync.Mutex
	created []models.UserPost
}

func (f *fakeUserPosts) ListByVisibility(_ context.Context, visibility models.Visibility) ([]models.UserPost, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.UserPost
	for _, p := range f.posts {
		if p.Visibility == visibility {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeUserPosts) CreatePost(_ context.Context, post *models.UserPost) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	post.ID = "new"
	post.CreatedAt = at(100)
	f.created = append(f.created, *post)
	f.posts = append(f.posts, *post)
	return nil
}

type fakeToolIdeas struct {
	ideas []models.ToolIdea
	err   error
}

func (f *fakeToolIdeas) ListToolIdeas(context.Context) ([]models.ToolIdea, error) {
	return f.ideas, f.err
}

type fakeWorkExperiences struct {
	works []models.WorkExperience
	err   error
}

func (f *fakeWorkExperiences) ListWorkExperiences(context.Context) ([]models.WorkExperience, error) {
	return f.works, f.err
}

type fakeProfiles struct {
	profiles []models.Profile
	err      error
	calls    atomic.Int32
	lastIDs  []string
}

func (f *fakeProfiles) GetProfilesByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	f.calls.Add(1)
	f.lastIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[string]bool)
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Profile
	for _, p := range f.profiles {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakes struct {
	userPosts *fakeUserPosts
	tools     *fakeToolIdeas
	works     *fakeWorkExperiences
	profiles  *fakeProfiles
}

func newFakes() *fakes {
	return &fakes{
		userPosts: &fakeUserPosts{},
		tools:     &fakeToolIdeas{},
		works:     &fakeWorkExperiences{},
		profiles:  &fakeProfiles{},
	}
}

func (f *fakes) set() *repositories.Set {
	return &repositories.Set{
		UserPosts:       f.userPosts,
		ToolIdeas:       f.tools,
		WorkExperiences: f.works,
		Profiles:        f.profiles,
	}
}
