// Package feed merges the three content sources into one timeline and drives
// the load, resolve and render pipeline for a viewer.
package feed

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sort"

	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/anonto42/beawarely-feed/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrAllSourcesFailed is returned when no source could be read.
var ErrAllSourcesFailed = errors.New("every feed source failed")

// Result is one aggregation run. Failures holds the per-source fetch errors
// that were tolerated.
type Result struct {
	Entries  []models.FeedEntry
	Failures []error
}

// Aggregator reads the three sources and merges them into a single timeline
type Aggregator struct {
	userPosts       repositories.UserPostRepository
	toolIdeas       repositories.ToolIdeaRepository
	workExperiences repositories.WorkExperienceRepository
	logger          *zap.Logger
}

// NewAggregator creates an Aggregator over the given repositories
func NewAggregator(repos *repositories.Set, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		userPosts:       repos.UserPosts,
		toolIdeas:       repos.ToolIdeas,
		workExperiences: repos.WorkExperiences,
		logger:          logger,
	}
}

// LoadFeed fetches the sources concurrently, keeps the rows visible to identity
// and returns them sorted newest first. A failing source is logged and skipped;
// an error is returned only when every attempted source failed.
func (a *Aggregator) LoadFeed(ctx context.Context, identity *models.Identity, tab models.Visibility) (*Result, error) {
	var (
		g     errgroup.Group
		parts [3][]models.FeedEntry
		errs  [3]error
	)

	attempted := 2
	if identity != nil {
		attempted++
		g.Go(func() error {
			parts[0], errs[0] = a.loadUserPosts(ctx, tab)
			return nil
		})
	}
	g.Go(func() error {
		parts[1], errs[1] = a.loadToolIdeas(ctx, identity)
		return nil
	})
	g.Go(func() error {
		parts[2], errs[2] = a.loadWorkExperiences(ctx, identity)
		return nil
	})
	_ = g.Wait()

	result := &Result{}
	for i, err := range errs {
		if err != nil {
			a.logger.Warn("feed source read failed, continuing", zap.Error(err))
			result.Failures = append(result.Failures, err)
			continue
		}
		result.Entries = append(result.Entries, parts[i]...)
	}
	if len(result.Failures) == attempted {
		return result, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(result.Failures...))
	}

	SortNewestFirst(result.Entries)
	return result, nil
}

// SortNewestFirst orders entries by CreatedAt descending. Equal timestamps keep
// their concatenation order.
func SortNewestFirst(entries []models.FeedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

func (a *Aggregator) loadUserPosts(ctx context.Context, tab models.Visibility) ([]models.FeedEntry, error) {
	posts, err := a.userPosts.ListByVisibility(ctx, tab)
	if err != nil {
		return nil, NewError(FetchError, models.TableUserPosts, err)
	}
	entries := make([]models.FeedEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, UserPostEntry(p))
	}
	return entries, nil
}

func (a *Aggregator) loadToolIdeas(ctx context.Context, identity *models.Identity) ([]models.FeedEntry, error) {
	ideas, err := a.toolIdeas.ListToolIdeas(ctx)
	if err != nil {
		return nil, NewError(FetchError, models.TableToolIdeas, err)
	}
	var entries []models.FeedEntry
	for _, t := range ideas {
		if Visible(t.Status, t.Author, identity) {
			entries = append(entries, ToolIdeaEntry(t))
		}
	}
	return entries, nil
}

func (a *Aggregator) loadWorkExperiences(ctx context.Context, identity *models.Identity) ([]models.FeedEntry, error) {
	works, err := a.workExperiences.ListWorkExperiences(ctx)
	if err != nil {
		return nil, NewError(FetchError, models.TableWorkExperiences, err)
	}
	var entries []models.FeedEntry
	for _, w := range works {
		if Visible(w.Status, w.Author, identity) {
			entries = append(entries, WorkExperienceEntry(w))
		}
	}
	return entries, nil
}

// Visible reports whether a moderated row may be shown: approved rows are
// public, anything else only to its author.
func Visible(status, author string, identity *models.Identity) bool {
	if status == models.StatusApproved {
		return true
	}
	return identity != nil && author != "" && author == identity.ID
}

// UserPostEntry projects a personal post
func UserPostEntry(p models.UserPost) models.FeedEntry {
	return models.FeedEntry{
		Kind:      models.KindUserPost,
		AuthorID:  p.AuthorID,
		Content:   template.HTML(EscapeHTML(p.Content)),
		CreatedAt: p.CreatedAt,
	}
}

// ToolIdeaEntry projects a tool idea as a titled card
func ToolIdeaEntry(t models.ToolIdea) models.FeedEntry {
	title := t.Title
	if title == "" {
		title = "Untitled"
	}
	return models.FeedEntry{
		Kind:      models.KindToolIdea,
		AuthorID:  t.Author,
		Content:   template.HTML("<b>💡 " + EscapeHTML(title) + "</b><br>" + EscapeHTML(t.Details)),
		CreatedAt: t.CreatedAt,
	}
}

// WorkExperienceEntry projects a work experience as "role at company"
func WorkExperienceEntry(w models.WorkExperience) models.FeedEntry {
	return models.FeedEntry{
		Kind:     models.KindWorkExperience,
		AuthorID: w.Author,
		Content: template.HTML("<b>⚖️ " + EscapeHTML(w.Role) + "</b> at <i>" +
			EscapeHTML(w.Company) + "</i><br>" + EscapeHTML(w.Content)),
		CreatedAt: w.CreatedAt,
	}
}
