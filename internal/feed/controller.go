package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/anonto42/beawarely-feed/internal/render"
	"github.com/anonto42/beawarely-feed/internal/repositories"
	"go.uber.org/zap"
)

var (
	// ErrNotSignedIn rejects writes from anonymous viewers
	ErrNotSignedIn = errors.New("log in first")
	// ErrEmptyPost rejects posts whose text is blank
	ErrEmptyPost = errors.New("write something first")
)

// Snapshot is one completed aggregate and resolve pass
type Snapshot struct {
	Entries  []models.FeedEntry        `json:"entries"`
	Profiles map[string]models.Profile `json:"profiles"`
	Failures []string                  `json:"failures,omitempty"`
}

// Pipeline wires aggregation, profile resolution and rendering. It holds no
// per-viewer state and is shared by every Controller.
type Pipeline struct {
	aggregator *Aggregator
	resolver   *ProfileResolver
	renderer   *render.Renderer
	userPosts  repositories.UserPostRepository
	logger     *zap.Logger
}

// NewPipeline creates a Pipeline
func NewPipeline(aggregator *Aggregator, resolver *ProfileResolver, renderer *render.Renderer, userPosts repositories.UserPostRepository, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		aggregator: aggregator,
		resolver:   resolver,
		renderer:   renderer,
		userPosts:  userPosts,
		logger:     logger,
	}
}

// Renderer returns the renderer used to paint feeds
func (p *Pipeline) Renderer() *render.Renderer { return p.renderer }

// Load aggregates the feed for a viewer and resolves its authors. A profile
// lookup failure is tolerated and reported in Failures.
func (p *Pipeline) Load(ctx context.Context, identity *models.Identity, tab models.Visibility) (*Snapshot, error) {
	result, err := p.aggregator.LoadFeed(ctx, identity, tab)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Entries: result.Entries, Profiles: map[string]models.Profile{}}
	for _, f := range result.Failures {
		snap.Failures = append(snap.Failures, f.Error())
	}
	if len(snap.Entries) == 0 {
		return snap, nil
	}

	profiles, err := p.resolver.ResolveProfiles(ctx, snap.Entries)
	if err != nil {
		p.logger.Warn("profile lookup failed, rendering without profiles", zap.Error(err))
		snap.Failures = append(snap.Failures, err.Error())
	}
	snap.Profiles = profiles
	return snap, nil
}

// Paint renders a snapshot into exactly one of: the entry list, the empty
// state or the error state.
func (p *Pipeline) Paint(snap *Snapshot) string {
	if len(snap.Entries) == 0 {
		return p.renderer.Empty()
	}
	markup, err := p.renderer.Render(snap.Entries, snap.Profiles)
	if err != nil {
		p.logger.Error("feed render failed", zap.Error(NewError(RenderError, "", err)))
		return p.renderer.Failure("Feed load failed.")
	}
	return markup
}

// Reload runs the full pipeline and always returns displayable markup.
func (p *Pipeline) Reload(ctx context.Context, identity *models.Identity, tab models.Visibility) string {
	snap, err := p.Load(ctx, identity, tab)
	if err != nil {
		p.logger.Error("feed load failed", zap.Error(err))
		return p.renderer.Failure("Feed load failed.")
	}
	return p.Paint(snap)
}

// Submit inserts a personal post on behalf of identity with the given visibility.
func (p *Pipeline) Submit(ctx context.Context, identity *models.Identity, text string, visibility models.Visibility) error {
	if identity == nil {
		return ErrNotSignedIn
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyPost
	}
	post := &models.UserPost{
		AuthorID:   identity.ID,
		Content:    text,
		Visibility: visibility,
	}
	if err := p.userPosts.CreatePost(ctx, post); err != nil {
		return NewError(WriteError, models.TableUserPosts, err)
	}
	p.logger.Info("post submitted", zap.String("author_id", identity.ID), zap.String("visibility", string(visibility)))
	return nil
}

// NewController creates the view state of one viewer.
func (p *Pipeline) NewController(identity *models.Identity, tab models.Visibility) *Controller {
	return &Controller{pipeline: p, identity: identity, tab: tab}
}

// Controller owns one viewer's identity and selected tab. The identity is fixed
// for the controller's lifetime; the tab changes through SwitchTab.
type Controller struct {
	pipeline *Pipeline
	identity *models.Identity

	mu  sync.Mutex
	tab models.Visibility
}

// Identity returns the viewer, nil when anonymous
func (c *Controller) Identity() *models.Identity { return c.identity }

// Tab returns the selected tab
func (c *Controller) Tab() models.Visibility {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab
}

// SetTab selects a tab without reloading
func (c *Controller) SetTab(tab string) {
	c.mu.Lock()
	c.tab = models.ParseVisibility(tab)
	c.mu.Unlock()
}

// Loading is the markup shown while Reload runs
func (c *Controller) Loading() string { return c.pipeline.renderer.Loading() }

// Reload recomputes the feed for the current state.
func (c *Controller) Reload(ctx context.Context) string {
	return c.pipeline.Reload(ctx, c.identity, c.Tab())
}

// SwitchTab selects a tab and reloads.
func (c *Controller) SwitchTab(ctx context.Context, tab string) string {
	c.SetTab(tab)
	return c.Reload(ctx)
}

// Submit posts text to the selected tab and reloads on success. On failure the
// error is returned and the caller keeps its previous markup.
func (c *Controller) Submit(ctx context.Context, text string) (string, error) {
	if err := c.pipeline.Submit(ctx, c.identity, text, c.Tab()); err != nil {
		return "", fmt.Errorf("submit post: %w", err)
	}
	return c.Reload(ctx), nil
}
