// Package render turns feed entries into HTML markup. Every method returns the
// complete feed container so callers replace earlier output instead of appending.
package render

import (
	"bytes"
	"html/template"
	"net/url"
	"time"

	"github.com/anonto42/beawarely-feed/internal/models"
)

// UnknownAuthor is shown when an entry's author has no profile
const UnknownAuthor = "Unknown"

const timeLayout = "2006-01-02 15:04"

// Options configure a Renderer. LiveURL is the websocket path the page
// subscribes to; pages carry no live script when it is empty.
type Options struct {
	PlaceholderAvatar string
	ProfilePath       string
	LoginPath         string
	LiveURL           string
	Location          *time.Location
}

// Renderer is safe for concurrent use and holds no state beyond its options.
type Renderer struct {
	opts Options
}

// New creates a Renderer
func New(opts Options) *Renderer {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Renderer{opts: opts}
}

type postView struct {
	Kind        models.SourceKind
	Avatar      string
	Name        string
	ProfileLink string
	Time        string
	Content     template.HTML
}

// Render projects entries into markup, looking up each author in profiles.
func (r *Renderer) Render(entries []models.FeedEntry, profiles map[string]models.Profile) (string, error) {
	views := make([]postView, 0, len(entries))
	for _, e := range entries {
		views = append(views, r.view(e, profiles))
	}
	return execute(feedTemplate, views)
}

func (r *Renderer) view(e models.FeedEntry, profiles map[string]models.Profile) postView {
	v := postView{
		Kind:    e.Kind,
		Avatar:  r.opts.PlaceholderAvatar,
		Name:    UnknownAuthor,
		Content: e.Content,
	}
	if p, ok := profiles[e.AuthorID]; ok {
		if p.DisplayName != "" {
			v.Name = p.DisplayName
		}
		if p.AvatarURL != "" {
			v.Avatar = p.AvatarURL
		}
	}
	if e.AuthorID != "" && r.opts.ProfilePath != "" {
		v.ProfileLink = r.opts.ProfilePath + "?" + url.Values{"id": {e.AuthorID}}.Encode()
	}
	if !e.CreatedAt.IsZero() {
		v.Time = e.CreatedAt.In(r.opts.Location).Format(timeLayout)
	}
	return v
}

// Loading is the transient state shown while a reload is in flight.
func (r *Renderer) Loading() string {
	return mustExecute(stateTemplate, stateView{Class: "feed-loading", Message: "Loading..."})
}

// Empty is shown when the feed has no visible entries.
func (r *Renderer) Empty() string {
	return mustExecute(stateTemplate, stateView{Class: "feed-empty", Message: "No posts yet."})
}

// Failure is shown when the feed could not be loaded or rendered.
func (r *Renderer) Failure(message string) string {
	return mustExecute(stateTemplate, stateView{Class: "feed-error", Message: message, Error: true})
}

// PageView is what the full page needs besides the feed markup. Notice is
// shown above the feed, e.g. when a post was rejected.
type PageView struct {
	Identity     *models.Identity
	Tab          models.Visibility
	Feed         template.HTML
	SessionError string
	Notice       string
}

// ShowLoginCTA reports whether the anonymous call-to-action panel is visible
func (p PageView) ShowLoginCTA() bool { return p.Identity == nil && p.SessionError == "" }

// ShowComposer reports whether the post composition panel is visible
func (p PageView) ShowComposer() bool { return p.Identity != nil && p.SessionError == "" }

// Page renders the full document around already rendered feed markup.
func (r *Renderer) Page(view PageView) (string, error) {
	return execute(pageTemplate, struct {
		PageView
		LoginPath string
		LiveURL   string
		Loading   template.HTML
	}{view, r.opts.LoginPath, r.opts.LiveURL, template.HTML(r.Loading())})
}

type stateView struct {
	Class   string
	Message string
	Error   bool
}

func execute(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func mustExecute(t *template.Template, data interface{}) string {
	out, err := execute(t, data)
	if err != nil {
		panic(err)
	}
	return out
}
