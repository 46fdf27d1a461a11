package feed

import (
	"context"
	"strings"

	"github.com/anonto42/beawarely-feed/internal/models"
	"github.com/anonto42/beawarely-feed/internal/repositories"
	"go.uber.org/zap"
)

const storagePublicPath = "/storage/v1/object/public"

// ProfileResolver batch-loads the profiles of the authors in a feed
type ProfileResolver struct {
	profiles    repositories.ProfileRepository
	storageBase string
	placeholder string
	logger      *zap.Logger
}

// NewProfileResolver creates a ProfileResolver. storageBase is the service root
// that relative avatar paths are resolved against.
func NewProfileResolver(profiles repositories.ProfileRepository, storageBase, placeholder string, logger *zap.Logger) *ProfileResolver {
	return &ProfileResolver{
		profiles:    profiles,
		storageBase: strings.TrimRight(storageBase, "/"),
		placeholder: placeholder,
		logger:      logger,
	}
}

// AuthorIDs returns the distinct non-empty author ids in first-seen order.
func AuthorIDs(entries []models.FeedEntry) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if e.AuthorID == "" || seen[e.AuthorID] {
			continue
		}
		seen[e.AuthorID] = true
		ids = append(ids, e.AuthorID)
	}
	return ids
}

// ResolveProfiles maps author id to profile with a normalized avatar. No remote
// call is made when entries reference no authors.
func (r *ProfileResolver) ResolveProfiles(ctx context.Context, entries []models.FeedEntry) (map[string]models.Profile, error) {
	result := make(map[string]models.Profile)
	ids := AuthorIDs(entries)
	if len(ids) == 0 {
		return result, nil
	}

	profiles, err := r.profiles.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return result, NewError(FetchError, models.TableProfiles, err)
	}
	for _, p := range profiles {
		p.AvatarURL = r.NormalizeAvatarURL(p.AvatarURL)
		result[p.ID] = p
	}
	r.logger.Debug("profiles resolved", zap.Int("requested", len(ids)), zap.Int("found", len(result)))
	return result, nil
}

// NormalizeAvatarURL turns a storage-relative avatar path into an absolute URL
// and substitutes the placeholder when there is no avatar. Absolute URLs are
// returned unchanged.
func (r *ProfileResolver) NormalizeAvatarURL(ref string) string {
	return NormalizeAvatarURL(r.storageBase, ref, r.placeholder)
}

// NormalizeAvatarURL is the resolver-independent form of ProfileResolver.NormalizeAvatarURL.
func NormalizeAvatarURL(storageBase, ref, placeholder string) string {
	if ref == "" {
		return placeholder
	}
	if isAbsoluteURL(ref) {
		return ref
	}
	base := strings.TrimRight(storageBase, "/") + storagePublicPath
	if strings.HasPrefix(ref, base+"/") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return base + ref
}

func isAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}
