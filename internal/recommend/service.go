package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/windrush/job-recommender/internal/retrieval"
	"github.com/windrush/job-recommender/internal/types"
)

// Default policy knobs; all overridable via Options.
const (
	DefaultFreshnessTTL = 24 * time.Hour
	DefaultRetention    = 30 * 24 * time.Hour
)

// PreferenceStore persists one preference record per user.
type PreferenceStore interface {
	GetOrCreatePreferences(ctx context.Context, userID uuid.UUID) (*types.UserJobPreference, error)
	SavePreferences(ctx context.Context, prefs *types.UserJobPreference) (*types.UserJobPreference, error)
}

// ProfileStore reads the user's skills and seniority from the identity store.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
}

// RecommendationStore persists generated recommendation sets and their
// interaction state.
type RecommendationStore interface {
	ReplaceRecommendations(ctx context.Context, userID uuid.UUID, recs []types.JobRecommendation) error
	ListRecommendations(ctx context.Context, userID uuid.UUID) ([]types.JobRecommendation, error)
	GetRecommendation(ctx context.Context, userID, recID uuid.UUID) (*types.JobRecommendation, error)
	MarkViewed(ctx context.Context, userID, recID uuid.UUID) (bool, error)
	MarkClicked(ctx context.Context, userID, recID uuid.UUID) (bool, error)
	MarkApplied(ctx context.Context, userID, recID uuid.UUID) (bool, error)
	MarkAllViewed(ctx context.Context, userID uuid.UUID) error
	SetFeedback(ctx context.Context, userID, recID uuid.UUID, feedback types.Feedback, notes string) (bool, error)
	RecommendationStats(ctx context.Context, userID uuid.UUID) (*types.RecommendationStats, error)
	NegativeFingerprints(ctx context.Context, userID uuid.UUID, since time.Time) ([]string, error)
	DeleteStaleRecommendations(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
}

// CandidateRetriever returns the hard-filtered candidate set for a user.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, userID uuid.UUID, prefs *types.UserJobPreference) ([]types.Job, []retrieval.Step, error)
}

// Cache is an optional per-user recommendation cache. Implementations are
// best-effort: misses and errors both surface as "not cached".
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]types.JobRecommendation, bool)
	Set(ctx context.Context, userID uuid.UUID, recs []types.JobRecommendation)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// Service is the recommendation engine facade exposed to the API layer.
type Service struct {
	prefs     PreferenceStore
	profiles  ProfileStore
	recs      RecommendationStore
	retriever CandidateRetriever
	cache     Cache
	logger    *zap.Logger

	ttl       time.Duration
	retention time.Duration
	minScore  int
	now       func() time.Time

	// group collapses concurrent generation calls for one user into a
	// single execution, so refreshes never interleave partial writes.
	group singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithFreshnessTTL overrides how long a generated set is considered fresh.
func WithFreshnessTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRetention overrides how long recommendations are kept before the
// stale sweep removes them.
func WithRetention(retention time.Duration) Option {
	return func(s *Service) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

// WithMinScore drops scored candidates below the threshold before ranking.
func WithMinScore(minScore int) Option {
	return func(s *Service) { s.minScore = minScore }
}

// WithCache installs the per-user recommendation cache.
func WithCache(cache Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates the recommendation service.
func New(prefs PreferenceStore, profiles ProfileStore, recs RecommendationStore, retriever CandidateRetriever, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		prefs:     prefs,
		profiles:  profiles,
		recs:      recs,
		retriever: retriever,
		logger:    logger,
		ttl:       DefaultFreshnessTTL,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPreferences returns the user's preferences, creating defaults on first
// access.
func (s *Service) GetPreferences(ctx context.Context, userID uuid.UUID) (*types.UserJobPreference, error) {
	prefs, err := s.prefs.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreferences applies a partial update to the user's preferences.
// The merged record is validated before anything is written; the user's
// cached recommendation set is invalidated so the next generation sees the
// new preferences.
func (s *Service) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdatePreferencesRequest) (*types.UserJobPreference, error) {
	prefs, err := s.prefs.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	req.Apply(prefs)
	if err := prefs.Validate(); err != nil {
		return nil, asValidationError(err)
	}

	saved, err := s.prefs.SavePreferences(ctx, prefs)
	if err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	s.logger.Info("preferences updated", zap.String("user_id", userID.String()))
	return saved, nil
}

// ClearStale deletes the user's recommendations older than the retention
// window and returns how many were removed.
func (s *Service) ClearStale(ctx context.Context, userID uuid.UUID) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	deleted, err := s.recs.DeleteStaleRecommendations(ctx, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear stale recommendations: %w", err)
	}
	if s.cache != nil && deleted > 0 {
		s.cache.Invalidate(ctx, userID)
	}
	return deleted, nil
}

// Stats aggregates the user's current recommendation set.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*types.RecommendationStats, error) {
	stats, err := s.recs.RecommendationStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recommendation stats: %w", err)
	}
	return stats, nil
}
