// Package retrieval pulls a bounded set of eligible jobs for a user by
// applying hard, non-negotiable filters to the job catalog.
package retrieval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/windrush/job-recommender/internal/types"
)

// DefaultCandidateCap bounds the candidate set handed to the scorer.
const DefaultCandidateCap = 200

// Catalog is the read interface onto the job catalog.
type Catalog interface {
	FetchCandidates(ctx context.Context, requiresSponsorship bool, limit int) ([]types.Job, error)
}

// NegativeSignalPolicy supplies job fingerprints to suppress for a user,
// derived from prior feedback. Implementations define their own decay rule.
type NegativeSignalPolicy interface {
	ExcludedFingerprints(ctx context.Context, userID uuid.UUID) (map[string]bool, error)
}

// Filter is a single hard-filter step applied to the candidate list.
type Filter interface {
	Name() string
	Apply(prefs *types.UserJobPreference, jobs []types.Job) []types.Job
}

// Step records the drop accounting of one executed filter.
type Step struct {
	Name    string
	Initial int
	Dropped int
	Left    int
}

// Retriever fetches and hard-filters candidate jobs.
type Retriever struct {
	catalog     Catalog
	policy      NegativeSignalPolicy
	strictAvoid bool
	cap         int
	logger      *zap.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithStrictAvoidKeywords switches avoid-keyword handling from a scoring
// penalty to a hard exclusion.
func WithStrictAvoidKeywords(strict bool) Option {
	return func(r *Retriever) { r.strictAvoid = strict }
}

// WithCandidateCap overrides the bound on fetched candidates.
func WithCandidateCap(cap int) Option {
	return func(r *Retriever) {
		if cap > 0 {
			r.cap = cap
		}
	}
}

// WithNegativeSignalPolicy installs the feedback suppression policy.
func WithNegativeSignalPolicy(policy NegativeSignalPolicy) Option {
	return func(r *Retriever) { r.policy = policy }
}

// New creates a Retriever over the given catalog.
func New(catalog Catalog, logger *zap.Logger, opts ...Option) *Retriever {
	r := &Retriever{
		catalog: catalog,
		cap:     DefaultCandidateCap,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns the hard-filtered candidate set for the user, with per-step
// drop accounting. An empty result is a NoCandidatesError, never an empty slice:
// the caller decides whether to relax or report no matches.
func (r *Retriever) Retrieve(ctx context.Context, userID uuid.UUID, prefs *types.UserJobPreference) ([]types.Job, []Step, error) {
	jobs, err := r.catalog.FetchCandidates(ctx, prefs.RequiresSponsorship, r.cap)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch candidates: %w", err)
	}

	filters := []Filter{
		&sponsorshipFilter{},
		&workModeFilter{},
		&avoidCompaniesFilter{},
	}
	if r.strictAvoid {
		filters = append(filters, &avoidKeywordsFilter{})
	}
	if r.policy != nil {
		excluded, err := r.policy.ExcludedFingerprints(ctx, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("negative signal policy: %w", err)
		}
		if len(excluded) > 0 {
			filters = append(filters, &negativeSignalFilter{excluded: excluded})
		}
	}

	steps := make([]Step, 0, len(filters))
	for _, f := range filters {
		initial := len(jobs)
		jobs = f.Apply(prefs, jobs)
		step := Step{Name: f.Name(), Initial: initial, Dropped: initial - len(jobs), Left: len(jobs)}
		steps = append(steps, step)

		if r.logger != nil && step.Dropped > 0 {
			r.logger.Debug("hard filter step",
				zap.String("name", step.Name),
				zap.Int("initial", step.Initial),
				zap.Int("dropped", step.Dropped),
				zap.Int("left", step.Left),
			)
		}
	}

	if len(jobs) == 0 {
		return nil, steps, &NoCandidatesError{UserID: userID}
	}
	return jobs, steps, nil
}
