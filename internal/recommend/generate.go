package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/windrush/job-recommender/internal/retrieval"
	"github.com/windrush/job-recommender/internal/scoring"
	"github.com/windrush/job-recommender/internal/types"
)

// GenerateResult is the outcome of a generation call.
type GenerateResult struct {
	Recommendations []types.JobRecommendation `json:"recommendations"`
	Message         string                    `json:"message"`
}

// Generate produces the user's ranked recommendation set.
//
// With refresh=false a fresh, non-empty stored set is returned unchanged:
// no duplicate scoring work, no interaction-flag resets. Otherwise the set
// is recomputed and atomically replaces the prior one, carrying interaction
// state over for jobs present in both. Concurrent calls for the same user
// collapse into a single execution.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, limit int, refresh bool) (*GenerateResult, error) {
	if limit < 0 || limit > 50 {
		return nil, &ValidationError{Field: "limit", Message: "must be between 1 and 50"}
	}

	v, err, _ := s.group.Do(userID.String(), func() (any, error) {
		return s.generate(ctx, userID, limit, refresh)
	})
	if err != nil {
		return nil, err
	}
	return v.(*GenerateResult), nil
}

func (s *Service) generate(ctx context.Context, userID uuid.UUID, limit int, refresh bool) (*GenerateResult, error) {
	prefs, err := s.prefs.GetOrCreatePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if limit == 0 {
		limit = prefs.MaxRecommendations
	}

	if !refresh {
		if existing, ok := s.freshSet(ctx, userID); ok {
			return &GenerateResult{
				Recommendations: existing,
				Message:         fmt.Sprintf("Returning %d existing recommendations", len(existing)),
			}, nil
		}
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, &UpstreamUnavailableError{Upstream: "profile store", Err: err}
	}

	candidates, steps, err := s.retriever.Retrieve(ctx, userID, prefs)
	if err != nil {
		var noCandidates *retrieval.NoCandidatesError
		if errors.As(err, &noCandidates) {
			return nil, err
		}
		return nil, &UpstreamUnavailableError{Upstream: "job catalog", Err: err}
	}

	generatedAt := s.now()
	scored := make([]types.JobRecommendation, 0, len(candidates))
	for i := range candidates {
		job := candidates[i]
		result := scoring.ScoreJob(prefs, profile, &job)
		if result.Score < s.minScore {
			continue
		}
		scored = append(scored, types.JobRecommendation{
			ID:           uuid.New(),
			UserID:       userID,
			JobID:        job.ID,
			MatchScore:   result.Score,
			Breakdown:    result.Breakdown,
			MatchReasons: result.Reasons,
			Algorithm:    types.AlgorithmRuleBasedV1,
			GeneratedAt:  generatedAt,
			Job:          &job,
		})
	}

	sortRecommendations(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	if err := s.recs.ReplaceRecommendations(ctx, userID, scored); err != nil {
		return nil, fmt.Errorf("replace recommendations: %w", err)
	}

	// Reload so carried-over interaction state is reflected in the response.
	stored, err := s.recs.ListRecommendations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, stored)
	}

	s.logger.Info("recommendations generated",
		zap.String("user_id", userID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("stored", len(stored)),
		zap.Int("filter_steps", len(steps)),
		zap.Bool("refresh", refresh),
	)

	return &GenerateResult{
		Recommendations: stored,
		Message:         fmt.Sprintf("Generated %d recommendations", len(stored)),
	}, nil
}

// freshSet returns the stored set when it is non-empty and younger than the
// freshness TTL, checking the cache first.
func (s *Service) freshSet(ctx context.Context, userID uuid.UUID) ([]types.JobRecommendation, bool) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, userID); ok && len(cached) > 0 {
			return cached, true
		}
	}

	existing, err := s.recs.ListRecommendations(ctx, userID)
	if err != nil || len(existing) == 0 {
		return nil, false
	}

	newest := existing[0].GeneratedAt
	for _, rec := range existing[1:] {
		if rec.GeneratedAt.After(newest) {
			newest = rec.GeneratedAt
		}
	}
	if s.now().Sub(newest) >= s.ttl {
		return nil, false
	}
	return existing, true
}

// sortRecommendations orders by score descending, featured jobs first on
// ties, then job ID ascending so equal candidates rank deterministically.
func sortRecommendations(recs []types.JobRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].MatchScore != recs[j].MatchScore {
			return recs[i].MatchScore > recs[j].MatchScore
		}
		fi, fj := featured(&recs[i]), featured(&recs[j])
		if fi != fj {
			return fi
		}
		return bytes.Compare(recs[i].JobID[:], recs[j].JobID[:]) < 0
	})
}

func featured(rec *types.JobRecommendation) bool {
	return rec.Job != nil && rec.Job.IsFeatured
}
