package recommend

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/windrush/job-recommender/internal/types"
)

// List returns the user's current recommendation set, best score first,
// marking every returned row as viewed.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]types.JobRecommendation, error) {
	if err := s.recs.MarkAllViewed(ctx, userID); err != nil {
		return nil, fmt.Errorf("mark viewed: %w", err)
	}
	recs, err := s.recs.ListRecommendations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return recs, nil
}

// Get returns one recommendation owned by the user, marking it viewed.
func (s *Service) Get(ctx context.Context, userID, recID uuid.UUID) (*types.JobRecommendation, error) {
	rec, err := s.recs.GetRecommendation(ctx, userID, recID)
	if err != nil {
		return nil, fmt.Errorf("get recommendation: %w", err)
	}
	if rec == nil {
		return nil, &NotFoundError{Resource: "recommendation", ID: recID}
	}

	if !rec.Viewed {
		if _, err := s.recs.MarkViewed(ctx, userID, recID); err != nil {
			return nil, fmt.Errorf("mark viewed: %w", err)
		}
		rec.Viewed = true
		if s.cache != nil {
			s.cache.Invalidate(ctx, userID)
		}
	}
	return rec, nil
}

// RecordClick sets the clicked flag. Idempotent and monotonic; a repeat
// call is a no-op.
func (s *Service) RecordClick(ctx context.Context, userID, recID uuid.UUID) error {
	return s.mark(ctx, userID, recID, "clicked", s.recs.MarkClicked)
}

// RecordApplied sets the applied flag.
func (s *Service) RecordApplied(ctx context.Context, userID, recID uuid.UUID) error {
	return s.mark(ctx, userID, recID, "applied", s.recs.MarkApplied)
}

func (s *Service) mark(ctx context.Context, userID, recID uuid.UUID, flag string, markFn func(context.Context, uuid.UUID, uuid.UUID) (bool, error)) error {
	found, err := markFn(ctx, userID, recID)
	if err != nil {
		return fmt.Errorf("mark %s: %w", flag, err)
	}
	if !found {
		return &NotFoundError{Resource: "recommendation", ID: recID}
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return nil
}

// SubmitFeedback validates and records explicit feedback on a
// recommendation, overwriting any prior value. The feedback feeds the
// negative-signal policy on subsequent generations.
func (s *Service) SubmitFeedback(ctx context.Context, userID, recID uuid.UUID, req *types.FeedbackRequest) error {
	if err := req.Validate(); err != nil {
		return asValidationError(err)
	}

	found, err := s.recs.SetFeedback(ctx, userID, recID, types.Feedback(req.Feedback), req.Notes)
	if err != nil {
		return fmt.Errorf("set feedback: %w", err)
	}
	if !found {
		return &NotFoundError{Resource: "recommendation", ID: recID}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	s.logger.Info("feedback recorded",
		zap.String("user_id", userID.String()),
		zap.String("recommendation_id", recID.String()),
		zap.String("feedback", req.Feedback),
	)
	return nil
}
