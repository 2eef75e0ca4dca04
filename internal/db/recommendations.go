package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/windrush/job-recommender/internal/types"
)

const recommendationColumns = `r.id, r.user_id, r.job_id, r.match_score,
	r.score_skills, r.score_location, r.score_salary, r.score_experience,
	r.score_company, r.match_reasons, r.viewed, r.viewed_at, r.clicked,
	r.clicked_at, r.applied, r.applied_at, r.feedback, r.feedback_notes,
	r.feedback_at, r.algorithm, r.generated_at`

// carriedState is the interaction state preserved across a refresh for jobs
// present in both the old and new recommendation sets.
type carriedState struct {
	viewed        bool
	viewedAt      *time.Time
	clicked       bool
	clickedAt     *time.Time
	applied       bool
	appliedAt     *time.Time
	feedback      *string
	feedbackNotes string
	feedbackAt    *time.Time
}

// ReplaceRecommendations atomically replaces the user's recommendation set.
// Interaction flags and feedback carry over for jobs that survive the
// refresh; state on dropped jobs is discarded with the old rows. Concurrent
// readers see either the old set or the new one, never a mix.
func (db *DB) ReplaceRecommendations(ctx context.Context, userID uuid.UUID, recs []types.JobRecommendation) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	rows, err := tx.Query(ctx,
		`SELECT job_id, viewed, viewed_at, clicked, clicked_at, applied,
		        applied_at, feedback, feedback_notes, feedback_at
		 FROM job_recommendations WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to read prior recommendations: %w", err)
	}

	carried := make(map[uuid.UUID]carriedState)
	for rows.Next() {
		var jobID uuid.UUID
		var s carriedState
		if err := rows.Scan(&jobID, &s.viewed, &s.viewedAt, &s.clicked,
			&s.clickedAt, &s.applied, &s.appliedAt, &s.feedback,
			&s.feedbackNotes, &s.feedbackAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan prior recommendation: %w", err)
		}
		carried[jobID] = s
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read prior recommendations: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM job_recommendations WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete prior recommendations: %w", err)
	}

	for _, rec := range recs {
		state := carried[rec.JobID]
		_, err := tx.Exec(ctx,
			`INSERT INTO job_recommendations
			     (id, user_id, job_id, match_score, score_skills, score_location,
			      score_salary, score_experience, score_company, match_reasons,
			      viewed, viewed_at, clicked, clicked_at, applied, applied_at,
			      feedback, feedback_notes, feedback_at, algorithm, generated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			         $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
			rec.ID, userID, rec.JobID, rec.MatchScore,
			rec.Breakdown.Skills, rec.Breakdown.Location, rec.Breakdown.Salary,
			rec.Breakdown.Experience, rec.Breakdown.Company, rec.MatchReasons,
			state.viewed, state.viewedAt, state.clicked, state.clickedAt,
			state.applied, state.appliedAt, state.feedback, state.feedbackNotes,
			state.feedbackAt, rec.Algorithm, rec.GeneratedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert recommendation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recommendation set: %w", err)
	}
	return nil
}

// ListRecommendations returns the user's current recommendation set, best
// score first, joined with the catalog posting for display.
func (db *DB) ListRecommendations(ctx context.Context, userID uuid.UUID) ([]types.JobRecommendation, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+recommendationColumns+`, `+jobColumns+`
		 FROM job_recommendations r
		 JOIN jobs j ON j.id = r.job_id
		 WHERE r.user_id = $1
		 ORDER BY r.match_score DESC, j.is_featured DESC, r.job_id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []types.JobRecommendation
	for rows.Next() {
		rec, err := scanRecommendationWithJob(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}
	return recs, nil
}

// GetRecommendation retrieves one recommendation owned by the user.
// Returns nil without error when no such row exists for this user.
func (db *DB) GetRecommendation(ctx context.Context, userID, recID uuid.UUID) (*types.JobRecommendation, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+recommendationColumns+`, `+jobColumns+`
		 FROM job_recommendations r
		 JOIN jobs j ON j.id = r.job_id
		 WHERE r.id = $1 AND r.user_id = $2`,
		recID, userID,
	)
	rec, err := scanRecommendationWithJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// MarkViewed sets the viewed flag once. Idempotent: repeat calls keep the
// original timestamp. Returns false when the row is not owned by the user.
func (db *DB) MarkViewed(ctx context.Context, userID, recID uuid.UUID) (bool, error) {
	return db.markFlag(ctx, "viewed", userID, recID)
}

// MarkClicked sets the clicked flag once.
func (db *DB) MarkClicked(ctx context.Context, userID, recID uuid.UUID) (bool, error) {
	return db.markFlag(ctx, "clicked", userID, recID)
}

// MarkApplied sets the applied flag once.
func (db *DB) MarkApplied(ctx context.Context, userID, recID uuid.UUID) (bool, error) {
	return db.markFlag(ctx, "applied", userID, recID)
}

func (db *DB) markFlag(ctx context.Context, flag string, userID, recID uuid.UUID) (bool, error) {
	// flag is one of the fixed column names above, never user input.
	result, err := db.pool.Exec(ctx,
		`UPDATE job_recommendations
		 SET `+flag+` = TRUE, `+flag+`_at = COALESCE(`+flag+`_at, NOW())
		 WHERE id = $1 AND user_id = $2`,
		recID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark %s: %w", flag, err)
	}
	return result.RowsAffected() > 0, nil
}

// MarkAllViewed flags every unviewed recommendation of the user as viewed.
// Used when the full list is rendered.
func (db *DB) MarkAllViewed(ctx context.Context, userID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE job_recommendations
		 SET viewed = TRUE, viewed_at = NOW()
		 WHERE user_id = $1 AND NOT viewed`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark recommendations viewed: %w", err)
	}
	return nil
}

// SetFeedback overwrites feedback on a recommendation, last write wins.
// Returns false when the row is not owned by the user.
func (db *DB) SetFeedback(ctx context.Context, userID, recID uuid.UUID, feedback types.Feedback, notes string) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE job_recommendations
		 SET feedback = $3, feedback_notes = $4, feedback_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		recID, userID, string(feedback), notes,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set feedback: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// RecommendationStats aggregates the user's current set in one query.
// An empty set yields all-zero counters.
func (db *DB) RecommendationStats(ctx context.Context, userID uuid.UUID) (*types.RecommendationStats, error) {
	var s types.RecommendationStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(ROUND(AVG(match_score)::numeric, 1), 0),
		        COUNT(*) FILTER (WHERE viewed),
		        COUNT(*) FILTER (WHERE clicked),
		        COUNT(*) FILTER (WHERE applied),
		        COUNT(*) FILTER (WHERE feedback IS NOT NULL)
		 FROM job_recommendations WHERE user_id = $1`,
		userID,
	).Scan(&s.TotalRecommendations, &s.AverageScore, &s.ViewedCount,
		&s.ClickedCount, &s.AppliedCount, &s.FeedbackCount)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	return &s, nil
}

// NegativeFingerprints returns company+title fingerprints of jobs the user
// rejected (not_interested or already_applied) since the given time.
func (db *DB) NegativeFingerprints(ctx context.Context, userID uuid.UUID, since time.Time) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT j.company_name, j.title
		 FROM job_recommendations r
		 JOIN jobs j ON j.id = r.job_id
		 WHERE r.user_id = $1
		   AND r.feedback IN ('not_interested', 'already_applied')
		   AND r.feedback_at >= $2`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read negative feedback: %w", err)
	}
	defer rows.Close()

	var fingerprints []string
	for rows.Next() {
		var company, title string
		if err := rows.Scan(&company, &title); err != nil {
			return nil, fmt.Errorf("failed to scan negative feedback: %w", err)
		}
		fingerprints = append(fingerprints, types.JobFingerprint(company, title))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read negative feedback: %w", err)
	}
	return fingerprints, nil
}

// DeleteRecommendationsOlderThan removes recommendations generated before
// the cutoff across all users. Used by the retention sweeper.
func (db *DB) DeleteRecommendationsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM job_recommendations WHERE generated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old recommendations: %w", err)
	}
	return result.RowsAffected(), nil
}

// DeleteStaleRecommendations removes one user's recommendations generated
// before the cutoff.
func (db *DB) DeleteStaleRecommendations(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM job_recommendations WHERE user_id = $1 AND generated_at < $2`,
		userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale recommendations: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanRecommendationWithJob(row rowScanner) (*types.JobRecommendation, error) {
	var r types.JobRecommendation
	var j types.Job
	var feedback *string
	err := row.Scan(
		&r.ID, &r.UserID, &r.JobID, &r.MatchScore,
		&r.Breakdown.Skills, &r.Breakdown.Location, &r.Breakdown.Salary,
		&r.Breakdown.Experience, &r.Breakdown.Company, &r.MatchReasons,
		&r.Viewed, &r.ViewedAt, &r.Clicked, &r.ClickedAt,
		&r.Applied, &r.AppliedAt, &feedback, &r.FeedbackNotes, &r.FeedbackAt,
		&r.Algorithm, &r.GeneratedAt,
		&j.ID, &j.Title, &j.CompanyID, &j.CompanyName, &j.CompanySize,
		&j.Industry, &j.City, &j.Location, &j.LocationType, &j.JobType,
		&j.SalaryMin, &j.SalaryMax, &j.Currency, &j.RequiredSkills,
		&j.ExperienceLevel, &j.VisaSponsorshipAvailable, &j.VisaTypesSupported,
		&j.Description, &j.Requirements, &j.IsFeatured, &j.IsUrgent, &j.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan recommendation: %w", err)
	}
	if feedback != nil {
		f := types.Feedback(*feedback)
		r.Feedback = &f
	}
	r.Job = &j
	return &r, nil
}
