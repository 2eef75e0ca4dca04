package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AlgorithmRuleBasedV1 tags recommendations produced by the deterministic
// weighted scorer.
const AlgorithmRuleBasedV1 = "rule_based_v1"

// Feedback is a user's explicit verdict on a recommendation.
type Feedback string

const (
	FeedbackHelpful        Feedback = "helpful"
	FeedbackNotHelpful     Feedback = "not_helpful"
	FeedbackNotInterested  Feedback = "not_interested"
	FeedbackAlreadyApplied Feedback = "already_applied"
)

// ScoreBreakdown holds the five category sub-scores, each 0-100.
// It is a fixed record rather than a map so every breakdown enumerates
// the same categories.
type ScoreBreakdown struct {
	Skills     int `json:"skills"`
	Location   int `json:"location"`
	Salary     int `json:"salary"`
	Experience int `json:"experience"`
	Company    int `json:"company"`
}

// JobRecommendation is one scored job surfaced to one user.
type JobRecommendation struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	JobID  uuid.UUID `json:"job_id"`

	MatchScore   int            `json:"match_score_percentage"`
	Breakdown    ScoreBreakdown `json:"score_breakdown"`
	MatchReasons []string       `json:"match_reasons"`

	// Interaction flags are monotonic: once true they stay true.
	Viewed    bool       `json:"viewed"`
	ViewedAt  *time.Time `json:"viewed_at,omitempty"`
	Clicked   bool       `json:"clicked"`
	ClickedAt *time.Time `json:"clicked_at,omitempty"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`

	Feedback      *Feedback  `json:"feedback,omitempty"`
	FeedbackNotes string     `json:"feedback_notes,omitempty"`
	FeedbackAt    *time.Time `json:"feedback_at,omitempty"`

	Algorithm   string    `json:"algorithm"`
	GeneratedAt time.Time `json:"generated_at"`

	// Job is the joined catalog posting, populated on reads for display.
	Job *Job `json:"job,omitempty"`
}

// RecommendationStats summarizes a user's current recommendation set.
// Derived on demand, never stored.
type RecommendationStats struct {
	TotalRecommendations int     `json:"total_recommendations"`
	AverageScore         float64 `json:"average_score"`
	ViewedCount          int     `json:"viewed_count"`
	ClickedCount         int     `json:"clicked_count"`
	AppliedCount         int     `json:"applied_count"`
	FeedbackCount        int     `json:"feedback_count"`
}

// GenerateRequest is the request body for generating recommendations.
// Limit 0 means "use the user's max_recommendations setting".
type GenerateRequest struct {
	Limit   int  `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
	Refresh bool `json:"refresh,omitempty"`
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// FeedbackRequest is the request body for submitting feedback.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,oneof=helpful not_helpful not_interested already_applied"`
	Notes    string `json:"notes,omitempty" validate:"max=500"`
}

// Validate validates the FeedbackRequest using the validator.
func (r *FeedbackRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
