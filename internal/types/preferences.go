// Package types provides type definitions for structured data used throughout the job recommendation system.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ExperienceLevel is the ordered seniority scale used for matching.
type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceJunior    ExperienceLevel = "junior"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceLead      ExperienceLevel = "lead"
	ExperienceExecutive ExperienceLevel = "executive"
)

var experienceRanks = map[ExperienceLevel]int{
	ExperienceEntry:     0,
	ExperienceJunior:    1,
	ExperienceMid:       2,
	ExperienceSenior:    3,
	ExperienceLead:      4,
	ExperienceExecutive: 5,
}

// Rank returns the position of the level on the ordered scale.
// Unknown levels rank as mid so malformed catalog data stays scoreable.
func (e ExperienceLevel) Rank() int {
	if r, ok := experienceRanks[e]; ok {
		return r
	}
	return experienceRanks[ExperienceMid]
}

// NotificationFrequency controls digest delivery cadence for a user.
type NotificationFrequency string

const (
	NotifyDaily    NotificationFrequency = "daily"
	NotifyWeekly   NotificationFrequency = "weekly"
	NotifyMonthly  NotificationFrequency = "monthly"
	NotifyDisabled NotificationFrequency = "disabled"
)

// UserJobPreference holds one user's stated preferences for job matching.
// One record per user, created with defaults on first access.
type UserJobPreference struct {
	UserID uuid.UUID `json:"user_id"`

	// Location
	PreferredLocations []string `json:"preferred_locations"`
	MaxCommuteDistance *int     `json:"max_commute_distance,omitempty" validate:"omitempty,gt=0"`
	OpenToRemote       bool     `json:"open_to_remote"`
	OpenToHybrid       bool     `json:"open_to_hybrid"`

	// Job and company
	PreferredJobTypes     []string        `json:"preferred_job_types"`
	PreferredIndustries   []string        `json:"preferred_industries"`
	PreferredCompanySizes []string        `json:"preferred_company_sizes"`
	AvoidCompanies        []uuid.UUID     `json:"avoid_companies"`
	ExperienceLevel       ExperienceLevel `json:"experience_level" validate:"oneof=entry junior mid senior lead executive"`

	// Salary
	MinSalary      *int   `json:"min_salary,omitempty" validate:"omitempty,gt=0"`
	MaxSalary      *int   `json:"max_salary,omitempty" validate:"omitempty,gt=0"`
	SalaryCurrency string `json:"salary_currency" validate:"len=3,alpha"`

	// Skills and keywords
	KeySkills     []string `json:"key_skills"`
	AvoidKeywords []string `json:"avoid_keywords"`

	// Visa sponsorship
	RequiresSponsorship bool     `json:"requires_sponsorship"`
	VisaTypesNeeded     []string `json:"visa_types_needed"`

	// Recommendation settings
	NotificationFrequency NotificationFrequency `json:"notification_frequency" validate:"oneof=daily weekly monthly disabled"`
	MaxRecommendations    int                   `json:"max_recommendations" validate:"min=1,max=50"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPreferences returns the preference record created on first access.
func DefaultPreferences(userID uuid.UUID) *UserJobPreference {
	return &UserJobPreference{
		UserID:                userID,
		OpenToRemote:          true,
		OpenToHybrid:          true,
		ExperienceLevel:       ExperienceMid,
		SalaryCurrency:        "GBP",
		RequiresSponsorship:   true,
		NotificationFrequency: NotifyWeekly,
		MaxRecommendations:    10,
	}
}

// Validate validates the UserJobPreference using the validator, plus the
// cross-field salary constraint the tag syntax cannot express for pointers.
func (p *UserJobPreference) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.MinSalary != nil && p.MaxSalary != nil && *p.MinSalary > *p.MaxSalary {
		return &FieldError{Field: "min_salary", Message: "min_salary must not exceed max_salary"}
	}
	return nil
}

// FieldError reports a single invalid field on a request or record.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// UpdatePreferencesRequest is a partial preference update. Nil fields are
// left untouched; slices replace the stored set wholesale.
type UpdatePreferencesRequest struct {
	PreferredLocations    *[]string    `json:"preferred_locations,omitempty"`
	MaxCommuteDistance    *int         `json:"max_commute_distance,omitempty"`
	OpenToRemote          *bool        `json:"open_to_remote,omitempty"`
	OpenToHybrid          *bool        `json:"open_to_hybrid,omitempty"`
	PreferredJobTypes     *[]string    `json:"preferred_job_types,omitempty"`
	PreferredIndustries   *[]string    `json:"preferred_industries,omitempty"`
	PreferredCompanySizes *[]string    `json:"preferred_company_sizes,omitempty"`
	AvoidCompanies        *[]uuid.UUID `json:"avoid_companies,omitempty"`
	ExperienceLevel       *string      `json:"experience_level,omitempty"`
	MinSalary             *int         `json:"min_salary,omitempty"`
	MaxSalary             *int         `json:"max_salary,omitempty"`
	SalaryCurrency        *string      `json:"salary_currency,omitempty"`
	KeySkills             *[]string    `json:"key_skills,omitempty"`
	AvoidKeywords         *[]string    `json:"avoid_keywords,omitempty"`
	RequiresSponsorship   *bool        `json:"requires_sponsorship,omitempty"`
	VisaTypesNeeded       *[]string    `json:"visa_types_needed,omitempty"`
	NotificationFrequency *string      `json:"notification_frequency,omitempty"`
	MaxRecommendations    *int         `json:"max_recommendations,omitempty"`
}

// Apply merges the non-nil fields of the request into prefs.
func (r *UpdatePreferencesRequest) Apply(prefs *UserJobPreference) {
	if r.PreferredLocations != nil {
		prefs.PreferredLocations = *r.PreferredLocations
	}
	if r.MaxCommuteDistance != nil {
		prefs.MaxCommuteDistance = r.MaxCommuteDistance
	}
	if r.OpenToRemote != nil {
		prefs.OpenToRemote = *r.OpenToRemote
	}
	if r.OpenToHybrid != nil {
		prefs.OpenToHybrid = *r.OpenToHybrid
	}
	if r.PreferredJobTypes != nil {
		prefs.PreferredJobTypes = *r.PreferredJobTypes
	}
	if r.PreferredIndustries != nil {
		prefs.PreferredIndustries = *r.PreferredIndustries
	}
	if r.PreferredCompanySizes != nil {
		prefs.PreferredCompanySizes = *r.PreferredCompanySizes
	}
	if r.AvoidCompanies != nil {
		prefs.AvoidCompanies = *r.AvoidCompanies
	}
	if r.ExperienceLevel != nil {
		prefs.ExperienceLevel = ExperienceLevel(*r.ExperienceLevel)
	}
	if r.MinSalary != nil {
		prefs.MinSalary = r.MinSalary
	}
	if r.MaxSalary != nil {
		prefs.MaxSalary = r.MaxSalary
	}
	if r.SalaryCurrency != nil {
		prefs.SalaryCurrency = *r.SalaryCurrency
	}
	if r.KeySkills != nil {
		prefs.KeySkills = *r.KeySkills
	}
	if r.AvoidKeywords != nil {
		prefs.AvoidKeywords = *r.AvoidKeywords
	}
	if r.RequiresSponsorship != nil {
		prefs.RequiresSponsorship = *r.RequiresSponsorship
	}
	if r.VisaTypesNeeded != nil {
		prefs.VisaTypesNeeded = *r.VisaTypesNeeded
	}
	if r.NotificationFrequency != nil {
		prefs.NotificationFrequency = NotificationFrequency(*r.NotificationFrequency)
	}
	if r.MaxRecommendations != nil {
		prefs.MaxRecommendations = *r.MaxRecommendations
	}
}

// UserProfile is the slice of the identity store the scorer reads:
// the user's skills and self-reported seniority.
type UserProfile struct {
	UserID          uuid.UUID       `json:"user_id"`
	Skills          []string        `json:"skills"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
}
