package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/windrush/job-recommender/internal/types"
)

const preferenceColumns = `user_id, preferred_locations, max_commute_distance,
	open_to_remote, open_to_hybrid, preferred_job_types, preferred_industries,
	preferred_company_sizes, avoid_companies, experience_level, min_salary,
	max_salary, salary_currency, key_skills, avoid_keywords,
	requires_sponsorship, visa_types_needed, notification_frequency,
	max_recommendations, created_at, updated_at`

// GetOrCreatePreferences returns the user's preference record, creating it
// with defaults on first access.
func (db *DB) GetOrCreatePreferences(ctx context.Context, userID uuid.UUID) (*types.UserJobPreference, error) {
	defaults := types.DefaultPreferences(userID)
	_, err := db.pool.Exec(ctx,
		`INSERT INTO user_job_preferences
		     (user_id, open_to_remote, open_to_hybrid, experience_level,
		      salary_currency, requires_sponsorship, notification_frequency,
		      max_recommendations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, defaults.OpenToRemote, defaults.OpenToHybrid,
		defaults.ExperienceLevel, defaults.SalaryCurrency,
		defaults.RequiresSponsorship, defaults.NotificationFrequency,
		defaults.MaxRecommendations,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`SELECT `+preferenceColumns+` FROM user_job_preferences WHERE user_id = $1`,
		userID,
	)
	return scanPreferences(row)
}

// SavePreferences upserts the full preference record and returns the stored row.
func (db *DB) SavePreferences(ctx context.Context, prefs *types.UserJobPreference) (*types.UserJobPreference, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO user_job_preferences
		     (user_id, preferred_locations, max_commute_distance, open_to_remote,
		      open_to_hybrid, preferred_job_types, preferred_industries,
		      preferred_company_sizes, avoid_companies, experience_level,
		      min_salary, max_salary, salary_currency, key_skills,
		      avoid_keywords, requires_sponsorship, visa_types_needed,
		      notification_frequency, max_recommendations)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		         $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 ON CONFLICT (user_id) DO UPDATE SET
		     preferred_locations = $2,
		     max_commute_distance = $3,
		     open_to_remote = $4,
		     open_to_hybrid = $5,
		     preferred_job_types = $6,
		     preferred_industries = $7,
		     preferred_company_sizes = $8,
		     avoid_companies = $9,
		     experience_level = $10,
		     min_salary = $11,
		     max_salary = $12,
		     salary_currency = $13,
		     key_skills = $14,
		     avoid_keywords = $15,
		     requires_sponsorship = $16,
		     visa_types_needed = $17,
		     notification_frequency = $18,
		     max_recommendations = $19,
		     updated_at = NOW()
		 RETURNING `+preferenceColumns,
		prefs.UserID, prefs.PreferredLocations, prefs.MaxCommuteDistance,
		prefs.OpenToRemote, prefs.OpenToHybrid, prefs.PreferredJobTypes,
		prefs.PreferredIndustries, prefs.PreferredCompanySizes,
		prefs.AvoidCompanies, prefs.ExperienceLevel, prefs.MinSalary,
		prefs.MaxSalary, prefs.SalaryCurrency, prefs.KeySkills,
		prefs.AvoidKeywords, prefs.RequiresSponsorship, prefs.VisaTypesNeeded,
		prefs.NotificationFrequency, prefs.MaxRecommendations,
	)
	return scanPreferences(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreferences(row rowScanner) (*types.UserJobPreference, error) {
	var p types.UserJobPreference
	err := row.Scan(
		&p.UserID, &p.PreferredLocations, &p.MaxCommuteDistance,
		&p.OpenToRemote, &p.OpenToHybrid, &p.PreferredJobTypes,
		&p.PreferredIndustries, &p.PreferredCompanySizes, &p.AvoidCompanies,
		&p.ExperienceLevel, &p.MinSalary, &p.MaxSalary, &p.SalaryCurrency,
		&p.KeySkills, &p.AvoidKeywords, &p.RequiresSponsorship,
		&p.VisaTypesNeeded, &p.NotificationFrequency, &p.MaxRecommendations,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan preferences: %w", err)
	}
	return &p, nil
}
