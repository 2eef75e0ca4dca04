package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/windrush/job-recommender/internal/types"
)

const jobColumns = `j.id, j.title, j.company_id, j.company_name, j.company_size,
	j.industry, j.city, j.location, j.location_type, j.job_type,
	j.salary_min, j.salary_max, j.currency, j.required_skills,
	j.experience_level, j.visa_sponsorship_available, j.visa_types_supported,
	j.description, j.requirements, j.is_featured, j.is_urgent, j.status`

// FetchCandidates reads active catalog jobs, newest first, bounded by limit.
// Sponsorship availability is pushed into the query when required; the
// finer-grained visa-type overlap stays with the retrieval filters.
func (db *DB) FetchCandidates(ctx context.Context, requiresSponsorship bool, limit int) ([]types.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.status = 'active'`
	args := []any{}
	if requiresSponsorship {
		query += ` AND j.visa_sponsorship_available`
	}
	query += fmt.Sprintf(` ORDER BY j.created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	return jobs, nil
}

// GetProfile reads the user's skills and seniority from the profile store.
// Returns nil without error when the user has no profile row.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	var p types.UserProfile
	p.UserID = userID
	err := db.pool.QueryRow(ctx,
		`SELECT skills, experience_level FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.Skills, &p.ExperienceLevel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func scanJob(row rowScanner) (*types.Job, error) {
	var j types.Job
	err := row.Scan(
		&j.ID, &j.Title, &j.CompanyID, &j.CompanyName, &j.CompanySize,
		&j.Industry, &j.City, &j.Location, &j.LocationType, &j.JobType,
		&j.SalaryMin, &j.SalaryMax, &j.Currency, &j.RequiredSkills,
		&j.ExperienceLevel, &j.VisaSponsorshipAvailable, &j.VisaTypesSupported,
		&j.Description, &j.Requirements, &j.IsFeatured, &j.IsUrgent, &j.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	return &j, nil
}
