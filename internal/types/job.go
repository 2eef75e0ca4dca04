package types

import (
	"strings"

	"github.com/google/uuid"
)

// LocationType describes where a job is performed.
type LocationType string

const (
	LocationOnSite LocationType = "on_site"
	LocationRemote LocationType = "remote"
	LocationHybrid LocationType = "hybrid"
)

// Job is a catalog posting. The recommendation core only reads jobs; the
// catalog itself is owned by the surrounding job board.
type Job struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	CompanyID    uuid.UUID    `json:"company_id"`
	CompanyName  string       `json:"company_name"`
	CompanySize  string       `json:"company_size,omitempty"`
	Industry     string       `json:"industry,omitempty"`
	City         string       `json:"city,omitempty"`
	Location     string       `json:"location"`
	LocationType LocationType `json:"location_type"`
	JobType      string       `json:"job_type"`

	SalaryMin *int   `json:"salary_min,omitempty"`
	SalaryMax *int   `json:"salary_max,omitempty"`
	Currency  string `json:"currency,omitempty"`

	RequiredSkills  []string        `json:"required_skills"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`

	VisaSponsorshipAvailable bool     `json:"visa_sponsorship_available"`
	VisaTypesSupported       []string `json:"visa_types_supported"`

	Description  string `json:"description,omitempty"`
	Requirements string `json:"requirements,omitempty"`

	IsFeatured bool   `json:"is_featured"`
	IsUrgent   bool   `json:"is_urgent"`
	Status     string `json:"status"`
}

// SearchText returns the lowercased free text of the posting, used for
// avoid-keyword matching.
func (j *Job) SearchText() string {
	return strings.ToLower(j.Title + " " + j.Description + " " + j.Requirements)
}

// Fingerprint identifies "the same job" across generations for feedback
// suppression: postings by one company with one title share a fingerprint.
func (j *Job) Fingerprint() string {
	return JobFingerprint(j.CompanyName, j.Title)
}

// JobFingerprint builds a company+title fingerprint from raw fields.
func JobFingerprint(company, title string) string {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return norm(company) + "|" + norm(title)
}
