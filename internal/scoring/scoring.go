// Package scoring computes weighted match scores between users and job postings.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/windrush/job-recommender/internal/types"
)

// Default weights for scoring categories. They sum to 1.0.
const (
	skillsWeight     = 0.30
	locationWeight   = 0.20
	salaryWeight     = 0.20
	experienceWeight = 0.15
	companyWeight    = 0.15

	// maxKeywordPenalty is subtracted from the weighted total when every
	// avoid keyword appears in the posting; partial hits scale linearly.
	maxKeywordPenalty = 20.0

	// neutralScore is used when a category has no data to judge.
	neutralScore = 50
)

// Result is the outcome of scoring one job for one user.
type Result struct {
	Score     int
	Breakdown types.ScoreBreakdown
	Reasons   []string
}

// ScoreJob computes the match score, category breakdown, and human-readable
// reasons for a single candidate job. It is a pure function of its inputs:
// identical preferences, profile, and job always produce identical results.
func ScoreJob(prefs *types.UserJobPreference, profile *types.UserProfile, job *types.Job) *Result {
	skills, skillsDetail := skillsScore(prefs, profile, job)
	location, locationDetail := locationScore(prefs, job)
	salary, salaryDetail := salaryScore(prefs, job)
	experience, experienceDetail := experienceScore(prefs, job)
	company, companyDetail := companyScore(prefs, job)

	weighted := skillsWeight*float64(skills) +
		locationWeight*float64(location) +
		salaryWeight*float64(salary) +
		experienceWeight*float64(experience) +
		companyWeight*float64(company)

	total := weighted - avoidKeywordPenalty(prefs, job)
	if total < 0 {
		total = 0
	}
	score := int(math.Round(total))
	if score > 100 {
		score = 100
	}

	breakdown := types.ScoreBreakdown{
		Skills:     skills,
		Location:   location,
		Salary:     salary,
		Experience: experience,
		Company:    company,
	}

	return &Result{
		Score:     score,
		Breakdown: breakdown,
		Reasons: buildReasons([]category{
			{name: "skills", score: skills, weight: skillsWeight, detail: skillsDetail},
			{name: "location", score: location, weight: locationWeight, detail: locationDetail},
			{name: "salary", score: salary, weight: salaryWeight, detail: salaryDetail},
			{name: "experience", score: experience, weight: experienceWeight, detail: experienceDetail},
			{name: "company", score: company, weight: companyWeight, detail: companyDetail},
		}),
	}
}

// userSkillSet merges stated key skills with profile skills, normalized.
func userSkillSet(prefs *types.UserJobPreference, profile *types.UserProfile) map[string]bool {
	set := make(map[string]bool)
	add := func(skills []string) {
		for _, s := range skills {
			if n := normalizeTerm(s); n != "" {
				set[n] = true
			}
		}
	}
	add(prefs.KeySkills)
	if profile != nil {
		add(profile.Skills)
	}
	return set
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// skillsScore is the overlap ratio between the user's skills and the job's
// required skills: matched / max(1, required).
func skillsScore(prefs *types.UserJobPreference, profile *types.UserProfile, job *types.Job) (int, string) {
	skills := userSkillSet(prefs, profile)
	if len(skills) == 0 || len(job.RequiredSkills) == 0 {
		return neutralScore, ""
	}

	matched := 0
	for _, required := range job.RequiredSkills {
		if skills[normalizeTerm(required)] {
			matched++
		}
	}

	denom := len(job.RequiredSkills)
	if denom < 1 {
		denom = 1
	}
	score := int(math.Round(100 * float64(matched) / float64(denom)))
	if matched == 0 {
		return score, ""
	}
	if matched == 1 {
		return score, "Matches 1 of your key skills"
	}
	return score, fmt.Sprintf("Matches %d of your key skills", matched)
}

func locationScore(prefs *types.UserJobPreference, job *types.Job) (int, string) {
	if job.LocationType == types.LocationRemote && prefs.OpenToRemote {
		return 100, "Remote work available"
	}
	if job.LocationType == types.LocationHybrid && prefs.OpenToHybrid {
		return 100, "Hybrid work available"
	}

	if len(prefs.PreferredLocations) == 0 {
		return 60, ""
	}

	jobLocation := normalizeTerm(job.Location)
	companyCity := normalizeTerm(job.City)
	for _, preferred := range prefs.PreferredLocations {
		p := normalizeTerm(preferred)
		if p == "" {
			continue
		}
		if p == jobLocation || p == companyCity {
			return 100, fmt.Sprintf("Located in %s", preferred)
		}
		if containsEither(jobLocation, p) || containsEither(companyCity, p) {
			return 80, fmt.Sprintf("Location matches your preference: %s", preferred)
		}
	}
	return 20, ""
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// salaryScore compares the job's advertised range against the user's
// expected range. Missing data on either side is neutral. Full containment
// in either direction is a perfect score: a job paying entirely inside the
// user's acceptable band satisfies it just as a range covering the whole
// band does. Otherwise credit scales with the overlap fraction of the
// user's range.
func salaryScore(prefs *types.UserJobPreference, job *types.Job) (int, string) {
	if prefs.MinSalary == nil || prefs.MaxSalary == nil || job.SalaryMin == nil || job.SalaryMax == nil {
		return neutralScore, ""
	}

	userMin, userMax := *prefs.MinSalary, *prefs.MaxSalary
	jobMin, jobMax := *job.SalaryMin, *job.SalaryMax

	coversUser := jobMin <= userMin && jobMax >= userMax
	withinUser := jobMin >= userMin && jobMax <= userMax
	if coversUser || withinUser {
		return 100, "Salary range meets your expectations"
	}

	overlap := min(jobMax, userMax) - max(jobMin, userMin)
	if overlap <= 0 {
		return 0, ""
	}

	userRange := userMax - userMin
	if userRange <= 0 {
		// Degenerate single-point expectation inside the job range.
		return 100, "Salary range meets your expectations"
	}
	score := int(math.Round(100 * float64(overlap) / float64(userRange)))
	return score, "Salary range overlaps your expectations"
}

// experienceScore credits proximity on the ordered seniority scale:
// exact match 100, then 70/40/10 per level of distance, 0 beyond that.
func experienceScore(prefs *types.UserJobPreference, job *types.Job) (int, string) {
	if job.ExperienceLevel == "" {
		return neutralScore, ""
	}

	distance := prefs.ExperienceLevel.Rank() - job.ExperienceLevel.Rank()
	if distance < 0 {
		distance = -distance
	}

	switch distance {
	case 0:
		return 100, fmt.Sprintf("Experience level matches: %s", prefs.ExperienceLevel)
	case 1:
		return 70, "Experience level close to yours"
	case 2:
		return 40, ""
	case 3:
		return 10, ""
	default:
		return 0, ""
	}
}

// companyScore averages industry and company-size preference matches.
// An empty preference set is neutral for its half.
func companyScore(prefs *types.UserJobPreference, job *types.Job) (int, string) {
	industry := neutralScore
	industryHit := false
	if len(prefs.PreferredIndustries) > 0 {
		industry = 0
		for _, p := range prefs.PreferredIndustries {
			if normalizeTerm(p) == normalizeTerm(job.Industry) && job.Industry != "" {
				industry = 100
				industryHit = true
				break
			}
		}
	}

	size := neutralScore
	sizeHit := false
	if len(prefs.PreferredCompanySizes) > 0 {
		size = 0
		for _, p := range prefs.PreferredCompanySizes {
			if normalizeTerm(p) == normalizeTerm(job.CompanySize) && job.CompanySize != "" {
				size = 100
				sizeHit = true
				break
			}
		}
	}

	score := (industry + size) / 2

	switch {
	case industryHit && sizeHit:
		return score, fmt.Sprintf("Industry and company size match your preferences: %s", job.Industry)
	case industryHit:
		return score, fmt.Sprintf("Industry matches your preference: %s", job.Industry)
	case sizeHit:
		return score, fmt.Sprintf("Company size matches your preference: %s", job.CompanySize)
	default:
		return score, ""
	}
}

// avoidKeywordPenalty returns the penalty (in points) for avoid keywords
// found in the posting text, proportional to the fraction of terms hit.
func avoidKeywordPenalty(prefs *types.UserJobPreference, job *types.Job) float64 {
	if len(prefs.AvoidKeywords) == 0 {
		return 0
	}

	text := job.SearchText()
	found := 0
	for _, keyword := range prefs.AvoidKeywords {
		k := normalizeTerm(keyword)
		if k != "" && strings.Contains(text, k) {
			found++
		}
	}
	if found == 0 {
		return 0
	}
	return maxKeywordPenalty * float64(found) / float64(len(prefs.AvoidKeywords))
}
