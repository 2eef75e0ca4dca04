package retrieval

import (
	"strings"

	"github.com/windrush/job-recommender/internal/types"
)

// sponsorshipFilter drops jobs that cannot sponsor a user who needs it.
// When the user names specific visa types, at least one must be supported.
type sponsorshipFilter struct{}

func (f *sponsorshipFilter) Name() string { return "sponsorship" }

func (f *sponsorshipFilter) Apply(prefs *types.UserJobPreference, jobs []types.Job) []types.Job {
	if !prefs.RequiresSponsorship {
		return jobs
	}

	kept := jobs[:0]
	for _, job := range jobs {
		if !job.VisaSponsorshipAvailable {
			continue
		}
		if len(prefs.VisaTypesNeeded) > 0 && !anyOverlap(prefs.VisaTypesNeeded, job.VisaTypesSupported) {
			continue
		}
		kept = append(kept, job)
	}
	return kept
}

// workModeFilter drops remote and hybrid jobs when the user declined both
// modes, unless a preferred location matches the job's location anyway.
type workModeFilter struct{}

func (f *workModeFilter) Name() string { return "work_mode" }

func (f *workModeFilter) Apply(prefs *types.UserJobPreference, jobs []types.Job) []types.Job {
	if prefs.OpenToRemote || prefs.OpenToHybrid {
		return jobs
	}

	kept := jobs[:0]
	for _, job := range jobs {
		if job.LocationType == types.LocationOnSite {
			kept = append(kept, job)
			continue
		}
		if matchesPreferredLocation(prefs.PreferredLocations, &job) {
			kept = append(kept, job)
		}
	}
	return kept
}

// avoidCompaniesFilter drops jobs from companies on the user's avoid list.
type avoidCompaniesFilter struct{}

func (f *avoidCompaniesFilter) Name() string { return "avoid_companies" }

func (f *avoidCompaniesFilter) Apply(prefs *types.UserJobPreference, jobs []types.Job) []types.Job {
	if len(prefs.AvoidCompanies) == 0 {
		return jobs
	}

	avoided := make(map[string]bool, len(prefs.AvoidCompanies))
	for _, id := range prefs.AvoidCompanies {
		avoided[id.String()] = true
	}

	kept := jobs[:0]
	for _, job := range jobs {
		if !avoided[job.CompanyID.String()] {
			kept = append(kept, job)
		}
	}
	return kept
}

// avoidKeywordsFilter hard-excludes jobs whose text contains any avoid
// keyword. Only ran when strict avoidance is enabled; the default treats
// avoid keywords as a scoring penalty.
type avoidKeywordsFilter struct{}

func (f *avoidKeywordsFilter) Name() string { return "avoid_keywords" }

func (f *avoidKeywordsFilter) Apply(prefs *types.UserJobPreference, jobs []types.Job) []types.Job {
	if len(prefs.AvoidKeywords) == 0 {
		return jobs
	}

	kept := jobs[:0]
	for _, job := range jobs {
		if !containsAnyKeyword(job.SearchText(), prefs.AvoidKeywords) {
			kept = append(kept, job)
		}
	}
	return kept
}

// negativeSignalFilter drops jobs whose fingerprint the user already
// rejected via feedback.
type negativeSignalFilter struct {
	excluded map[string]bool
}

func (f *negativeSignalFilter) Name() string { return "negative_signal" }

func (f *negativeSignalFilter) Apply(_ *types.UserJobPreference, jobs []types.Job) []types.Job {
	kept := jobs[:0]
	for _, job := range jobs {
		if !f.excluded[job.Fingerprint()] {
			kept = append(kept, job)
		}
	}
	return kept
}

func anyOverlap(needed, supported []string) bool {
	set := make(map[string]bool, len(supported))
	for _, s := range supported {
		set[strings.ToLower(strings.TrimSpace(s))] = true
	}
	for _, n := range needed {
		if set[strings.ToLower(strings.TrimSpace(n))] {
			return true
		}
	}
	return false
}

func matchesPreferredLocation(preferred []string, job *types.Job) bool {
	jobLocation := strings.ToLower(strings.TrimSpace(job.Location))
	city := strings.ToLower(strings.TrimSpace(job.City))
	for _, p := range preferred {
		pl := strings.ToLower(strings.TrimSpace(p))
		if pl == "" {
			continue
		}
		if strings.Contains(jobLocation, pl) || strings.Contains(city, pl) {
			return true
		}
	}
	return false
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, k := range keywords {
		kl := strings.ToLower(strings.TrimSpace(k))
		if kl != "" && strings.Contains(text, kl) {
			return true
		}
	}
	return false
}
