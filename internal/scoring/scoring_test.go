package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windrush/job-recommender/internal/types"
)

func intPtr(v int) *int { return &v }

func basePrefs() *types.UserJobPreference {
	return &types.UserJobPreference{
		OpenToRemote:       true,
		OpenToHybrid:       true,
		ExperienceLevel:    types.ExperienceMid,
		MaxRecommendations: 10,
	}
}

func TestScoreJob_WeightedTotal(t *testing.T) {
	// Remote job, salary fully containing the expected range, exact
	// experience match, no required skills listed, no company prefs:
	// 0.30*50 + 0.20*100 + 0.20*100 + 0.15*100 + 0.15*50 = 77.5 -> 78.
	prefs := basePrefs()
	prefs.KeySkills = []string{"Go"}
	prefs.MinSalary = intPtr(50000)
	prefs.MaxSalary = intPtr(70000)

	job := &types.Job{
		Title:           "Backend Engineer",
		LocationType:    types.LocationRemote,
		SalaryMin:       intPtr(45000),
		SalaryMax:       intPtr(80000),
		ExperienceLevel: types.ExperienceMid,
	}

	result := ScoreJob(prefs, nil, job)
	assert.Equal(t, 78, result.Score)
	assert.Equal(t, types.ScoreBreakdown{
		Skills:     50,
		Location:   100,
		Salary:     100,
		Experience: 100,
		Company:    50,
	}, result.Breakdown)
}

func TestScoreJob_JobSalaryInsideExpectedBand(t *testing.T) {
	// A posting advertising entirely within the user's acceptable band is a
	// perfect salary match, not a partial overlap:
	// 0.30*50 + 0.20*60 + 0.20*100 + 0.15*100 + 0.15*50 = 69.5 -> 70.
	prefs := basePrefs()
	prefs.KeySkills = []string{"Python", "React"}
	prefs.MinSalary = intPtr(30000)
	prefs.MaxSalary = intPtr(50000)
	prefs.RequiresSponsorship = true

	job := &types.Job{
		Title:                    "Backend Developer",
		LocationType:             types.LocationOnSite,
		SalaryMin:                intPtr(35000),
		SalaryMax:                intPtr(45000),
		RequiredSkills:           []string{"Python", "Django"},
		ExperienceLevel:          types.ExperienceMid,
		VisaSponsorshipAvailable: true,
	}

	result := ScoreJob(prefs, nil, job)
	assert.Equal(t, 50, result.Breakdown.Skills)
	assert.Equal(t, 100, result.Breakdown.Salary)
	assert.Equal(t, 100, result.Breakdown.Experience)
	assert.Equal(t, 70, result.Score)
}

func TestScoreJob_Deterministic(t *testing.T) {
	prefs := basePrefs()
	prefs.KeySkills = []string{"go", "postgres", "kubernetes"}
	prefs.MinSalary = intPtr(60000)
	prefs.MaxSalary = intPtr(90000)
	prefs.PreferredIndustries = []string{"fintech"}
	prefs.AvoidKeywords = []string{"on-call"}

	job := &types.Job{
		Title:           "Platform Engineer",
		Description:     "Kubernetes platform team with light on-call rotation",
		LocationType:    types.LocationHybrid,
		SalaryMin:       intPtr(55000),
		SalaryMax:       intPtr(75000),
		RequiredSkills:  []string{"Go", "Kubernetes"},
		ExperienceLevel: types.ExperienceSenior,
		Industry:        "Fintech",
	}

	first := ScoreJob(prefs, nil, job)
	for i := 0; i < 10; i++ {
		again := ScoreJob(prefs, nil, job)
		require.Equal(t, first.Score, again.Score)
		require.Equal(t, first.Breakdown, again.Breakdown)
		require.Equal(t, first.Reasons, again.Reasons)
	}
}

func TestScoreJob_ClampsAtZero(t *testing.T) {
	prefs := basePrefs()
	prefs.OpenToRemote = false
	prefs.OpenToHybrid = false
	prefs.PreferredLocations = []string{"London"}
	prefs.KeySkills = []string{"go"}
	prefs.MinSalary = intPtr(90000)
	prefs.MaxSalary = intPtr(120000)
	prefs.ExperienceLevel = types.ExperienceEntry
	prefs.PreferredIndustries = []string{"fintech"}
	prefs.PreferredCompanySizes = []string{"startup"}
	prefs.AvoidKeywords = []string{"php"}

	job := &types.Job{
		Title:           "PHP Developer",
		Description:     "php monolith",
		Location:        "Aberdeen",
		LocationType:    types.LocationOnSite,
		SalaryMin:       intPtr(20000),
		SalaryMax:       intPtr(25000),
		RequiredSkills:  []string{"php", "laravel", "mysql"},
		ExperienceLevel: types.ExperienceExecutive,
		Industry:        "Gambling",
		CompanySize:     "enterprise",
	}

	result := ScoreJob(prefs, nil, job)
	assert.GreaterOrEqual(t, result.Score, 0)
	assert.LessOrEqual(t, result.Score, 100)
	// Every category bottomed out except the weakest partial credits.
	assert.Equal(t, 0, result.Breakdown.Skills)
	assert.Equal(t, 0, result.Breakdown.Salary)
	assert.Equal(t, 0, result.Breakdown.Company)
	assert.Empty(t, result.Reasons)
}

func TestSkillsScore(t *testing.T) {
	tests := []struct {
		name     string
		key      []string
		profile  []string
		required []string
		want     int
	}{
		{"no user skills is neutral", nil, nil, []string{"go"}, 50},
		{"no required skills is neutral", []string{"go"}, nil, nil, 50},
		{"full overlap", []string{"go", "sql"}, nil, []string{"Go", "SQL"}, 100},
		{"half overlap", []string{"go"}, nil, []string{"go", "rust"}, 50},
		{"profile skills count", nil, []string{"rust"}, []string{"rust"}, 100},
		{"case and whitespace insensitive", []string{"  Go "}, nil, []string{"go"}, 100},
		{"one of three", []string{"go"}, nil, []string{"go", "rust", "zig"}, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := basePrefs()
			prefs.KeySkills = tt.key
			var profile *types.UserProfile
			if tt.profile != nil {
				profile = &types.UserProfile{Skills: tt.profile}
			}
			job := &types.Job{RequiredSkills: tt.required}

			got, _ := skillsScore(prefs, profile, job)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationScore(t *testing.T) {
	tests := []struct {
		name         string
		remote       bool
		hybrid       bool
		locations    []string
		job          types.Job
		want         int
		wantDetailed bool
	}{
		{
			name: "remote accepted", remote: true,
			job:  types.Job{LocationType: types.LocationRemote},
			want: 100, wantDetailed: true,
		},
		{
			name: "hybrid accepted", hybrid: true,
			job:  types.Job{LocationType: types.LocationHybrid},
			want: 100, wantDetailed: true,
		},
		{
			name: "remote job but user on-site only",
			job:  types.Job{LocationType: types.LocationRemote},
			want: 60,
		},
		{
			name: "no preferences is mild credit",
			job:  types.Job{Location: "Leeds", LocationType: types.LocationOnSite},
			want: 60,
		},
		{
			name: "exact location match", locations: []string{"London"},
			job:  types.Job{Location: "london", LocationType: types.LocationOnSite},
			want: 100, wantDetailed: true,
		},
		{
			name: "substring match", locations: []string{"London"},
			job:  types.Job{Location: "Greater London", LocationType: types.LocationOnSite},
			want: 80, wantDetailed: true,
		},
		{
			name: "city match", locations: []string{"Manchester"},
			job:  types.Job{City: "Manchester", Location: "UK", LocationType: types.LocationOnSite},
			want: 100, wantDetailed: true,
		},
		{
			name: "no match", locations: []string{"Bristol"},
			job:  types.Job{Location: "Glasgow", LocationType: types.LocationOnSite},
			want: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := basePrefs()
			prefs.OpenToRemote = tt.remote
			prefs.OpenToHybrid = tt.hybrid
			prefs.PreferredLocations = tt.locations

			got, detail := locationScore(prefs, &tt.job)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDetailed, detail != "")
		})
	}
}

func TestSalaryScore(t *testing.T) {
	tests := []struct {
		name             string
		userMin, userMax *int
		jobMin, jobMax   *int
		want             int
	}{
		{"missing user range is neutral", nil, nil, intPtr(50000), intPtr(60000), 50},
		{"missing job range is neutral", intPtr(50000), intPtr(60000), nil, nil, 50},
		{"job range covers user band", intPtr(50000), intPtr(60000), intPtr(45000), intPtr(65000), 100},
		{"job range inside user band", intPtr(30000), intPtr(50000), intPtr(35000), intPtr(45000), 100},
		{"exact match is perfect", intPtr(50000), intPtr(60000), intPtr(50000), intPtr(60000), 100},
		{"half overlap", intPtr(50000), intPtr(60000), intPtr(55000), intPtr(80000), 50},
		{"disjoint below", intPtr(50000), intPtr(60000), intPtr(20000), intPtr(30000), 0},
		{"disjoint above", intPtr(50000), intPtr(60000), intPtr(90000), intPtr(120000), 0},
		{"single point inside job range", intPtr(55000), intPtr(55000), intPtr(50000), intPtr(60000), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := basePrefs()
			prefs.MinSalary = tt.userMin
			prefs.MaxSalary = tt.userMax
			job := &types.Job{SalaryMin: tt.jobMin, SalaryMax: tt.jobMax}

			got, _ := salaryScore(prefs, job)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExperienceScore(t *testing.T) {
	tests := []struct {
		name string
		user types.ExperienceLevel
		job  types.ExperienceLevel
		want int
	}{
		{"exact match", types.ExperienceMid, types.ExperienceMid, 100},
		{"one level up", types.ExperienceMid, types.ExperienceSenior, 70},
		{"one level down", types.ExperienceMid, types.ExperienceJunior, 70},
		{"two levels", types.ExperienceEntry, types.ExperienceMid, 40},
		{"three levels", types.ExperienceEntry, types.ExperienceSenior, 10},
		{"four levels", types.ExperienceEntry, types.ExperienceLead, 0},
		{"missing job level is neutral", types.ExperienceMid, "", 50},
		{"unknown level ranks as mid", types.ExperienceMid, "wizard", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := basePrefs()
			prefs.ExperienceLevel = tt.user
			job := &types.Job{ExperienceLevel: tt.job}

			got, _ := experienceScore(prefs, job)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompanyScore(t *testing.T) {
	tests := []struct {
		name       string
		industries []string
		sizes      []string
		job        types.Job
		want       int
	}{
		{"no preferences is neutral", nil, nil, types.Job{Industry: "Fintech"}, 50},
		{"industry match, no size prefs", []string{"Fintech"}, nil, types.Job{Industry: "fintech"}, 75},
		{"industry miss, no size prefs", []string{"Fintech"}, nil, types.Job{Industry: "Gambling"}, 25},
		{"both match", []string{"Fintech"}, []string{"startup"}, types.Job{Industry: "Fintech", CompanySize: "Startup"}, 100},
		{"both miss", []string{"Fintech"}, []string{"startup"}, types.Job{Industry: "Retail", CompanySize: "enterprise"}, 0},
		{"size match only", nil, []string{"scaleup"}, types.Job{CompanySize: "Scaleup"}, 75},
		{"empty job industry never matches", []string{""}, nil, types.Job{}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := basePrefs()
			prefs.PreferredIndustries = tt.industries
			prefs.PreferredCompanySizes = tt.sizes

			got, _ := companyScore(prefs, &tt.job)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvoidKeywordPenalty(t *testing.T) {
	job := &types.Job{
		Title:       "Senior PHP Developer",
		Description: "Legacy monolith, some on-call",
	}

	prefs := basePrefs()
	assert.Zero(t, avoidKeywordPenalty(prefs, job))

	prefs.AvoidKeywords = []string{"php", "on-call"}
	assert.InDelta(t, 20.0, avoidKeywordPenalty(prefs, job), 0.001)

	prefs.AvoidKeywords = []string{"php", "cobol"}
	assert.InDelta(t, 10.0, avoidKeywordPenalty(prefs, job), 0.001)

	prefs.AvoidKeywords = []string{"cobol"}
	assert.Zero(t, avoidKeywordPenalty(prefs, job))
}

func TestBuildReasons(t *testing.T) {
	categories := []category{
		{name: "skills", score: 100, weight: 0.30, detail: "Matches 3 of your key skills"},
		{name: "location", score: 100, weight: 0.20, detail: "Remote work available"},
		{name: "salary", score: 100, weight: 0.20, detail: "Salary range meets your expectations"},
		{name: "experience", score: 100, weight: 0.15, detail: "Experience level matches: senior"},
		{name: "company", score: 100, weight: 0.15, detail: "Industry matches your preference: Fintech"},
	}

	reasons := buildReasons(categories)
	require.Len(t, reasons, 4)
	// Highest contribution first; location beats salary on the priority
	// tie-break and company is cut by the cap.
	assert.Equal(t, []string{
		"Matches 3 of your key skills",
		"Remote work available",
		"Salary range meets your expectations",
		"Experience level matches: senior",
	}, reasons)
}

func TestBuildReasons_ThresholdAndEmptyDetail(t *testing.T) {
	categories := []category{
		{name: "skills", score: 39, weight: 0.30, detail: "Matches 1 of your key skills"},
		{name: "location", score: 100, weight: 0.20, detail: ""},
		{name: "salary", score: 40, weight: 0.20, detail: "Salary range overlaps your expectations"},
	}

	reasons := buildReasons(categories)
	assert.Equal(t, []string{"Salary range overlaps your expectations"}, reasons)
}

func TestBuildReasons_ContributionBeatsRawScore(t *testing.T) {
	// A weaker raw score on a heavier category can still outrank a
	// stronger score on a lighter one.
	categories := []category{
		{name: "experience", score: 100, weight: 0.15, detail: "Experience level matches: mid"},
		{name: "skills", score: 60, weight: 0.30, detail: "Matches 2 of your key skills"},
	}

	reasons := buildReasons(categories)
	require.Len(t, reasons, 2)
	assert.Equal(t, "Matches 2 of your key skills", reasons[0])
}
