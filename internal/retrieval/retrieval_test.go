package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/windrush/job-recommender/internal/types"
)

type fakeCatalog struct {
	jobs []types.Job
	err  error

	gotSponsorship bool
	gotLimit       int
}

func (f *fakeCatalog) FetchCandidates(_ context.Context, requiresSponsorship bool, limit int) ([]types.Job, error) {
	f.gotSponsorship = requiresSponsorship
	f.gotLimit = limit
	return f.jobs, f.err
}

type fakePolicy struct {
	excluded map[string]bool
	err      error
}

func (f *fakePolicy) ExcludedFingerprints(_ context.Context, _ uuid.UUID) (map[string]bool, error) {
	return f.excluded, f.err
}

func sponsoredJob(company, title string) types.Job {
	return types.Job{
		ID:                       uuid.New(),
		CompanyID:                uuid.New(),
		CompanyName:              company,
		Title:                    title,
		LocationType:             types.LocationRemote,
		VisaSponsorshipAvailable: true,
		Status:                   "active",
	}
}

func TestRetrieve_SponsorshipIsHard(t *testing.T) {
	// A perfect job without sponsorship must never survive for a user
	// who needs it.
	noSponsor := sponsoredJob("Acme", "Staff Engineer")
	noSponsor.VisaSponsorshipAvailable = false

	catalog := &fakeCatalog{jobs: []types.Job{
		sponsoredJob("Globex", "Backend Engineer"),
		noSponsor,
	}}
	r := New(catalog, zap.NewNop())

	prefs := types.DefaultPreferences(uuid.New())
	jobs, steps, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Backend Engineer", jobs[0].Title)

	assert.True(t, catalog.gotSponsorship)
	assert.Equal(t, DefaultCandidateCap, catalog.gotLimit)

	require.NotEmpty(t, steps)
	assert.Equal(t, "sponsorship", steps[0].Name)
	assert.Equal(t, 2, steps[0].Initial)
	assert.Equal(t, 1, steps[0].Dropped)
	assert.Equal(t, 1, steps[0].Left)
}

func TestRetrieve_VisaTypeOverlap(t *testing.T) {
	skilled := sponsoredJob("Globex", "Engineer")
	skilled.VisaTypesSupported = []string{"Skilled Worker"}
	other := sponsoredJob("Acme", "Engineer")
	other.VisaTypesSupported = []string{"Global Talent"}

	catalog := &fakeCatalog{jobs: []types.Job{skilled, other}}
	r := New(catalog, zap.NewNop())

	prefs := types.DefaultPreferences(uuid.New())
	prefs.VisaTypesNeeded = []string{"skilled worker"}

	jobs, _, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Globex", jobs[0].CompanyName)
}

func TestRetrieve_WorkMode(t *testing.T) {
	remote := sponsoredJob("Globex", "Remote Engineer")
	onSite := sponsoredJob("Acme", "Office Engineer")
	onSite.LocationType = types.LocationOnSite
	onSite.Location = "London"
	hybridInCity := sponsoredJob("Initech", "Hybrid Engineer")
	hybridInCity.LocationType = types.LocationHybrid
	hybridInCity.City = "London"

	catalog := &fakeCatalog{jobs: []types.Job{remote, onSite, hybridInCity}}
	r := New(catalog, zap.NewNop())

	prefs := types.DefaultPreferences(uuid.New())
	prefs.OpenToRemote = false
	prefs.OpenToHybrid = false
	prefs.PreferredLocations = []string{"London"}

	jobs, _, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	require.NoError(t, err)
	// Remote drops; on-site stays; hybrid survives via the location match.
	require.Len(t, jobs, 2)
	assert.Equal(t, "Office Engineer", jobs[0].Title)
	assert.Equal(t, "Hybrid Engineer", jobs[1].Title)
}

func TestRetrieve_AvoidCompanies(t *testing.T) {
	avoided := sponsoredJob("Globex", "Engineer")
	kept := sponsoredJob("Acme", "Engineer")

	catalog := &fakeCatalog{jobs: []types.Job{avoided, kept}}
	r := New(catalog, zap.NewNop())

	prefs := types.DefaultPreferences(uuid.New())
	prefs.AvoidCompanies = []uuid.UUID{avoided.CompanyID}

	jobs, _, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].CompanyName)
}

func TestRetrieve_AvoidKeywordsOnlyWhenStrict(t *testing.T) {
	phpJob := sponsoredJob("Globex", "PHP Developer")
	goJob := sponsoredJob("Acme", "Go Developer")

	prefs := types.DefaultPreferences(uuid.New())
	prefs.AvoidKeywords = []string{"php"}

	// Default mode: keyword hits stay in the candidate set (they are
	// penalized at scoring time instead).
	r := New(&fakeCatalog{jobs: []types.Job{phpJob, goJob}}, zap.NewNop())
	jobs, _, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	// Strict mode: keyword hits are hard-excluded.
	r = New(&fakeCatalog{jobs: []types.Job{phpJob, goJob}}, zap.NewNop(), WithStrictAvoidKeywords(true))
	jobs, steps, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Go Developer", jobs[0].Title)

	var names []string
	for _, s := range steps {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "avoid_keywords")
}

func TestRetrieve_NegativeSignal(t *testing.T) {
	rejected := sponsoredJob("Globex", "Backend Engineer")
	fresh := sponsoredJob("Acme", "Backend Engineer")
	repost := sponsoredJob("Globex", "Backend  engineer") // same fingerprint, new posting

	policy := &fakePolicy{excluded: map[string]bool{rejected.Fingerprint(): true}}
	r := New(&fakeCatalog{jobs: []types.Job{rejected, fresh, repost}}, zap.NewNop(),
		WithNegativeSignalPolicy(policy))

	prefs := types.DefaultPreferences(uuid.New())
	jobs, _, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].CompanyName)
}

func TestRetrieve_PolicyErrorPropagates(t *testing.T) {
	policy := &fakePolicy{err: errors.New("store down")}
	r := New(&fakeCatalog{jobs: []types.Job{sponsoredJob("Acme", "Engineer")}}, zap.NewNop(),
		WithNegativeSignalPolicy(policy))

	prefs := types.DefaultPreferences(uuid.New())
	_, _, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	assert.Error(t, err)
}

func TestRetrieve_EmptyResultIsNoCandidatesError(t *testing.T) {
	noSponsor := sponsoredJob("Acme", "Engineer")
	noSponsor.VisaSponsorshipAvailable = false

	r := New(&fakeCatalog{jobs: []types.Job{noSponsor}}, zap.NewNop())

	userID := uuid.New()
	prefs := types.DefaultPreferences(userID)
	jobs, steps, err := r.Retrieve(context.Background(), userID, prefs)

	assert.Nil(t, jobs)
	assert.NotEmpty(t, steps)

	var noCandidates *NoCandidatesError
	require.ErrorAs(t, err, &noCandidates)
	assert.Equal(t, userID, noCandidates.UserID)
}

func TestRetrieve_CatalogError(t *testing.T) {
	r := New(&fakeCatalog{err: errors.New("connection refused")}, zap.NewNop())

	prefs := types.DefaultPreferences(uuid.New())
	_, _, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	require.Error(t, err)

	var noCandidates *NoCandidatesError
	assert.False(t, errors.As(err, &noCandidates))
}

func TestRetrieve_CandidateCap(t *testing.T) {
	catalog := &fakeCatalog{jobs: []types.Job{sponsoredJob("Acme", "Engineer")}}
	r := New(catalog, zap.NewNop(), WithCandidateCap(25))

	prefs := types.DefaultPreferences(uuid.New())
	_, _, err := r.Retrieve(context.Background(), prefs.UserID, prefs)
	require.NoError(t, err)
	assert.Equal(t, 25, catalog.gotLimit)
}
