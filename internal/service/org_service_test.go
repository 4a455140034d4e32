package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/orgstats"
)

type mockOrgRepo struct {
	upserted  []domain.OrganizationProfile
	upsertErr error
	profile   domain.OrganizationProfile
	getErr    error
	getCalls  int
	orgIDs    []string
	listErr   error
}

func (m *mockOrgRepo) Upsert(ctx context.Context, profile domain.OrganizationProfile) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, profile)
	return nil
}

func (m *mockOrgRepo) Get(ctx context.Context, orgID string) (domain.OrganizationProfile, error) {
	m.getCalls++
	if m.getErr != nil {
		return domain.OrganizationProfile{}, m.getErr
	}
	return m.profile, nil
}

func (m *mockOrgRepo) ListOrgIDs(ctx context.Context) ([]string, error) {
	return m.orgIDs, m.listErr
}

func fullFacetValues(profileID, subjectID string, base float64) domain.ProfileFacetValues {
	values := make(map[string]float64, 30)
	for _, id := range domain.FacetTaxonomy() {
		values[id] = base
	}
	return domain.ProfileFacetValues{ProfileID: profileID, SubjectID: subjectID, Values: values}
}

func newTestOrgService(t *testing.T, profiles *mockProfileRepo, orgs *mockOrgRepo, cache OrgProfileCache) *OrgAnalysisService {
	t.Helper()
	mapper, err := orgstats.NewCultureMapper(orgstats.DefaultCultureTypes(), orgstats.DefaultEmergentProperties())
	if err != nil {
		t.Fatalf("build mapper: %v", err)
	}
	return NewOrgAnalysisService(profiles, orgs, cache, mapper, 0, 0, 0, zap.NewNop())
}

func TestAnalyzeOrganization_MinimumSample(t *testing.T) {
	profiles := &mockProfileRepo{facetValues: []domain.ProfileFacetValues{
		fullFacetValues("p1", "s1", 60),
		fullFacetValues("p2", "s2", 70),
	}}
	orgs := &mockOrgRepo{}
	svc := newTestOrgService(t, profiles, orgs, nil)

	_, err := svc.AnalyzeOrganization(context.Background(), "org-1")
	if !errors.Is(err, ErrInsufficientProfiles) {
		t.Fatalf("expected ErrInsufficientProfiles, got %v", err)
	}
	if len(orgs.upserted) != 0 {
		t.Fatalf("expected nothing persisted, got %d", len(orgs.upserted))
	}
}

func TestAnalyzeOrganization_FullRun(t *testing.T) {
	profiles := &mockProfileRepo{facetValues: []domain.ProfileFacetValues{
		fullFacetValues("p1", "s1", 70),
		fullFacetValues("p2", "s2", 75),
		fullFacetValues("p3", "s3", 80),
	}}
	orgs := &mockOrgRepo{}
	cache := NewMemoryOrgProfileCache()
	svc := newTestOrgService(t, profiles, orgs, cache)

	profile, err := svc.AnalyzeOrganization(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if profile.OrgID != "org-1" || profile.SampleSize != 3 {
		t.Fatalf("expected org-1 with sample 3, got %+v", profile)
	}
	if profile.CoveragePercentage != 1 {
		t.Fatalf("expected full facet coverage, got %v", profile.CoveragePercentage)
	}
	if len(profile.FacetStats) != 30 {
		t.Fatalf("expected stats for all 30 facets, got %d", len(profile.FacetStats))
	}
	if st := profile.FacetStats["imagination"]; st.Mean == nil || *st.Mean != 75 {
		t.Fatalf("expected imagination mean 75, got %+v", st)
	}
	if st := profile.FacetStats["imagination"]; st.SampleSize != 3 {
		t.Fatalf("expected imagination sample 3, got %+v", st)
	}

	if len(profile.CultureTypes) != 12 {
		t.Fatalf("expected all 12 culture types reported, got %d", len(profile.CultureTypes))
	}
	if profile.CultureTypes["innovation_culture"] <= 0 {
		t.Fatalf("expected innovation culture above zero with means at 75, got %v", profile.CultureTypes["innovation_culture"])
	}
	// competitive exige modesty < 45; con media 75 queda en cero.
	if profile.CultureTypes["competitive_culture"] != 0 {
		t.Fatalf("expected competitive culture zero, got %v", profile.CultureTypes["competitive_culture"])
	}

	if got := profile.EmergentProperties["innovation_climate"]; got != 75 {
		t.Fatalf("expected innovation climate 75, got %v", got)
	}
	if profile.ComputedAt.IsZero() {
		t.Fatalf("expected computed_at set")
	}

	if len(orgs.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(orgs.upserted))
	}
	if cached, ok, _ := cache.Get("org-1"); !ok || cached.SampleSize != 3 {
		t.Fatalf("expected profile cached after analysis, got ok=%v %+v", ok, cached)
	}
}

func TestAnalyzeOrganization_FiltersLowCoverage(t *testing.T) {
	partial := domain.ProfileFacetValues{
		ProfileID: "p4",
		SubjectID: "s4",
		Values: map[string]float64{
			"imagination": 50, "trust": 50, "anxiety": 50, "orderliness": 50, "friendliness": 50,
		},
	}
	profiles := &mockProfileRepo{facetValues: []domain.ProfileFacetValues{
		fullFacetValues("p1", "s1", 60),
		fullFacetValues("p2", "s2", 60),
		fullFacetValues("p3", "s3", 60),
		partial,
	}}
	orgs := &mockOrgRepo{}
	svc := newTestOrgService(t, profiles, orgs, nil)

	profile, err := svc.AnalyzeOrganization(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.SampleSize != 3 {
		t.Fatalf("expected low-coverage profile excluded, got sample %d", profile.SampleSize)
	}
	if st := profile.FacetStats["imagination"]; st.SampleSize != 3 {
		t.Fatalf("expected excluded profile absent from stats, got %+v", st)
	}
}

func TestAnalyzeOrganization_ExclusionCanDropBelowMinimum(t *testing.T) {
	partial := domain.ProfileFacetValues{
		ProfileID: "p3",
		SubjectID: "s3",
		Values:    map[string]float64{"trust": 50},
	}
	profiles := &mockProfileRepo{facetValues: []domain.ProfileFacetValues{
		fullFacetValues("p1", "s1", 60),
		fullFacetValues("p2", "s2", 60),
		partial,
	}}
	svc := newTestOrgService(t, profiles, &mockOrgRepo{}, nil)

	if _, err := svc.AnalyzeOrganization(context.Background(), "org-1"); !errors.Is(err, ErrInsufficientProfiles) {
		t.Fatalf("expected ErrInsufficientProfiles after coverage filter, got %v", err)
	}
}

func TestTeamProfile_UsesOrgStatsAsFallback(t *testing.T) {
	team1 := fullFacetValues("p1", "s1", 90)
	team2 := fullFacetValues("p2", "s2", 70)
	delete(team1.Values, "gregariousness")
	delete(team2.Values, "gregariousness")

	profiles := &mockProfileRepo{facetValues: []domain.ProfileFacetValues{
		team1,
		team2,
		fullFacetValues("p3", "s3", 30),
		fullFacetValues("p4", "s4", 50),
	}}
	orgs := &mockOrgRepo{}
	svc := newTestOrgService(t, profiles, orgs, nil)

	profile, err := svc.TeamProfile(context.Background(), "org-1", []string{"s1", "s2"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if profile.SampleSize != 2 {
		t.Fatalf("expected team sample 2, got %d", profile.SampleSize)
	}
	if len(orgs.upserted) != 0 {
		t.Fatalf("expected team profile not persisted, got %d upserts", len(orgs.upserted))
	}
	if len(profile.FacetStats) != 29 {
		t.Fatalf("expected 29 observed team facets, got %d", len(profile.FacetStats))
	}
	if st := profile.FacetStats["imagination"]; st.Mean == nil || *st.Mean != 80 {
		t.Fatalf("expected team imagination mean 80, got %+v", st)
	}

	// El equipo no observó gregariousness: la propiedad emergente cae al
	// agregado organizacional (media 40 sobre s3,s4).
	want := math.Sqrt(80 * 40)
	if got := profile.EmergentProperties["innovation_climate"]; math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected innovation climate %v from org fallback, got %v", want, got)
	}
}

func TestTeamProfile_TooSmall(t *testing.T) {
	profiles := &mockProfileRepo{facetValues: []domain.ProfileFacetValues{
		fullFacetValues("p1", "s1", 60),
		fullFacetValues("p2", "s2", 60),
		fullFacetValues("p3", "s3", 60),
	}}
	svc := newTestOrgService(t, profiles, &mockOrgRepo{}, nil)

	if _, err := svc.TeamProfile(context.Background(), "org-1", []string{"s1"}); !errors.Is(err, ErrTeamTooSmall) {
		t.Fatalf("expected ErrTeamTooSmall, got %v", err)
	}
}

func TestGetOrganizationProfile_FillsCache(t *testing.T) {
	orgs := &mockOrgRepo{profile: sampleOrgProfile("org-9")}
	cache := NewMemoryOrgProfileCache()
	svc := newTestOrgService(t, &mockProfileRepo{}, orgs, cache)

	first, err := svc.GetOrganizationProfile(context.Background(), "org-9")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if orgs.getCalls != 1 {
		t.Fatalf("expected one repo read, got %d", orgs.getCalls)
	}

	second, err := svc.GetOrganizationProfile(context.Background(), "org-9")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if orgs.getCalls != 1 {
		t.Fatalf("expected second read served from cache, got %d repo reads", orgs.getCalls)
	}
	if first.OrgID != second.OrgID || first.SampleSize != second.SampleSize {
		t.Fatalf("expected identical profiles, got %+v vs %+v", first, second)
	}
}

func TestGetOrganizationProfile_NotFound(t *testing.T) {
	orgs := &mockOrgRepo{getErr: pgx.ErrNoRows}
	svc := newTestOrgService(t, &mockProfileRepo{}, orgs, nil)

	if _, err := svc.GetOrganizationProfile(context.Background(), "ghost"); !errors.Is(err, ErrOrgProfileNotFound) {
		t.Fatalf("expected ErrOrgProfileNotFound, got %v", err)
	}
}

func TestGetOrganizationProfile_NoCacheConfigured(t *testing.T) {
	orgs := &mockOrgRepo{profile: sampleOrgProfile("org-9")}
	svc := newTestOrgService(t, &mockProfileRepo{}, orgs, nil)

	if _, err := svc.GetOrganizationProfile(context.Background(), "org-9"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.GetOrganizationProfile(context.Background(), "org-9"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if orgs.getCalls != 2 {
		t.Fatalf("expected repo read on every call without cache, got %d", orgs.getCalls)
	}
}

func TestOrgIDs_Passthrough(t *testing.T) {
	orgs := &mockOrgRepo{orgIDs: []string{"org-1", "org-2"}}
	svc := newTestOrgService(t, &mockProfileRepo{}, orgs, nil)

	ids, err := svc.OrgIDs(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 2 || ids[0] != "org-1" {
		t.Fatalf("expected passthrough ids, got %v", ids)
	}
}
