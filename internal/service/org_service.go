package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/orgstats"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/repository"
)

var (
	// ErrInsufficientProfiles indica menos perfiles calificados que el mínimo de política.
	ErrInsufficientProfiles = errors.New("organization sample below minimum")
	// ErrTeamTooSmall indica un sub-equipo de menos de dos miembros con perfil.
	ErrTeamTooSmall = errors.New("team sample below minimum")
	// ErrOrgProfileNotFound indica que la organización nunca fue analizada.
	ErrOrgProfileNotFound = errors.New("organization profile not found")
)

// minTeamSize es el mínimo de perfiles para un desglose por equipo.
const minTeamSize = 2

// OrgAnalysisService recalcula perfiles organizacionales desde la población
// vigente de perfiles individuales. Aplica las políticas de muestra mínima y
// cobertura por perfil antes de llamar al motor.
type OrgAnalysisService struct {
	profiles    repository.ProfileRepository
	orgs        repository.OrgProfileRepository
	cache       OrgProfileCache
	mapper      *orgstats.CultureMapper
	minProfiles int
	minCoverage float64
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewOrgAnalysisService construye el servicio. cache puede ser nil cuando no
// hay redis configurado; el servicio funciona igual, solo sin cache.
func NewOrgAnalysisService(
	profiles repository.ProfileRepository,
	orgs repository.OrgProfileRepository,
	cache OrgProfileCache,
	mapper *orgstats.CultureMapper,
	minProfiles int,
	minCoverage float64,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *OrgAnalysisService {
	if minProfiles <= 0 {
		minProfiles = 3
	}
	if minCoverage <= 0 || minCoverage > 1 {
		minCoverage = 0.5
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	return &OrgAnalysisService{
		profiles:    profiles,
		orgs:        orgs,
		cache:       cache,
		mapper:      mapper,
		minProfiles: minProfiles,
		minCoverage: minCoverage,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// AnalyzeOrganization recalcula el perfil de la organización en una pasada
// completa y lo reemplaza en la base (upsert). Con menos perfiles calificados
// que el mínimo devuelve ErrInsufficientProfiles.
func (s *OrgAnalysisService) AnalyzeOrganization(ctx context.Context, orgID string) (domain.OrganizationProfile, error) {
	qualifying, err := s.qualifyingProfiles(ctx, orgID)
	if err != nil {
		return domain.OrganizationProfile{}, err
	}
	if len(qualifying) < s.minProfiles {
		return domain.OrganizationProfile{}, fmt.Errorf("%w: org %s has %d qualified profiles, need %d",
			ErrInsufficientProfiles, orgID, len(qualifying), s.minProfiles)
	}

	profile := s.buildProfile(orgID, qualifying, nil)

	if err := s.orgs.Upsert(ctx, profile); err != nil {
		return domain.OrganizationProfile{}, fmt.Errorf("upsert org profile %s: %w", orgID, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(profile, s.cacheTTL); err != nil {
			s.logger.Warn("org profile cache set failed", zap.Error(err), zap.String("org_id", orgID))
		}
	}

	name, strength := topCulture(profile.CultureTypes)
	s.logger.Info("organization analyzed",
		zap.String("org_id", orgID),
		zap.Int("sample_size", profile.SampleSize),
		zap.Float64("coverage", profile.CoveragePercentage),
		zap.String("top_culture", name),
		zap.Float64("strength", strength),
	)

	return profile, nil
}

// TeamProfile corre el mismo análisis sobre un sub-equipo (por subject ID),
// independiente de la corrida organizacional. El resultado no se persiste ni se
// cachea; las propiedades emergentes usan las estadísticas del equipo como foco
// sobre el agregado de toda la organización.
func (s *OrgAnalysisService) TeamProfile(ctx context.Context, orgID string, memberIDs []string) (domain.OrganizationProfile, error) {
	qualifying, err := s.qualifyingProfiles(ctx, orgID)
	if err != nil {
		return domain.OrganizationProfile{}, err
	}

	members := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = struct{}{}
	}
	var team []domain.ProfileFacetValues
	for _, p := range qualifying {
		if _, ok := members[p.SubjectID]; ok {
			team = append(team, p)
		}
	}
	if len(team) < minTeamSize {
		return domain.OrganizationProfile{}, fmt.Errorf("%w: org %s team has %d qualified profiles, need %d",
			ErrTeamTooSmall, orgID, len(team), minTeamSize)
	}

	var orgWide map[string]domain.FacetStatistic
	if len(qualifying) > len(team) {
		orgWide = s.facetStats(qualifying)
	}
	profile := s.buildProfile(orgID, team, orgWide)
	return profile, nil
}

// GetOrganizationProfile devuelve el último perfil calculado: primero cache,
// después base, rellenando el cache al pasar.
func (s *OrgAnalysisService) GetOrganizationProfile(ctx context.Context, orgID string) (domain.OrganizationProfile, error) {
	if s.cache != nil {
		profile, ok, err := s.cache.Get(orgID)
		if err != nil {
			s.logger.Warn("org profile cache get failed", zap.Error(err), zap.String("org_id", orgID))
		} else if ok {
			return profile, nil
		}
	}

	profile, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OrganizationProfile{}, ErrOrgProfileNotFound
		}
		return domain.OrganizationProfile{}, fmt.Errorf("get org profile %s: %w", orgID, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(profile, s.cacheTTL); err != nil {
			s.logger.Warn("org profile cache set failed", zap.Error(err), zap.String("org_id", orgID))
		}
	}
	return profile, nil
}

// OrgIDs devuelve las organizaciones con perfiles agregados para recalcular.
func (s *OrgAnalysisService) OrgIDs(ctx context.Context) ([]string, error) {
	ids, err := s.orgs.ListOrgIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list org ids: %w", err)
	}
	return ids, nil
}

// qualifyingProfiles trae los perfiles de la organización y filtra los que no
// alcanzan la cobertura mínima de facetas por perfil.
func (s *OrgAnalysisService) qualifyingProfiles(ctx context.Context, orgID string) ([]domain.ProfileFacetValues, error) {
	all, err := s.profiles.ListOrgFacetValues(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list facet values for org %s: %w", orgID, err)
	}

	totalFacets := float64(len(domain.FacetTaxonomy()))
	qualifying := make([]domain.ProfileFacetValues, 0, len(all))
	for _, p := range all {
		if float64(len(p.Values))/totalFacets >= s.minCoverage {
			qualifying = append(qualifying, p)
			continue
		}
		s.logger.Info("profile excluded: facet coverage below minimum",
			zap.String("org_id", orgID),
			zap.String("profile_id", p.ProfileID),
			zap.Int("facets", len(p.Values)),
		)
	}
	return qualifying, nil
}

func (s *OrgAnalysisService) facetStats(profiles []domain.ProfileFacetValues) map[string]domain.FacetStatistic {
	stats := make(map[string]domain.FacetStatistic)
	for _, facetID := range domain.FacetTaxonomy() {
		var values []float64
		for _, p := range profiles {
			if v, ok := p.Values[facetID]; ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		stats[facetID] = orgstats.AnalyzeFacetDistribution(values, facetID)
	}
	return stats
}

func (s *OrgAnalysisService) buildProfile(orgID string, population []domain.ProfileFacetValues, aggregate map[string]domain.FacetStatistic) domain.OrganizationProfile {
	stats := s.facetStats(population)

	emergentBase := aggregate
	var focus map[string]domain.FacetStatistic
	if emergentBase == nil {
		emergentBase = stats
	} else {
		focus = stats
	}

	return domain.OrganizationProfile{
		OrgID:              orgID,
		FacetStats:         stats,
		CultureTypes:       s.mapper.MapCultureTypes(stats),
		EmergentProperties: s.mapper.EmergentProperties(emergentBase, focus),
		SampleSize:         len(population),
		CoveragePercentage: float64(len(stats)) / float64(len(domain.FacetTaxonomy())),
		ComputedAt:         time.Now().UTC(),
	}
}

func topCulture(strengths map[string]float64) (string, float64) {
	var name string
	best := -1.0
	for n, v := range strengths {
		if v > best || (v == best && (name == "" || n < name)) {
			name = n
			best = v
		}
	}
	if best < 0 {
		return "", 0
	}
	return name, best
}
