package domain

import "time"

// ProfileFacetValues son los puntajes de faceta de un perfil individual, la
// materia prima del análisis organizacional.
type ProfileFacetValues struct {
	ProfileID string             `json:"profile_id"`
	SubjectID string             `json:"subject_id"`
	Values    map[string]float64 `json:"values"`
}

// OrganizationProfile es el perfil cultural agregado de una organización o de un
// sub-equipo. Los perfiles de equipo se calculan igual pero no se persisten.
type OrganizationProfile struct {
	OrgID              string                    `json:"org_id"`
	FacetStats         map[string]FacetStatistic `json:"facet_stats"`
	CultureTypes       map[string]float64        `json:"culture_types"`
	EmergentProperties map[string]float64        `json:"emergent_properties"`
	SampleSize         int                       `json:"sample_size"`
	CoveragePercentage float64                   `json:"coverage_percentage"`
	ComputedAt         time.Time                 `json:"computed_at"`
}
