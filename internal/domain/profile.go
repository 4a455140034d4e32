package domain

import "time"

// Tipos de perfil persistido.
const (
	ProfileKindIndividual = "individual"
	ProfileKindAggregated = "aggregated"
)

// TraitProfile es un reporte de rasgos persistido: el de un evaluador individual
// o el agregado del assessment. RaterID queda nil en el agregado.
type TraitProfile struct {
	ID           string      `json:"id"`
	AssessmentID string      `json:"assessment_id"`
	OrgID        string      `json:"org_id"`
	SubjectID    string      `json:"subject_id"`
	RaterID      *string     `json:"rater_id,omitempty"`
	Kind         string      `json:"kind"`
	Report       TraitReport `json:"report"`
	Patterns     []string    `json:"patterns,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}
