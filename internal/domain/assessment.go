package domain

import "time"

// Estados del ciclo de vida de un assessment.
const (
	AssessmentStatusPending = "pending"
	AssessmentStatusScored  = "scored"
)

// Assessment es una evaluación de un sujeto dentro de una organización.
type Assessment struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	SubjectID string    `json:"subject_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemResponse es la respuesta cruda de un evaluador a un ítem del banco.
// Value nil representa una pregunta dejada en blanco.
type ItemResponse struct {
	ItemID string   `json:"item_id"`
	Value  *float64 `json:"value,omitempty"`
}

// RaterSubmission agrupa las respuestas de un evaluador para un assessment.
type RaterSubmission struct {
	RaterID      string         `json:"rater_id"`
	Relationship string         `json:"relationship"`
	Weight       float64        `json:"weight"`
	Answers      []ItemResponse `json:"answers"`
	SubmittedAt  time.Time      `json:"submitted_at"`
}
