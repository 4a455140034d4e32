package domain

// Relaciones típicas de un evaluador 360 con el sujeto.
const (
	RelationshipSelf    = "self"
	RelationshipManager = "manager"
	RelationshipPeer    = "peer"
	RelationshipReport  = "direct_report"
)

// RaterScores son los puntajes que un evaluador produjo para el sujeto.
// Scores nil significa que el evaluador nunca envió respuestas; se excluye de la
// agregación en lugar de contar como cero.
type RaterScores struct {
	RaterID      string       `json:"rater_id"`
	Relationship string       `json:"relationship"`
	Weight       float64      `json:"weight"`
	Scores       *TraitScores `json:"scores,omitempty"`
}

// AggregatedProfile es el perfil combinado de múltiples evaluadores.
// Discrepancies trae la dispersión (max-min) por dimensión cuando se solicitó.
type AggregatedProfile struct {
	Scores        TraitScores        `json:"scores"`
	Discrepancies map[string]float64 `json:"discrepancies,omitempty"`
	RaterCount    int                `json:"rater_count"`
}
