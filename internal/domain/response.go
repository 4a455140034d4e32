package domain

// Scale define los límites del instrumento de respuesta (ej. Likert 1-5).
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultScale es la escala Likert 1-5 usada por los cuestionarios estándar.
var DefaultScale = Scale{Min: 1, Max: 5}

// DimensionWeight asocia un ítem con una dimensión. El peso puede ser negativo
// para relaciones inversas; eso es independiente de la inversión de puntaje.
type DimensionWeight struct {
	Dimension string  `json:"dimension"`
	Weight    float64 `json:"weight"`
}

// ResponseItem es una respuesta cruda ya unida a su definición de ítem.
// RawValue nil representa una pregunta sin contestar.
type ResponseItem struct {
	ItemID   string            `json:"item_id"`
	RawValue *float64          `json:"raw_value,omitempty"`
	Reverse  bool              `json:"reverse"`
	FacetID  string            `json:"facet_id,omitempty"`
	Mappings []DimensionWeight `json:"mappings"`
}

// NormalizedResponse es un ítem validado y con inversión de puntaje ya aplicada.
// Los mappings pasan sin modificar.
type NormalizedResponse struct {
	ItemID   string            `json:"item_id"`
	Value    float64           `json:"value"`
	FacetID  string            `json:"facet_id,omitempty"`
	Mappings []DimensionWeight `json:"mappings"`
}
