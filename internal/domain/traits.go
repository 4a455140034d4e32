package domain

import (
	"math"

	pgvector "github.com/pgvector/pgvector-go"
)

// Dimensiones del modelo Big Five. Todos los módulos del motor usan estos nombres.
const (
	DimOpenness          = "openness"
	DimConscientiousness = "conscientiousness"
	DimExtraversion      = "extraversion"
	DimAgreeableness     = "agreeableness"
	DimNeuroticism       = "neuroticism"
)

var dimensionOrder = []string{
	DimOpenness,
	DimConscientiousness,
	DimExtraversion,
	DimAgreeableness,
	DimNeuroticism,
}

// Dimensions devuelve las cinco dimensiones en orden canónico.
func Dimensions() []string {
	out := make([]string, len(dimensionOrder))
	copy(out, dimensionOrder)
	return out
}

// KnownDimension indica si el nombre corresponde a una dimensión Big Five.
func KnownDimension(name string) bool {
	for _, d := range dimensionOrder {
		if d == name {
			return true
		}
	}
	return false
}

// TraitScores contiene el puntaje de cada dimensión en escala 0-100.
type TraitScores struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// Dimension devuelve el puntaje de la dimensión indicada.
func (s TraitScores) Dimension(name string) (float64, bool) {
	switch name {
	case DimOpenness:
		return s.Openness, true
	case DimConscientiousness:
		return s.Conscientiousness, true
	case DimExtraversion:
		return s.Extraversion, true
	case DimAgreeableness:
		return s.Agreeableness, true
	case DimNeuroticism:
		return s.Neuroticism, true
	}
	return 0, false
}

// ByDimension devuelve los puntajes como mapa dimensión → valor.
func (s TraitScores) ByDimension() map[string]float64 {
	return map[string]float64{
		DimOpenness:          s.Openness,
		DimConscientiousness: s.Conscientiousness,
		DimExtraversion:      s.Extraversion,
		DimAgreeableness:     s.Agreeableness,
		DimNeuroticism:       s.Neuroticism,
	}
}

// ScoresFromMap construye TraitScores desde un mapa; dimensiones ausentes quedan en 0.
func ScoresFromMap(m map[string]float64) TraitScores {
	return TraitScores{
		Openness:          m[DimOpenness],
		Conscientiousness: m[DimConscientiousness],
		Extraversion:      m[DimExtraversion],
		Agreeableness:     m[DimAgreeableness],
		Neuroticism:       m[DimNeuroticism],
	}
}

// Valid verifica que las cinco dimensiones estén dentro del rango 0-100.
func (s TraitScores) Valid() bool {
	for _, v := range s.ByDimension() {
		if !ValidScore(v) {
			return false
		}
	}
	return true
}

// Vector devuelve los puntajes como vector de 5 dimensiones en orden canónico,
// listo para persistir y comparar por distancia.
func (s TraitScores) Vector() pgvector.Vector {
	return pgvector.NewVector([]float32{
		float32(s.Openness),
		float32(s.Conscientiousness),
		float32(s.Extraversion),
		float32(s.Agreeableness),
		float32(s.Neuroticism),
	})
}

// ValidScore indica si el valor es un puntaje de rasgo válido: 0-100 inclusive,
// nunca NaN ni infinito.
func ValidScore(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= 0 && v <= 100
}

// FacetScore es el puntaje agregado de una faceta dentro de un reporte individual.
type FacetScore struct {
	Score         float64 `json:"score"`
	ResponseCount int     `json:"response_count"`
	StdDev        float64 `json:"std_dev"`
}

// TraitReport es la salida del calculador: puntajes por dimensión, desglose por
// faceta y métricas de calidad de la respuesta.
type TraitReport struct {
	Scores       TraitScores           `json:"scores"`
	Facets       map[string]FacetScore `json:"facets,omitempty"`
	Completeness float64               `json:"completeness"`
	Consistency  *float64              `json:"consistency,omitempty"`
}
