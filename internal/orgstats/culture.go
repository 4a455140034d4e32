package orgstats

import (
	"errors"
	"fmt"
	"math"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// Errores de configuración del mapper (fatales al iniciar).
var (
	ErrInvalidCultureType      = errors.New("invalid culture type")
	ErrInvalidEmergentProperty = errors.New("invalid emergent property")
)

// CompareOp es el operador de una condición sobre media de faceta.
type CompareOp string

const (
	OpAbove CompareOp = "above"
	OpBelow CompareOp = "below"
)

// FacetCondition compara la media poblacional de una faceta contra un umbral 0-100.
type FacetCondition struct {
	FacetID string    `json:"facet_id"`
	Op      CompareOp `json:"op"`
	Value   float64   `json:"value"`
}

// CultureType define un tipo de cultura por combinación de umbrales sobre medias
// de facetas. La taxonomía es datos: se extiende sin tocar la evaluación.
type CultureType struct {
	Name       string           `json:"name"`
	Conditions []FacetCondition `json:"conditions"`
}

// DefaultCultureTypes es la taxonomía de 12 tipos usada por el producto.
func DefaultCultureTypes() []CultureType {
	return []CultureType{
		{Name: "innovation_culture", Conditions: []FacetCondition{
			{FacetID: "imagination", Op: OpAbove, Value: 60},
			{FacetID: "adventurousness", Op: OpAbove, Value: 55},
			{FacetID: "intellect", Op: OpAbove, Value: 55},
		}},
		{Name: "collaborative_culture", Conditions: []FacetCondition{
			{FacetID: "cooperation", Op: OpAbove, Value: 60},
			{FacetID: "altruism", Op: OpAbove, Value: 55},
			{FacetID: "trust", Op: OpAbove, Value: 55},
		}},
		{Name: "hierarchy_culture", Conditions: []FacetCondition{
			{FacetID: "orderliness", Op: OpAbove, Value: 60},
			{FacetID: "dutifulness", Op: OpAbove, Value: 60},
			{FacetID: "cautiousness", Op: OpAbove, Value: 55},
		}},
		{Name: "market_culture", Conditions: []FacetCondition{
			{FacetID: "achievement_striving", Op: OpAbove, Value: 65},
			{FacetID: "assertiveness", Op: OpAbove, Value: 60},
		}},
		{Name: "adhocracy_culture", Conditions: []FacetCondition{
			{FacetID: "adventurousness", Op: OpAbove, Value: 60},
			{FacetID: "excitement_seeking", Op: OpAbove, Value: 55},
			{FacetID: "liberalism", Op: OpAbove, Value: 50},
		}},
		{Name: "clan_culture", Conditions: []FacetCondition{
			{FacetID: "friendliness", Op: OpAbove, Value: 60},
			{FacetID: "sympathy", Op: OpAbove, Value: 55},
			{FacetID: "trust", Op: OpAbove, Value: 55},
		}},
		{Name: "quality_culture", Conditions: []FacetCondition{
			{FacetID: "orderliness", Op: OpAbove, Value: 60},
			{FacetID: "self_discipline", Op: OpAbove, Value: 60},
			{FacetID: "achievement_striving", Op: OpAbove, Value: 55},
		}},
		{Name: "learning_culture", Conditions: []FacetCondition{
			{FacetID: "intellect", Op: OpAbove, Value: 60},
			{FacetID: "imagination", Op: OpAbove, Value: 55},
			{FacetID: "liberalism", Op: OpAbove, Value: 50},
		}},
		{Name: "service_culture", Conditions: []FacetCondition{
			{FacetID: "altruism", Op: OpAbove, Value: 60},
			{FacetID: "sympathy", Op: OpAbove, Value: 60},
			{FacetID: "dutifulness", Op: OpAbove, Value: 50},
		}},
		{Name: "competitive_culture", Conditions: []FacetCondition{
			{FacetID: "assertiveness", Op: OpAbove, Value: 65},
			{FacetID: "achievement_striving", Op: OpAbove, Value: 60},
			{FacetID: "modesty", Op: OpBelow, Value: 45},
		}},
		{Name: "stability_culture", Conditions: []FacetCondition{
			{FacetID: "cautiousness", Op: OpAbove, Value: 60},
			{FacetID: "orderliness", Op: OpAbove, Value: 55},
			{FacetID: "anxiety", Op: OpBelow, Value: 45},
		}},
		{Name: "expressive_culture", Conditions: []FacetCondition{
			{FacetID: "cheerfulness", Op: OpAbove, Value: 60},
			{FacetID: "gregariousness", Op: OpAbove, Value: 60},
			{FacetID: "artistic_interests", Op: OpAbove, Value: 50},
		}},
	}
}

// CultureMapper traduce estadísticas de facetas a fuerzas por tipo de cultura y
// propiedades emergentes. La configuración se valida completa al construir.
type CultureMapper struct {
	types []CultureType
	props []EmergentProperty
}

func NewCultureMapper(types []CultureType, props []EmergentProperty) (*CultureMapper, error) {
	seenTypes := make(map[string]struct{}, len(types))
	for i, ct := range types {
		if ct.Name == "" {
			return nil, fmt.Errorf("%w: type %d has no name", ErrInvalidCultureType, i)
		}
		if _, dup := seenTypes[ct.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate type %q", ErrInvalidCultureType, ct.Name)
		}
		seenTypes[ct.Name] = struct{}{}
		if len(ct.Conditions) == 0 {
			return nil, fmt.Errorf("%w: type %q has no conditions", ErrInvalidCultureType, ct.Name)
		}
		for _, cond := range ct.Conditions {
			if !domain.KnownFacet(cond.FacetID) {
				return nil, fmt.Errorf("%w: type %q references unknown facet %q", ErrInvalidCultureType, ct.Name, cond.FacetID)
			}
			if cond.Op != OpAbove && cond.Op != OpBelow {
				return nil, fmt.Errorf("%w: type %q has unknown op %q", ErrInvalidCultureType, ct.Name, cond.Op)
			}
			if math.IsNaN(cond.Value) || cond.Value < 0 || cond.Value > 100 {
				return nil, fmt.Errorf("%w: type %q has threshold outside 0-100", ErrInvalidCultureType, ct.Name)
			}
		}
	}

	seenProps := make(map[string]struct{}, len(props))
	for i, p := range props {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: property %d has no name", ErrInvalidEmergentProperty, i)
		}
		if _, dup := seenProps[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate property %q", ErrInvalidEmergentProperty, p.Name)
		}
		seenProps[p.Name] = struct{}{}
		if p.Compute == nil {
			return nil, fmt.Errorf("%w: property %q has no compute func", ErrInvalidEmergentProperty, p.Name)
		}
	}

	return &CultureMapper{types: types, props: props}, nil
}

// MapCultureTypes devuelve la fuerza 0-1 de cada tipo de la taxonomía. Un tipo
// cuya condición falla, o cuya faceta no fue observada, vale 0; si todas se
// cumplen, la fuerza es el margen medio con que se superan los umbrales.
func (m *CultureMapper) MapCultureTypes(stats map[string]domain.FacetStatistic) map[string]float64 {
	out := make(map[string]float64, len(m.types))
	for _, ct := range m.types {
		out[ct.Name] = cultureStrength(ct, stats)
	}
	return out
}

func cultureStrength(ct CultureType, stats map[string]domain.FacetStatistic) float64 {
	var total float64
	for _, cond := range ct.Conditions {
		st, ok := stats[cond.FacetID]
		if !ok || st.Mean == nil {
			return 0
		}
		m := *st.Mean
		var margin float64
		switch cond.Op {
		case OpAbove:
			if m <= cond.Value {
				return 0
			}
			headroom := 100 - cond.Value
			if headroom <= 0 {
				return 0
			}
			margin = (m - cond.Value) / headroom
		case OpBelow:
			if m >= cond.Value {
				return 0
			}
			if cond.Value <= 0 {
				return 0
			}
			margin = (cond.Value - m) / cond.Value
		}
		if margin > 1 {
			margin = 1
		}
		total += margin
	}
	return total / float64(len(ct.Conditions))
}
