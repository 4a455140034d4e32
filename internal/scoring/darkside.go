package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// ErrInvalidRule indica una regla de patrón mal formada (fatal al iniciar).
var ErrInvalidRule = errors.New("invalid pattern rule")

// CompareOp es el operador de una condición de regla.
type CompareOp string

const (
	OpAbove CompareOp = "above"
	OpBelow CompareOp = "below"
)

// Condition compara el puntaje de una dimensión contra un umbral.
type Condition struct {
	Dimension string    `json:"dimension"`
	Op        CompareOp `json:"op"`
	Value     float64   `json:"value"`
}

// PatternRule produce sus etiquetas cuando todas sus condiciones se cumplen.
// El catálogo es datos, no código: agregar un patrón nuevo no toca la evaluación.
type PatternRule struct {
	Name       string      `json:"name"`
	Conditions []Condition `json:"conditions"`
	Labels     []string    `json:"labels"`
}

// DefaultPatternRules es el catálogo de riesgo observado en producción. Los
// umbrales asumen puntajes 0-100 y son configuración, no ley de negocio.
func DefaultPatternRules() []PatternRule {
	return []PatternRule{
		{
			Name: "emotional_volatility",
			Conditions: []Condition{
				{Dimension: domain.DimNeuroticism, Op: OpAbove, Value: 80},
				{Dimension: domain.DimAgreeableness, Op: OpBelow, Value: 30},
			},
			Labels: []string{"volatility_risk", "interpersonal_difficulties"},
		},
		{
			Name: "dominant_self_focus",
			Conditions: []Condition{
				{Dimension: domain.DimExtraversion, Op: OpAbove, Value: 85},
				{Dimension: domain.DimAgreeableness, Op: OpBelow, Value: 30},
				{Dimension: domain.DimNeuroticism, Op: OpBelow, Value: 40},
			},
			Labels: []string{"narcissistic_tendencies"},
		},
		{
			Name: "perfectionistic_strain",
			Conditions: []Condition{
				{Dimension: domain.DimConscientiousness, Op: OpAbove, Value: 90},
				{Dimension: domain.DimNeuroticism, Op: OpAbove, Value: 70},
			},
			Labels: []string{"perfectionism_risk", "burnout_risk"},
		},
	}
}

// PatternDetector evalúa el catálogo de reglas contra un set de puntajes.
// Clasificador sin estado: la misma entrada produce siempre el mismo set.
type PatternDetector struct {
	rules []PatternRule
}

// NewPatternDetector valida el catálogo completo; una regla mal formada es un
// error de configuración y debe frenar el arranque, no una llamada.
func NewPatternDetector(rules []PatternRule) (*PatternDetector, error) {
	seen := make(map[string]struct{}, len(rules))
	for i, rule := range rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("%w: rule %d has no name", ErrInvalidRule, i)
		}
		if _, dup := seen[rule.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate rule %q", ErrInvalidRule, rule.Name)
		}
		seen[rule.Name] = struct{}{}
		if len(rule.Conditions) == 0 {
			return nil, fmt.Errorf("%w: rule %q has no conditions", ErrInvalidRule, rule.Name)
		}
		if len(rule.Labels) == 0 {
			return nil, fmt.Errorf("%w: rule %q has no labels", ErrInvalidRule, rule.Name)
		}
		for _, cond := range rule.Conditions {
			if !domain.KnownDimension(cond.Dimension) {
				return nil, fmt.Errorf("%w: rule %q references unknown dimension %q", ErrInvalidRule, rule.Name, cond.Dimension)
			}
			if cond.Op != OpAbove && cond.Op != OpBelow {
				return nil, fmt.Errorf("%w: rule %q has unknown op %q", ErrInvalidRule, rule.Name, cond.Op)
			}
			if math.IsNaN(cond.Value) || math.IsInf(cond.Value, 0) {
				return nil, fmt.Errorf("%w: rule %q has non-finite threshold", ErrInvalidRule, rule.Name)
			}
		}
	}
	return &PatternDetector{rules: rules}, nil
}

// Detect evalúa todas las reglas de forma independiente (no excluyente) y
// devuelve las etiquetas deduplicadas en orden alfabético. Un perfil balanceado
// no dispara ninguna.
func (d *PatternDetector) Detect(scores domain.TraitScores) []string {
	seen := make(map[string]struct{})
	for _, rule := range d.rules {
		if !ruleMatches(rule, scores) {
			continue
		}
		for _, label := range rule.Labels {
			seen[label] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func ruleMatches(rule PatternRule, scores domain.TraitScores) bool {
	for _, cond := range rule.Conditions {
		v, ok := scores.Dimension(cond.Dimension)
		if !ok {
			return false
		}
		switch cond.Op {
		case OpAbove:
			if !(v > cond.Value) {
				return false
			}
		case OpBelow:
			if !(v < cond.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
