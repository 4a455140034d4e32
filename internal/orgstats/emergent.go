package orgstats

import (
	"math"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// EmergentProperty combina dos o más estadísticas de facetas en una señal de
// orden superior. Las fórmulas son reglas de negocio intercambiables, no
// constantes del motor: Compute devuelve ok=false cuando faltan las facetas que
// necesita y la propiedad se omite del resultado.
type EmergentProperty struct {
	Name    string
	Compute func(stats map[string]domain.FacetStatistic) (float64, bool)
}

// DefaultEmergentProperties son las fórmulas vigentes del producto. Los
// coeficientes son decisiones de dominio sujetas a revisión.
func DefaultEmergentProperties() []EmergentProperty {
	return []EmergentProperty{
		{
			// Apertura estética + sociabilidad: clima de innovación.
			Name: "innovation_climate",
			Compute: func(stats map[string]domain.FacetStatistic) (float64, bool) {
				art, ok := facetMean(stats, "artistic_interests")
				if !ok {
					return 0, false
				}
				greg, ok := facetMean(stats, "gregariousness")
				if !ok {
					return 0, false
				}
				return geometricMean(art, greg), true
			},
		},
		{
			// Cooperación + amabilidad, amortiguado cuando la confianza es dispareja.
			Name: "collaboration_potential",
			Compute: func(stats map[string]domain.FacetStatistic) (float64, bool) {
				coop, ok := facetMean(stats, "cooperation")
				if !ok {
					return 0, false
				}
				friendly, ok := facetMean(stats, "friendliness")
				if !ok {
					return 0, false
				}
				base := geometricMean(coop, friendly)
				if trust, ok := stats["trust"]; ok && trust.DiversityIndex != nil {
					base *= 1 - 0.3**trust.DiversityIndex
				}
				return base, true
			},
		},
		{
			Name: "execution_discipline",
			Compute: func(stats map[string]domain.FacetStatistic) (float64, bool) {
				disc, ok := facetMean(stats, "self_discipline")
				if !ok {
					return 0, false
				}
				duty, ok := facetMean(stats, "dutifulness")
				if !ok {
					return 0, false
				}
				return geometricMean(disc, duty), true
			},
		},
		{
			// Estabilidad (ansiedad invertida) + autoeficacia: reserva de resiliencia.
			Name: "resilience_reserve",
			Compute: func(stats map[string]domain.FacetStatistic) (float64, bool) {
				anx, ok := facetMean(stats, "anxiety")
				if !ok {
					return 0, false
				}
				eff, ok := facetMean(stats, "self_efficacy")
				if !ok {
					return 0, false
				}
				return geometricMean(100-anx, eff), true
			},
		},
	}
}

// EmergentProperties evalúa las fórmulas sobre las estadísticas agregadas de la
// organización. focus, opcional, sobreescribe por faceta con las estadísticas de
// un sub-grupo de interés (ej. un equipo) antes de evaluar.
func (m *CultureMapper) EmergentProperties(aggregate, focus map[string]domain.FacetStatistic) map[string]float64 {
	merged := aggregate
	if len(focus) > 0 {
		merged = make(map[string]domain.FacetStatistic, len(aggregate)+len(focus))
		for id, st := range aggregate {
			merged[id] = st
		}
		for id, st := range focus {
			merged[id] = st
		}
	}

	out := make(map[string]float64, len(m.props))
	for _, p := range m.props {
		if v, ok := p.Compute(merged); ok {
			out[p.Name] = v
		}
	}
	return out
}

func facetMean(stats map[string]domain.FacetStatistic, facetID string) (float64, bool) {
	st, ok := stats[facetID]
	if !ok || st.Mean == nil {
		return 0, false
	}
	return *st.Mean, true
}

func geometricMean(a, b float64) float64 {
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	return math.Sqrt(a * b)
}
