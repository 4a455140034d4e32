package scoring

import (
	"math"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// strongMappingWeight es el |peso| mínimo para que un ítem cuente como "fuertemente
// mapeado" a una dimensión al medir consistencia.
const strongMappingWeight = 0.25

// CalcOptions controla el cálculo de puntajes.
type CalcOptions struct {
	// Normalize reescala cada dimensión a 0-100 según el rango alcanzable del
	// conjunto de ítems. Sin normalizar, el puntaje es la suma ponderada cruda.
	Normalize bool
	// TotalItems es el total de ítems del instrumento, para calcular completeness.
	// Con cero o negativo se usa la cantidad de respuestas válidas.
	TotalItems int
}

// Calculator acumula sumas ponderadas por dimensión y produce el reporte de rasgos.
type Calculator struct {
	scale domain.Scale
}

func NewCalculator(scale domain.Scale) (*Calculator, error) {
	if err := validateScale(scale); err != nil {
		return nil, err
	}
	return &Calculator{scale: scale}, nil
}

// Score calcula el reporte de rasgos de un respondente.
//
// Por dimensión: score = Σ valor*peso sobre cada mapping que la nombra. Es una
// suma, no un promedio: un ítem aporta su valor ponderado completo a cada
// dimensión que mapea. Con Normalize, la suma cruda se reescala a 0-100 contra
// las sumas mínima y máxima alcanzables dados los pesos y la escala (seguro con
// pesos negativos). Una dimensión sin ítems vale 0, nunca es error; eso se
// refleja en completeness.
//
// Determinista: la misma entrada produce salida bit a bit idéntica.
func (c *Calculator) Score(responses []domain.NormalizedResponse, opts CalcOptions) domain.TraitReport {
	sums := make(map[string]float64, 5)
	minSums := make(map[string]float64, 5)
	maxSums := make(map[string]float64, 5)
	consistencyVals := make(map[string][]float64, 5)
	facetValues := make(map[string][]float64)

	for _, r := range responses {
		for _, m := range r.Mappings {
			if !domain.KnownDimension(m.Dimension) {
				continue
			}
			sums[m.Dimension] += r.Value * m.Weight

			lo := m.Weight * c.scale.Min
			hi := m.Weight * c.scale.Max
			if lo > hi {
				lo, hi = hi, lo
			}
			minSums[m.Dimension] += lo
			maxSums[m.Dimension] += hi

			if math.Abs(m.Weight) >= strongMappingWeight {
				v := r.Value
				if m.Weight < 0 {
					// Espejo para comparar ítems inversos en la misma dirección.
					v = c.scale.Min + c.scale.Max - v
				}
				consistencyVals[m.Dimension] = append(consistencyVals[m.Dimension], v)
			}
		}
		if r.FacetID != "" {
			facetValues[r.FacetID] = append(facetValues[r.FacetID], r.Value)
		}
	}

	scores := make(map[string]float64, 5)
	for _, dim := range domain.Dimensions() {
		raw := sums[dim]
		if !opts.Normalize {
			scores[dim] = raw
			continue
		}
		span := maxSums[dim] - minSums[dim]
		if span <= 0 {
			scores[dim] = 0
			continue
		}
		scores[dim] = (raw - minSums[dim]) / span * 100
	}

	report := domain.TraitReport{
		Scores:       domain.ScoresFromMap(scores),
		Completeness: completeness(len(responses), opts.TotalItems),
		Consistency:  c.consistency(consistencyVals),
	}
	if len(facetValues) > 0 {
		report.Facets = c.facetScores(facetValues, opts.Normalize)
	}
	return report
}

func completeness(validItems, totalItems int) float64 {
	if totalItems <= 0 {
		totalItems = validItems
	}
	if totalItems == 0 {
		return 0
	}
	ratio := float64(validItems) / float64(totalItems)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// consistency devuelve 1 - varianza media normalizada entre ítems fuertemente
// mapeados a una misma dimensión. Requiere al menos una dimensión con dos o más
// ítems; si ninguna califica devuelve nil.
func (c *Calculator) consistency(byDimension map[string][]float64) *float64 {
	halfSpan := (c.scale.Max - c.scale.Min) / 2
	maxVariance := halfSpan * halfSpan

	var total float64
	var qualified int
	for _, dim := range domain.Dimensions() {
		values := byDimension[dim]
		if len(values) < 2 {
			continue
		}
		norm := populationVariance(values) / maxVariance
		if norm > 1 {
			norm = 1
		}
		total += norm
		qualified++
	}
	if qualified == 0 {
		return nil
	}
	v := 1 - total/float64(qualified)
	if v < 0 {
		v = 0
	}
	return &v
}

func (c *Calculator) facetScores(byFacet map[string][]float64, normalize bool) map[string]domain.FacetScore {
	span := c.scale.Max - c.scale.Min
	out := make(map[string]domain.FacetScore, len(byFacet))
	for facetID, values := range byFacet {
		scaled := values
		if normalize {
			scaled = make([]float64, len(values))
			for i, v := range values {
				scaled[i] = (v - c.scale.Min) / span * 100
			}
		}
		out[facetID] = domain.FacetScore{
			Score:         mean(scaled),
			ResponseCount: len(scaled),
			StdDev:        populationStdDev(scaled),
		}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return sq / float64(len(values))
}

func populationStdDev(values []float64) float64 {
	return math.Sqrt(populationVariance(values))
}
