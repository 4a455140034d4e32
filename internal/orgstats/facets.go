package orgstats

import (
	"math"
	"sort"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// diversityBins es la cantidad de bins de ancho fijo para el índice de diversidad.
const diversityBins = 5

// AnalyzeFacetDistribution resume la distribución de una faceta sobre muchos
// perfiles individuales: media, mediana, desviación estándar poblacional y un
// índice de diversidad (entropía sobre valores bineados, normalizada a 0-1).
// Una muestra vacía devuelve estadísticas nil con SampleSize 0, nunca error;
// quien llama es responsable de pre-filtrar valores faltantes.
func AnalyzeFacetDistribution(values []float64, facetID string) domain.FacetStatistic {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		clean = append(clean, v)
	}

	stat := domain.FacetStatistic{FacetID: facetID, SampleSize: len(clean)}
	if len(clean) == 0 {
		return stat
	}

	m := mean(clean)
	md := median(clean)
	sd := populationStdDev(clean)
	di := diversityIndex(clean)

	stat.Mean = &m
	stat.Median = &md
	stat.StdDev = &sd
	stat.DiversityIndex = &di
	return stat
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func populationStdDev(values []float64) float64 {
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

// diversityIndex captura qué tan heterogénea es la organización en la faceta,
// más allá de su tendencia central: entropía de Shannon sobre cinco bins de
// ancho igual en el rango observado, normalizada por log(5). Valores idénticos
// dan 0; una distribución pareja entre bins da 1.
func diversityIndex(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return 0
	}

	width := (max - min) / diversityBins
	counts := make([]int, diversityBins)
	for _, v := range values {
		bin := int((v - min) / width)
		if bin >= diversityBins {
			bin = diversityBins - 1
		}
		counts[bin]++
	}

	n := float64(len(values))
	var entropy float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log(p)
	}
	return entropy / math.Log(diversityBins)
}
