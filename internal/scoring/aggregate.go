package scoring

import (
	"errors"
	"math"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// ErrInsufficientRaters indica que ningún evaluador aportó puntajes utilizables.
var ErrInsufficientRaters = errors.New("no raters with usable scores")

// AggregateOptions controla la agregación multi-evaluador.
type AggregateOptions struct {
	// DetectDiscrepancies agrega la dispersión max-min por dimensión entre los
	// evaluadores contribuyentes. Qué dispersión es "significativa" lo decide
	// quien llama; el motor solo la reporta.
	DetectDiscrepancies bool
}

// AggregateRaters combina los puntajes de varios evaluadores en un perfil único
// usando media ponderada. Se excluyen los evaluadores sin puntajes (Scores nil)
// y los de peso inválido (fuera de (0,1] o no finito). La división por la suma
// de pesos hace correcta la media aunque los pesos no sumen 1.
func AggregateRaters(raters []domain.RaterScores, opts AggregateOptions) (domain.AggregatedProfile, error) {
	var contributors []domain.RaterScores
	for _, r := range raters {
		if r.Scores == nil {
			continue
		}
		if math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) {
			continue
		}
		if r.Weight <= 0 || r.Weight > 1 {
			continue
		}
		contributors = append(contributors, r)
	}
	if len(contributors) == 0 {
		return domain.AggregatedProfile{}, ErrInsufficientRaters
	}

	var totalWeight float64
	sums := make(map[string]float64, 5)
	for _, r := range contributors {
		totalWeight += r.Weight
		for _, dim := range domain.Dimensions() {
			v, _ := r.Scores.Dimension(dim)
			sums[dim] += v * r.Weight
		}
	}

	scores := make(map[string]float64, 5)
	for _, dim := range domain.Dimensions() {
		scores[dim] = sums[dim] / totalWeight
	}

	profile := domain.AggregatedProfile{
		Scores:     domain.ScoresFromMap(scores),
		RaterCount: len(contributors),
	}
	if opts.DetectDiscrepancies {
		profile.Discrepancies = discrepancies(contributors)
	}
	return profile, nil
}

// discrepancies devuelve la diferencia absoluta máxima por dimensión entre los
// contribuyentes. Con un solo contribuyente el mapa queda vacío.
func discrepancies(contributors []domain.RaterScores) map[string]float64 {
	out := make(map[string]float64)
	if len(contributors) < 2 {
		return out
	}
	for _, dim := range domain.Dimensions() {
		min := math.Inf(1)
		max := math.Inf(-1)
		for _, r := range contributors {
			v, _ := r.Scores.Dimension(dim)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		out[dim] = max - min
	}
	return out
}
