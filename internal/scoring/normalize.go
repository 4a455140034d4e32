package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// ErrInvalidScale indica límites de escala mal configurados (fatal al iniciar).
var ErrInvalidScale = errors.New("invalid scale bounds")

// Normalizer valida respuestas crudas y aplica la inversión de puntaje antes de
// cualquier ponderación.
type Normalizer struct {
	scale domain.Scale
}

func NewNormalizer(scale domain.Scale) (*Normalizer, error) {
	if err := validateScale(scale); err != nil {
		return nil, err
	}
	return &Normalizer{scale: scale}, nil
}

func validateScale(scale domain.Scale) error {
	if math.IsNaN(scale.Min) || math.IsInf(scale.Min, 0) || math.IsNaN(scale.Max) || math.IsInf(scale.Max, 0) {
		return fmt.Errorf("%w: non-finite bound", ErrInvalidScale)
	}
	if scale.Min >= scale.Max {
		return fmt.Errorf("%w: min %.2f >= max %.2f", ErrInvalidScale, scale.Min, scale.Max)
	}
	return nil
}

// Scale devuelve los límites configurados.
func (n *Normalizer) Scale() domain.Scale {
	return n.scale
}

// Normalize filtra ítems inválidos (sin valor, fuera de rango, sin mappings) y
// aplica (min+max)-v a los invertidos. Un ítem malo se descarta, nunca corta el
// proceso; los mappings pasan sin modificar.
func (n *Normalizer) Normalize(items []domain.ResponseItem) []domain.NormalizedResponse {
	out := make([]domain.NormalizedResponse, 0, len(items))
	for _, item := range items {
		if item.RawValue == nil {
			continue
		}
		v := *item.RawValue
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < n.scale.Min || v > n.scale.Max {
			continue
		}
		if len(item.Mappings) == 0 {
			continue
		}
		if item.Reverse {
			v = n.scale.Min + n.scale.Max - v
		}
		out = append(out, domain.NormalizedResponse{
			ItemID:   item.ItemID,
			Value:    v,
			FacetID:  item.FacetID,
			Mappings: item.Mappings,
		})
	}
	return out
}
