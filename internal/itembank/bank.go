package itembank

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

// ErrInvalidBank indica un catálogo de ítems mal formado (fatal al iniciar).
var ErrInvalidBank = errors.New("invalid item bank")

// Mapping asocia un ítem del catálogo con una dimensión y su peso.
type Mapping struct {
	Dimension string  `yaml:"dimension"`
	Weight    float64 `yaml:"weight"`
}

// Item es la definición de una pregunta del instrumento.
type Item struct {
	ID       string    `yaml:"id"`
	Prompt   string    `yaml:"prompt"`
	FacetID  string    `yaml:"facet"`
	Reverse  bool      `yaml:"reverse"`
	Mappings []Mapping `yaml:"mappings"`
}

type bankFile struct {
	Scale struct {
		Min float64 `yaml:"min"`
		Max float64 `yaml:"max"`
	} `yaml:"scale"`
	Items []Item `yaml:"items"`
}

// Bank es el catálogo de ítems cargado: une respuestas crudas con las
// definiciones (mappings, inversión, faceta) que el motor necesita.
type Bank struct {
	scale domain.Scale
	items map[string]Item
	order []string
}

// Load lee y valida el catálogo YAML desde disco.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item bank file: %w", err)
	}
	bank, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load item bank %s: %w", path, err)
	}
	return bank, nil
}

// Parse valida el catálogo completo. Cualquier defecto estructural (ID duplicado,
// mapping vacío, dimensión o faceta desconocida, peso cero) es error de
// configuración: el proceso no debe arrancar con un banco malo. Que los pesos de
// un ítem sumen 1 no se exige; el motor no depende de eso.
func Parse(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse item bank yaml: %w", err)
	}

	scale := domain.Scale{Min: f.Scale.Min, Max: f.Scale.Max}
	if math.IsNaN(scale.Min) || math.IsNaN(scale.Max) || math.IsInf(scale.Min, 0) || math.IsInf(scale.Max, 0) || scale.Min >= scale.Max {
		return nil, fmt.Errorf("%w: scale min %.2f max %.2f", ErrInvalidBank, scale.Min, scale.Max)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidBank)
	}

	items := make(map[string]Item, len(f.Items))
	order := make([]string, 0, len(f.Items))
	for i, item := range f.Items {
		if item.ID == "" {
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalidBank, i)
		}
		if _, dup := items[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %q", ErrInvalidBank, item.ID)
		}
		if len(item.Mappings) == 0 {
			return nil, fmt.Errorf("%w: item %q has no mappings", ErrInvalidBank, item.ID)
		}
		for _, m := range item.Mappings {
			if !domain.KnownDimension(m.Dimension) {
				return nil, fmt.Errorf("%w: item %q maps unknown dimension %q", ErrInvalidBank, item.ID, m.Dimension)
			}
			if m.Weight == 0 || math.IsNaN(m.Weight) || math.IsInf(m.Weight, 0) {
				return nil, fmt.Errorf("%w: item %q has invalid weight for %s", ErrInvalidBank, item.ID, m.Dimension)
			}
		}
		if item.FacetID != "" && !domain.KnownFacet(item.FacetID) {
			return nil, fmt.Errorf("%w: item %q references unknown facet %q", ErrInvalidBank, item.ID, item.FacetID)
		}
		items[item.ID] = item
		order = append(order, item.ID)
	}

	return &Bank{scale: scale, items: items, order: order}, nil
}

// Scale devuelve los límites del instrumento.
func (b *Bank) Scale() domain.Scale {
	return b.scale
}

// Size devuelve el total de ítems del instrumento, el denominador de completeness.
func (b *Bank) Size() int {
	return len(b.items)
}

// Item devuelve la definición de un ítem por ID.
func (b *Bank) Item(id string) (Item, bool) {
	item, ok := b.items[id]
	return item, ok
}

// ItemIDs devuelve los IDs en el orden del catálogo.
func (b *Bank) ItemIDs() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Compose une respuestas crudas con sus definiciones. Una respuesta a un ítem
// desconocido produce un ResponseItem sin mappings que el normalizador descarta:
// cuenta contra completeness pero nunca frena el proceso.
func (b *Bank) Compose(answers []domain.ItemResponse) []domain.ResponseItem {
	out := make([]domain.ResponseItem, 0, len(answers))
	for _, a := range answers {
		item, ok := b.items[a.ItemID]
		if !ok {
			out = append(out, domain.ResponseItem{ItemID: a.ItemID, RawValue: a.Value})
			continue
		}
		mappings := make([]domain.DimensionWeight, len(item.Mappings))
		for i, m := range item.Mappings {
			mappings[i] = domain.DimensionWeight{Dimension: m.Dimension, Weight: m.Weight}
		}
		out = append(out, domain.ResponseItem{
			ItemID:   a.ItemID,
			RawValue: a.Value,
			Reverse:  item.Reverse,
			FacetID:  item.FacetID,
			Mappings: mappings,
		})
	}
	return out
}
