package domain

// Taxonomía cerrada de 30 facetas (6 por dimensión), nombres estilo IPIP-NEO.
var facetTaxonomy = []struct {
	ID        string
	Dimension string
}{
	{"imagination", DimOpenness},
	{"artistic_interests", DimOpenness},
	{"emotionality", DimOpenness},
	{"adventurousness", DimOpenness},
	{"intellect", DimOpenness},
	{"liberalism", DimOpenness},

	{"self_efficacy", DimConscientiousness},
	{"orderliness", DimConscientiousness},
	{"dutifulness", DimConscientiousness},
	{"achievement_striving", DimConscientiousness},
	{"self_discipline", DimConscientiousness},
	{"cautiousness", DimConscientiousness},

	{"friendliness", DimExtraversion},
	{"gregariousness", DimExtraversion},
	{"assertiveness", DimExtraversion},
	{"activity_level", DimExtraversion},
	{"excitement_seeking", DimExtraversion},
	{"cheerfulness", DimExtraversion},

	{"trust", DimAgreeableness},
	{"morality", DimAgreeableness},
	{"altruism", DimAgreeableness},
	{"cooperation", DimAgreeableness},
	{"modesty", DimAgreeableness},
	{"sympathy", DimAgreeableness},

	{"anxiety", DimNeuroticism},
	{"anger", DimNeuroticism},
	{"depression", DimNeuroticism},
	{"self_consciousness", DimNeuroticism},
	{"immoderation", DimNeuroticism},
	{"vulnerability", DimNeuroticism},
}

var facetDimension = func() map[string]string {
	m := make(map[string]string, len(facetTaxonomy))
	for _, f := range facetTaxonomy {
		m[f.ID] = f.Dimension
	}
	return m
}()

// FacetTaxonomy devuelve los IDs de las 30 facetas en orden canónico.
func FacetTaxonomy() []string {
	out := make([]string, len(facetTaxonomy))
	for i, f := range facetTaxonomy {
		out[i] = f.ID
	}
	return out
}

// FacetDimension devuelve la dimensión a la que pertenece la faceta.
func FacetDimension(facetID string) (string, bool) {
	dim, ok := facetDimension[facetID]
	return dim, ok
}

// KnownFacet indica si el ID pertenece a la taxonomía.
func KnownFacet(facetID string) bool {
	_, ok := facetDimension[facetID]
	return ok
}

// FacetStatistic resume la distribución de una faceta dentro de una población.
// Con SampleSize cero todos los punteros quedan nil: ausencia de datos no es error.
type FacetStatistic struct {
	FacetID        string   `json:"facet_id"`
	Mean           *float64 `json:"mean,omitempty"`
	Median         *float64 `json:"median,omitempty"`
	StdDev         *float64 `json:"std_dev,omitempty"`
	DiversityIndex *float64 `json:"diversity_index,omitempty"`
	SampleSize     int      `json:"sample_size"`
}
