package scoring

import (
	"math"
	"testing"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/domain"
)

func mustCalculator(t *testing.T, scale domain.Scale) *Calculator {
	t.Helper()
	c, err := NewCalculator(scale)
	if err != nil {
		t.Fatalf("expected calculator, got %v", err)
	}
	return c
}

func singleMapping(dimension string, weight float64) []domain.DimensionWeight {
	return []domain.DimensionWeight{{Dimension: dimension, Weight: weight}}
}

func TestNewCalculatorRejectsBadScale(t *testing.T) {
	if _, err := NewCalculator(domain.Scale{Min: 5, Max: 5}); err == nil {
		t.Fatalf("expected error for degenerate scale")
	}
}

func TestScore_RawWeightedSumSharedItem(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)

	report := c.Score([]domain.NormalizedResponse{
		{ItemID: "x", Value: 4, Mappings: []domain.DimensionWeight{
			{Dimension: domain.DimOpenness, Weight: 0.8},
			{Dimension: domain.DimExtraversion, Weight: 0.2},
		}},
		{ItemID: "y", Value: 2, Mappings: singleMapping(domain.DimOpenness, 0.5)},
	}, CalcOptions{})

	if math.Abs(report.Scores.Openness-4.2) > 1e-9 {
		t.Fatalf("expected openness 4.2, got %v", report.Scores.Openness)
	}
	if math.Abs(report.Scores.Extraversion-0.8) > 1e-9 {
		t.Fatalf("expected extraversion 0.8, got %v", report.Scores.Extraversion)
	}
	if report.Scores.Neuroticism != 0 {
		t.Fatalf("expected untouched dimension to stay 0, got %v", report.Scores.Neuroticism)
	}
}

func TestScore_NormalizedBounds(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)
	mappings := singleMapping(domain.DimOpenness, 1)

	atMax := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 5, Mappings: mappings},
		{ItemID: "b", Value: 5, Mappings: mappings},
	}, CalcOptions{Normalize: true})
	if atMax.Scores.Openness != 100 {
		t.Fatalf("expected 100 at scale max, got %v", atMax.Scores.Openness)
	}

	atMin := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 1, Mappings: mappings},
		{ItemID: "b", Value: 1, Mappings: mappings},
	}, CalcOptions{Normalize: true})
	if atMin.Scores.Openness != 0 {
		t.Fatalf("expected 0 at scale min, got %v", atMin.Scores.Openness)
	}

	atMid := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 3, Mappings: mappings},
		{ItemID: "b", Value: 3, Mappings: mappings},
	}, CalcOptions{Normalize: true})
	if atMid.Scores.Openness != 50 {
		t.Fatalf("expected 50 at midpoint, got %v", atMid.Scores.Openness)
	}

	if atMax.Scores.Conscientiousness != 0 {
		t.Fatalf("expected dimension without items to score 0, got %v", atMax.Scores.Conscientiousness)
	}
}

func TestScore_NegativeWeightInvertsDirection(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)
	mappings := singleMapping(domain.DimAgreeableness, -1)

	high := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 5, Mappings: mappings},
	}, CalcOptions{Normalize: true})
	if high.Scores.Agreeableness != 0 {
		t.Fatalf("expected max answer on negative weight to score 0, got %v", high.Scores.Agreeableness)
	}

	low := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 1, Mappings: mappings},
	}, CalcOptions{Normalize: true})
	if low.Scores.Agreeableness != 100 {
		t.Fatalf("expected min answer on negative weight to score 100, got %v", low.Scores.Agreeableness)
	}
}

func TestScore_MixedSignWeightsStayInRange(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)
	mappings := []domain.DimensionWeight{
		{Dimension: domain.DimNeuroticism, Weight: 0.9},
		{Dimension: domain.DimAgreeableness, Weight: -0.3},
	}

	for _, v := range []float64{1, 2, 3, 4, 5} {
		report := c.Score([]domain.NormalizedResponse{
			{ItemID: "n2", Value: v, Mappings: mappings},
		}, CalcOptions{Normalize: true})
		for dim, score := range report.Scores.ByDimension() {
			if score < 0 || score > 100 {
				t.Fatalf("expected %s in [0,100] for value %v, got %v", dim, v, score)
			}
		}
	}
}

func TestScore_SameInputSameOutput(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)
	responses := []domain.NormalizedResponse{
		{ItemID: "a", Value: 4, FacetID: "imagination", Mappings: singleMapping(domain.DimOpenness, 0.7)},
		{ItemID: "b", Value: 2, FacetID: "anxiety", Mappings: []domain.DimensionWeight{
			{Dimension: domain.DimNeuroticism, Weight: 0.9},
			{Dimension: domain.DimAgreeableness, Weight: -0.3},
		}},
		{ItemID: "c", Value: 5, FacetID: "imagination", Mappings: singleMapping(domain.DimOpenness, 1)},
	}
	opts := CalcOptions{Normalize: true, TotalItems: 10}

	first := c.Score(responses, opts)
	second := c.Score(responses, opts)

	if first.Scores != second.Scores {
		t.Fatalf("expected identical scores, got %+v vs %+v", first.Scores, second.Scores)
	}
	if first.Completeness != second.Completeness {
		t.Fatalf("expected identical completeness, got %v vs %v", first.Completeness, second.Completeness)
	}
	if (first.Consistency == nil) != (second.Consistency == nil) {
		t.Fatalf("expected consistency presence to match")
	}
	if first.Consistency != nil && *first.Consistency != *second.Consistency {
		t.Fatalf("expected identical consistency, got %v vs %v", *first.Consistency, *second.Consistency)
	}
	if len(first.Facets) != len(second.Facets) {
		t.Fatalf("expected identical facet maps, got %d vs %d entries", len(first.Facets), len(second.Facets))
	}
	for id, fs := range first.Facets {
		if second.Facets[id] != fs {
			t.Fatalf("expected identical facet %s, got %+v vs %+v", id, fs, second.Facets[id])
		}
	}
}

func TestScore_OrderInvariantWithExactWeights(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)
	responses := []domain.NormalizedResponse{
		{ItemID: "a", Value: 4, Mappings: singleMapping(domain.DimOpenness, 1)},
		{ItemID: "b", Value: 2, Mappings: singleMapping(domain.DimOpenness, 0.5)},
		{ItemID: "c", Value: 5, Mappings: singleMapping(domain.DimOpenness, 0.25)},
	}
	reversed := []domain.NormalizedResponse{responses[2], responses[1], responses[0]}

	forward := c.Score(responses, CalcOptions{})
	backward := c.Score(reversed, CalcOptions{})
	if forward.Scores.Openness != backward.Scores.Openness {
		t.Fatalf("expected order-invariant sum, got %v vs %v", forward.Scores.Openness, backward.Scores.Openness)
	}
	if forward.Scores.Openness != 6.25 {
		t.Fatalf("expected raw sum 6.25, got %v", forward.Scores.Openness)
	}
}

func TestScore_Completeness(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)
	mappings := singleMapping(domain.DimOpenness, 1)
	responses := []domain.NormalizedResponse{
		{ItemID: "a", Value: 3, Mappings: mappings},
		{ItemID: "b", Value: 3, Mappings: mappings},
		{ItemID: "c", Value: 3, Mappings: mappings},
	}

	if got := c.Score(responses, CalcOptions{TotalItems: 6}).Completeness; got != 0.5 {
		t.Fatalf("expected completeness 0.5, got %v", got)
	}
	if got := c.Score(responses, CalcOptions{}).Completeness; got != 1 {
		t.Fatalf("expected completeness 1 without total, got %v", got)
	}
	if got := c.Score(responses, CalcOptions{TotalItems: 2}).Completeness; got != 1 {
		t.Fatalf("expected completeness clamped to 1, got %v", got)
	}
	empty := c.Score(nil, CalcOptions{})
	if empty.Completeness != 0 {
		t.Fatalf("expected completeness 0 for empty input, got %v", empty.Completeness)
	}
	if empty.Scores != (domain.TraitScores{}) {
		t.Fatalf("expected all-zero scores for empty input, got %+v", empty.Scores)
	}
}

func TestScore_ConsistencyAgreement(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)
	mappings := singleMapping(domain.DimConscientiousness, 1)

	agree := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 4, Mappings: mappings},
		{ItemID: "b", Value: 4, Mappings: mappings},
	}, CalcOptions{})
	if agree.Consistency == nil || *agree.Consistency != 1 {
		t.Fatalf("expected consistency 1 for identical answers, got %v", agree.Consistency)
	}

	spread := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 1, Mappings: mappings},
		{ItemID: "b", Value: 5, Mappings: mappings},
	}, CalcOptions{})
	if spread.Consistency == nil || *spread.Consistency != 0 {
		t.Fatalf("expected consistency 0 for maximal spread, got %v", spread.Consistency)
	}
}

func TestScore_ConsistencyNilWithoutPairs(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)

	single := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 4, Mappings: singleMapping(domain.DimOpenness, 1)},
		{ItemID: "b", Value: 2, Mappings: singleMapping(domain.DimExtraversion, 1)},
	}, CalcOptions{})
	if single.Consistency != nil {
		t.Fatalf("expected nil consistency with one item per dimension, got %v", *single.Consistency)
	}

	weak := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 4, Mappings: singleMapping(domain.DimOpenness, 0.2)},
		{ItemID: "b", Value: 2, Mappings: singleMapping(domain.DimOpenness, 0.1)},
	}, CalcOptions{})
	if weak.Consistency != nil {
		t.Fatalf("expected weak mappings to be ignored for consistency, got %v", *weak.Consistency)
	}
}

func TestScore_ConsistencyMirrorsNegativeWeights(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)

	report := c.Score([]domain.NormalizedResponse{
		{ItemID: "direct", Value: 5, Mappings: singleMapping(domain.DimNeuroticism, 1)},
		{ItemID: "inverse", Value: 1, Mappings: singleMapping(domain.DimNeuroticism, -1)},
	}, CalcOptions{})
	if report.Consistency == nil || *report.Consistency != 1 {
		t.Fatalf("expected mirrored inverse item to agree, got %v", report.Consistency)
	}
}

func TestScore_FacetBreakdown(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)
	mappings := singleMapping(domain.DimNeuroticism, 1)

	report := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 1, FacetID: "anxiety", Mappings: mappings},
		{ItemID: "b", Value: 5, FacetID: "anxiety", Mappings: mappings},
		{ItemID: "c", Value: 3, Mappings: mappings},
	}, CalcOptions{Normalize: true})

	if len(report.Facets) != 1 {
		t.Fatalf("expected 1 facet, got %d", len(report.Facets))
	}
	fs, ok := report.Facets["anxiety"]
	if !ok {
		t.Fatalf("expected anxiety facet present")
	}
	if fs.ResponseCount != 2 {
		t.Fatalf("expected 2 responses, got %d", fs.ResponseCount)
	}
	if fs.Score != 50 {
		t.Fatalf("expected facet mean 50, got %v", fs.Score)
	}
	if fs.StdDev != 50 {
		t.Fatalf("expected facet stddev 50, got %v", fs.StdDev)
	}
}

func TestScore_FacetRawWhenNotNormalized(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)
	mappings := singleMapping(domain.DimExtraversion, 1)

	report := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 1, FacetID: "friendliness", Mappings: mappings},
		{ItemID: "b", Value: 5, FacetID: "friendliness", Mappings: mappings},
	}, CalcOptions{})

	fs := report.Facets["friendliness"]
	if fs.Score != 3 {
		t.Fatalf("expected raw facet mean 3, got %v", fs.Score)
	}
	if fs.StdDev != 2 {
		t.Fatalf("expected raw facet stddev 2, got %v", fs.StdDev)
	}
}

func TestScore_UnknownDimensionIgnored(t *testing.T) {
	c := mustCalculator(t, domain.DefaultScale)

	report := c.Score([]domain.NormalizedResponse{
		{ItemID: "a", Value: 5, Mappings: []domain.DimensionWeight{
			{Dimension: "charisma", Weight: 1},
			{Dimension: domain.DimOpenness, Weight: 1},
		}},
	}, CalcOptions{})
	if report.Scores.Openness != 5 {
		t.Fatalf("expected known mapping applied, got %v", report.Scores.Openness)
	}
	for _, dim := range domain.Dimensions() {
		if dim == domain.DimOpenness {
			continue
		}
		if v, _ := report.Scores.Dimension(dim); v != 0 {
			t.Fatalf("expected %s untouched, got %v", dim, v)
		}
	}
}
