package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/airport-lookup/internal/model"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func candidate(id int64, ident, name string) model.SearchCandidate {
	return model.SearchCandidate{Airport: model.Airport{
		ID:    id,
		Ident: ident,
		Name:  name,
		Type:  model.TypeLargeAirport,
	}}
}

func mustTerm(t *testing.T, raw string) Term {
	t.Helper()
	term, ok := NormalizeTerm(raw)
	require.True(t, ok)
	return term
}

// --- Tier assignment ---

func TestMatchTier(t *testing.T) {
	vie := candidate(1, "LOWW", "Vienna International Airport")
	vie.IATACode = strPtr("VIE")
	vie.Municipality = strPtr("Vienna")
	vie.ISOCountry = "AT"
	vie.ISORegion = "AT-9"
	vie.RegionName = strPtr("Vienna")
	vie.CountryName = strPtr("Austria")

	tests := []struct {
		name string
		term string
		want int
	}{
		{name: "icao equality", term: "loww", want: 0},
		{name: "iata equality", term: "vie", want: 1},
		{name: "icao prefix", term: "LOW", want: 2},
		{name: "municipality contains", term: "vienna", want: 4},
		{name: "name contains", term: "international", want: 5},
		{name: "region code", term: "at-9", want: 6},
		{name: "country name", term: "austria", want: 6},
		{name: "no match", term: "zurich", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := vie
			got := matchTier(&c, mustTerm(t, tt.term))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchTier_IATAPrefix(t *testing.T) {
	c := candidate(1, "EGLL", "Heathrow Airport")
	c.IATACode = strPtr("LHR")

	// "LH" is not an ICAO prefix of EGLL, so the IATA prefix tier applies.
	assert.Equal(t, 3, matchTier(&c, mustTerm(t, "lh")))
}

func TestMatchTier_FirstMatchWins(t *testing.T) {
	// Ident equality also satisfies the prefix predicates; the candidate
	// still lands in tier 0 only.
	c := candidate(1, "LOWW", "Vienna International Airport")
	c.IATACode = strPtr("LOW")

	assert.Equal(t, 0, matchTier(&c, mustTerm(t, "LOWW")))
}

func TestMatchTier_RegionNameFold(t *testing.T) {
	c := candidate(1, "LOWS", "Salzburg Airport")
	c.ISORegion = "AT-5"
	c.RegionName = strPtr("Salzburg")

	assert.Equal(t, 5, matchTier(&c, mustTerm(t, "SALZ")), "name contains wins over region")

	c.Name = "W. A. Mozart Airport"
	assert.Equal(t, 6, matchTier(&c, mustTerm(t, "salzburg")))
}

// --- Ordering ---

func TestRankCandidates_TierOrder(t *testing.T) {
	byName := candidate(3, "KXYZ", "Vienna Field")
	byCity := candidate(2, "KABC", "Smallville Municipal")
	byCity.Municipality = strPtr("Vienna")
	exact := candidate(1, "VIENNA", "Main")

	ranked := rankCandidates([]model.SearchCandidate{byName, byCity, exact}, mustTerm(t, "Vienna"))

	require.Len(t, ranked, 3)
	assert.Equal(t, int64(1), ranked[0].cand.ID)
	assert.Equal(t, int64(2), ranked[1].cand.ID)
	assert.Equal(t, int64(3), ranked[2].cand.ID)
}

func TestRankCandidates_MunicipalityNullsLast(t *testing.T) {
	a := candidate(1, "AAA1", "Vienna One")
	a.Municipality = strPtr("Graz")
	b := candidate(2, "AAA2", "Vienna Two")
	b.Municipality = nil
	c := candidate(3, "AAA3", "Vienna Three")
	c.Municipality = strPtr("Linz")

	ranked := rankCandidates([]model.SearchCandidate{b, c, a}, mustTerm(t, "vienna"))

	require.Len(t, ranked, 3)
	// Same tier for all three, so municipality orders them with nil last.
	assert.Equal(t, int64(1), ranked[0].cand.ID) // Graz
	assert.Equal(t, int64(3), ranked[1].cand.ID) // Linz
	assert.Equal(t, int64(2), ranked[2].cand.ID) // null
}

func TestRankCandidates_NameBreaksTies(t *testing.T) {
	a := candidate(1, "AAA1", "Vienna Beta")
	a.Municipality = strPtr("Graz")
	b := candidate(2, "AAA2", "Vienna Alpha")
	b.Municipality = strPtr("Graz")

	ranked := rankCandidates([]model.SearchCandidate{a, b}, mustTerm(t, "vienna"))

	require.Len(t, ranked, 2)
	assert.Equal(t, "Vienna Alpha", ranked[0].cand.Name)
	assert.Equal(t, "Vienna Beta", ranked[1].cand.Name)
}

func TestRankCandidates_DedupByID(t *testing.T) {
	a := candidate(7, "LOWW", "Vienna International Airport")
	dup := a
	dup.Name = "Vienna International Airport" // same row selected twice

	ranked := rankCandidates([]model.SearchCandidate{a, dup}, mustTerm(t, "LOWW"))

	assert.Len(t, ranked, 1)
}

func TestRankCandidates_Truncates(t *testing.T) {
	cands := make([]model.SearchCandidate, 0, 20)
	for i := 0; i < 20; i++ {
		cands = append(cands, candidate(int64(i+1), fmt.Sprintf("AP%02d", i), fmt.Sprintf("Vienna Strip %02d", i)))
	}

	ranked := rankCandidates(cands, mustTerm(t, "vienna"))

	assert.Len(t, ranked, 12)
}

func TestRankCandidates_DropsNonMatches(t *testing.T) {
	hit := candidate(1, "LOWW", "Vienna International Airport")
	miss := candidate(2, "LSZH", "Zurich Airport")

	ranked := rankCandidates([]model.SearchCandidate{hit, miss}, mustTerm(t, "vienna"))

	require.Len(t, ranked, 1)
	assert.Equal(t, int64(1), ranked[0].cand.ID)
}

func TestContainsFold(t *testing.T) {
	assert.True(t, containsFold("Vienna International", "VIENNA"))
	assert.True(t, containsFold("VIENNA", "enn"))
	assert.False(t, containsFold("Vienna", "Salzburg"))
	assert.True(t, containsFold("anything", ""))
}

func TestCompareNullable(t *testing.T) {
	assert.Equal(t, 0, compareNullable(nil, nil))
	assert.Equal(t, 1, compareNullable(nil, strPtr("a")))
	assert.Equal(t, -1, compareNullable(strPtr("a"), nil))
	assert.Negative(t, compareNullable(strPtr("a"), strPtr("b")))
	assert.Positive(t, compareNullable(strPtr("b"), strPtr("a")))
}
