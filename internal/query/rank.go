package query

import (
	"sort"
	"strings"

	"github.com/sells-group/airport-lookup/internal/model"
)

// searchLimit bounds every search result set.
const searchLimit = 12

// tierRule pairs a relevance tier with its predicate. Rules are evaluated
// top to bottom and the first match wins, so a candidate is counted in
// exactly one tier even when several predicates hold.
type tierRule struct {
	tier  int
	match func(c *model.SearchCandidate, t Term) bool
}

var tierRules = []tierRule{
	{0, func(c *model.SearchCandidate, t Term) bool {
		return c.Ident == t.Code
	}},
	{1, func(c *model.SearchCandidate, t Term) bool {
		return c.IATACode != nil && *c.IATACode == t.Code
	}},
	{2, func(c *model.SearchCandidate, t Term) bool {
		return strings.HasPrefix(c.Ident, t.Code)
	}},
	{3, func(c *model.SearchCandidate, t Term) bool {
		return c.IATACode != nil && strings.HasPrefix(*c.IATACode, t.Code)
	}},
	{4, func(c *model.SearchCandidate, t Term) bool {
		return c.Municipality != nil && containsFold(*c.Municipality, t.Text)
	}},
	{5, func(c *model.SearchCandidate, t Term) bool {
		return containsFold(c.Name, t.Text)
	}},
	// Region and country signals share one tier: code or name of either.
	{6, func(c *model.SearchCandidate, t Term) bool {
		if containsFold(c.ISORegion, t.Text) || containsFold(c.ISOCountry, t.Text) {
			return true
		}
		if c.RegionName != nil && containsFold(*c.RegionName, t.Text) {
			return true
		}
		return c.CountryName != nil && containsFold(*c.CountryName, t.Text)
	}},
}

type ranked struct {
	cand model.SearchCandidate
	tier int
}

// rankCandidates assigns each candidate its lowest matching tier,
// deduplicates by airport id, orders by tier, then municipality (nulls
// last), then name, and truncates to searchLimit.
func rankCandidates(cands []model.SearchCandidate, t Term) []ranked {
	out := make([]ranked, 0, len(cands))
	seen := make(map[int64]bool, len(cands))

	for i := range cands {
		c := &cands[i]
		if seen[c.ID] {
			continue
		}
		tier := matchTier(c, t)
		if tier < 0 {
			// Store over-selection (e.g. collation differences); not a hit.
			continue
		}
		seen[c.ID] = true
		out = append(out, ranked{cand: *c, tier: tier})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].tier != out[j].tier {
			return out[i].tier < out[j].tier
		}
		if cmp := compareNullable(out[i].cand.Municipality, out[j].cand.Municipality); cmp != 0 {
			return cmp < 0
		}
		return out[i].cand.Name < out[j].cand.Name
	})

	if len(out) > searchLimit {
		out = out[:searchLimit]
	}
	return out
}

// matchTier returns the lowest tier whose predicate holds, or -1.
func matchTier(c *model.SearchCandidate, t Term) int {
	for _, rule := range tierRules {
		if rule.match(c, t) {
			return rule.tier
		}
	}
	return -1
}

// containsFold is a case-insensitive substring test.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// compareNullable orders two optional strings ascending with nil last.
func compareNullable(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return strings.Compare(*a, *b)
}
