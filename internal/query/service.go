// Package query implements the read-only lookup core: tiered relevance
// search, great-circle proximity, and faceted country listings over the
// airport reference store.
package query

import (
	"context"
	"sort"

	"github.com/twpayne/go-geom"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/airport-lookup/internal/model"
	"github.com/sells-group/airport-lookup/internal/store"
)

// defaultNearbyTypes restricts proximity candidates when no facet is
// configured.
var defaultNearbyTypes = []model.AirportType{
	model.TypeLargeAirport,
	model.TypeMediumAirport,
}

// Service exposes the query operations. It holds no mutable state and is
// safe for concurrent use; every invocation is validate, query, order,
// truncate.
type Service struct {
	store       store.Store
	nearbyTypes []model.AirportType
}

// Option configures a Service.
type Option func(*Service)

// WithNearbyTypes overrides the proximity candidate facet.
func WithNearbyTypes(types []model.AirportType) Option {
	return func(s *Service) {
		if len(types) > 0 {
			s.nearbyTypes = types
		}
	}
}

// New creates a query Service over the given store.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:       st,
		nearbyTypes: defaultNearbyTypes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search resolves a free-text term into at most 12 ranked airport
// summaries. Terms shorter than two characters return an empty list
// without touching the store.
func (s *Service) Search(ctx context.Context, rawTerm string) ([]AirportSummary, error) {
	term, ok := NormalizeTerm(rawTerm)
	if !ok {
		return []AirportSummary{}, nil
	}

	cands, err := s.store.SearchCandidates(ctx, term.Code, term.Text)
	if err != nil {
		return nil, upstream("search candidates", err)
	}

	ranked := rankCandidates(cands, term)
	out := make([]AirportSummary, 0, len(ranked))
	for i := range ranked {
		out = append(out, assembleSummary(&ranked[i].cand.Airport))
	}
	return out, nil
}

// Nearby returns the closest airports to a point, ascending by
// great-circle distance. The limit is clamped into [1, 20] with a default
// of 12; invalid coordinates are a validation error, never an empty
// success.
func (s *Service) Nearby(ctx context.Context, lat, lon float64, limit int) ([]AirportDistance, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	limit = ClampLimit(limit, nearbyDefaultLimit, 1, nearbyMaxLimit)

	airports, err := s.store.ListLocated(ctx, s.nearbyTypes)
	if err != nil {
		return nil, upstream("list located", err)
	}

	origin := geom.Coord{lon, lat}
	out := make([]AirportDistance, 0, len(airports))
	seen := make(map[int64]bool, len(airports))
	for i := range airports {
		a := &airports[i]
		if !a.HasCoordinates() || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, AirportDistance{
			AirportSummary: assembleSummary(a),
			Latitude:       *a.Latitude,
			Longitude:      *a.Longitude,
			DistanceKm:     Haversine(origin, geom.Coord{*a.Longitude, *a.Latitude}),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListByCountry returns a bounded faceted listing plus country-wide
// aggregate counts. The listing and the counts run concurrently; counts
// always cover the unfiltered country set.
func (s *Service) ListByCountry(ctx context.Context, req CountryRequest) (*CountryListing, error) {
	filter, err := buildCountryFilter(req)
	if err != nil {
		return nil, err
	}

	var (
		airports []model.Airport
		counts   *store.CountryCounts
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.store.ListByCountry(gctx, filter)
		if err != nil {
			return upstream("list by country", err)
		}
		airports = rows
		return nil
	})
	g.Go(func() error {
		c, err := s.store.CountByCountry(gctx, filter.Country)
		if err != nil {
			return upstream("count by country", err)
		}
		counts = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	listing := &CountryListing{
		Items: make([]AirportListing, 0, len(airports)),
		Counts: Counts{
			Total:       counts.Total,
			Large:       counts.Large,
			Medium:      counts.Medium,
			Small:       counts.Small,
			Heli:        counts.Heliport,
			ILSVerified: counts.ILSVerified,
		},
	}
	seen := make(map[int64]bool, len(airports))
	for i := range airports {
		a := &airports[i]
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		listing.Items = append(listing.Items, assembleListing(a))
	}
	return listing, nil
}

// Get looks up one airport by exact ident (case-insensitive) and attaches
// its runways, frequencies, and associated navaids.
func (s *Service) Get(ctx context.Context, rawIdent string) (*AirportDetail, error) {
	term, ok := NormalizeTerm(rawIdent)
	if !ok {
		return nil, validationf("airport ident is required")
	}

	airport, err := s.store.GetAirport(ctx, term.Code)
	if err != nil {
		return nil, upstream("get airport", err)
	}
	if airport == nil {
		return nil, &NotFoundError{Ident: term.Code}
	}

	var (
		runways []model.Runway
		freqs   []model.Frequency
		navaids []model.Navaid
		assocs  []model.ILSAssociation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if runways, err = s.store.ListRunways(gctx, airport.Ident); err != nil {
			return upstream("list runways", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if freqs, err = s.store.ListFrequencies(gctx, airport.Ident); err != nil {
			return upstream("list frequencies", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if navaids, err = s.store.ListNavaids(gctx, airport.Ident); err != nil {
			return upstream("list navaids", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if assocs, err = s.store.ListILS(gctx, airport.Ident); err != nil {
			return upstream("list ils", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ils := make(map[string]bool, len(assocs))
	for _, a := range assocs {
		ils[a.RunwayIdent] = true
	}
	return assembleDetail(airport, runways, freqs, navaids, ils), nil
}
