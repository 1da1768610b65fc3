package store

import (
	"context"

	"github.com/sells-group/airport-lookup/internal/model"
)

// CountryFilter specifies the predicate set for a faceted country listing.
// Country is mandatory; the optional facets are ANDed onto the base
// predicate as independent parameterized clauses.
type CountryFilter struct {
	Country string
	Type    model.AirportType
	Region  string
	ILSOnly bool
	Limit   int
}

// CountryCounts are aggregates over the unfiltered country set.
type CountryCounts struct {
	Total       int
	Large       int
	Medium      int
	Small       int
	Heliport    int
	ILSVerified int
}

// Store is the read contract of the query layer plus the bulk-load
// operations used by the import commands. The query engines only ever
// read; writes happen offline.
type Store interface {
	// Reads
	GetAirport(ctx context.Context, ident string) (*model.Airport, error)
	SearchCandidates(ctx context.Context, code, text string) ([]model.SearchCandidate, error)
	ListLocated(ctx context.Context, types []model.AirportType) ([]model.Airport, error)
	ListByCountry(ctx context.Context, filter CountryFilter) ([]model.Airport, error)
	CountByCountry(ctx context.Context, country string) (*CountryCounts, error)
	ListRunways(ctx context.Context, airportIdent string) ([]model.Runway, error)
	ListFrequencies(ctx context.Context, airportIdent string) ([]model.Frequency, error)
	ListNavaids(ctx context.Context, airportIdent string) ([]model.Navaid, error)
	ListILS(ctx context.Context, airportIdent string) ([]model.ILSAssociation, error)

	// Bulk load (import commands only)
	ReplaceAirports(ctx context.Context, airports []model.Airport) (int64, error)
	ReplaceRunways(ctx context.Context, runways []model.Runway) (int64, error)
	ReplaceFrequencies(ctx context.Context, freqs []model.Frequency) (int64, error)
	ReplaceNavaids(ctx context.Context, navaids []model.Navaid) (int64, error)
	ReplaceCountries(ctx context.Context, countries []model.Country) (int64, error)
	ReplaceRegions(ctx context.Context, regions []model.Region) (int64, error)
	UpsertILS(ctx context.Context, assocs []model.ILSAssociation) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
