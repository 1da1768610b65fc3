// Package importer loads the published OurAirports dataset snapshot and
// the ILS enrichment file into the store. It is the offline write side;
// the query layer never mutates anything.
package importer

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/airport-lookup/internal/model"
	"github.com/sells-group/airport-lookup/internal/store"
)

// Dataset file names as published upstream.
const (
	FileAirports    = "airports.csv"
	FileRunways     = "runways.csv"
	FileFrequencies = "frequencies.csv"
	FileNavaids     = "navaids.csv"
	FileCountries   = "countries.csv"
	FileRegions     = "regions.csv"
)

// Fetcher downloads one dataset file.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Importer orchestrates dataset loads.
type Importer struct {
	store   store.Store
	fetcher Fetcher
	baseURL string
}

// New creates an Importer downloading from baseURL.
func New(st store.Store, f Fetcher, baseURL string) *Importer {
	return &Importer{store: st, fetcher: f, baseURL: baseURL}
}

// Result summarizes one import run.
type Result struct {
	Countries   int64
	Regions     int64
	Airports    int64
	Runways     int64
	Frequencies int64
	Navaids     int64
}

// ImportAll downloads and loads every dataset table. Reference data loads
// first, then airports, then the tables that reference them; runways and
// frequencies pointing at unknown airports are dropped with a warning so
// the airport_ref invariant holds.
func (im *Importer) ImportAll(ctx context.Context) (*Result, error) {
	res := &Result{}

	countries, err := im.fetchCountries(ctx)
	if err != nil {
		return nil, err
	}
	if res.Countries, err = im.store.ReplaceCountries(ctx, countries); err != nil {
		return nil, eris.Wrap(err, "importer: load countries")
	}

	regions, err := im.fetchRegions(ctx)
	if err != nil {
		return nil, err
	}
	if res.Regions, err = im.store.ReplaceRegions(ctx, regions); err != nil {
		return nil, eris.Wrap(err, "importer: load regions")
	}

	airports, err := im.fetchAirports(ctx)
	if err != nil {
		return nil, err
	}
	if res.Airports, err = im.store.ReplaceAirports(ctx, airports); err != nil {
		return nil, eris.Wrap(err, "importer: load airports")
	}

	known := make(map[int64]bool, len(airports))
	for i := range airports {
		known[airports[i].ID] = true
	}

	runways, err := im.fetchRunways(ctx)
	if err != nil {
		return nil, err
	}
	runways = filterRunways(runways, known)
	if res.Runways, err = im.store.ReplaceRunways(ctx, runways); err != nil {
		return nil, eris.Wrap(err, "importer: load runways")
	}

	freqs, err := im.fetchFrequencies(ctx)
	if err != nil {
		return nil, err
	}
	freqs = filterFrequencies(freqs, known)
	if res.Frequencies, err = im.store.ReplaceFrequencies(ctx, freqs); err != nil {
		return nil, eris.Wrap(err, "importer: load frequencies")
	}

	navaids, err := im.fetchNavaids(ctx)
	if err != nil {
		return nil, err
	}
	if res.Navaids, err = im.store.ReplaceNavaids(ctx, navaids); err != nil {
		return nil, eris.Wrap(err, "importer: load navaids")
	}

	zap.L().Info("dataset import complete",
		zap.Int64("airports", res.Airports),
		zap.Int64("runways", res.Runways),
		zap.Int64("frequencies", res.Frequencies),
		zap.Int64("navaids", res.Navaids),
		zap.Int64("countries", res.Countries),
		zap.Int64("regions", res.Regions),
	)
	return res, nil
}

// ImportILS upserts ILS associations from a local CSV file with
// airport_ident and runway_ident columns.
func (im *Importer) ImportILS(ctx context.Context, path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, eris.Wrapf(err, "importer: read %s", path)
	}

	assocs, err := parseILS(data)
	if err != nil {
		return 0, err
	}

	n, err := im.store.UpsertILS(ctx, assocs)
	if err != nil {
		return 0, eris.Wrap(err, "importer: upsert ils")
	}
	zap.L().Info("ils import complete", zap.Int64("upserted", n), zap.Int("rows", len(assocs)))
	return n, nil
}

func (im *Importer) fetchAirports(ctx context.Context) ([]model.Airport, error) {
	data, err := im.fetcher.Fetch(ctx, im.baseURL+"/"+FileAirports)
	if err != nil {
		return nil, err
	}
	return parseAirports(data)
}

func (im *Importer) fetchRunways(ctx context.Context) ([]model.Runway, error) {
	data, err := im.fetcher.Fetch(ctx, im.baseURL+"/"+FileRunways)
	if err != nil {
		return nil, err
	}
	return parseRunways(data)
}

func (im *Importer) fetchFrequencies(ctx context.Context) ([]model.Frequency, error) {
	data, err := im.fetcher.Fetch(ctx, im.baseURL+"/"+FileFrequencies)
	if err != nil {
		return nil, err
	}
	return parseFrequencies(data)
}

func (im *Importer) fetchNavaids(ctx context.Context) ([]model.Navaid, error) {
	data, err := im.fetcher.Fetch(ctx, im.baseURL+"/"+FileNavaids)
	if err != nil {
		return nil, err
	}
	return parseNavaids(data)
}

func (im *Importer) fetchCountries(ctx context.Context) ([]model.Country, error) {
	data, err := im.fetcher.Fetch(ctx, im.baseURL+"/"+FileCountries)
	if err != nil {
		return nil, err
	}
	return parseCountries(data)
}

func (im *Importer) fetchRegions(ctx context.Context) ([]model.Region, error) {
	data, err := im.fetcher.Fetch(ctx, im.baseURL+"/"+FileRegions)
	if err != nil {
		return nil, err
	}
	return parseRegions(data)
}

func filterRunways(runways []model.Runway, known map[int64]bool) []model.Runway {
	kept := runways[:0]
	for _, r := range runways {
		if !known[r.AirportRef] {
			zap.L().Warn("dropping runway with unknown airport ref",
				zap.Int64("runway_id", r.ID),
				zap.Int64("airport_ref", r.AirportRef),
			)
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func filterFrequencies(freqs []model.Frequency, known map[int64]bool) []model.Frequency {
	kept := freqs[:0]
	for _, f := range freqs {
		if !known[f.AirportRef] {
			zap.L().Warn("dropping frequency with unknown airport ref",
				zap.Int64("frequency_id", f.ID),
				zap.Int64("airport_ref", f.AirportRef),
			)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
