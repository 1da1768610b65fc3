package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/airport-lookup/internal/model"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func i64Ptr(i int64) *int64     { return &i }

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedAirports(t *testing.T, st *SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	_, err := st.ReplaceAirports(ctx, []model.Airport{
		{
			ID: 1, Ident: "LOWW", Type: model.TypeLargeAirport,
			Name: "Vienna International Airport", Municipality: strPtr("Vienna"),
			ISOCountry: "AT", ISORegion: "AT-9", Continent: "EU",
			Latitude: f64Ptr(48.1103), Longitude: f64Ptr(16.5697),
			ElevationFt: i64Ptr(600), IATACode: strPtr("VIE"),
			ScheduledService: true,
		},
		{
			ID: 2, Ident: "LOWS", Type: model.TypeMediumAirport,
			Name: "Salzburg Airport", Municipality: strPtr("Salzburg"),
			ISOCountry: "AT", ISORegion: "AT-5", Continent: "EU",
			Latitude: f64Ptr(47.7933), Longitude: f64Ptr(13.0043),
			ScheduledService: true,
		},
		{
			ID: 3, Ident: "AT-0001", Type: model.TypeHeliport,
			Name: "Hospital Helipad",
			ISOCountry: "AT", ISORegion: "AT-9", Continent: "EU",
		},
		{
			ID: 4, Ident: "LSZH", Type: model.TypeLargeAirport,
			Name: "Zurich Airport", Municipality: strPtr("Zurich"),
			ISOCountry: "CH", ISORegion: "CH-ZH", Continent: "EU",
			Latitude: f64Ptr(47.4581), Longitude: f64Ptr(8.5492),
			IATACode: strPtr("ZRH"), ScheduledService: true,
		},
	})
	require.NoError(t, err)

	_, err = st.ReplaceRegions(ctx, []model.Region{
		{ID: 1, Code: "AT-9", Name: "Vienna", ISOCountry: "AT"},
		{ID: 2, Code: "AT-5", Name: "Salzburg", ISOCountry: "AT"},
		{ID: 3, Code: "CH-ZH", Name: "Zurich", ISOCountry: "CH"},
	})
	require.NoError(t, err)

	_, err = st.ReplaceCountries(ctx, []model.Country{
		{ID: 1, Code: "AT", Name: "Austria", Continent: "EU"},
		{ID: 2, Code: "CH", Name: "Switzerland", Continent: "EU"},
	})
	require.NoError(t, err)
}

// --- GetAirport ---

func TestSQLite_GetAirport_Roundtrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	a, err := st.GetAirport(context.Background(), "LOWW")
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, model.TypeLargeAirport, a.Type)
	assert.Equal(t, "Vienna International Airport", a.Name)
	assert.Equal(t, "VIE", *a.IATACode)
	assert.Equal(t, 48.1103, *a.Latitude)
	assert.Equal(t, int64(600), *a.ElevationFt)
	assert.True(t, a.ScheduledService)
	assert.Nil(t, a.GPSCode)
	assert.Nil(t, a.Keywords)
}

func TestSQLite_GetAirport_NullsSurvive(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	a, err := st.GetAirport(context.Background(), "AT-0001")
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Nil(t, a.Latitude)
	assert.Nil(t, a.Longitude)
	assert.Nil(t, a.ElevationFt)
	assert.Nil(t, a.Municipality)
	assert.Nil(t, a.IATACode)
	assert.False(t, a.ScheduledService)
}

func TestSQLite_GetAirport_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	a, err := st.GetAirport(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Nil(t, a)
}

// --- SearchCandidates ---

func searchIdents(t *testing.T, st *SQLiteStore, code, text string) []string {
	t.Helper()
	cands, err := st.SearchCandidates(context.Background(), code, text)
	require.NoError(t, err)
	idents := make([]string, 0, len(cands))
	for _, c := range cands {
		idents = append(idents, c.Ident)
	}
	return idents
}

func TestSQLite_SearchCandidates_ByIdent(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	assert.Contains(t, searchIdents(t, st, "LOWW", "LOWW"), "LOWW")
}

func TestSQLite_SearchCandidates_ByIATA(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	assert.Contains(t, searchIdents(t, st, "ZRH", "ZRH"), "LSZH")
}

func TestSQLite_SearchCandidates_ByPrefix(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	idents := searchIdents(t, st, "LOW", "LOW")
	assert.Contains(t, idents, "LOWW")
	assert.Contains(t, idents, "LOWS")
	assert.NotContains(t, idents, "LSZH")
}

func TestSQLite_SearchCandidates_ByMunicipality(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	assert.Contains(t, searchIdents(t, st, "VIENNA", "vienna"), "LOWW")
}

func TestSQLite_SearchCandidates_UnicodeText(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.ReplaceAirports(ctx, []model.Airport{{
		ID: 10, Ident: "LSZH", Type: model.TypeLargeAirport,
		Name: "Flughafen Zürich", Municipality: strPtr("Zürich"),
		ISOCountry: "CH", ISORegion: "CH-ZH", Continent: "EU",
	}})
	require.NoError(t, err)

	// SQLite's UPPER() leaves ü untouched, so these can only match through
	// the original-cased pattern.
	assert.Contains(t, searchIdents(t, st, "ZÜRICH", "Zürich"), "LSZH")
	assert.Contains(t, searchIdents(t, st, "FLUGHAFEN ZÜRICH", "Flughafen Zürich"), "LSZH")
}

func TestSQLite_SearchCandidates_ByCountryName(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	idents := searchIdents(t, st, "AUSTRIA", "Austria")
	assert.Contains(t, idents, "LOWW")
	assert.Contains(t, idents, "LOWS")
	assert.NotContains(t, idents, "LSZH")
}

func TestSQLite_SearchCandidates_JoinsReferenceNames(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	cands, err := st.SearchCandidates(context.Background(), "LOWW", "LOWW")
	require.NoError(t, err)
	require.Len(t, cands, 1)

	require.NotNil(t, cands[0].RegionName)
	assert.Equal(t, "Vienna", *cands[0].RegionName)
	require.NotNil(t, cands[0].CountryName)
	assert.Equal(t, "Austria", *cands[0].CountryName)
}

func TestSQLite_SearchCandidates_WildcardsAreLiteral(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	// A bare % would otherwise match every row.
	idents := searchIdents(t, st, "%%", "%%")
	assert.Empty(t, idents)

	idents = searchIdents(t, st, "__", "__")
	assert.Empty(t, idents)
}

// --- ListLocated ---

func TestSQLite_ListLocated(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	airports, err := st.ListLocated(context.Background(),
		[]model.AirportType{model.TypeLargeAirport, model.TypeMediumAirport})
	require.NoError(t, err)

	idents := make([]string, 0, len(airports))
	for _, a := range airports {
		idents = append(idents, a.Ident)
		assert.NotNil(t, a.Latitude)
		assert.NotNil(t, a.Longitude)
	}
	assert.ElementsMatch(t, []string{"LOWW", "LOWS", "LSZH"}, idents)
}

func TestSQLite_ListLocated_SingleType(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	airports, err := st.ListLocated(context.Background(), []model.AirportType{model.TypeMediumAirport})
	require.NoError(t, err)

	require.Len(t, airports, 1)
	assert.Equal(t, "LOWS", airports[0].Ident)
}

func TestSQLite_ListLocated_NoTypes(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.ListLocated(context.Background(), nil)
	assert.Error(t, err)
}

// --- ListByCountry / CountByCountry ---

func TestSQLite_ListByCountry_TypeFacet(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	airports, err := st.ListByCountry(context.Background(), CountryFilter{
		Country: "AT", Type: model.TypeLargeAirport, Limit: 500,
	})
	require.NoError(t, err)

	require.Len(t, airports, 1)
	assert.Equal(t, "LOWW", airports[0].Ident)
}

func TestSQLite_ListByCountry_RegionFacet(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	airports, err := st.ListByCountry(context.Background(), CountryFilter{
		Country: "AT", Type: model.TypeHeliport, Region: "AT-9", Limit: 500,
	})
	require.NoError(t, err)

	require.Len(t, airports, 1)
	assert.Equal(t, "AT-0001", airports[0].Ident)
}

func TestSQLite_ListByCountry_ILSFacet(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)
	ctx := context.Background()

	_, err := st.UpsertILS(ctx, []model.ILSAssociation{{AirportIdent: "LOWW", RunwayIdent: "16"}})
	require.NoError(t, err)

	airports, err := st.ListByCountry(ctx, CountryFilter{
		Country: "AT", Type: model.TypeLargeAirport, ILSOnly: true, Limit: 500,
	})
	require.NoError(t, err)
	require.Len(t, airports, 1)
	assert.Equal(t, "LOWW", airports[0].Ident)

	// Salzburg has no ILS rows, so the medium facet with ILS comes back empty.
	airports, err = st.ListByCountry(ctx, CountryFilter{
		Country: "AT", Type: model.TypeMediumAirport, ILSOnly: true, Limit: 500,
	})
	require.NoError(t, err)
	assert.Empty(t, airports)
}

func TestSQLite_ListByCountry_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	airports, err := st.ListByCountry(context.Background(), CountryFilter{
		Country: "AT", Limit: 1,
	})
	require.NoError(t, err)
	assert.Len(t, airports, 1)
}

func TestSQLite_CountByCountry(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)
	ctx := context.Background()

	_, err := st.UpsertILS(ctx, []model.ILSAssociation{
		{AirportIdent: "LOWW", RunwayIdent: "16"},
		{AirportIdent: "LOWW", RunwayIdent: "34"},
	})
	require.NoError(t, err)

	counts, err := st.CountByCountry(ctx, "AT")
	require.NoError(t, err)

	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, 1, counts.Large)
	assert.Equal(t, 1, counts.Medium)
	assert.Equal(t, 0, counts.Small)
	assert.Equal(t, 1, counts.Heliport)
	// Two runways on one airport still count one ILS-verified airport.
	assert.Equal(t, 1, counts.ILSVerified)
}

func TestSQLite_CountByCountry_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)

	counts, err := st.CountByCountry(context.Background(), "ZZ")
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Total)
	assert.Equal(t, 0, counts.ILSVerified)
}

// --- Associated tables ---

func TestSQLite_ListRunways(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)
	ctx := context.Background()

	_, err := st.ReplaceRunways(ctx, []model.Runway{
		{ID: 10, AirportRef: 1, AirportIdent: "LOWW", LEIdent: strPtr("16"), HEIdent: strPtr("34"),
			LengthFt: i64Ptr(11811), Surface: strPtr("ASP"), Lighted: true},
		{ID: 11, AirportRef: 1, AirportIdent: "LOWW", LEIdent: strPtr("11"), HEIdent: strPtr("29"),
			LengthFt: i64Ptr(11483), Lighted: true},
		{ID: 12, AirportRef: 4, AirportIdent: "LSZH", LEIdent: strPtr("14"), HEIdent: strPtr("32")},
	})
	require.NoError(t, err)

	runways, err := st.ListRunways(ctx, "LOWW")
	require.NoError(t, err)

	require.Len(t, runways, 2)
	// Ordered by low-end ident.
	assert.Equal(t, "11", *runways[0].LEIdent)
	assert.Equal(t, "16", *runways[1].LEIdent)
	assert.True(t, runways[0].Lighted)
	assert.False(t, runways[0].Closed)
	assert.Nil(t, runways[1].WidthFt)
}

func TestSQLite_ListFrequencies(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)
	ctx := context.Background()

	_, err := st.ReplaceFrequencies(ctx, []model.Frequency{
		{ID: 20, AirportRef: 1, AirportIdent: "LOWW", Type: "TWR",
			Description: strPtr("Wien Tower"), FrequencyMhz: f64Ptr(121.2)},
		{ID: 21, AirportRef: 1, AirportIdent: "LOWW", Type: "ATIS", FrequencyMhz: f64Ptr(122.95)},
	})
	require.NoError(t, err)

	freqs, err := st.ListFrequencies(ctx, "LOWW")
	require.NoError(t, err)

	require.Len(t, freqs, 2)
	assert.Equal(t, "ATIS", freqs[0].Type)
	assert.Nil(t, freqs[0].Description)
	assert.Equal(t, "Wien Tower", *freqs[1].Description)
}

func TestSQLite_ListNavaids(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)
	ctx := context.Background()

	_, err := st.ReplaceNavaids(ctx, []model.Navaid{
		{ID: 30, Ident: "FMD", Name: "Fischamend", Type: "VOR-DME",
			FrequencyKhz: i64Ptr(110600), AssociatedAirport: strPtr("LOWW")},
		{ID: 31, Ident: "TRN", Name: "Trasadingen", Type: "VOR", AssociatedAirport: strPtr("LSZH")},
	})
	require.NoError(t, err)

	navaids, err := st.ListNavaids(ctx, "LOWW")
	require.NoError(t, err)

	require.Len(t, navaids, 1)
	assert.Equal(t, "FMD", navaids[0].Ident)
	assert.Equal(t, int64(110600), *navaids[0].FrequencyKhz)
}

// --- ILS upsert ---

func TestSQLite_UpsertILS_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)
	ctx := context.Background()

	assocs := []model.ILSAssociation{
		{AirportIdent: "LOWW", RunwayIdent: "16"},
		{AirportIdent: "LOWW", RunwayIdent: "34"},
	}

	n, err := st.UpsertILS(ctx, assocs)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = st.UpsertILS(ctx, assocs)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	got, err := st.ListILS(ctx, "LOWW")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "16", got[0].RunwayIdent)
	assert.Equal(t, "34", got[1].RunwayIdent)
}

// --- Replace semantics ---

func TestSQLite_ReplaceAirports_DropsOldRows(t *testing.T) {
	st := newTestSQLiteStore(t)
	seedAirports(t, st)
	ctx := context.Background()

	n, err := st.ReplaceAirports(ctx, []model.Airport{
		{ID: 99, Ident: "EGLL", Type: model.TypeLargeAirport, Name: "Heathrow Airport",
			ISOCountry: "GB", ISORegion: "GB-ENG", Continent: "EU"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	old, err := st.GetAirport(ctx, "LOWW")
	require.NoError(t, err)
	assert.Nil(t, old)

	replaced, err := st.GetAirport(ctx, "EGLL")
	require.NoError(t, err)
	require.NotNil(t, replaced)
	assert.Equal(t, int64(99), replaced.ID)
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Migrate(context.Background()))
}
