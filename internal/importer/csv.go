package importer

import (
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/airport-lookup/internal/model"
)

// CSV row shapes mirror the published OurAirports headers. Optional
// columns are pointers so blank fields decode to nil instead of zero.

type airportRow struct {
	ID               int64    `csv:"id"`
	Ident            string   `csv:"ident"`
	Type             string   `csv:"type"`
	Name             string   `csv:"name"`
	LatitudeDeg      *float64 `csv:"latitude_deg"`
	LongitudeDeg     *float64 `csv:"longitude_deg"`
	ElevationFt      *int64   `csv:"elevation_ft"`
	Continent        string   `csv:"continent"`
	ISOCountry       string   `csv:"iso_country"`
	ISORegion        string   `csv:"iso_region"`
	Municipality     *string  `csv:"municipality"`
	ScheduledService string   `csv:"scheduled_service"`
	GPSCode          *string  `csv:"gps_code"`
	IATACode         *string  `csv:"iata_code"`
	LocalCode        *string  `csv:"local_code"`
	HomeLink         *string  `csv:"home_link"`
	WikipediaLink    *string  `csv:"wikipedia_link"`
	Keywords         *string  `csv:"keywords"`
}

type runwayRow struct {
	ID            int64    `csv:"id"`
	AirportRef    int64    `csv:"airport_ref"`
	AirportIdent  string   `csv:"airport_ident"`
	LengthFt      *int64   `csv:"length_ft"`
	WidthFt       *int64   `csv:"width_ft"`
	Surface       *string  `csv:"surface"`
	Lighted       string   `csv:"lighted"`
	Closed        string   `csv:"closed"`
	LEIdent       *string  `csv:"le_ident"`
	LEHeadingDegT *float64 `csv:"le_heading_degT"`
	HEIdent       *string  `csv:"he_ident"`
	HEHeadingDegT *float64 `csv:"he_heading_degT"`
}

type frequencyRow struct {
	ID           int64    `csv:"id"`
	AirportRef   int64    `csv:"airport_ref"`
	AirportIdent string   `csv:"airport_ident"`
	Type         string   `csv:"type"`
	Description  *string  `csv:"description"`
	FrequencyMhz *float64 `csv:"frequency_mhz"`
}

type navaidRow struct {
	ID                int64    `csv:"id"`
	Ident             string   `csv:"ident"`
	Name              string   `csv:"name"`
	Type              string   `csv:"type"`
	FrequencyKhz      *int64   `csv:"frequency_khz"`
	LatitudeDeg       *float64 `csv:"latitude_deg"`
	LongitudeDeg      *float64 `csv:"longitude_deg"`
	ElevationFt       *int64   `csv:"elevation_ft"`
	DMEFrequencyKhz   *int64   `csv:"dme_frequency_khz"`
	DMEChannel        *string  `csv:"dme_channel"`
	AssociatedAirport *string  `csv:"associated_airport"`
}

type countryRow struct {
	ID        int64  `csv:"id"`
	Code      string `csv:"code"`
	Name      string `csv:"name"`
	Continent string `csv:"continent"`
}

type regionRow struct {
	ID         int64  `csv:"id"`
	Code       string `csv:"code"`
	LocalCode  string `csv:"local_code"`
	Name       string `csv:"name"`
	Continent  string `csv:"continent"`
	ISOCountry string `csv:"iso_country"`
}

type ilsRow struct {
	AirportIdent string `csv:"airport_ident"`
	RunwayIdent  string `csv:"runway_ident"`
}

func parseAirports(data []byte) ([]model.Airport, error) {
	var rows []airportRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "importer: decode airports csv")
	}

	airports := make([]model.Airport, 0, len(rows))
	for _, r := range rows {
		airports = append(airports, model.Airport{
			ID:               r.ID,
			Ident:            r.Ident,
			Type:             model.AirportType(r.Type),
			Name:             r.Name,
			Latitude:         r.LatitudeDeg,
			Longitude:        r.LongitudeDeg,
			ElevationFt:      r.ElevationFt,
			Continent:        r.Continent,
			ISOCountry:       r.ISOCountry,
			ISORegion:        r.ISORegion,
			Municipality:     r.Municipality,
			ScheduledService: r.ScheduledService == "yes",
			IATACode:         r.IATACode,
			GPSCode:          r.GPSCode,
			LocalCode:        r.LocalCode,
			HomeLink:         r.HomeLink,
			WikipediaLink:    r.WikipediaLink,
			Keywords:         r.Keywords,
		})
	}
	return airports, nil
}

func parseRunways(data []byte) ([]model.Runway, error) {
	var rows []runwayRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "importer: decode runways csv")
	}

	runways := make([]model.Runway, 0, len(rows))
	for _, r := range rows {
		runways = append(runways, model.Runway{
			ID:            r.ID,
			AirportRef:    r.AirportRef,
			AirportIdent:  r.AirportIdent,
			LengthFt:      r.LengthFt,
			WidthFt:       r.WidthFt,
			Surface:       r.Surface,
			Lighted:       r.Lighted == "1",
			Closed:        r.Closed == "1",
			LEIdent:       r.LEIdent,
			LEHeadingDegT: r.LEHeadingDegT,
			HEIdent:       r.HEIdent,
			HEHeadingDegT: r.HEHeadingDegT,
		})
	}
	return runways, nil
}

func parseFrequencies(data []byte) ([]model.Frequency, error) {
	var rows []frequencyRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "importer: decode frequencies csv")
	}

	freqs := make([]model.Frequency, 0, len(rows))
	for _, r := range rows {
		freqs = append(freqs, model.Frequency{
			ID:           r.ID,
			AirportRef:   r.AirportRef,
			AirportIdent: r.AirportIdent,
			Type:         r.Type,
			Description:  r.Description,
			FrequencyMhz: r.FrequencyMhz,
		})
	}
	return freqs, nil
}

func parseNavaids(data []byte) ([]model.Navaid, error) {
	var rows []navaidRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "importer: decode navaids csv")
	}

	navaids := make([]model.Navaid, 0, len(rows))
	for _, r := range rows {
		navaids = append(navaids, model.Navaid{
			ID:                r.ID,
			Ident:             r.Ident,
			Name:              r.Name,
			Type:              r.Type,
			FrequencyKhz:      r.FrequencyKhz,
			Latitude:          r.LatitudeDeg,
			Longitude:         r.LongitudeDeg,
			ElevationFt:       r.ElevationFt,
			DMEFrequencyKhz:   r.DMEFrequencyKhz,
			DMEChannel:        r.DMEChannel,
			AssociatedAirport: r.AssociatedAirport,
		})
	}
	return navaids, nil
}

func parseCountries(data []byte) ([]model.Country, error) {
	var rows []countryRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "importer: decode countries csv")
	}

	countries := make([]model.Country, 0, len(rows))
	for _, r := range rows {
		countries = append(countries, model.Country{
			ID:        r.ID,
			Code:      r.Code,
			Name:      r.Name,
			Continent: r.Continent,
		})
	}
	return countries, nil
}

func parseRegions(data []byte) ([]model.Region, error) {
	var rows []regionRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "importer: decode regions csv")
	}

	regions := make([]model.Region, 0, len(rows))
	for _, r := range rows {
		regions = append(regions, model.Region{
			ID:         r.ID,
			Code:       r.Code,
			LocalCode:  r.LocalCode,
			Name:       r.Name,
			Continent:  r.Continent,
			ISOCountry: r.ISOCountry,
		})
	}
	return regions, nil
}

func parseILS(data []byte) ([]model.ILSAssociation, error) {
	var rows []ilsRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrap(err, "importer: decode ils csv")
	}

	// Duplicate pairs within one file would make the Postgres upsert hit
	// the same conflict row twice, which aborts the statement.
	seen := make(map[model.ILSAssociation]bool, len(rows))
	assocs := make([]model.ILSAssociation, 0, len(rows))
	for _, r := range rows {
		if r.AirportIdent == "" || r.RunwayIdent == "" {
			continue
		}
		a := model.ILSAssociation{
			AirportIdent: r.AirportIdent,
			RunwayIdent:  r.RunwayIdent,
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		assocs = append(assocs, a)
	}
	return assocs, nil
}
