package query

import (
	"math"
	"strings"

	"github.com/sells-group/airport-lookup/internal/model"
)

// Output DTOs. Every optional attribute is a pointer so it serializes as
// an explicit JSON null, never an absent field. Strings are trimmed and
// blank values collapse to null; numeric fields are finite or null.

// AirportSummary is one search result.
type AirportSummary struct {
	Ident        string  `json:"ident"`
	IATACode     *string `json:"iata_code"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Municipality *string `json:"municipality"`
	ISOCountry   string  `json:"iso_country"`
	ISORegion    string  `json:"iso_region"`
}

// AirportDistance is one proximity result.
type AirportDistance struct {
	AirportSummary
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
}

// AirportListing is one row of a faceted country listing.
type AirportListing struct {
	Ident            string   `json:"ident"`
	IATACode         *string  `json:"iata_code"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Municipality     *string  `json:"municipality"`
	ISORegion        string   `json:"iso_region"`
	ScheduledService bool     `json:"scheduled_service"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	ElevationFt      *int64   `json:"elevation_ft"`
}

// Counts are country-level aggregates, computed over the unfiltered
// country set regardless of applied facets.
type Counts struct {
	Total       int `json:"total"`
	Large       int `json:"large"`
	Medium      int `json:"medium"`
	Small       int `json:"small"`
	Heli        int `json:"heli"`
	ILSVerified int `json:"ils_verified"`
}

// CountryListing is the faceted listing response.
type CountryListing struct {
	Items  []AirportListing `json:"items"`
	Counts Counts           `json:"counts"`
}

// RunwayInfo is one runway of an airport detail.
type RunwayInfo struct {
	LEIdent   *string  `json:"le_ident"`
	HEIdent   *string  `json:"he_ident"`
	LengthFt  *int64   `json:"length_ft"`
	WidthFt   *int64   `json:"width_ft"`
	Surface   *string  `json:"surface"`
	Lighted   bool     `json:"lighted"`
	Closed    bool     `json:"closed"`
	HasILS    bool     `json:"has_ils"`
	LEHeading *float64 `json:"le_heading_deg_t"`
	HEHeading *float64 `json:"he_heading_deg_t"`
}

// FrequencyInfo is one published frequency of an airport detail.
type FrequencyInfo struct {
	Type         string   `json:"type"`
	Description  *string  `json:"description"`
	FrequencyMhz *float64 `json:"frequency_mhz"`
}

// NavaidInfo is one navaid associated with an airport.
type NavaidInfo struct {
	Ident        string   `json:"ident"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	FrequencyKhz *int64   `json:"frequency_khz"`
	DMEChannel   *string  `json:"dme_channel"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// AirportDetail is the single-airport lookup response.
type AirportDetail struct {
	AirportSummary
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`
	ElevationFt   *int64          `json:"elevation_ft"`
	Continent     string          `json:"continent"`
	GPSCode       *string         `json:"gps_code"`
	LocalCode     *string         `json:"local_code"`
	HomeLink      *string         `json:"home_link"`
	WikipediaLink *string         `json:"wikipedia_link"`
	Keywords      *string         `json:"keywords"`
	Runways       []RunwayInfo    `json:"runways"`
	Frequencies   []FrequencyInfo `json:"frequencies"`
	Navaids       []NavaidInfo    `json:"navaids"`
}

func assembleSummary(a *model.Airport) AirportSummary {
	return AirportSummary{
		Ident:        strings.TrimSpace(a.Ident),
		IATACode:     cleanString(a.IATACode),
		Name:         strings.TrimSpace(a.Name),
		Type:         string(a.Type),
		Municipality: cleanString(a.Municipality),
		ISOCountry:   strings.TrimSpace(a.ISOCountry),
		ISORegion:    strings.TrimSpace(a.ISORegion),
	}
}

func assembleListing(a *model.Airport) AirportListing {
	return AirportListing{
		Ident:            strings.TrimSpace(a.Ident),
		IATACode:         cleanString(a.IATACode),
		Name:             strings.TrimSpace(a.Name),
		Type:             string(a.Type),
		Municipality:     cleanString(a.Municipality),
		ISORegion:        strings.TrimSpace(a.ISORegion),
		ScheduledService: a.ScheduledService,
		Latitude:         cleanFloat(a.Latitude),
		Longitude:        cleanFloat(a.Longitude),
		ElevationFt:      a.ElevationFt,
	}
}

func assembleDetail(a *model.Airport, runways []model.Runway, freqs []model.Frequency, navaids []model.Navaid, ils map[string]bool) *AirportDetail {
	d := &AirportDetail{
		AirportSummary: assembleSummary(a),
		Latitude:       cleanFloat(a.Latitude),
		Longitude:      cleanFloat(a.Longitude),
		ElevationFt:    a.ElevationFt,
		Continent:      strings.TrimSpace(a.Continent),
		GPSCode:        cleanString(a.GPSCode),
		LocalCode:      cleanString(a.LocalCode),
		HomeLink:       cleanString(a.HomeLink),
		WikipediaLink:  cleanString(a.WikipediaLink),
		Keywords:       cleanString(a.Keywords),
		Runways:        make([]RunwayInfo, 0, len(runways)),
		Frequencies:    make([]FrequencyInfo, 0, len(freqs)),
		Navaids:        make([]NavaidInfo, 0, len(navaids)),
	}

	for i := range runways {
		r := &runways[i]
		hasILS := false
		if r.LEIdent != nil && ils[*r.LEIdent] {
			hasILS = true
		}
		if r.HEIdent != nil && ils[*r.HEIdent] {
			hasILS = true
		}
		d.Runways = append(d.Runways, RunwayInfo{
			LEIdent:   cleanString(r.LEIdent),
			HEIdent:   cleanString(r.HEIdent),
			LengthFt:  r.LengthFt,
			WidthFt:   r.WidthFt,
			Surface:   cleanString(r.Surface),
			Lighted:   r.Lighted,
			Closed:    r.Closed,
			HasILS:    hasILS,
			LEHeading: cleanFloat(r.LEHeadingDegT),
			HEHeading: cleanFloat(r.HEHeadingDegT),
		})
	}

	for i := range freqs {
		f := &freqs[i]
		d.Frequencies = append(d.Frequencies, FrequencyInfo{
			Type:         strings.TrimSpace(f.Type),
			Description:  cleanString(f.Description),
			FrequencyMhz: cleanFloat(f.FrequencyMhz),
		})
	}

	for i := range navaids {
		n := &navaids[i]
		d.Navaids = append(d.Navaids, NavaidInfo{
			Ident:        strings.TrimSpace(n.Ident),
			Name:         strings.TrimSpace(n.Name),
			Type:         strings.TrimSpace(n.Type),
			FrequencyKhz: n.FrequencyKhz,
			DMEChannel:   cleanString(n.DMEChannel),
			Latitude:     cleanFloat(n.Latitude),
			Longitude:    cleanFloat(n.Longitude),
		})
	}

	return d
}

// cleanString trims and converts blank to null.
func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// cleanFloat converts non-finite values to null.
func cleanFloat(f *float64) *float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	return f
}
