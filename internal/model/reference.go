package model

// Runway is one row of the runways table. Each row describes a full strip
// with its two ends (low-end / high-end idents and headings).
type Runway struct {
	ID            int64
	AirportRef    int64
	AirportIdent  string
	LengthFt      *int64
	WidthFt       *int64
	Surface       *string
	Lighted       bool
	Closed        bool
	LEIdent       *string
	LEHeadingDegT *float64
	HEIdent       *string
	HEHeadingDegT *float64
}

// Frequency is one published radio frequency for an airport.
type Frequency struct {
	ID           int64
	AirportRef   int64
	AirportIdent string
	Type         string
	Description  *string
	FrequencyMhz *float64
}

// Navaid is a radio navigation aid, optionally associated with an airport
// by ident.
type Navaid struct {
	ID                int64
	Ident             string
	Name              string
	Type              string
	FrequencyKhz      *int64
	Latitude          *float64
	Longitude         *float64
	ElevationFt       *int64
	DMEFrequencyKhz   *int64
	DMEChannel        *string
	AssociatedAirport *string
}

// Country is code/name/continent reference data.
type Country struct {
	ID        int64
	Code      string
	Name      string
	Continent string
}

// Region is an ISO 3166-2 subdivision.
type Region struct {
	ID         int64
	Code       string
	LocalCode  string
	Name       string
	Continent  string
	ISOCountry string
}

// ILSAssociation records that a runway end has an instrument landing
// system. Unique on (AirportIdent, RunwayIdent); the query layer consumes
// it only as an existence signal.
type ILSAssociation struct {
	AirportIdent string
	RunwayIdent  string
}
