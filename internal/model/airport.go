package model

// AirportType is the OurAirports airport classification.
type AirportType string

const (
	TypeLargeAirport  AirportType = "large_airport"
	TypeMediumAirport AirportType = "medium_airport"
	TypeSmallAirport  AirportType = "small_airport"
	TypeHeliport      AirportType = "heliport"
	TypeClosed        AirportType = "closed"
	TypeSeaplaneBase  AirportType = "seaplane_base"
	TypeBalloonport   AirportType = "balloonport"
)

// ValidAirportType reports whether t is a known airport type.
func ValidAirportType(t AirportType) bool {
	switch t {
	case TypeLargeAirport, TypeMediumAirport, TypeSmallAirport,
		TypeHeliport, TypeClosed, TypeSeaplaneBase, TypeBalloonport:
		return true
	}
	return false
}

// Airport is one row of the airports table. Optional columns are pointers
// so a NULL survives the round trip instead of collapsing to a zero value.
type Airport struct {
	ID               int64
	Ident            string
	Type             AirportType
	Name             string
	Latitude         *float64
	Longitude        *float64
	ElevationFt      *int64
	Continent        string
	ISOCountry       string
	ISORegion        string
	Municipality     *string
	ScheduledService bool
	IATACode         *string
	GPSCode          *string
	LocalCode        *string
	HomeLink         *string
	WikipediaLink    *string
	Keywords         *string
}

// HasCoordinates reports whether both latitude and longitude are present.
func (a *Airport) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// SearchCandidate is an airport row joined with the reference names the
// ranking predicates need (region and country, matched by code or name).
type SearchCandidate struct {
	Airport
	RegionName  *string
	CountryName *string
}
