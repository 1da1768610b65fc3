package query

import (
	"strings"

	"github.com/sells-group/airport-lookup/internal/model"
	"github.com/sells-group/airport-lookup/internal/store"
)

// countryLimit bounds the faceted listing.
const countryLimit = 500

// CountryRequest carries the faceted listing input. Country is mandatory;
// the rest are independently omittable.
type CountryRequest struct {
	Country string
	Type    string
	Region  string
	ILSOnly bool
}

// buildCountryFilter validates the request and composes the store filter.
// The type facet accepts exactly one value and defaults to large_airport;
// every optional predicate stays a parameterized unit in the store layer,
// never interpolated text.
func buildCountryFilter(req CountryRequest) (store.CountryFilter, error) {
	country := upperCaser.String(strings.TrimSpace(req.Country))
	if country == "" {
		return store.CountryFilter{}, validationf("country code is required")
	}

	typ := model.TypeLargeAirport
	if t := strings.TrimSpace(req.Type); t != "" {
		typ = model.AirportType(strings.ToLower(t))
		if !model.ValidAirportType(typ) {
			return store.CountryFilter{}, validationf("unsupported airport type %q", req.Type)
		}
	}

	return store.CountryFilter{
		Country: country,
		Type:    typ,
		Region:  upperCaser.String(strings.TrimSpace(req.Region)),
		ILSOnly: req.ILSOnly,
		Limit:   countryLimit,
	}, nil
}
