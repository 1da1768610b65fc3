package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/airport-lookup/internal/model"
)

func TestBuildCountryFilter_Defaults(t *testing.T) {
	filter, err := buildCountryFilter(CountryRequest{Country: "at"})
	require.NoError(t, err)

	assert.Equal(t, "AT", filter.Country)
	assert.Equal(t, model.TypeLargeAirport, filter.Type)
	assert.Empty(t, filter.Region)
	assert.False(t, filter.ILSOnly)
	assert.Equal(t, countryLimit, filter.Limit)
}

func TestBuildCountryFilter_AllFacets(t *testing.T) {
	filter, err := buildCountryFilter(CountryRequest{
		Country: " us ",
		Type:    "Medium_Airport",
		Region:  "us-ny",
		ILSOnly: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "US", filter.Country)
	assert.Equal(t, model.TypeMediumAirport, filter.Type)
	assert.Equal(t, "US-NY", filter.Region)
	assert.True(t, filter.ILSOnly)
}

func TestBuildCountryFilter_MissingCountry(t *testing.T) {
	_, err := buildCountryFilter(CountryRequest{})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = buildCountryFilter(CountryRequest{Country: "   "})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestBuildCountryFilter_BadType(t *testing.T) {
	_, err := buildCountryFilter(CountryRequest{Country: "AT", Type: "mega_airport"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "mega_airport")
}
