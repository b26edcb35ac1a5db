package transport

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	page, err := parsePage("")
	assert.NoError(t, err)
	assert.Equal(t, 1, page)

	_, err = parsePage("1.5")
	assert.ErrorIs(t, err, errInvalidPage)
}

func TestFirstValuePrefersEarlierKeys(t *testing.T) {
	values := url.Values{"country": {" "}, "pais": {"Chile"}}
	assert.Equal(t, "Chile", firstValue(values, "country", "pais"))

	values.Set("country", "Italy")
	assert.Equal(t, "Italy", firstValue(values, "country", "pais"))
	assert.Equal(t, "", firstValue(values, "missing"))
}

// Any integer page number survives the query string
func TestProperty_ParsePageRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("parsePage returns the formatted integer", prop.ForAll(
		func(n int) bool {
			page, err := parsePage(strconv.Itoa(n))
			return err == nil && page == n
		},
		gen.IntRange(-1000, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Recommendation criteria are read back exactly, with whitespace trimmed
func TestProperty_RecommendFilterReadsCriteria(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("type, grape and rating are preserved", prop.ForAll(
		func(wineType, grape string, rating float64) bool {
			values := url.Values{
				"type":       {" " + wineType + " "},
				"grape":      {grape},
				"min_rating": {strconv.FormatFloat(rating, 'f', -1, 64)},
			}
			filter, err := recommendFilter(values)
			return err == nil &&
				filter.Type == wineType &&
				filter.Grape == grape &&
				filter.MinRating == rating
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.Float64Range(0, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
