package service

// countryISO3 maps the country names used in the catalog data to the ISO
// 3166-1 alpha-3 codes expected by the choropleth. Countries missing from
// the table are left off the map.
var countryISO3 = map[string]string{
	"Argentina":     "ARG",
	"Australia":     "AUS",
	"Austria":       "AUT",
	"Brazil":        "BRA",
	"Canada":        "CAN",
	"Chile":         "CHL",
	"France":        "FRA",
	"Germany":       "DEU",
	"Greece":        "GRC",
	"Hungary":       "HUN",
	"Israel":        "ISR",
	"Italy":         "ITA",
	"Lebanon":       "LBN",
	"New Zealand":   "NZL",
	"Portugal":      "PRT",
	"South Africa":  "ZAF",
	"Spain":         "ESP",
	"United States": "USA",
	"USA":           "USA",
	"Uruguay":       "URY",
}

// ISO3 returns the map code for a country name.
func ISO3(country string) (string, bool) {
	code, ok := countryISO3[country]
	return code, ok
}
