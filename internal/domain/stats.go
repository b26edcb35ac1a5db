package domain

// TypeCount is the number of wines of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// CountryCount is the number of wines from one country.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// Totals summarizes a filtered set of wines.
type Totals struct {
	Wines     int
	Countries int
}

// KPIs backs the dashboard cards.
type KPIs struct {
	TotalWines     int    `json:"total_wines"`
	TotalCountries int    `json:"total_countries"`
	DominantType   string `json:"dominant_type"`
}

// TypeChart is the doughnut chart series.
type TypeChart struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// DashboardData is the payload of the dashboard endpoint.
type DashboardData struct {
	KPIs      KPIs      `json:"kpis"`
	TypeChart TypeChart `json:"type_chart"`
}

// CountryDensity is one shaded country on the choropleth.
type CountryDensity struct {
	FillKey       string `json:"fillKey"`
	NumberOfWines int    `json:"numberOfWines"`
}

// MapData maps ISO3 country codes to density buckets.
type MapData struct {
	CountryData map[string]CountryDensity `json:"country_data"`
	MaxCount    int                       `json:"max_count"`
}
