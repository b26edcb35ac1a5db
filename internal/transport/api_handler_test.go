package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wine-cellar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *testHandlers, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestAPIRecommendFiltersByType(t *testing.T) {
	h := newTestRouter()

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/recommend?type=White&min_rating=4", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var wines []*domain.Wine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wines))
	require.Len(t, wines, 1)
	assert.Equal(t, "Chablis Premier Cru", wines[0].Name)
	assert.Equal(t, domain.WineFilter{Type: "White", MinRating: 4}, h.catalog.lastFilter)
}

func TestAPIRecommendReturnsEmptyArray(t *testing.T) {
	h := newTestRouter()

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/recommend?type=Rose", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestAPIRecommendRejectsBadRating(t *testing.T) {
	h := newTestRouter()

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/recommend?min_rating=great", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIDashboardDataAcceptsPortugueseParameters(t *testing.T) {
	h := newTestRouter()
	h.dashboard.data = &domain.DashboardData{
		KPIs:      domain.KPIs{TotalWines: 3, TotalCountries: 1, DominantType: "Red"},
		TypeChart: domain.TypeChart{Labels: []string{"Red"}, Data: []int{3}},
	}

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/dashboard-data?pais=Chile&qualidade=4.5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Chile", h.dashboard.lastCountry)
	assert.Equal(t, 4.5, h.dashboard.lastRating)
	assert.JSONEq(t,
		`{"kpis":{"total_wines":3,"total_countries":1,"dominant_type":"Red"},"type_chart":{"labels":["Red"],"data":[3]}}`,
		w.Body.String())
}

func TestAPIDashboardDataFailure(t *testing.T) {
	h := newTestRouter()
	h.dashboard.err = errBackendDown

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/dashboard-data", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to load dashboard data")
}

func TestAPIWineMap(t *testing.T) {
	h := newTestRouter()
	h.dashboard.mapData = &domain.MapData{
		CountryData: map[string]domain.CountryDensity{"CHL": {FillKey: "wine_count_5", NumberOfWines: 7}},
		MaxCount:    7,
	}

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/wine-map", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"country_data":{"CHL":{"fillKey":"wine_count_5","numberOfWines":7}},"max_count":7}`, w.Body.String())
}

func TestAPIGetWine(t *testing.T) {
	h := newTestRouter()

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/wines/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"image_path":"almaviva_2018.jpg"`)

	w = serve(h, httptest.NewRequest(http.MethodGet, "/api/wines/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(h, httptest.NewRequest(http.MethodGet, "/api/wines/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPICommentsRoundTrip(t *testing.T) {
	h := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/wines/1/comments", strings.NewReader(`{"text":"  Great with lamb  "}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(h, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Great with lamb", created.Text)
	assert.Equal(t, int64(1), created.WineID)

	w = serve(h, httptest.NewRequest(http.MethodGet, "/api/wines/1/comments", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var listed []domain.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestAPIListCommentsEmptyAndMissingWine(t *testing.T) {
	h := newTestRouter()

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/wines/2/comments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = serve(h, httptest.NewRequest(http.MethodGet, "/api/wines/42/comments", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIAddCommentValidation(t *testing.T) {
	h := newTestRouter()

	tests := []struct {
		name string
		body string
		code int
	}{
		{"blank text", `{"text":"   "}`, http.StatusBadRequest},
		{"missing text", `{}`, http.StatusBadRequest},
		{"malformed json", `{"text":`, http.StatusBadRequest},
		{"too long", `{"text":"` + strings.Repeat("a", 2001) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h, httptest.NewRequest(http.MethodPost, "/api/wines/1/comments", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, w.Code)
		})
	}
	assert.Empty(t, h.comments.comments[1])
}

func TestAPIAddCommentUnknownWine(t *testing.T) {
	h := newTestRouter()

	w := serve(h, httptest.NewRequest(http.MethodPost, "/api/wines/77/comments", strings.NewReader(`{"text":"hello"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIOptions(t *testing.T) {
	h := newTestRouter()

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/options", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"types":["Red","White"],"countries":["Chile","France"]}`, w.Body.String())
}
