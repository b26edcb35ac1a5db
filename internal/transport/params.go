package transport

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wine-cellar/internal/domain"

	"github.com/go-chi/chi/v5"
)

var (
	errInvalidID        = errors.New("invalid wine id")
	errInvalidMinRating = errors.New("min_rating must be a number")
	errInvalidPage      = errors.New("page must be a number")
)

func wineID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// firstValue returns the first non-empty value among the given keys.
func firstValue(values url.Values, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

func parseRating(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errInvalidMinRating
	}
	return rating, nil
}

// recommendFilter reads the recommendation criteria from a query string or
// a submitted form.
func recommendFilter(values url.Values) (domain.WineFilter, error) {
	rating, err := parseRating(firstValue(values, "min_rating"))
	if err != nil {
		return domain.WineFilter{}, err
	}
	return domain.WineFilter{
		Type:      firstValue(values, "type"),
		Grape:     firstValue(values, "grape"),
		MinRating: rating,
		Country:   firstValue(values, "country"),
	}, nil
}

func parsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidPage
	}
	return page, nil
}
