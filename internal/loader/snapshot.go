// Package loader imports a catalog snapshot into the store.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"wine-cellar/internal/domain"
)

var ErrMissingWines = errors.New(`snapshot has no "wines" key`)

// Snapshot is the JSON catalog file: {"wines": [...]}.
type Snapshot struct {
	Wines []Record
}

// BuyerRating is the nested rating block of a record.
type BuyerRating struct {
	Average      *float64 `json:"average"`
	ReviewsCount *int     `json:"reviews_count"`
}

// Record is one wine as it appears in the snapshot. Every field may be
// absent.
type Record struct {
	Rank           *int         `json:"rank"`
	Name           *string      `json:"name"`
	Country        *string      `json:"country"`
	Region         *string      `json:"region"`
	GrapeVarieties []string     `json:"grape_varieties"`
	Vintage        *int         `json:"vintage"`
	Type           *string      `json:"type"`
	AlcoholABV     *float64     `json:"alcohol_abv"`
	VolumeML       *int         `json:"volume_ml"`
	Description    *string      `json:"description"`
	BuyerRating    *BuyerRating `json:"buyer_rating"`
}

// ReadSnapshot parses the snapshot file at path.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return ParseSnapshot(f)
}

// ParseSnapshot decodes a snapshot. A document without a "wines" key is an
// error; an empty list is not.
func ParseSnapshot(r io.Reader) (*Snapshot, error) {
	var raw struct {
		Wines *[]Record `json:"wines"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if raw.Wines == nil {
		return nil, ErrMissingWines
	}
	return &Snapshot{Wines: *raw.Wines}, nil
}

// Wine converts the record into a catalog entry. It reports false when the
// record has no usable name.
func (r Record) Wine() (*domain.Wine, bool) {
	if r.Name == nil || strings.TrimSpace(*r.Name) == "" {
		return nil, false
	}

	wine := &domain.Wine{
		Rank:           r.Rank,
		Name:           strings.TrimSpace(*r.Name),
		Country:        r.Country,
		Region:         r.Region,
		GrapeVarieties: grapes(r.GrapeVarieties),
		Vintage:        r.Vintage,
		Type:           r.Type,
		AlcoholABV:     r.AlcoholABV,
		VolumeML:       r.VolumeML,
		Description:    r.Description,
	}
	if r.BuyerRating != nil {
		wine.AverageRating = r.BuyerRating.Average
		wine.ReviewsCount = r.BuyerRating.ReviewsCount
	}
	return wine, true
}

func grapes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, g := range in {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
