package domain

import (
	"strings"
	"time"
)

// Wine represents a catalog entry. Nullable columns are pointers so an
// omitted source value stays distinguishable from a zero value.
type Wine struct {
	ID             int64     `json:"id" db:"id"`
	Rank           *int      `json:"rank" db:"rank"`
	Name           string    `json:"name" db:"name"`
	Country        *string   `json:"country" db:"country"`
	Region         *string   `json:"region" db:"region"`
	GrapeVarieties []string  `json:"grape_varieties" db:"-"`
	Vintage        *int      `json:"vintage" db:"vintage"`
	Type           *string   `json:"type" db:"type"`
	AlcoholABV     *float64  `json:"alcohol_abv" db:"alcohol_abv"`
	VolumeML       *int      `json:"volume_ml" db:"volume_ml"`
	Description    *string   `json:"description" db:"description"`
	AverageRating  *float64  `json:"average_rating" db:"average_rating"`
	ReviewsCount   *int      `json:"reviews_count" db:"reviews_count"`
	ImagePath      *string   `json:"image_path" db:"image_path"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Comment is a free-text note left on a wine's detail page
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	WineID    int64     `json:"wine_id" db:"wine_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WineFilter narrows catalog reads. Zero-valued fields are ignored.
type WineFilter struct {
	Type      string
	Grape     string
	MinRating float64
	Country   string
	Search    string
}

// Page is one slice of the rank-ordered catalog.
type Page struct {
	Wines      []*Wine `json:"wines"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	Total      int     `json:"total"`
	TotalPages int     `json:"total_pages"`
}

// HasPrev reports whether a previous page exists.
func (p *Page) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p *Page) HasNext() bool { return p.Page < p.TotalPages }

// FilterOptions lists the distinct values offered by the search forms.
type FilterOptions struct {
	Types     []string `json:"types"`
	Countries []string `json:"countries"`
}

// DisplayGrapes joins the grape varieties for presentation.
func (w *Wine) DisplayGrapes() string {
	return strings.Join(w.GrapeVarieties, ", ")
}
