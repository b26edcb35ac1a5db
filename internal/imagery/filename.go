package imagery

import (
	"regexp"
	"strconv"
	"strings"

	"wine-cellar/internal/domain"
)

// NoVintage stands in for a missing vintage in file names and queries.
const NoVintage = "nv"

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// FileName derives the stored image name for a wine. The mapping is pure:
// two wines whose names share a skeleton and vintage share a file.
func FileName(name string, vintage *int) string {
	skeleton := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "_")
	return skeleton + "_" + vintageLabel(vintage) + ".jpg"
}

func vintageLabel(vintage *int) string {
	if vintage == nil {
		return NoVintage
	}
	return strconv.Itoa(*vintage)
}

// Query builds the image search phrase for a wine.
func Query(wine *domain.Wine) string {
	var b strings.Builder
	b.WriteString(wine.Name)
	if wine.Vintage != nil {
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(*wine.Vintage))
	}
	b.WriteString(" wine bottle")
	return b.String()
}
