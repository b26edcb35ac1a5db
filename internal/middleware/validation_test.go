package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteRequest struct {
	Text   string  `json:"text" validate:"required,notblank,max=2000"`
	Rating float64 `json:"rating" validate:"gte=0,lte=5"`
}

// Blank text fails validation with a readable message
func TestProperty_BlankTextIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("whitespace-only text is reported as required", prop.ForAll(
		func(text string) bool {
			err := ValidateRequest(&noteRequest{Text: text})
			if err == nil {
				return false
			}
			errs := FormatValidationErrors(err)
			return len(errs) == 1 && errs[0].Field == "Text" && errs[0].Message == "This field is required"
		},
		gen.RegexMatch(`[ \t]{0,8}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Valid requests pass validation
func TestProperty_ValidRequestsPassValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("non-blank text with rating in range passes", prop.ForAll(
		func(text string, rating float64) bool {
			return ValidateRequest(&noteRequest{Text: text, Rating: rating}) == nil
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z ]{0,40}`),
		gen.Float64Range(0, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors_Range(t *testing.T) {
	err := ValidateRequest(&noteRequest{Text: "ok", Rating: 7})
	require.Error(t, err)

	errs := FormatValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "Rating", errs[0].Field)
	assert.Equal(t, "Value must be less than or equal to 5", errs[0].Message)
}

func TestDecodeAndValidate(t *testing.T) {
	var req noteRequest
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"text":"lovely","rating":4.5}`))
	require.NoError(t, DecodeAndValidate(r, &req))
	assert.Equal(t, "lovely", req.Text)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"text":`))
	assert.Error(t, DecodeAndValidate(r, &req))

	assert.Empty(t, FormatValidationErrors(assert.AnError))
}
