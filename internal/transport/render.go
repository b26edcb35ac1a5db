package transport

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFiles returns the embedded /static assets.
func StaticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

const placeholderImage = "/static/img/bottle.svg"

var templateFuncs = template.FuncMap{
	"rating": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatFloat(*v, 'f', 1, 64)
	},
	"vintage": func(v *int) string {
		if v == nil {
			return "NV"
		}
		return strconv.Itoa(*v)
	},
	"imageURL": func(path *string) string {
		if path == nil || *path == "" {
			return placeholderImage
		}
		return "/images/" + *path
	},
	"add": func(a, b int) int { return a + b },
}

var pages = []string{"home", "catalog", "recommend", "wine", "dashboard", "error"}

// renderer executes the page templates. Each page is parsed together with
// the shared layout.
type renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

func newRenderer(logger *zap.Logger) (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pages)), logger: logger}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// render writes a page, buffering it so a template failure still produces
// a clean 500.
func (r *renderer) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := r.pages[page]
	if !ok {
		r.logger.Error("Unknown page template", zap.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("Failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorPage struct {
	Title   string
	Status  int
	Message string
}

func (r *renderer) renderError(w http.ResponseWriter, status int, message string) {
	r.render(w, status, "error", errorPage{Title: http.StatusText(status), Status: status, Message: message})
}
