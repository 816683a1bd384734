package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"sync"

	"github.com/blaemedia/alx-project-nexus/internal/catalog"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const partialsGlob = "partials/*.html"

// cardData is what the product_card partial receives: the card plus what its
// add-to-cart form needs from the page.
type cardData struct {
	Card interface{}
	Csrf template.HTML
	Next string
}

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: make(template.FuncMap),
	}
}

func (tc *TemplateCache) AddFunc(name string, fn interface{}) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// AddDisplayFuncs registers the money, image and thumb helpers used by cards.
func (tc *TemplateCache) AddDisplayFuncs(d *catalog.Display) {
	tc.AddFunc("money", func(amount decimal.Decimal) string { return d.Money(amount) })
	tc.AddFunc("image", func(src string) string { return d.Image(src) })
	tc.AddFunc("thumb", func(src string, width int) string {
		if !d.IsBackendURL(src) {
			return src
		}
		return "/thumb?src=" + url.QueryEscape(src) + "&w=" + strconv.Itoa(width)
	})
}

// Load parses every *.html page in fsys together with the shared partials.
func (tc *TemplateCache) Load(fsys fs.FS) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.funcs["prevPage"] = func(currentPage int) int {
		return currentPage - 1
	}
	tc.funcs["nextPage"] = func(currentPage int) int {
		return currentPage + 1
	}
	tc.funcs["card"] = func(card interface{}, csrfField template.HTML, next string) cardData {
		return cardData{Card: card, Csrf: csrfField, Next: next}
	}

	partials, err := fs.Glob(fsys, partialsGlob)
	if err != nil {
		return err
	}
	pages, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no templates found")
	}

	for _, page := range pages {
		name := path.Base(page)
		files := append([]string{page}, partials...)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, files...)
		if err != nil {
			logger.Log.Error("Failed to parse template", zap.String("file", page), zap.Error(err))
			return err
		}
		tc.cache[name] = tmpl
		logger.Log.Debug("Cached template", zap.String("name", name))
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// Render executes name into a buffer first so a failing template never
// leaves a half-written page.
func (tc *TemplateCache) Render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	tmpl := tc.Get(name)
	if tmpl == nil {
		logger.Error(r.Context(), "Template not found", nil, zap.String("name", name))
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logger.Error(r.Context(), "Failed to render template", err, zap.String("name", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
