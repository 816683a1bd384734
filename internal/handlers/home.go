package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blaemedia/alx-project-nexus/internal/api"
	"github.com/blaemedia/alx-project-nexus/internal/catalog"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const bestSellingCount = 8

type HomeHandler struct {
	*Pages
	Catalog *catalog.Fetcher
}

// Index shows the category strip and best sellers. Either section renders
// empty when its fetch fails.
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.Categories(r.Context())
	if err != nil {
		logger.Error(r.Context(), "Error fetching categories", err)
	}
	best, err := h.Catalog.BestSelling(r.Context(), bestSellingCount)
	if err != nil {
		logger.Error(r.Context(), "Error fetching best selling products", err)
	}

	h.render(w, r, http.StatusOK, "home.html", map[string]interface{}{
		"Categories":  categories,
		"BestSelling": best,
	})
}

func (h *HomeHandler) Shop(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	result, err := h.Catalog.Products(r.Context(), catalog.ProductQuery{
		Search: r.URL.Query().Get("search"),
		Page:   page,
	})
	loadFailed := false
	if err != nil {
		logger.Error(r.Context(), "Error fetching products", err, zap.String("search", result.Search))
		loadFailed = true
	}

	h.render(w, r, http.StatusOK, "shop.html", map[string]interface{}{
		"Page":       result,
		"LoadFailed": loadFailed,
	})
}

func (h *HomeHandler) Product(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	product, err := h.Catalog.Product(r.Context(), id)
	if errors.Is(err, api.ErrNotFound) {
		h.render(w, r, http.StatusNotFound, "not_found.html", nil)
		return
	}
	if err != nil {
		logger.Error(r.Context(), "Error fetching product", err, zap.Int("product", id))
		http.Error(w, "Error fetching product", http.StatusBadGateway)
		return
	}

	h.render(w, r, http.StatusOK, "product.html", map[string]interface{}{
		"Product": product,
	})
}
