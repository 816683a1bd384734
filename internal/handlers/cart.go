package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/blaemedia/alx-project-nexus/internal/cart"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"go.uber.org/zap"
)

type CartHandler struct {
	*Pages
	Reconciler *cart.Reconciler
	Aggregator *cart.Aggregator
	Badge      cart.BadgePolicy
}

// localPath keeps redirects on this site.
func localPath(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

// Add puts one unit of a product in the cart and returns to the page the
// visitor came from.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	next := localPath(r.FormValue("next"), "/shop")
	sess := CurrentSession(r)
	if !sess.Authenticated() {
		h.redirect(w, r, "/signin", "error", "Please login to add items to cart")
		return
	}

	productID := formInt(r, "product_id")
	_, err := h.Reconciler.AddToCart(r.Context(), sess, productID)
	if h.unauthorized(w, r, err) {
		return
	}
	if err != nil {
		logger.Error(r.Context(), "Failed to add to cart", err, zap.Int("product", productID))
		h.redirect(w, r, next, "error", "Failed to add to cart. Try again.")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = "Item"
	}
	h.redirect(w, r, next, "success", name+" added to cart")
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	sess := CurrentSession(r)
	if !sess.Authenticated() {
		h.render(w, r, http.StatusOK, "cart.html", map[string]interface{}{
			"LoginRequired": true,
		})
		return
	}

	view, err := h.Aggregator.Load(r.Context(), sess)
	if h.unauthorized(w, r, err) {
		return
	}
	data := map[string]interface{}{"Cart": view}
	if err != nil {
		logger.Error(r.Context(), "Failed to load cart", err)
		data["LoadError"] = "Failed to load cart. Please try again."
	}
	h.render(w, r, http.StatusOK, "cart.html", data)
}

// Update sets a line's quantity.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess := CurrentSession(r)
	if !sess.Authenticated() {
		h.redirect(w, r, "/signin", "error", "Please login to manage your cart")
		return
	}

	lineID := formInt(r, "line_id")
	err := h.Reconciler.SetQuantity(r.Context(), sess, lineID, formInt(r, "product_id"), formInt(r, "quantity"))
	if h.unauthorized(w, r, err) {
		return
	}
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		h.redirect(w, r, "/cart", "error", "Quantity must be at least 1.")
	case err != nil:
		logger.Error(r.Context(), "Failed to update cart line", err, zap.Int("line", lineID))
		h.redirect(w, r, "/cart", "error", "Failed to update quantity. Please try again.")
	default:
		h.redirect(w, r, "/cart", "", "")
	}
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess := CurrentSession(r)
	if !sess.Authenticated() {
		h.redirect(w, r, "/signin", "error", "Please login to manage your cart")
		return
	}

	lineID := formInt(r, "line_id")
	err := h.Aggregator.RemoveLine(r.Context(), sess, lineID)
	if h.unauthorized(w, r, err) {
		return
	}
	if err != nil {
		logger.Error(r.Context(), "Failed to remove cart line", err, zap.Int("line", lineID))
		h.redirect(w, r, "/cart", "error", "Failed to remove item. Please try again.")
		return
	}
	h.redirect(w, r, "/cart", "success", "Item removed from cart")
}

// Clear removes every line and renders the emptied cart directly, whatever
// the individual deletes returned.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess := CurrentSession(r)
	if !sess.Authenticated() {
		h.redirect(w, r, "/signin", "error", "Please login to manage your cart")
		return
	}

	view, failed, err := h.Aggregator.RemoveAll(r.Context(), sess)
	if h.unauthorized(w, r, err) {
		return
	}

	c := h.Sessions.Cookie(r)
	switch {
	case err != nil || failed > 0:
		logger.Warn(r.Context(), "Cart not fully cleared", zap.Int("failed", failed), zap.Error(err))
		c.AddFlash(FlashMessage{Type: "error", Message: "Failed to remove all items. Please try again."})
	default:
		c.AddFlash(FlashMessage{Type: "success", Message: "All items have been removed from your cart"})
	}
	h.render(w, r, http.StatusOK, "cart.html", map[string]interface{}{"Cart": view})
}

type countResponse struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// Count feeds the nav badge.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	n, err := h.Reconciler.Count(r.Context(), CurrentSession(r))
	n, err = h.Badge.Resolve(r.Context(), n, err)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	resp := countResponse{Count: n}
	if err != nil {
		resp.Error = "unavailable"
		w.WriteHeader(http.StatusBadGateway)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error(r.Context(), "Failed to write cart count", err)
	}
}
