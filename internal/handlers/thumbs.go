package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/thumbs"
	"go.uber.org/zap"
)

type ThumbHandler struct {
	Thumbs *thumbs.Service
}

func (h *ThumbHandler) Serve(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	width, _ := strconv.Atoi(r.URL.Query().Get("w"))

	data, err := h.Thumbs.Thumbnail(r.Context(), src, width)
	switch {
	case errors.Is(err, thumbs.ErrForeignSource):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case errors.Is(err, thumbs.ErrFetch), errors.Is(err, thumbs.ErrDecode):
		logger.Warn(r.Context(), "Thumbnail unavailable", zap.String("src", src), zap.Error(err))
		http.NotFound(w, r)
		return
	case err != nil:
		logger.Error(r.Context(), "Thumbnail failed", err, zap.String("src", src))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
