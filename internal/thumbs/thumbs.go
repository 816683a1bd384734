package thumbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/cache"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultWidth = 320
	MinWidth     = 32
	MaxWidth     = 800

	maxSourceBytes  = 10 << 20
	maxSourcePixels = 24_000_000
)

var (
	ErrForeignSource = errors.New("thumbs: source is not backend media")
	ErrFetch         = errors.New("thumbs: fetch source image")
	ErrDecode        = errors.New("thumbs: decode source image")
)

// Origin decides which URLs may be fetched.
type Origin interface {
	ResolveImage(src string) string
	IsBackendURL(u string) bool
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Service serves JPEG thumbnails of backend media images.
type Service struct {
	origin Origin
	client *resty.Client
	cache   Cache
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
}

func NewService(origin Origin, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		origin:  origin,
		client:  resty.New().SetTimeout(timeout).SetRetryCount(0),
		timeout: timeout,
	}
}

// WithCache keeps encoded thumbnails in c for ttl.
func (s *Service) WithCache(c Cache, ttl time.Duration) *Service {
	s.cache = c
	s.ttl = ttl
	return s
}

// ClampWidth maps a requested width into the served range; 0 means default.
func ClampWidth(w int) uint {
	switch {
	case w <= 0:
		return DefaultWidth
	case w < MinWidth:
		return MinWidth
	case w > MaxWidth:
		return MaxWidth
	}
	return uint(w)
}

// Thumbnail returns src scaled down to width as JPEG. Images already narrower
// than width are re-encoded without upscaling.
func (s *Service) Thumbnail(ctx context.Context, src string, width int) ([]byte, error) {
	u := s.origin.ResolveImage(src)
	if !s.origin.IsBackendURL(u) {
		return nil, ErrForeignSource
	}
	w := ClampWidth(width)
	key := "thumb:" + strconv.Itoa(int(w)) + ":" + u

	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn(ctx, "Thumbnail cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	// The render is shared by every caller of key, so it outlives any one of them.
	ch := s.group.DoChan(key, func() (any, error) {
		renderCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.render(renderCtx, u, w)
	})
	var data []byte
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		data = res.Val.([]byte)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			logger.Warn(ctx, "Thumbnail cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return data, nil
}

func (s *Service) render(ctx context.Context, u string, w uint) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(u)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode())
	}

	raw, err := io.ReadAll(io.LimitReader(body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds the pixel limit", ErrDecode, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if uint(img.Bounds().Dx()) > w {
		img = resize.Resize(w, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
