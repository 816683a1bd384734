package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/cache"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultPageSize = 12

const defaultFlightTimeout = 30 * time.Second

type Backend interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Products(ctx context.Context, search string) ([]models.Product, error)
	Product(ctx context.Context, id int) (*models.ProductDetail, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type CategoryCard struct {
	ID    int
	Name  string
	Slug  string
	Image string
}

type ProductCard struct {
	ID       int
	Name     string
	Title    string
	Price    string
	RawPrice string
	Image    string
	InStock  bool
}

type GalleryImage struct {
	URL     string
	Alt     string
	Primary bool
}

type ProductView struct {
	ProductCard
	Description string
	Promotion   string
	Gallery     []GalleryImage
}

type ProductQuery struct {
	Search string
	Page   int
}

type ProductPage struct {
	Products   []ProductCard
	Search     string
	Page       int
	TotalPages int
	Total      int
}

func (p ProductPage) HasPrev() bool { return p.Page > 1 }
func (p ProductPage) HasNext() bool { return p.Page < p.TotalPages }

// Fetcher reads the catalog and maps it to cards.
type Fetcher struct {
	backend  Backend
	display  *Display
	cache    Cache
	ttl      time.Duration
	pageSize int
	timeout  time.Duration
	group    singleflight.Group
}

type Option func(*Fetcher)

// WithCache caches category and product listings for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.cache = c
		f.ttl = ttl
	}
}

func WithPageSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// WithTimeout bounds a shared backend call once no caller is waiting on it.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func NewFetcher(b Backend, d *Display, opts ...Option) *Fetcher {
	f := &Fetcher{backend: b, display: d, pageSize: DefaultPageSize, timeout: defaultFlightTimeout}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Display() *Display { return f.display }

func (f *Fetcher) Categories(ctx context.Context) ([]CategoryCard, error) {
	cats, err := cached(ctx, f, "categories", func(ctx context.Context) ([]models.Category, error) {
		return f.backend.Categories(ctx)
	})
	if err != nil {
		return []CategoryCard{}, fmt.Errorf("load categories: %w", err)
	}

	cards := make([]CategoryCard, 0, len(cats))
	for _, c := range cats {
		cards = append(cards, CategoryCard{
			ID:    c.ID,
			Name:  c.Name,
			Slug:  c.Slug,
			Image: f.display.Image(c.ImageURL, c.CatThumbnail),
		})
	}
	return cards, nil
}

func (f *Fetcher) products(ctx context.Context, search string) ([]models.Product, error) {
	search = strings.TrimSpace(search)
	return cached(ctx, f, "products:"+strings.ToLower(search), func(ctx context.Context) ([]models.Product, error) {
		return f.backend.Products(ctx, search)
	})
}

// Products returns one page of product cards. Out-of-range pages are clamped.
func (f *Fetcher) Products(ctx context.Context, q ProductQuery) (ProductPage, error) {
	page := ProductPage{Products: []ProductCard{}, Search: strings.TrimSpace(q.Search), Page: 1, TotalPages: 1}

	items, err := f.products(ctx, q.Search)
	if err != nil {
		return page, fmt.Errorf("load products: %w", err)
	}

	page.Total = len(items)
	page.TotalPages = (len(items) + f.pageSize - 1) / f.pageSize
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	page.Page = min(max(q.Page, 1), page.TotalPages)

	start := (page.Page - 1) * f.pageSize
	end := min(start+f.pageSize, len(items))
	for _, p := range items[start:end] {
		page.Products = append(page.Products, f.card(p))
	}
	return page, nil
}

// BestSelling returns the first n products of the catalog.
func (f *Fetcher) BestSelling(ctx context.Context, n int) ([]ProductCard, error) {
	if n <= 0 {
		n = DefaultPageSize
	}
	items, err := f.products(ctx, "")
	if err != nil {
		return []ProductCard{}, fmt.Errorf("load best selling: %w", err)
	}
	items = items[:min(n, len(items))]
	cards := make([]ProductCard, 0, len(items))
	for _, p := range items {
		cards = append(cards, f.card(p))
	}
	return cards, nil
}

// Detail fetches one product. Concurrent calls for the same id share one request.
func (f *Fetcher) Detail(ctx context.Context, id int) (*models.ProductDetail, error) {
	v, err := f.shared(ctx, strconv.Itoa(id), func(ctx context.Context) (interface{}, error) {
		return f.backend.Product(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ProductDetail), nil
}

func (f *Fetcher) Product(ctx context.Context, id int) (*ProductView, error) {
	p, err := f.Detail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}

	view := &ProductView{
		ProductCard: f.card(p.Product),
		Description: p.Description,
		Promotion:   p.Promotion,
	}
	view.Image = f.display.Image(p.DisplayImage())
	for _, img := range p.Images {
		if img.Image == "" {
			continue
		}
		view.Gallery = append(view.Gallery, GalleryImage{
			URL:     f.display.ResolveImage(img.Image),
			Alt:     img.AltText,
			Primary: img.IsPrimary,
		})
	}
	return view, nil
}

func (f *Fetcher) card(p models.Product) ProductCard {
	return ProductCard{
		ID:       p.ID,
		Name:     p.Name,
		Title:    f.display.Title(p.Name),
		Price:    f.display.Price(string(p.Price)),
		RawPrice: string(p.Price),
		Image:    f.display.Image(p.Image),
		InStock:  p.InStock,
	}
}

// cached serves key from the cache when one is configured, falling back to load.
func cached[T any](ctx context.Context, f *Fetcher, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if f.cache != nil {
		data, err := f.cache.Get(ctx, key)
		if err == nil {
			var out []T
			if jsonErr := json.Unmarshal(data, &out); jsonErr == nil {
				return out, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn(ctx, "Catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err := f.shared(ctx, "list:"+key, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	out := v.([]T)

	if f.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
				logger.Warn(ctx, "Catalog cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return out, nil
}

// shared runs fn once per key across concurrent callers. The call is not
// canceled by any one caller; each caller stops waiting when its own ctx ends.
func (f *Fetcher) shared(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := f.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		return fn(callCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}
