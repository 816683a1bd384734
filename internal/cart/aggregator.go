package cart

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/blaemedia/alx-project-nexus/internal/catalog"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/models"
	"github.com/blaemedia/alx-project-nexus/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultFetchLimit = 4

// ProductSource resolves product details for cart lines.
type ProductSource interface {
	Detail(ctx context.Context, id int) (*models.ProductDetail, error)
}

type LineView struct {
	LineID    int
	ProductID int
	Quantity  int
	Name      string
	Image     string
	InStock   bool
	Missing   bool
	Price     decimal.Decimal
	Subtotal  decimal.Decimal
}

type View struct {
	Lines []LineView
	Total decimal.Decimal
	Units int
}

func (v View) Empty() bool { return len(v.Lines) == 0 }

// Aggregator builds the cart page from cart lines and product details.
type Aggregator struct {
	backend  Backend
	products ProductSource
	display  *catalog.Display
	notify   Notifier
	limit    int
}

func NewAggregator(b Backend, products ProductSource, d *catalog.Display, n Notifier) *Aggregator {
	if n == nil {
		n = nopNotifier{}
	}
	return &Aggregator{backend: b, products: products, display: d, notify: n, limit: defaultFetchLimit}
}

// SetFetchLimit bounds concurrent product detail requests.
func (a *Aggregator) SetFetchLimit(n int) {
	if n > 0 {
		a.limit = n
	}
}

// Load lists the cart and fetches each distinct product once. Products whose
// detail cannot be fetched show as "Product <id>" priced at zero.
func (a *Aggregator) Load(ctx context.Context, sess *session.Session) (View, error) {
	if !sess.Authenticated() {
		return View{Total: decimal.Zero}, ErrLoginRequired
	}

	lines, err := a.backend.CartLines(ctx, sess)
	if err != nil {
		return View{Total: decimal.Zero}, fmt.Errorf("load cart: %w", err)
	}

	details := a.fetchDetails(ctx, lines)

	view := View{Lines: make([]LineView, 0, len(lines)), Total: decimal.Zero}
	for _, l := range lines {
		lv := LineView{
			LineID:    l.ID,
			ProductID: l.Product,
			Quantity:  l.Quantity,
			Price:     decimal.Zero,
		}
		if d, ok := details[l.Product]; ok {
			lv.Name = d.Name
			lv.Image = a.display.Image(d.DisplayImage())
			lv.InStock = d.InStock
			lv.Price = catalog.ParsePrice(string(d.Price))
		} else {
			lv.Name = fmt.Sprintf("Product %d", l.Product)
			lv.Image = a.display.Fallback()
			lv.Missing = true
		}
		lv.Subtotal = lv.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))

		view.Total = view.Total.Add(lv.Subtotal)
		view.Units += l.Quantity
		view.Lines = append(view.Lines, lv)
	}
	return view, nil
}

func (a *Aggregator) fetchDetails(ctx context.Context, lines []models.CartLine) map[int]*models.ProductDetail {
	seen := make(map[int]bool, len(lines))
	var ids []int
	for _, l := range lines {
		if !seen[l.Product] {
			seen[l.Product] = true
			ids = append(ids, l.Product)
		}
	}

	var (
		mu      sync.Mutex
		details = make(map[int]*models.ProductDetail, len(ids))
		g       errgroup.Group
	)
	g.SetLimit(a.limit)
	for _, id := range ids {
		g.Go(func() error {
			d, err := a.products.Detail(ctx, id)
			if err != nil {
				logger.Warn(ctx, "Failed to load product for cart line", zap.Int("product", id), zap.Error(err))
				return nil
			}
			mu.Lock()
			details[id] = d
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return details
}

// RemoveLine deletes a single line.
func (a *Aggregator) RemoveLine(ctx context.Context, sess *session.Session, lineID int) error {
	if !sess.Authenticated() {
		return ErrLoginRequired
	}
	defer a.notify.CartChanged(sess.ID)

	if err := a.backend.DeleteCartLine(ctx, sess, lineID); err != nil {
		return fmt.Errorf("delete cart line %d: %w", lineID, err)
	}
	return nil
}

// RemoveAll deletes every line in parallel. The returned view is empty no
// matter how many deletes failed; failed counts them.
func (a *Aggregator) RemoveAll(ctx context.Context, sess *session.Session) (view View, failed int, err error) {
	view = View{Lines: []LineView{}, Total: decimal.Zero}
	if !sess.Authenticated() {
		return view, 0, ErrLoginRequired
	}
	defer a.notify.CartChanged(sess.ID)

	lines, err := a.backend.CartLines(ctx, sess)
	if err != nil {
		return view, 0, fmt.Errorf("load cart: %w", err)
	}

	var (
		failures atomic.Int32
		g        errgroup.Group
	)
	for _, l := range lines {
		g.Go(func() error {
			if err := a.backend.DeleteCartLine(ctx, sess, l.ID); err != nil {
				failures.Add(1)
				logger.Warn(ctx, "Failed to delete cart line", zap.Int("line", l.ID), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return view, int(failures.Load()), nil
}
