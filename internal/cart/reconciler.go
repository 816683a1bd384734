package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/blaemedia/alx-project-nexus/internal/api"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/models"
	"github.com/blaemedia/alx-project-nexus/internal/session"
	"go.uber.org/zap"
)

var (
	ErrLoginRequired   = errors.New("cart: login required")
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
	ErrInvalidProduct  = errors.New("cart: invalid product")
)

// Backend is the cart-items endpoint.
type Backend interface {
	CartLines(ctx context.Context, sess *session.Session) ([]models.CartLine, error)
	CreateCartLine(ctx context.Context, sess *session.Session, productID, quantity int) (*models.CartLine, error)
	UpdateCartLine(ctx context.Context, sess *session.Session, lineID, productID, quantity int) (*models.CartLine, error)
	DeleteCartLine(ctx context.Context, sess *session.Session, lineID int) error
}

// Notifier is told whenever a session's cart may have changed.
type Notifier interface {
	CartChanged(sessionID string)
}

type nopNotifier struct{}

func (nopNotifier) CartChanged(string) {}

// Reconciler adds products to the server-side cart, keeping one line per
// product. Adds for the same session and product run one at a time.
type Reconciler struct {
	backend Backend
	notify  Notifier
	locks   keyedMutex
}

func NewReconciler(b Backend, n Notifier) *Reconciler {
	if n == nil {
		n = nopNotifier{}
	}
	return &Reconciler{backend: b, notify: n}
}

// AddToCart increments the product's line, creating it with quantity 1 when
// there is none. The change is broadcast whether or not it succeeded.
func (r *Reconciler) AddToCart(ctx context.Context, sess *session.Session, productID int) (*models.CartLine, error) {
	if !sess.Authenticated() {
		return nil, ErrLoginRequired
	}
	if productID <= 0 {
		return nil, ErrInvalidProduct
	}
	defer r.notify.CartChanged(sess.ID)

	unlock := r.locks.Lock(sess.ID + ":" + strconv.Itoa(productID))
	defer unlock()

	lines, err := r.backend.CartLines(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if line := findLine(lines, productID); line != nil {
		return r.increment(ctx, sess, line)
	}

	created, createErr := r.backend.CreateCartLine(ctx, sess, productID, 1)
	if createErr == nil {
		return created, nil
	}
	if !api.IsUniqueViolation(createErr) {
		return nil, fmt.Errorf("create cart line: %w", createErr)
	}

	// Another writer created the line between our read and our create.
	logger.Info(ctx, "Cart line already exists, incrementing instead", zap.Int("product", productID))
	lines, err = r.backend.CartLines(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	line := findLine(lines, productID)
	if line == nil {
		return nil, fmt.Errorf("create cart line: %w", createErr)
	}
	return r.increment(ctx, sess, line)
}

func (r *Reconciler) increment(ctx context.Context, sess *session.Session, line *models.CartLine) (*models.CartLine, error) {
	updated, err := r.backend.UpdateCartLine(ctx, sess, line.ID, line.Product, line.Quantity+1)
	if err != nil {
		return nil, fmt.Errorf("update cart line %d: %w", line.ID, err)
	}
	return updated, nil
}

// SetQuantity overwrites a line's quantity.
func (r *Reconciler) SetQuantity(ctx context.Context, sess *session.Session, lineID, productID, quantity int) error {
	if !sess.Authenticated() {
		return ErrLoginRequired
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	defer r.notify.CartChanged(sess.ID)

	if productID > 0 {
		unlock := r.locks.Lock(sess.ID + ":" + strconv.Itoa(productID))
		defer unlock()
	}
	if _, err := r.backend.UpdateCartLine(ctx, sess, lineID, productID, quantity); err != nil {
		return fmt.Errorf("update cart line %d: %w", lineID, err)
	}
	return nil
}

// Count is the number of units in the cart, for the nav badge. Visitors
// without a token have an empty cart.
func (r *Reconciler) Count(ctx context.Context, sess *session.Session) (int, error) {
	if !sess.Authenticated() {
		return 0, nil
	}
	lines, err := r.backend.CartLines(ctx, sess)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total, nil
}

// findLine returns the first line for productID.
func findLine(lines []models.CartLine, productID int) *models.CartLine {
	for i := range lines {
		if lines[i].Product == productID {
			return &lines[i]
		}
	}
	return nil
}
