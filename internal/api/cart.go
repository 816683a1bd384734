package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/blaemedia/alx-project-nexus/internal/models"
	"github.com/blaemedia/alx-project-nexus/internal/session"
)

type cartLineInput struct {
	Product  int `json:"product,omitempty"`
	Quantity int `json:"quantity"`
}

func (c *Client) CartLines(ctx context.Context, sess *session.Session) ([]models.CartLine, error) {
	return list[models.CartLine](ctx, c, request{
		method: http.MethodGet,
		path:   "/store/cart-items/",
		sess:   sess,
		auth:   true,
	})
}

func (c *Client) CreateCartLine(ctx context.Context, sess *session.Session, productID, quantity int) (*models.CartLine, error) {
	var line models.CartLine
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/cart-items/",
		body:   cartLineInput{Product: productID, Quantity: quantity},
		sess:   sess,
		auth:   true,
	}, &line)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdateCartLine sets the quantity of an existing line. productID is sent
// along when known, as the backend serializer expects it on PATCH.
func (c *Client) UpdateCartLine(ctx context.Context, sess *session.Session, lineID, productID, quantity int) (*models.CartLine, error) {
	var line models.CartLine
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/store/cart-items/%d/", lineID),
		body:   cartLineInput{Product: productID, Quantity: quantity},
		sess:   sess,
		auth:   true,
	}, &line)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (c *Client) DeleteCartLine(ctx context.Context, sess *session.Session, lineID int) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/store/cart-items/%d/", lineID),
		sess:   sess,
		auth:   true,
	}, nil)
}
