package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/blaemedia/alx-project-nexus/internal/models"
)

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	return list[models.Category](ctx, c, request{method: http.MethodGet, path: "/store/categories/"})
}

// Products lists the catalog, filtered by the backend when search is set.
func (c *Client) Products(ctx context.Context, search string) ([]models.Product, error) {
	req := request{method: http.MethodGet, path: "/store/products/"}
	if s := strings.TrimSpace(search); s != "" {
		req.query = url.Values{"search": {s}}
	}
	return list[models.Product](ctx, c, req)
}

func (c *Client) Product(ctx context.Context, id int) (*models.ProductDetail, error) {
	var p models.ProductDetail
	err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/store/products/%d/", id)}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
