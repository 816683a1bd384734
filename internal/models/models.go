package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Price is a decimal amount as the backend sends it. Decimal fields arrive as
// strings, but plain JSON numbers are accepted too.
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Price(n.String())
	return nil
}

type Category struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	IsActive     bool   `json:"is_active"`
	CatThumbnail string `json:"cat_thumbnail"`
	ImageURL     string `json:"image_url"` // absolute, computed by the backend; may be null
}

type Product struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Price   Price  `json:"price"`
	Image   string `json:"image"`
	InStock bool   `json:"in_stock"`
}

type ProductImage struct {
	Image     string `json:"image"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
}

type ProductDetail struct {
	Product
	Description string          `json:"description"`
	Category    json.RawMessage `json:"category"`
	Promotion   string          `json:"promotion"`
	Images      []ProductImage  `json:"images"`
}

// DisplayImage returns the explicit image, then the primary gallery image, then the first one.
func (p *ProductDetail) DisplayImage() string {
	if p.Image != "" {
		return p.Image
	}
	for _, img := range p.Images {
		if img.IsPrimary && img.Image != "" {
			return img.Image
		}
	}
	for _, img := range p.Images {
		if img.Image != "" {
			return img.Image
		}
	}
	return ""
}

type CartLine struct {
	ID       int       `json:"id"`
	User     int       `json:"user,omitempty"`
	Product  int       `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type User struct {
	ID         int    `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	IsCustomer bool   `json:"is_customer"`
	IsVendor   bool   `json:"is_vendor"`
	IsDelivery bool   `json:"is_delivery"`
}
