// Package domain defines the core business types for product search.
package domain

import "strings"

// Product is one catalog item in a search result list. The search session
// treats it as opaque; only ID is relied on as a stable identity.
type Product struct {
	ID           string `json:"id"`
	StyleID      string `json:"style_id,omitempty"`
	ColorID      string `json:"color_id,omitempty"`
	Brand        string `json:"brand"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ProductURL   string `json:"product_url,omitempty"`

	// Pricing as displayed by the catalog ("$59.95") plus parsed values.
	Price         string  `json:"price"`
	OriginalPrice string  `json:"original_price,omitempty"`
	PriceValue    float64 `json:"price_value"`
	PercentOff    string  `json:"percent_off,omitempty"`
}

// DisplayName joins brand and name the way result rows show them.
func (p *Product) DisplayName() string {
	switch {
	case p.Brand == "":
		return p.Name
	case p.Name == "":
		return p.Brand
	default:
		return p.Brand + " " + p.Name
	}
}

// OnSale reports whether the catalog lists the product below its
// original price.
func (p *Product) OnSale() bool {
	if p.OriginalPrice == "" || p.OriginalPrice == p.Price {
		return false
	}
	off := strings.TrimSuffix(strings.TrimSpace(p.PercentOff), "%")
	return off != "" && off != "0"
}
