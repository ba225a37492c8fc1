package catalog

import (
	"strconv"
	"strings"

	domain "github.com/donaldgifford/product-search/pkg/types"
)

// ToProducts converts catalog search results into domain products,
// preserving order.
func ToProducts(items []ProductSummary) []domain.Product {
	products := make([]domain.Product, 0, len(items))
	for i := range items {
		products = append(products, toProduct(&items[i]))
	}
	return products
}

func toProduct(item *ProductSummary) domain.Product {
	p := domain.Product{
		ID:            item.ProductID,
		StyleID:       item.StyleID,
		ColorID:       item.ColorID,
		Brand:         strings.TrimSpace(item.BrandName),
		Name:          strings.TrimSpace(item.ProductName),
		ThumbnailURL:  item.ThumbnailImageURL,
		ProductURL:    item.ProductURL,
		Price:         item.Price,
		OriginalPrice: item.OriginalPrice,
		PercentOff:    item.PercentOff,
	}

	if v, ok := ParsePrice(item.Price); ok {
		p.PriceValue = v
	}

	return p
}

// ParsePrice parses a display price such as "$1,059.95".
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseTotal parses totalResultCount. known is false when the field is
// missing or not a count.
func parseTotal(s string) (total int, known bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
