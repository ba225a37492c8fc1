package catalog

// ProductSummary is a single result of the catalog search API. The catalog
// encodes every scalar as a string.
type ProductSummary struct {
	ProductID         string `json:"productId"`
	StyleID           string `json:"styleId"`
	ColorID           string `json:"colorId"`
	BrandName         string `json:"brandName"`
	ProductName       string `json:"productName"`
	ThumbnailImageURL string `json:"thumbnailImageUrl"`
	ProductURL        string `json:"productUrl"`
	Price             string `json:"price"`
	OriginalPrice     string `json:"originalPrice"`
	PercentOff        string `json:"percentOff"`
}

type searchAPIResponse struct {
	OriginalTerm       string           `json:"originalTerm"`
	Term               string           `json:"term"`
	CurrentResultCount string           `json:"currentResultCount"`
	TotalResultCount   string           `json:"totalResultCount"`
	StatusCode         string           `json:"statusCode"`
	Results            []ProductSummary `json:"results"`
}
