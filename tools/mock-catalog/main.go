// Package main implements a mock product catalog for local development.
// It serves a generated product list through the catalog search endpoint
// and an OAuth client-credentials token endpoint, so product-search can run
// without real catalog credentials.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultLimit = 20

// product mirrors one entry of the catalog "results" array.
type product struct {
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

// searchResponse mirrors the catalog search body. Counts are strings on
// the wire.
type searchResponse struct {
	OriginalTerm       string    `json:"originalTerm"`
	Term               string    `json:"term"`
	CurrentResultCount string    `json:"currentResultCount"`
	TotalResultCount   string    `json:"totalResultCount"`
	StatusCode         string    `json:"statusCode"`
	Results            []product `json:"results"`
}

var (
	brands = []string{"Acme", "Northwind", "Globex", "Initech", "Umbrella", "Stark"}
	kinds  = []string{"Running Shoe", "Trail Boot", "Sandal", "Sneaker", "Loafer", "Hiking Boot", "Slipper"}
	colors = []string{"Black", "White", "Red", "Blue", "Green", "Grey"}
)

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	count := flag.Int("products", 250, "number of generated products")
	apiKey := flag.String("api-key", "", "require this key on search requests")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	catalog := generateCatalog(*count)
	logger.Info("generated catalog", "products", len(catalog))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", tokenHandler(logger))
	mux.HandleFunc("GET /Search", searchHandler(logger, catalog, *apiKey))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock catalog", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// generateCatalog builds n products cycling through brands, kinds and
// colors. Every third product is on sale.
func generateCatalog(n int) []product {
	out := make([]product, 0, n)
	for i := range n {
		brand := brands[i%len(brands)]
		kind := kinds[(i/len(brands))%len(kinds)]
		color := colors[(i/(len(brands)*len(kinds)))%len(colors)]

		cents := 3999 + (i%17)*500
		p := product{
			ProductID:         strconv.Itoa(100000 + i),
			StyleID:           strconv.Itoa(200000 + i),
			ColorID:           strconv.Itoa(300 + i%len(colors)),
			BrandName:         brand,
			ProductName:       fmt.Sprintf("%s %s", color, kind),
			ThumbnailImageURL: fmt.Sprintf("https://images.example.com/%d.jpg", 100000+i),
			ProductURL:        fmt.Sprintf("https://shop.example.com/p/%d", 100000+i),
			Price:             formatPrice(cents),
			OriginalPrice:     formatPrice(cents),
			PercentOff:        "0%",
		}
		if i%3 == 0 {
			p.Price = formatPrice(cents * 3 / 4)
			p.PercentOff = "25%"
		}
		out = append(out, p)
	}
	return out
}

func formatPrice(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func tokenHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Basic Auth must be present, the credentials are not checked.
		if _, _, ok := r.BasicAuth(); !ok {
			logger.Warn("token request missing Basic Auth header")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":             "invalid_client",
				"error_description": "client authentication failed",
			})
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "unsupported_grant_type",
				"error_description": "grant_type must be client_credentials",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "mock-token-v1-" + strconv.FormatInt(int64(os.Getpid()), 16),
			"expires_in":   3600,
			"token_type":   "Bearer",
		})
		logger.Info("issued mock token")
	}
}

func searchHandler(logger *slog.Logger, catalog []product, apiKey string) http.HandlerFunc {
	// Pre-compute lowercase search text for filtering.
	text := make([]string, len(catalog))
	for i, p := range catalog {
		text[i] = strings.ToLower(p.BrandName + " " + p.ProductName)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		if apiKey != "" && params.Get("key") != apiKey && r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"statusCode": "401", "error": "invalid key"})
			return
		}

		term := params.Get("term")
		page := positiveInt(params.Get("page"), 1)
		limit := positiveInt(params.Get("limit"), defaultLimit)

		// Every word of the term must appear in brand or name.
		words := strings.Fields(strings.ToLower(term))
		matched := make([]product, 0)
		for i, p := range catalog {
			if containsAll(text[i], words) {
				matched = append(matched, p)
			}
		}
		total := len(matched)

		start := (page - 1) * limit
		if total > 0 && start >= total {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"statusCode": "400",
				"error":      fmt.Sprintf("page %d is past the last page", page),
			})
			return
		}
		results := matched[min(start, total):min(start+limit, total)]

		writeJSON(w, http.StatusOK, searchResponse{
			OriginalTerm:       term,
			Term:               strings.ToLower(term),
			CurrentResultCount: strconv.Itoa(len(results)),
			TotalResultCount:   strconv.Itoa(total),
			StatusCode:         "200",
			Results:            results,
		})
		logger.Info("search", "term", term, "matched", total, "returned", len(results), "page", page, "limit", limit)
	}
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

func positiveInt(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
