package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/product-search/internal/catalog"
)

type stubAuth struct {
	err error
}

func (a stubAuth) Authorize(_ context.Context, req *http.Request) error {
	if a.err != nil {
		return a.err
	}
	req.Header.Set("Authorization", "Bearer test-token")
	return nil
}

func TestHTTPClient_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		req        catalog.SearchRequest
		handler    http.HandlerFunc
		authErr    error
		wantErr    bool
		errContain string
		wantItems  int
		wantTotal  int
		wantMore   bool
	}{
		{
			name: "successful search with more pages",
			req:  catalog.SearchRequest{Query: "red shoes", Page: 1, Limit: 2},
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				assert.Equal(t, "red shoes", r.URL.Query().Get("term"))
				assert.Equal(t, "1", r.URL.Query().Get("page"))
				assert.Equal(t, "2", r.URL.Query().Get("limit"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"originalTerm": "red shoes",
					"currentResultCount": "2",
					"totalResultCount": "40",
					"statusCode": "200",
					"results": [
						{"productId": "1", "brandName": "Nike", "productName": "Air", "price": "$100.00"},
						{"productId": "2", "brandName": "Vans", "productName": "Era", "price": "$55.00"}
					]
				}`))
			},
			wantItems: 2,
			wantTotal: 40,
			wantMore:  true,
		},
		{
			name: "last page",
			req:  catalog.SearchRequest{Query: "red shoes", Page: 2, Limit: 2},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"totalResultCount": "3",
					"results": [{"productId": "3"}]
				}`))
			},
			wantItems: 1,
			wantTotal: 3,
			wantMore:  false,
		},
		{
			name: "empty results",
			req:  catalog.SearchRequest{Query: "zzzznotfound"},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"totalResultCount": "0", "results": []}`))
			},
			wantItems: 0,
			wantMore:  false,
		},
		{
			name: "missing total with a full page",
			req:  catalog.SearchRequest{Query: "red shoes", Page: 1, Limit: 2},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"results": [{"productId": "1"}, {"productId": "2"}]}`))
			},
			wantItems: 2,
			wantMore:  true,
		},
		{
			name: "unparseable total with a short page",
			req:  catalog.SearchRequest{Query: "red shoes", Page: 4, Limit: 2},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"totalResultCount": "many", "results": [{"productId": "7"}]}`))
			},
			wantItems: 1,
			wantMore:  false,
		},
		{
			name: "oversized response body",
			req:  catalog.SearchRequest{Query: "test"},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"results": [`))
				_, _ = w.Write(bytes.Repeat([]byte(" "), 5<<20))
				_, _ = w.Write([]byte(`]}`))
			},
			wantErr:    true,
			errContain: "parsing search response",
		},
		{
			name: "404 past the last page",
			req:  catalog.SearchRequest{Query: "red shoes", Page: 9},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"statusCode": "404"}`))
			},
			wantErr:    true,
			errContain: "status 404",
		},
		{
			name: "500 server error",
			req:  catalog.SearchRequest{Query: "test"},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr:    true,
			errContain: "status 500",
		},
		{
			name:       "authorizer error",
			req:        catalog.SearchRequest{Query: "test"},
			handler:    func(_ http.ResponseWriter, _ *http.Request) {},
			authErr:    errors.New("token fetch failed"),
			wantErr:    true,
			errContain: "authorizing request",
		},
		{
			name: "invalid JSON response",
			req:  catalog.SearchRequest{Query: "test"},
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte(`<!DOCTYPE html><html><body>Service Unavailable</body></html>`))
			},
			wantErr:    true,
			errContain: "parsing search response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := catalog.NewHTTPClient(
				stubAuth{err: tt.authErr},
				catalog.WithSearchURL(srv.URL),
			)

			resp, err := client.Search(context.Background(), tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Len(t, resp.Items, tt.wantItems)
			assert.Equal(t, tt.wantTotal, resp.Total)
			assert.Equal(t, tt.wantMore, resp.HasMore)
		})
	}
}

func TestHTTPClient_Search_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := catalog.NewHTTPClient(nil, catalog.WithSearchURL(srv.URL))
	_, err := client.Search(context.Background(), catalog.SearchRequest{Query: "x"})

	var se *catalog.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestHTTPClient_Search_Defaults(t *testing.T) {
	t.Parallel()

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"page":  r.URL.Query().Get("page"),
			"limit": r.URL.Query().Get("limit"),
			"sort":  r.URL.Query().Get("sort"),
		}
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := catalog.NewHTTPClient(nil,
		catalog.WithSearchURL(srv.URL),
		catalog.WithPageSize(50),
	)
	assert.Equal(t, 50, client.PageSize())

	_, err := client.Search(context.Background(), catalog.SearchRequest{Query: "hats", Sort: "price-asc"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"page": "1", "limit": "50", "sort": "price-asc"}, got)
}

func TestHTTPClient_Search_RateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	// Daily limit of 1.
	rl := catalog.NewRateLimiter(100, 10, 1)
	client := catalog.NewHTTPClient(nil,
		catalog.WithSearchURL(srv.URL),
		catalog.WithRateLimiter(rl),
	)

	_, err := client.Search(context.Background(), catalog.SearchRequest{Query: "test"})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), catalog.SearchRequest{Query: "test"})
	require.ErrorIs(t, err, catalog.ErrDailyLimitReached)
	assert.Contains(t, err.Error(), "rate limit:")
}

func TestHTTPClient_Search_APIKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "boots", r.URL.Query().Get("term"))
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := catalog.NewHTTPClient(catalog.APIKeyAuth{Key: "secret"}, catalog.WithSearchURL(srv.URL))
	_, err := client.Search(context.Background(), catalog.SearchRequest{Query: "boots"})
	require.NoError(t, err)
}
