package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/product-search/internal/catalog"
)

func TestAPIKeyAuth_Authorize(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "http://catalog.test/Search?term=hats", http.NoBody)
	require.NoError(t, catalog.APIKeyAuth{Key: "k1"}.Authorize(context.Background(), req))
	assert.Equal(t, "k1", req.URL.Query().Get("key"))
	assert.Equal(t, "hats", req.URL.Query().Get("term"))

	err := catalog.APIKeyAuth{}.Authorize(context.Background(), req)
	require.Error(t, err)
}

func TestOAuthTokenProvider_Token(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantToken  string
		wantErr    bool
		errContain string
	}{
		{
			name: "successful token fetch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "id", user)
				assert.Equal(t, "secret", pass)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":7200,"token_type":"Bearer"}`))
			},
			wantToken: "tok-1",
		},
		{
			name: "error response",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"bad credentials"}`))
			},
			wantErr:    true,
			errContain: "invalid_client",
		},
		{
			name: "missing access token",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"expires_in":7200}`))
			},
			wantErr:    true,
			errContain: "no access_token",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`nope`))
			},
			wantErr:    true,
			errContain: "parsing token response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			p := catalog.NewOAuthTokenProvider("id", "secret", srv.URL)
			token, err := p.Token(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestOAuthTokenProvider_CachesUntilNearExpiry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":300}`))
	}))
	defer srv.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := catalog.NewOAuthTokenProvider("id", "secret", srv.URL,
		catalog.WithScope("catalog.read"),
		catalog.WithNowFunc(func() time.Time { return now }),
	)

	for range 3 {
		_, err := p.Token(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())

	// Inside the refresh buffer.
	now = now.Add(250 * time.Second)
	_, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOAuthTokenProvider_Authorize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"abc","expires_in":3600}`))
	}))
	defer srv.Close()

	p := catalog.NewOAuthTokenProvider("id", "secret", srv.URL)
	req := httptest.NewRequest(http.MethodGet, "http://catalog.test/Search", http.NoBody)
	require.NoError(t, p.Authorize(context.Background(), req))
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
}
