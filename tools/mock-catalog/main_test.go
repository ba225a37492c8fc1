package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
)

func TestGenerateCatalog(t *testing.T) {
	catalog := generateCatalog(250)
	if len(catalog) != 250 {
		t.Fatalf("products=%d, want 250", len(catalog))
	}
	seen := make(map[string]bool)
	for _, p := range catalog {
		if seen[p.ProductID] {
			t.Fatalf("duplicate product id %s", p.ProductID)
		}
		seen[p.ProductID] = true
	}
	if catalog[0].PercentOff != "25%" {
		t.Errorf("percentOff=%s, want 25%%", catalog[0].PercentOff)
	}
	if catalog[1].Price != catalog[1].OriginalPrice {
		t.Errorf("price=%s, want original %s", catalog[1].Price, catalog[1].OriginalPrice)
	}
}

func TestTokenHandler_Success(t *testing.T) {
	handler := tokenHandler(testLogger())
	req := tokenRequest("client_credentials")
	req.SetBasicAuth("client-id", "client-secret")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["access_token"] == nil || resp["access_token"] == "" {
		t.Error("expected non-empty access_token")
	}
	if resp["expires_in"] != float64(3600) {
		t.Errorf("expires_in=%v, want 3600", resp["expires_in"])
	}
}

func TestTokenHandler_MissingAuth(t *testing.T) {
	handler := tokenHandler(testLogger())
	w := httptest.NewRecorder()

	handler(w, tokenRequest("client_credentials"))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusUnauthorized)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["error"] != "invalid_client" {
		t.Errorf("error=%s, want invalid_client", resp["error"])
	}
}

func TestTokenHandler_WrongGrant(t *testing.T) {
	handler := tokenHandler(testLogger())
	req := tokenRequest("password")
	req.SetBasicAuth("client-id", "client-secret")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSearchHandler_FirstPage(t *testing.T) {
	resp, code := search(t, "", "")

	if code != http.StatusOK {
		t.Fatalf("status=%d, want %d", code, http.StatusOK)
	}
	if resp.TotalResultCount != "250" {
		t.Errorf("totalResultCount=%s, want 250", resp.TotalResultCount)
	}
	if resp.CurrentResultCount != "20" || len(resp.Results) != defaultLimit {
		t.Errorf("currentResultCount=%s results=%d, want %d", resp.CurrentResultCount, len(resp.Results), defaultLimit)
	}
}

func TestSearchHandler_TermFilter(t *testing.T) {
	resp, _ := search(t, "", "term=acme&limit=100")

	if resp.TotalResultCount != "42" {
		t.Errorf("totalResultCount=%s, want 42", resp.TotalResultCount)
	}
	for _, p := range resp.Results {
		if p.BrandName != "Acme" {
			t.Errorf("brand=%s, want Acme", p.BrandName)
		}
	}
}

func TestSearchHandler_MultiWordTerm(t *testing.T) {
	resp, _ := search(t, "", "term="+url.QueryEscape("red running shoe"))

	if resp.TotalResultCount != "6" {
		t.Errorf("totalResultCount=%s, want 6", resp.TotalResultCount)
	}
	for _, p := range resp.Results {
		if p.ProductName != "Red Running Shoe" {
			t.Errorf("name=%s, want Red Running Shoe", p.ProductName)
		}
	}
}

func TestSearchHandler_Pagination(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode int
		wantLen  int
	}{
		{name: "second page", query: "term=acme&page=2&limit=20", wantCode: http.StatusOK, wantLen: 20},
		{name: "last partial page", query: "term=acme&page=3&limit=20", wantCode: http.StatusOK, wantLen: 2},
		{name: "past last page", query: "term=acme&page=4&limit=20", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, code := search(t, "", tt.query)
			if code != tt.wantCode {
				t.Fatalf("status=%d, want %d", code, tt.wantCode)
			}
			if code == http.StatusOK && len(resp.Results) != tt.wantLen {
				t.Errorf("results=%d, want %d", len(resp.Results), tt.wantLen)
			}
		})
	}
}

func TestSearchHandler_NoResults(t *testing.T) {
	resp, code := search(t, "", "term=nonexistent_xyz_product")

	if code != http.StatusOK {
		t.Fatalf("status=%d, want %d", code, http.StatusOK)
	}
	if resp.TotalResultCount != "0" {
		t.Errorf("totalResultCount=%s, want 0", resp.TotalResultCount)
	}
	if resp.Results == nil {
		t.Error("expected empty array, got nil")
	}
}

func TestSearchHandler_APIKey(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{name: "missing key", query: "term=boot", wantCode: http.StatusUnauthorized},
		{name: "wrong key", query: "term=boot&key=nope", wantCode: http.StatusUnauthorized},
		{name: "valid key", query: "term=boot&key=secret", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code := search(t, "secret", tt.query)
			if code != tt.wantCode {
				t.Errorf("status=%d, want %d", code, tt.wantCode)
			}
		})
	}
}

func search(t *testing.T, apiKey, rawQuery string) (searchResponse, int) {
	t.Helper()
	handler := searchHandler(testLogger(), generateCatalog(250), apiKey)
	req := httptest.NewRequest(http.MethodGet, "/Search?"+rawQuery, http.NoBody)
	w := httptest.NewRecorder()

	handler(w, req)

	var resp searchResponse
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp, w.Code
}

func tokenRequest(grant string) *http.Request {
	form := url.Values{"grant_type": {grant}}
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
