// Package handlers registers the HTTP operations of the product-search API:
// probes on plain Echo routes, sessions, snapshots and one-shot search as
// Huma operations.
package handlers

// StatusResponse is the body of the probe endpoints.
type StatusResponse struct {
	Status string `json:"status" example:"ready"`
}
