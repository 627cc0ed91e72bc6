// Package auth provides the authentication capability consumed by the
// checkout core: an opaque bearer key resolves to an authenticated user id.
// Token issuance and parsing live outside this service.
package auth

import "context"

// APIKeyInfo holds the identity data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	UserID  string
}

// Repository provides lookup of active API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
