/*
Package directory is the client for the remote user-directory REST API.

The remote API is the source of the initial collection (GET /users) and is told
about removals (DELETE /users/{id}). It is never consulted again after the load;
creates and edits stay local.
*/
package directory

import (
	"context"
	"errors"
	"net/http"
	"time"

	"userdir/internal/app/user"
)

// ErrUnexpectedStatus is wrapped by errors for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// ServiceConfig holds the configuration for reaching the remote API.
type ServiceConfig struct {
	// BaseURL is the API root without a trailing slash, e.g. https://jsonplaceholder.typicode.com.
	BaseURL string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout. Optional.
	HTTPClient *http.Client
}

// Service is the remote user-directory API.
type Service interface {
	// ListUsers fetches the full, ordered collection.
	ListUsers(ctx context.Context) ([]user.User, error)

	// DeleteUser asks the remote API to remove id. The response body is ignored.
	DeleteUser(ctx context.Context, id user.ID) error
}

// NewService returns the HTTP implementation of Service.
func NewService(cfg ServiceConfig) Service {
	return newHTTPClient(cfg)
}
