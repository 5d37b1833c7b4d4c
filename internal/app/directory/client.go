package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"userdir/internal/app/user"
	"userdir/internal/pkg/logx"
)

// maxListBody caps the decoded size of a GET /users response.
const maxListBody = 8 << 20

// httpClient implements Service over net/http.
type httpClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func newHTTPClient(cfg ServiceConfig) *httpClient {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		logger:  logx.Component("directory"),
	}
}

// ListUsers implements Service.
func (c *httpClient) ListUsers(ctx context.Context) ([]user.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users", nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("GET /users failed")
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		c.logger.Warn().Int("status", res.StatusCode).Msg("GET /users returned an error status")
		return nil, fmt.Errorf("list users: %w", err)
	}

	var users []user.User
	if err := json.NewDecoder(io.LimitReader(res.Body, maxListBody)).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	c.logger.Debug().Int("count", len(users)).Msg("Fetched users")
	return users, nil
}

// DeleteUser implements Service.
func (c *httpClient) DeleteUser(ctx context.Context, id user.ID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/users/"+id.String(), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Stringer("user_id", id).Msg("DELETE /users/{id} failed")
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	defer res.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	if err := checkStatus(res); err != nil {
		c.logger.Warn().Int("status", res.StatusCode).Stringer("user_id", id).Msg("DELETE /users/{id} returned an error status")
		return fmt.Errorf("delete user %s: %w", id, err)
	}

	return nil
}

func checkStatus(res *http.Response) error {
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}
	return nil
}
