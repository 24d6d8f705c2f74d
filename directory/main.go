// Package directory provides the client for the user directory service, which is the
// authority for user display names and email addresses.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/buildwatch/notifier/common"
)

// User represents a single user record returned by the directory service.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Client describes the directory operations used by this service.
type Client interface {

	// ResolveUser looks up the display name and email address for a user ID, returning a
	// NotFoundError if the directory doesn't know the user.
	ResolveUser(ctx context.Context, id string) (*User, error)

	// UserExists determines whether or not the directory knows the user.
	UserExists(ctx context.Context, id string) (bool, error)
}

type existsResponse struct {
	IsExists bool `json:"is_exists"`
}

// HTTPClient is the directory client backed by the directory service's REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns a directory client for the service at the given base URL. All
// calls are bounded by the given timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ResolveUser looks up the display name and email address for a user ID.
func (c *HTTPClient) ResolveUser(ctx context.Context, id string) (*User, error) {
	wrapMsg := fmt.Sprintf("unable to resolve user `%s`", id)

	// Call the directory service.
	requestURL := fmt.Sprintf("%s/v1/users/%s?view=inner", c.baseURL, url.PathEscape(id))
	resp, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer resp.Body.Close()

	// A 404 means the user simply doesn't exist; anything else unexpected is internal.
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.NewNotFound("user", id)
	case resp.StatusCode != http.StatusOK:
		return nil, common.NewInternal("unexpected directory response status: %d", resp.StatusCode)
	}

	// Parse the response body.
	var user User
	err = json.NewDecoder(resp.Body).Decode(&user)
	if err != nil {
		return nil, common.NewInternal("unexpected directory response shape: %s", err)
	}
	return &user, nil
}

// UserExists determines whether or not the directory knows the user.
func (c *HTTPClient) UserExists(ctx context.Context, id string) (bool, error) {
	wrapMsg := fmt.Sprintf("unable to check for user `%s`", id)

	// Call the directory service.
	requestURL := fmt.Sprintf("%s/v1/users/%s/exists", c.baseURL, url.PathEscape(id))
	resp, err := c.get(ctx, requestURL)
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, common.NewInternal("unexpected directory response status: %d", resp.StatusCode)
	}

	// Parse the response body.
	var body existsResponse
	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return false, common.NewInternal("unexpected directory response shape: %s", err)
	}
	return body.IsExists, nil
}

func (c *HTTPClient) get(ctx context.Context, requestURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}
