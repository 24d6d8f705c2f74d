package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/buildwatch/notifier/common"
)

func newDirectoryServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/u1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","username":"bob","email":"u1@x"}`))
	})
	mux.HandleFunc("/v1/users/u1/exists", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"is_exists":true}`))
	})
	mux.HandleFunc("/v1/users/nobody/exists", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"is_exists":false}`))
	})
	mux.HandleFunc("/v1/users/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestResolveUser(t *testing.T) {
	assert := assert.New(t)
	server := newDirectoryServer(t)

	client := NewHTTPClient(server.URL, time.Second)
	user, err := client.ResolveUser(context.Background(), "u1")
	assert.NoError(err, "unexpected error occurred while resolving the user")
	if assert.NotNil(user) {
		assert.Equal("bob", user.Username)
		assert.Equal("u1@x", user.Email)
	}
}

func TestResolveUserNotFound(t *testing.T) {
	assert := assert.New(t)
	server := newDirectoryServer(t)

	client := NewHTTPClient(server.URL, time.Second)
	_, err := client.ResolveUser(context.Background(), "nobody")
	assert.True(common.IsNotFound(err), "an unknown user should be reported as not found")
	assert.Contains(err.Error(), "nobody", "the error should name the missing user id")
}

func TestResolveUserUnexpectedStatus(t *testing.T) {
	assert := assert.New(t)
	server := newDirectoryServer(t)

	client := NewHTTPClient(server.URL, time.Second)
	_, err := client.ResolveUser(context.Background(), "broken")
	assert.Error(err, "an unexpected status should be reported as an error")
	assert.False(common.IsNotFound(err), "an unexpected status should not be reported as not found")
}

func TestUserExists(t *testing.T) {
	assert := assert.New(t)
	server := newDirectoryServer(t)

	client := NewHTTPClient(server.URL, time.Second)

	exists, err := client.UserExists(context.Background(), "u1")
	assert.NoError(err, "unexpected error occurred while checking for the user")
	assert.True(exists)

	exists, err = client.UserExists(context.Background(), "nobody")
	assert.NoError(err, "unexpected error occurred while checking for the user")
	assert.False(exists)
}
