package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/app/user"
)

const usersJSON = `[
  {"id":1,"name":"Leanne Graham","username":"Bret","email":"Sincere@april.biz",
   "address":{"street":"Kulas Light","city":"Gwenborough"},"phone":"1-770-736-8031 x56442",
   "website":"hildegard.org","company":{"name":"Romaguera-Crona"}},
  {"id":2,"name":"Ervin Howell","username":"Antonette","email":"Shanna@melissa.tv",
   "address":{"street":"Victor Plains","city":"Wisokyburgh"},"phone":"010-692-6593 x09125",
   "website":"anastasia.net","company":{"name":"Deckow-Crist"}}
]`

func TestListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(usersJSON))
	}))
	defer srv.Close()

	svc := NewService(ServiceConfig{BaseURL: srv.URL + "/"})

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, user.ID(1), users[0].ID)
	assert.Equal(t, "Ervin Howell", users[1].Name)
	assert.Equal(t, "Wisokyburgh", users[1].Address.City)
}

func TestListUsers_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewService(ServiceConfig{BaseURL: srv.URL}).ListUsers(context.Background())

	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestListUsers_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := NewService(ServiceConfig{BaseURL: srv.URL}).ListUsers(context.Background())

	assert.Error(t, err)
}

func TestListUsers_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewService(ServiceConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).ListUsers(context.Background())

	assert.Error(t, err)
}

func TestDeleteUser(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := NewService(ServiceConfig{BaseURL: srv.URL}).DeleteUser(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "/users/7", gotPath)
}

func TestDeleteUser_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewService(ServiceConfig{BaseURL: srv.URL}).DeleteUser(context.Background(), 7)

	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestDeleteUser_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewService(ServiceConfig{BaseURL: url}).DeleteUser(context.Background(), 1)

	assert.Error(t, err)
}
