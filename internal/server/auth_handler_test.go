package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/sponsorboard/internal/types"
)

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/auth/register", map[string]string{
		"full_name": "Priya Sharma",
		"email":     "priya@example.com",
		"password":  "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp types.LoginResponse
	decodeBody(t, w, &resp)
	require.NotNil(t, resp.User)
	assert.Equal(t, "priya@example.com", resp.User.Email)
	assert.Equal(t, "Priya Sharma", resp.User.FullName)
	assert.NotEmpty(t, resp.Token)

	// The issued token passes validation
	stored := ts.users.byEmail["priya@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "short password", body: map[string]string{"full_name": "A B", "email": "a@example.com", "password": "short"}},
		{name: "bad email", body: map[string]string{"full_name": "A B", "email": "not-an-email", "password": "correct-horse"}},
		{name: "missing name", body: map[string]string{"email": "a@example.com", "password": "correct-horse"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.request(t, http.MethodPost, "/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]string{
		"full_name": "Priya Sharma",
		"email":     "priya@example.com",
		"password":  "correct-horse",
	}

	w := ts.request(t, http.MethodPost, "/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodPost, "/auth/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already registered")
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	register := map[string]string{
		"full_name": "Priya Sharma",
		"email":     "priya@example.com",
		"password":  "correct-horse",
	}
	require.Equal(t, http.StatusCreated, ts.request(t, http.MethodPost, "/auth/register", register).Code)

	w := ts.request(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "priya@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.LoginResponse
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "priya@example.com", resp.User.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	register := map[string]string{
		"full_name": "Priya Sharma",
		"email":     "priya@example.com",
		"password":  "correct-horse",
	}
	require.Equal(t, http.StatusCreated, ts.request(t, http.MethodPost, "/auth/register", register).Code)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "priya@example.com", password: "wrong-horse"},
		{name: "unknown email", email: "nobody@example.com", password: "correct-horse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.request(t, http.MethodPost, "/auth/login", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			// Both failure modes read identically to the caller
			assert.Contains(t, w.Body.String(), "invalid email or password")
		})
	}
}
