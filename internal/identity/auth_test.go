package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-key"

func signToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "hunter22" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "remote-token",
			"refresh_token": "refresh",
			"expires_in":    3600,
			"user":          map[string]string{"id": "user-1", "email": body["email"]},
		})
	})
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer remote-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "user-1", "email": "ada@example.com"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSignInWithPassword(t *testing.T) {
	srv := newAuthServer(t)
	client := NewAuthClient(AuthConfig{URL: srv.URL, AnonKey: "anon"})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	session, err := client.SignInWithPassword(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "remote-token", session.AccessToken)
	assert.Equal(t, "user-1", session.User.ID)
	assert.True(t, session.ExpiresAt.Equal(now.Add(time.Hour)))

	_, err = client.SignInWithPassword(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestSignInWithoutURL(t *testing.T) {
	client := NewAuthClient(AuthConfig{JWTSecret: testSecret})
	_, err := client.SignInWithPassword(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, ErrAuthNotConfigured)
}

func TestValidateTokenLocal(t *testing.T) {
	client := NewAuthClient(AuthConfig{JWTSecret: testSecret})

	user, err := client.ValidateToken(context.Background(), signToken(t, testSecret, "user-9", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "user-9", user.ID)
	assert.Equal(t, "user-9@example.com", user.Email)

	_, err = client.ValidateToken(context.Background(), signToken(t, testSecret, "user-9", time.Now().Add(-time.Minute)))
	assert.Error(t, err, "expired token")

	_, err = client.ValidateToken(context.Background(), signToken(t, "other-secret", "user-9", time.Now().Add(time.Hour)))
	assert.Error(t, err, "wrong signature")
}

func TestValidateTokenFallsBackToProvider(t *testing.T) {
	srv := newAuthServer(t)
	client := NewAuthClient(AuthConfig{URL: srv.URL, AnonKey: "anon", JWTSecret: testSecret})

	user, err := client.ValidateToken(context.Background(), "remote-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	_, err = client.ValidateToken(context.Background(), "garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JWT")
}

func TestValidateTokenNotConfigured(t *testing.T) {
	_, err := NewAuthClient(AuthConfig{}).ValidateToken(context.Background(), "x")
	assert.ErrorIs(t, err, ErrAuthNotConfigured)
}

func TestTokenFromCallback(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare token", input: "  eyJhbGciOi  ", want: "eyJhbGciOi"},
		{name: "fragment", input: "http://localhost:3000/#access_token=abc&expires_in=3600&token_type=bearer", want: "abc"},
		{name: "query", input: "http://localhost:3000/callback?access_token=def", want: "def"},
		{name: "pair only", input: "access_token=ghi&refresh_token=x", want: "ghi"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "empty token value", input: "http://localhost/#access_token=", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TokenFromCallback(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
