package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/habitual/internal/constants"
)

// ErrAuthNotConfigured is returned when neither an auth URL nor a JWT secret is set.
var ErrAuthNotConfigured = errors.New("auth provider not configured: set --auth-url or --jwt-secret")

// AuthConfig points at a GoTrue-compatible auth provider.
type AuthConfig struct {
	URL       string
	AnonKey   string
	JWTSecret string
}

// User is the provider's view of the signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is what gets persisted in the keyring after sign-in.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	User         User      `json:"user"`
}

// Expired reports whether the session carries an expiry that has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Authenticator is the opaque identity provider.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	ValidateToken(ctx context.Context, token string) (User, error)
}

// AuthClient talks to the provider over HTTP and verifies tokens locally
// when a JWT secret is configured.
type AuthClient struct {
	config AuthConfig
	client *http.Client
	now    func() time.Time
}

var _ Authenticator = (*AuthClient)(nil)

func NewAuthClient(config AuthConfig) *AuthClient {
	return &AuthClient{
		config: config,
		client: &http.Client{Timeout: constants.AuthRequestTimeout},
		now:    time.Now,
	}
}

func (c *AuthClient) endpoint(path string) string {
	return strings.TrimRight(c.config.URL, "/") + path
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

type providerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"msg"`
}

func readProviderError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var pe providerError
	if json.Unmarshal(body, &pe) == nil {
		for _, msg := range []string{pe.ErrorDescription, pe.Message, pe.Error} {
			if msg != "" {
				return fmt.Errorf("auth provider returned %d: %s", resp.StatusCode, msg)
			}
		}
	}
	return fmt.Errorf("auth provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// SignInWithPassword exchanges email and password for a session.
func (c *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	if c.config.URL == "" {
		return Session{}, ErrAuthNotConfigured
	}

	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/auth/v1/token?grant_type=password"), bytes.NewReader(payload))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.config.AnonKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Session{}, readProviderError(resp)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Session{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" || tr.User.ID == "" {
		return Session{}, errors.New("auth provider returned an incomplete session")
	}

	session := Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		User:         tr.User,
	}
	switch {
	case tr.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(tr.ExpiresAt, 0).UTC()
	case tr.ExpiresIn > 0:
		session.ExpiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second).UTC()
	}
	return session, nil
}

// ValidateToken prefers local HMAC verification and falls back to the
// provider's user endpoint.
func (c *AuthClient) ValidateToken(ctx context.Context, token string) (User, error) {
	if c.config.JWTSecret == "" && c.config.URL == "" {
		return User{}, ErrAuthNotConfigured
	}

	if c.config.JWTSecret != "" {
		user, err := c.validateLocal(token)
		if err == nil || c.config.URL == "" {
			return user, err
		}
	}
	return c.validateRemote(ctx, token)
}

func (c *AuthClient) validateLocal(token string) (User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(c.config.JWTSecret), nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		return User{}, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid {
		return User{}, errors.New("jwt invalid")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return User{}, errors.New("jwt has no subject")
	}
	email, _ := claims["email"].(string)
	return User{ID: sub, Email: email}, nil
}

func (c *AuthClient) validateRemote(ctx context.Context, token string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/auth/v1/user"), nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.config.AnonKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("failed to validate token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, readProviderError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	if user.ID == "" {
		return User{}, errors.New("auth provider returned no user id")
	}
	return user, nil
}

// TokenFromCallback accepts either a bare access token or the redirect URL the
// provider sends after sign-in, and returns the access token.
func TokenFromCallback(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("access token cannot be empty")
	}
	if !strings.Contains(input, "access_token=") {
		return input, nil
	}

	raw := input
	if u, err := url.Parse(input); err == nil {
		switch {
		case strings.Contains(u.Fragment, "access_token="):
			raw = u.Fragment
		case strings.Contains(u.RawQuery, "access_token="):
			raw = u.RawQuery
		}
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse callback: %w", err)
	}
	token := values.Get("access_token")
	if token == "" {
		return "", errors.New("callback does not contain an access token")
	}
	return token, nil
}
