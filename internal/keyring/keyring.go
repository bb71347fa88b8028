package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested entry
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(user string) (string, error) {
	secret, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func set(user, what, secret string) error {
	if secret == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, user, secret); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func remove(user, what string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetConnectionString retrieves the remote database connection string.
// Returns ErrNotFound if none is stored.
func GetConnectionString() (string, error) {
	return get(constants.KeyringUserDB)
}

// SetConnectionString stores the remote database connection string.
func SetConnectionString(connStr string) error {
	return set(constants.KeyringUserDB, "connection string", connStr)
}

// DeleteConnectionString removes the remote database connection string.
func DeleteConnectionString() error {
	return remove(constants.KeyringUserDB, "connection string")
}

// GetSession retrieves the serialized auth session.
// Returns ErrNotFound when the user is signed out.
func GetSession() (string, error) {
	return get(constants.KeyringUserSession)
}

// SetSession stores the serialized auth session.
func SetSession(session string) error {
	return set(constants.KeyringUserSession, "session", session)
}

// DeleteSession removes the stored auth session.
func DeleteSession() error {
	return remove(constants.KeyringUserSession, "session")
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
