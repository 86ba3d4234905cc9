// Package auth stores the bearer token used by the remote backend and the
// API server.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	credFileName = "credentials.json"
	EnvToken     = "TADA_TOKEN"
)

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT exp)
}

// Expired reports whether the token carries an expiry in the past.
func (ti TokenInfo) Expired(now time.Time) bool {
	return ti.ExpiresAt != nil && now.After(*ti.ExpiresAt)
}

// Dir is ~/.tada, shared with the config and data files.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

func credFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

// GetToken returns the env override if set, then the saved token.
// A nil TokenInfo with a nil error means not logged in.
func GetToken() (*TokenInfo, error) {
	env := strings.TrimSpace(os.Getenv(EnvToken))
	if env != "" {
		return &TokenInfo{Token: StripBearer(env), Source: "env"}, nil
	}

	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = StripBearer(ti.Token)
	return &ti, nil
}

// SetToken saves token to ~/.tada/credentials.json (0600). When expires is
// nil and the token is a JWT with an exp claim, that claim is used.
func SetToken(token string, expires *time.Time) error {
	token = StripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if expires == nil {
		expires = jwtExpiry(token)
	}
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, credFileName), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func DeleteToken() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func StripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

// Claims decodes the payload of a JWT without verifying it. ok is false for
// opaque tokens.
func Claims(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	p, err := decodeB64URL(parts[1])
	if err != nil {
		return "", false
	}
	return p, true
}

func jwtExpiry(token string) *time.Time {
	payload, ok := Claims(token)
	if !ok {
		return nil
	}
	var c struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal([]byte(payload), &c); err != nil || c.Exp == 0 {
		return nil
	}
	t := time.Unix(c.Exp, 0).UTC()
	return &t
}

func decodeB64URL(s string) (string, error) {
	dec, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}
