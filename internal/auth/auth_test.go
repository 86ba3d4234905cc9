package auth

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvToken, "")
	return home
}

func TestGetToken_NotLoggedIn(t *testing.T) {
	isolate(t)
	ti, err := GetToken()
	if err != nil || ti != nil {
		t.Fatalf("expected nil token and nil error, got %+v, %v", ti, err)
	}
}

func TestSetToken_SavesOwnerOnlyAndStripsBearer(t *testing.T) {
	home := isolate(t)
	if err := SetToken("Bearer abc123", nil); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	fi, err := os.Stat(filepath.Join(home, ".tada", credFileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", fi.Mode().Perm())
	}
	ti, err := GetToken()
	if err != nil || ti == nil {
		t.Fatalf("GetToken: %+v, %v", ti, err)
	}
	if ti.Token != "abc123" || ti.Source != "file" {
		t.Fatalf("unexpected token info %+v", ti)
	}

	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if err := DeleteToken(); err != nil {
		t.Fatalf("second DeleteToken should be a no-op: %v", err)
	}
}

func TestGetToken_EnvOverridesFile(t *testing.T) {
	isolate(t)
	if err := SetToken("fromfile", nil); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	t.Setenv(EnvToken, "bearer fromenv")
	ti, _ := GetToken()
	if ti == nil || ti.Token != "fromenv" || ti.Source != "env" {
		t.Fatalf("expected env token, got %+v", ti)
	}
}

func TestSetToken_EmptyRejected(t *testing.T) {
	isolate(t)
	if err := SetToken("   ", nil); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestSetToken_ExpiryFromJWT(t *testing.T) {
	isolate(t)
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"me","exp":4102444800}`))
	if err := SetToken("h."+payload+".s", nil); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	ti, _ := GetToken()
	if ti == nil || ti.ExpiresAt == nil {
		t.Fatalf("expected expiry from exp claim, got %+v", ti)
	}
	if ti.ExpiresAt.Year() != 2100 || ti.Expired(time.Now()) {
		t.Fatalf("unexpected expiry %v", ti.ExpiresAt)
	}

	claims, ok := Claims(ti.Token)
	if !ok || claims != `{"sub":"me","exp":4102444800}` {
		t.Fatalf("unexpected claims %q ok=%v", claims, ok)
	}
	if _, ok := Claims("opaque"); ok {
		t.Fatalf("opaque tokens have no claims")
	}
}
