package token

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestOpaque(t *testing.T) {
	s, err := Opaque(16)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(raw) != 16 {
		t.Fatalf("decode %q: %v (len %d)", s, err, len(raw))
	}
	if _, err := Opaque(0); err == nil {
		t.Fatal("zero length accepted")
	}
}

func TestAPIKeySecret(t *testing.T) {
	a, err := APIKeySecret()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := APIKeySecret()
	if a == b {
		t.Fatal("secrets repeat")
	}
	if !strings.HasPrefix(a, APIKeySecretPrefix) || len(a) != len(APIKeySecretPrefix)+43 {
		t.Fatalf("unexpected secret shape %q", a)
	}
}
