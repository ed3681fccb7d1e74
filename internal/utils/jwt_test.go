package utils

import (
	"errors"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("secret", 42, 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if at.Token == "" {
		t.Fatal("empty token")
	}
	if !at.Exp.After(time.Now()) {
		t.Fatal("token already expired at issue time")
	}

	uid, err := VerifyAccessToken("secret", at.Token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if uid != 42 {
		t.Fatalf("uid=%d, want 42", uid)
	}
}

func TestVerifyAccessTokenRejects(t *testing.T) {
	at, err := NewAccessToken("secret", 42, 5)
	if err != nil {
		t.Fatal(err)
	}
	expired, err := NewAccessToken("secret", 42, -5)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		secret string
		raw    string
	}{
		{"wrong secret", "other", at.Token},
		{"garbage", "secret", "not.a.jwt"},
		{"empty", "secret", ""},
		{"expired", "secret", expired.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := VerifyAccessToken(tc.secret, tc.raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err=%v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw length=%d, want 96", len(rt.Raw))
	}
	if !rt.Exp.After(time.Now().Add(6 * 24 * time.Hour)) {
		t.Fatal("expiry shorter than requested ttl")
	}

	// Hashing is deterministic and never echoes the raw token.
	h1, h2 := HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw)
	if h1 != h2 {
		t.Fatal("hash is not deterministic")
	}
	if h1 == rt.Raw {
		t.Fatal("hash equals raw token")
	}

	other, err := NewRefreshToken(7)
	if err != nil {
		t.Fatal(err)
	}
	if HashRefreshRaw(other.Raw) == h1 {
		t.Fatal("distinct tokens hash identically")
	}
}
