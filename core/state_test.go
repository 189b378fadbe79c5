package core

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestEncodeDecodeAuthState_RoundTrip(t *testing.T) {
	nonce, err := generateNonce()
	if err != nil {
		t.Fatalf("generate nonce: %v", err)
	}
	original := AuthState{Nonce: nonce, UserID: "u1", OrgID: "o1"}

	encoded, err := EncodeAuthState(original)
	if err != nil {
		t.Fatalf("encode auth state: %v", err)
	}
	decoded, err := DecodeAuthState(encoded)
	if err != nil {
		t.Fatalf("decode auth state: %v", err)
	}
	if decoded != original {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, original)
	}
}

func TestDecodeAuthState_AcceptsRawEncoding(t *testing.T) {
	encoded, err := EncodeAuthState(AuthState{Nonce: "nonce", UserID: "u1", OrgID: "o1"})
	if err != nil {
		t.Fatalf("encode auth state: %v", err)
	}
	raw := strings.TrimRight(encoded, "=")

	decoded, err := DecodeAuthState(raw)
	if err != nil {
		t.Fatalf("decode raw-encoded auth state: %v", err)
	}
	if decoded.UserID != "u1" || decoded.OrgID != "o1" {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestDecodeAuthState_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "not base64", encoded: "%%%not-base64%%%"},
		{name: "not json", encoded: base64.URLEncoding.EncodeToString([]byte("plain text"))},
		{name: "missing fields", encoded: base64.URLEncoding.EncodeToString([]byte(`{"state":"n"}`))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeAuthState(tc.encoded); err == nil {
				t.Fatalf("expected decode failure")
			}
		})
	}
}

func TestGenerateNonce_EntropyAndEncoding(t *testing.T) {
	first, err := generateNonce()
	if err != nil {
		t.Fatalf("generate nonce: %v", err)
	}
	second, err := generateNonce()
	if err != nil {
		t.Fatalf("generate nonce: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct nonces")
	}

	raw, err := base64.RawURLEncoding.DecodeString(first)
	if err != nil {
		t.Fatalf("expected url-safe encoding: %v", err)
	}
	if len(raw) != stateNonceBytes {
		t.Fatalf("expected %d bytes of entropy, got %d", stateNonceBytes, len(raw))
	}
}

func TestNonceEqual(t *testing.T) {
	if !nonceEqual("abc", "abc") {
		t.Fatalf("expected equal nonces to match")
	}
	if nonceEqual("abc", "abd") {
		t.Fatalf("expected different nonces to mismatch")
	}
	if nonceEqual("abc", "abcd") {
		t.Fatalf("expected different lengths to mismatch")
	}
}
