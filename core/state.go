package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const stateNonceBytes = 32

// EncodeAuthState serializes the state payload for transport in the redirect
// URL: URL-safe base64 over the JSON form, so the callback is self-describing
// and needs no server-side session.
func EncodeAuthState(state AuthState) (string, error) {
	if err := state.Validate(); err != nil {
		return "", err
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("core: encode auth state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(payload), nil
}

// DecodeAuthState reverses EncodeAuthState. Both padded and raw URL-safe
// encodings are accepted.
func DecodeAuthState(encoded string) (AuthState, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return AuthState{}, fmt.Errorf("core: auth state is required")
	}
	payload, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		payload, err = base64.RawURLEncoding.DecodeString(encoded)
	}
	if err != nil {
		return AuthState{}, fmt.Errorf("core: decode auth state: %w", err)
	}
	var state AuthState
	if err := json.Unmarshal(payload, &state); err != nil {
		return AuthState{}, fmt.Errorf("core: decode auth state: %w", err)
	}
	if err := state.Validate(); err != nil {
		return AuthState{}, err
	}
	return state, nil
}

func generateNonce() (string, error) {
	raw := make([]byte, stateNonceBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("core: generate auth state nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func nonceEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
