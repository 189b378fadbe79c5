package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ItemType classifies a normalized provider record.
type ItemType string

const (
	ItemTypeContact ItemType = "contact"
	ItemTypeCompany ItemType = "company"
)

// IntegrationItem is the normalized shape of an external CRM record handed to
// downstream consumers. URL is nil when the provider exposes no canonical
// link for the record.
type IntegrationItem struct {
	ID   string   `json:"id"`
	Type ItemType `json:"type"`
	Name string   `json:"name"`
	URL  *string  `json:"url,omitempty"`
}

// AuthState is the anti-forgery payload carried through the OAuth redirect.
// The wire field for the nonce is "state" to match what providers echo back.
type AuthState struct {
	Nonce  string `json:"state"`
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

func (s AuthState) Validate() error {
	if strings.TrimSpace(s.Nonce) == "" {
		return fmt.Errorf("core: auth state nonce is required")
	}
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("core: auth state user id is required")
	}
	if strings.TrimSpace(s.OrgID) == "" {
		return fmt.Errorf("core: auth state org id is required")
	}
	return nil
}

// AccessTokenFromCredential extracts the bearer token from a raw provider
// token response.
func AccessTokenFromCredential(credential []byte) (string, error) {
	var decoded struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(credential, &decoded); err != nil {
		return "", fmt.Errorf("core: decode credential: %w", err)
	}
	token := strings.TrimSpace(decoded.AccessToken)
	if token == "" {
		return "", fmt.Errorf("core: credential is missing an access token")
	}
	return token, nil
}

func stateKey(orgID, userID string) string {
	return fmt.Sprintf("state:%s:%s", orgID, userID)
}

func credentialsKey(orgID, userID string) string {
	return fmt.Sprintf("credentials:%s:%s", orgID, userID)
}
