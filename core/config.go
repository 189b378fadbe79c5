package core

import (
	"fmt"
	"strings"
	"time"
)

// OAuthConfig holds the provider application credentials plus the lifecycle
// windows of the two cached secrets. StateTTLSeconds bounds how long the user
// has to complete the provider prompt; CredentialTTLSeconds bounds how long
// an exchanged credential waits to be picked up. They default to the same
// value but are deliberately separate knobs.
type OAuthConfig struct {
	ClientID             string   `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret         string   `koanf:"client_secret" mapstructure:"client_secret"`
	RedirectURI          string   `koanf:"redirect_uri" mapstructure:"redirect_uri"`
	Scopes               []string `koanf:"scopes" mapstructure:"scopes"`
	StateTTLSeconds      int      `koanf:"state_ttl_seconds" mapstructure:"state_ttl_seconds"`
	CredentialTTLSeconds int      `koanf:"credential_ttl_seconds" mapstructure:"credential_ttl_seconds"`
}

type CacheConfig struct {
	Addr string `koanf:"addr" mapstructure:"addr"`
}

type Config struct {
	ServiceName string      `koanf:"service_name" mapstructure:"service_name"`
	OAuth       OAuthConfig `koanf:"oauth" mapstructure:"oauth"`
	Cache       CacheConfig `koanf:"cache" mapstructure:"cache"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "integrations",
		OAuth: OAuthConfig{
			StateTTLSeconds:      600,
			CredentialTTLSeconds: 600,
		},
		Cache: CacheConfig{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.OAuth.StateTTLSeconds < 0 {
		return fmt.Errorf("core: oauth.state_ttl_seconds must not be negative")
	}
	if c.OAuth.CredentialTTLSeconds < 0 {
		return fmt.Errorf("core: oauth.credential_ttl_seconds must not be negative")
	}
	return nil
}

func (c Config) stateTTL() time.Duration {
	if c.OAuth.StateTTLSeconds <= 0 {
		return 600 * time.Second
	}
	return time.Duration(c.OAuth.StateTTLSeconds) * time.Second
}

func (c Config) credentialTTL() time.Duration {
	if c.OAuth.CredentialTTLSeconds <= 0 {
		return 600 * time.Second
	}
	return time.Duration(c.OAuth.CredentialTTLSeconds) * time.Second
}
