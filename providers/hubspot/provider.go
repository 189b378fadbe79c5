// Package hubspot implements the HubSpot CRM provider: authorization URL
// construction, the authorization-code token exchange, and normalized CRM
// object listing.
package hubspot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-integrations/core"
)

const (
	ProviderID        = "hubspot"
	DefaultAuthURL    = "https://app.hubspot.com/oauth/authorize"
	DefaultTokenURL   = "https://api.hubapi.com/oauth/v1/token"
	DefaultAPIBaseURL = "https://api.hubapi.com"

	defaultRequestTimeout = 30 * time.Second
	maxResponseBodyBytes  = 1 << 20 // 1 MiB
	defaultPageLimit      = 20
)

// DefaultScopes grant read access to contacts and companies plus the oauth
// scope HubSpot requires on every app.
var DefaultScopes = []string{
	"crm.objects.contacts.read",
	"crm.schemas.contacts.read",
	"crm.objects.companies.read",
	"crm.schemas.companies.read",
	"oauth",
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	AuthURL        string
	TokenURL       string
	APIBaseURL     string
	Scopes         []string
	RequestTimeout time.Duration
	HTTPClient     HTTPDoer
}

type Provider struct {
	cfg        Config
	httpClient HTTPDoer
}

func New(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("providers/hubspot: client id is required")
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("providers/hubspot: client secret is required")
	}
	if strings.TrimSpace(cfg.RedirectURI) == "" {
		return nil, fmt.Errorf("providers/hubspot: redirect uri is required")
	}

	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	cfg.RedirectURI = strings.TrimSpace(cfg.RedirectURI)
	if strings.TrimSpace(cfg.AuthURL) == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if strings.TrimSpace(cfg.TokenURL) == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	cfg.AuthURL = strings.TrimSpace(cfg.AuthURL)
	cfg.TokenURL = strings.TrimSpace(cfg.TokenURL)
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = append([]string(nil), DefaultScopes...)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &Provider{
		cfg:        cfg,
		httpClient: httpClient,
	}, nil
}

func (p *Provider) ID() string {
	return ProviderID
}

// AuthorizationURL builds the user-facing authorization URL carrying the
// encoded state parameter.
func (p *Provider) AuthorizationURL(state string) (string, error) {
	if p == nil {
		return "", fmt.Errorf("providers/hubspot: provider is nil")
	}
	state = strings.TrimSpace(state)
	if state == "" {
		return "", fmt.Errorf("providers/hubspot: state is required")
	}

	values := url.Values{}
	values.Set("client_id", p.cfg.ClientID)
	values.Set("redirect_uri", p.cfg.RedirectURI)
	values.Set("response_type", "code")
	values.Set("scope", strings.Join(p.cfg.Scopes, " "))
	values.Set("state", state)

	return p.cfg.AuthURL + "?" + values.Encode(), nil
}

// Exchange swaps an authorization code for the provider's raw token response.
// The response body is returned verbatim so the caller can park it without
// re-encoding; a non-2xx status surfaces as a token-exchange failure carrying
// the status and body.
func (p *Provider) Exchange(ctx context.Context, code string) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("providers/hubspot: provider is nil")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("providers/hubspot: auth code is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", p.cfg.RedirectURI)
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)

	requestCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(
		requestCtx,
		http.MethodPost,
		p.cfg.TokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)

	response, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("providers/hubspot: token request failed: %w", err)
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes+1))
	if readErr != nil {
		return nil, fmt.Errorf("providers/hubspot: read token response: %w", readErr)
	}
	if int64(len(body)) > maxResponseBodyBytes {
		return nil, fmt.Errorf("providers/hubspot: token response exceeds %d bytes", maxResponseBodyBytes)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, core.ErrTokenExchangeFailed(response.StatusCode, string(body))
	}
	return body, nil
}

var _ core.Provider = (*Provider)(nil)
