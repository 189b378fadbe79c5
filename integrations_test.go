package integrations_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	integrations "github.com/goliatone/go-integrations"
	"github.com/goliatone/go-integrations/cache"
	"github.com/goliatone/go-integrations/providers/hubspot"
)

// Exercises the whole connect flow through the public surface: begin, provider
// callback, token exchange against a fake endpoint, then credential pickup.
func TestConnectFlowEndToEnd(t *testing.T) {
	ctx := context.Background()

	tokenEndpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"token-e2e","token_type":"bearer","expires_in":1800}`))
	}))
	defer tokenEndpoint.Close()

	provider, err := hubspot.New(hubspot.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://app.example/callback",
		TokenURL:     tokenEndpoint.URL,
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	svc, err := integrations.NewService(
		integrations.Config{},
		integrations.WithProvider(provider),
		integrations.WithCache(cache.NewMemoryStore(nil)),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	authURL, err := svc.BeginAuthorization(ctx, "u1", "o1")
	if err != nil {
		t.Fatalf("begin authorization: %v", err)
	}
	parsed, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}

	callback := url.Values{}
	callback.Set("code", "abc")
	callback.Set("state", parsed.Query().Get("state"))

	result, err := svc.HandleCallback(ctx, integrations.CallbackParamsFromQuery(callback))
	if err != nil {
		t.Fatalf("handle callback: %v", err)
	}
	if !strings.Contains(result.HTML, "window.close()") {
		t.Fatalf("expected close-window payload")
	}

	credential, err := svc.ConsumeCredentials(ctx, "u1", "o1")
	if err != nil {
		t.Fatalf("consume credentials: %v", err)
	}
	if !strings.Contains(string(credential), "token-e2e") {
		t.Fatalf("unexpected credential %q", credential)
	}

	if _, err := svc.ConsumeCredentials(ctx, "u1", "o1"); err == nil {
		t.Fatalf("expected credentials to be consumed exactly once")
	}
}
