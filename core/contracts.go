package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// KeyValueStore is the short-lived secret store the connect flow runs
// against. Implementations absorb their own failures: operations never return
// errors, and an absent or expired key reads as (nil, false).
type KeyValueStore interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
	Get(ctx context.Context, key string) ([]byte, bool)
	Delete(ctx context.Context, key string)
}

// Provider is a CRM provider integration: it builds the user-facing
// authorization URL, swaps an authorization code for a raw token response,
// and lists normalized records with an exchanged access token.
type Provider interface {
	ID() string
	AuthorizationURL(state string) (string, error)
	Exchange(ctx context.Context, code string) ([]byte, error)
	ListItems(ctx context.Context, accessToken string) ([]IntegrationItem, error)
}

// ConnectService is the surface the HTTP layer binds routes to.
type ConnectService interface {
	BeginAuthorization(ctx context.Context, userID, orgID string) (string, error)
	HandleCallback(ctx context.Context, params CallbackParams) (CallbackResult, error)
	ConsumeCredentials(ctx context.Context, userID, orgID string) ([]byte, error)
	ListItems(ctx context.Context, credential []byte) ([]IntegrationItem, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
