// Package integrations mediates OAuth 2.0 authorization-code exchanges with
// a CRM provider and temporarily caches the resulting credentials and
// records for a consuming application.
package integrations

import "github.com/goliatone/go-integrations/core"

type Config = core.Config

type OAuthConfig = core.OAuthConfig

type CacheConfig = core.CacheConfig

type Option = core.Option

type Service = core.Service

type ConnectService = core.ConnectService

type KeyValueStore = core.KeyValueStore

type Provider = core.Provider

type AuthState = core.AuthState

type CallbackParams = core.CallbackParams

type CallbackResult = core.CallbackResult

type IntegrationItem = core.IntegrationItem

type ItemType = core.ItemType

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithCache           = core.WithCache
	WithProvider        = core.WithProvider
	WithClock           = core.WithClock
)

var CallbackParamsFromQuery = core.CallbackParamsFromQuery

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func DefaultConfig() Config {
	return core.DefaultConfig()
}
