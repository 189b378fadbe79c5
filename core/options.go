package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	cache           KeyValueStore
	provider        Provider
	now             func() time.Time
	newFlowID       func() string
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithCache(store KeyValueStore) Option {
	return func(b *serviceBuilder) {
		b.cache = store
	}
}

func WithProvider(provider Provider) Option {
	return func(b *serviceBuilder) {
		b.provider = provider
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *serviceBuilder) {
		b.now = now
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("integrations", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     connectErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// EnvRawConfigLoader sources the deployment-facing settings from the process
// environment: CLIENT_ID, CLIENT_SECRET, REDIRECT_URI, and CACHE_HOST.
type EnvRawConfigLoader struct {
	Lookup func(key string) (string, bool)
}

func (l EnvRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	oauth := map[string]any{}
	if value, ok := lookup("CLIENT_ID"); ok && strings.TrimSpace(value) != "" {
		oauth["client_id"] = strings.TrimSpace(value)
	}
	if value, ok := lookup("CLIENT_SECRET"); ok && strings.TrimSpace(value) != "" {
		oauth["client_secret"] = strings.TrimSpace(value)
	}
	if value, ok := lookup("REDIRECT_URI"); ok && strings.TrimSpace(value) != "" {
		oauth["redirect_uri"] = strings.TrimSpace(value)
	}

	raw := map[string]any{}
	if len(oauth) > 0 {
		raw["oauth"] = oauth
	}
	if value, ok := lookup("CACHE_HOST"); ok && strings.TrimSpace(value) != "" {
		raw["cache"] = map[string]any{"addr": strings.TrimSpace(value)}
	}
	return raw, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	oauth := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.OAuth.ClientID) != "" {
		oauth["client_id"] = cfg.OAuth.ClientID
	}
	if includeZero || strings.TrimSpace(cfg.OAuth.ClientSecret) != "" {
		oauth["client_secret"] = cfg.OAuth.ClientSecret
	}
	if includeZero || strings.TrimSpace(cfg.OAuth.RedirectURI) != "" {
		oauth["redirect_uri"] = cfg.OAuth.RedirectURI
	}
	if includeZero || len(cfg.OAuth.Scopes) > 0 {
		oauth["scopes"] = append([]string(nil), cfg.OAuth.Scopes...)
	}
	if includeZero || cfg.OAuth.StateTTLSeconds > 0 {
		oauth["state_ttl_seconds"] = cfg.OAuth.StateTTLSeconds
	}
	if includeZero || cfg.OAuth.CredentialTTLSeconds > 0 {
		oauth["credential_ttl_seconds"] = cfg.OAuth.CredentialTTLSeconds
	}
	if len(oauth) > 0 {
		layer["oauth"] = oauth
	}

	if includeZero || strings.TrimSpace(cfg.Cache.Addr) != "" {
		layer["cache"] = map[string]any{"addr": cfg.Cache.Addr}
	}
	return layer
}
