package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-integrations/cache"
)

// closeWindowHTML is the one externally visible side effect of a successful
// callback: a static page that closes the OAuth popup.
const closeWindowHTML = `<html>
    <script>
        window.close();
    </script>
</html>`

// CallbackParams carries the query parameters the provider sends to the
// redirect URI.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

func CallbackParamsFromQuery(values url.Values) CallbackParams {
	return CallbackParams{
		Code:             values.Get("code"),
		State:            values.Get("state"),
		Error:            values.Get("error"),
		ErrorDescription: values.Get("error_description"),
	}
}

type CallbackResult struct {
	HTML string
}

// Service runs the OAuth connect flow for a single CRM provider: it issues
// state tokens, validates callbacks, drives the code-for-token exchange, and
// hands exchanged credentials off through the cache exactly once.
type Service struct {
	config      Config
	logger      Logger
	metrics     MetricsRecorder
	errorMapper ErrorMapper
	cache       KeyValueStore
	provider    Provider
	now         func() time.Time
	newFlowID   func() string
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("integrations", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("integrations"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = connectErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = func() time.Time {
			return time.Now().UTC()
		}
	}
	if builder.newFlowID == nil {
		builder.newFlowID = uuid.NewString
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.provider == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: provider is required"))
	}
	if builder.cache == nil {
		builder.cache = cache.New(cache.Config{Addr: finalConfig.Cache.Addr})
	}

	return &Service{
		config:      finalConfig,
		logger:      logger,
		metrics:     builder.metricsRecorder,
		errorMapper: builder.errorMapper,
		cache:       builder.cache,
		provider:    builder.provider,
		now:         builder.now,
		newFlowID:   builder.newFlowID,
	}, nil
}

// BeginAuthorization issues a fresh single-use state token for the user/org
// pair and returns the provider authorization URL carrying it. A second call
// before the callback replaces the previous token.
func (s *Service) BeginAuthorization(ctx context.Context, userID, orgID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	flowID := s.newFlowID()
	fields := map[string]any{
		"provider_id": s.provider.ID(),
		"user_id":     strings.TrimSpace(userID),
		"org_id":      strings.TrimSpace(orgID),
		"flow_id":     flowID,
	}

	authURL, err := s.beginAuthorization(ctx, userID, orgID)
	s.observeOperation(ctx, startedAt, "begin_authorization", err, fields)
	if err != nil {
		return "", s.mapError(err)
	}
	return authURL, nil
}

func (s *Service) beginAuthorization(ctx context.Context, userID, orgID string) (string, error) {
	userID = strings.TrimSpace(userID)
	orgID = strings.TrimSpace(orgID)
	if userID == "" {
		return "", ErrBadInput("user id is required")
	}
	if orgID == "" {
		return "", ErrBadInput("org id is required")
	}

	nonce, err := generateNonce()
	if err != nil {
		return "", err
	}
	state := AuthState{Nonce: nonce, UserID: userID, OrgID: orgID}

	payload, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("core: encode auth state: %w", err)
	}
	s.cache.Put(ctx, stateKey(orgID, userID), payload, s.config.stateTTL())

	encoded, err := EncodeAuthState(state)
	if err != nil {
		return "", err
	}
	return s.provider.AuthorizationURL(encoded)
}

// HandleCallback validates the provider redirect and, on success, exchanges
// the authorization code and parks the resulting credential for pickup. The
// saved state token is deleted once looked up, whatever the outcome, so a
// replayed callback always fails.
func (s *Service) HandleCallback(ctx context.Context, params CallbackParams) (CallbackResult, error) {
	if s == nil {
		return CallbackResult{}, fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	fields := map[string]any{
		"provider_id": s.provider.ID(),
		"flow_id":     s.newFlowID(),
	}

	result, state, err := s.handleCallback(ctx, params)
	if state.UserID != "" {
		fields["user_id"] = state.UserID
		fields["org_id"] = state.OrgID
	}
	s.observeOperation(ctx, startedAt, "handle_callback", err, fields)
	if err != nil {
		return CallbackResult{}, s.mapError(err)
	}
	return result, nil
}

func (s *Service) handleCallback(ctx context.Context, params CallbackParams) (CallbackResult, AuthState, error) {
	if strings.TrimSpace(params.Error) != "" {
		return CallbackResult{}, AuthState{}, ErrProviderDenied(params.Error, params.ErrorDescription)
	}

	state, err := DecodeAuthState(params.State)
	if err != nil {
		return CallbackResult{}, AuthState{}, ErrMalformedState(err)
	}

	key := stateKey(state.OrgID, state.UserID)
	saved, ok := s.cache.Get(ctx, key)
	if !ok {
		return CallbackResult{}, state, ErrStateExpired()
	}
	// Single use: the saved token is gone after one lookup, match or not.
	s.cache.Delete(ctx, key)

	var savedState AuthState
	if err := json.Unmarshal(saved, &savedState); err != nil {
		return CallbackResult{}, state, ErrStateExpired()
	}
	if !nonceEqual(state.Nonce, savedState.Nonce) {
		return CallbackResult{}, state, ErrStateMismatch()
	}

	code := strings.TrimSpace(params.Code)
	if code == "" {
		return CallbackResult{}, state, ErrBadInput("authorization code is required")
	}

	credential, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return CallbackResult{}, state, err
	}

	s.cache.Put(ctx, credentialsKey(state.OrgID, state.UserID), credential, s.config.credentialTTL())

	return CallbackResult{HTML: closeWindowHTML}, state, nil
}

// ConsumeCredentials returns the parked credential for the user/org pair and
// deletes it: an at-most-once handoff between the callback and whatever
// process needs the token next.
func (s *Service) ConsumeCredentials(ctx context.Context, userID, orgID string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	fields := map[string]any{
		"provider_id": s.provider.ID(),
		"user_id":     strings.TrimSpace(userID),
		"org_id":      strings.TrimSpace(orgID),
	}

	credential, err := s.consumeCredentials(ctx, userID, orgID)
	s.observeOperation(ctx, startedAt, "consume_credentials", err, fields)
	if err != nil {
		return nil, s.mapError(err)
	}
	return credential, nil
}

func (s *Service) consumeCredentials(ctx context.Context, userID, orgID string) ([]byte, error) {
	userID = strings.TrimSpace(userID)
	orgID = strings.TrimSpace(orgID)
	if userID == "" {
		return nil, ErrBadInput("user id is required")
	}
	if orgID == "" {
		return nil, ErrBadInput("org id is required")
	}

	key := credentialsKey(orgID, userID)
	credential, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, ErrCredentialsNotFound()
	}
	s.cache.Delete(ctx, key)
	return credential, nil
}

// ListItems fetches the provider's records with the exchanged credential and
// returns them in normalized form.
func (s *Service) ListItems(ctx context.Context, credential []byte) ([]IntegrationItem, error) {
	if s == nil {
		return nil, fmt.Errorf("core: service is not configured")
	}
	startedAt := s.now()
	fields := map[string]any{
		"provider_id": s.provider.ID(),
	}

	items, err := s.listItems(ctx, credential)
	if err == nil {
		fields["item_count"] = len(items)
	}
	s.observeOperation(ctx, startedAt, "list_items", err, fields)
	if err != nil {
		return nil, s.mapError(err)
	}
	return items, nil
}

func (s *Service) listItems(ctx context.Context, credential []byte) ([]IntegrationItem, error) {
	accessToken, err := AccessTokenFromCredential(credential)
	if err != nil {
		return nil, ErrMissingAccessToken()
	}
	return s.provider.ListItems(ctx, accessToken)
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}
