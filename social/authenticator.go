package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	auth "github.com/xErr0Ropx876/UniResources"
)

// TokenIssuer mints the session claim set for a linked account. The
// issuer re-resolves the canonical record by email, so the claims carry
// the store-minted id and role rather than anything provider-asserted.
type TokenIssuer interface {
	IssueForEmail(ctx context.Context, email string) (string, error)
}

// SocialAuthenticator orchestrates social login flows. Its provider map
// doubles as the allow-list: a provider that was never registered cannot
// begin or complete a flow.
type SocialAuthenticator struct {
	providers    map[string]SocialProvider
	stateManager StateManager
	linker       Linker
	tokenIssuer  TokenIssuer
	logger       auth.Logger
	config       SocialAuthConfig
}

// SocialAuthConfig configures the social authenticator.
type SocialAuthConfig struct {
	DefaultRedirectURL string
	StateEncryptionKey []byte
	StateHMACKey       []byte
	StateTTL           time.Duration
}

// SocialAuthOption configures the social authenticator.
type SocialAuthOption func(*SocialAuthenticator)

// NewSocialAuthenticator creates a new social authenticator.
func NewSocialAuthenticator(
	users auth.Users,
	tokenIssuer TokenIssuer,
	config SocialAuthConfig,
	opts ...SocialAuthOption,
) *SocialAuthenticator {
	cfg := config
	if cfg.StateTTL == 0 {
		cfg.StateTTL = 10 * time.Minute
	}

	sa := &SocialAuthenticator{
		providers:   make(map[string]SocialProvider),
		tokenIssuer: tokenIssuer,
		logger:      auth.DefaultLogger(),
		config:      cfg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sa)
		}
	}

	if sa.stateManager == nil {
		sa.stateManager = NewEncryptedStateManager(
			cfg.StateEncryptionKey,
			cfg.StateHMACKey,
			cfg.StateTTL,
		)
	}

	if sa.linker == nil {
		sa.linker = NewAccountLinker(users).WithLogger(sa.logger)
	}

	return sa
}

// WithProvider registers a social provider.
func WithProvider(provider SocialProvider) SocialAuthOption {
	return func(sa *SocialAuthenticator) {
		if provider == nil {
			return
		}
		sa.providers[provider.Name()] = provider
	}
}

// WithStateManager sets a custom state manager.
func WithStateManager(sm StateManager) SocialAuthOption {
	return func(sa *SocialAuthenticator) {
		sa.stateManager = sm
	}
}

// WithLinker sets a custom account linker.
func WithLinker(l Linker) SocialAuthOption {
	return func(sa *SocialAuthenticator) {
		sa.linker = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger auth.Logger) SocialAuthOption {
	return func(sa *SocialAuthenticator) {
		if logger != nil {
			sa.logger = logger
		}
	}
}

// BeginAuth starts the OAuth flow for a provider.
func (sa *SocialAuthenticator) BeginAuth(
	ctx context.Context,
	providerName string,
	opts ...BeginAuthOption,
) (*AuthRedirect, error) {
	provider, ok := sa.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, providerName)
	}

	if sa.stateManager == nil {
		return nil, ErrInvalidState
	}

	cfg := &beginAuthConfig{
		redirectURL: sa.config.DefaultRedirectURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	codeChallenge := computeCodeChallenge(codeVerifier)

	state := &OAuthState{
		Nonce:        generateNonce(),
		Provider:     providerName,
		CodeVerifier: codeVerifier,
		RedirectURL:  cfg.redirectURL,
		IssuedAt:     time.Now().Unix(),
		ExpiresAt:    time.Now().Add(sa.config.StateTTL).Unix(),
	}

	stateToken, err := sa.stateManager.Encode(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	authURL := provider.AuthCodeURL(stateToken, WithPKCE(codeChallenge, "S256"))

	return &AuthRedirect{
		URL:      authURL,
		State:    stateToken,
		Provider: providerName,
	}, nil
}

// CompleteAuth finishes the OAuth flow after the provider callback:
// state integrity, code exchange, profile fetch, identity linking, and
// finally the claim set minted from the canonical record.
func (sa *SocialAuthenticator) CompleteAuth(
	ctx context.Context,
	providerName string,
	code string,
	stateToken string,
) (*AuthResult, error) {
	if sa.stateManager == nil {
		return nil, ErrInvalidState
	}

	state, err := sa.stateManager.Decode(stateToken)
	if err != nil {
		if errors.Is(err, ErrStateExpired) {
			return nil, ErrStateExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if state.Provider != providerName {
		return nil, fmt.Errorf("%w: provider mismatch", ErrInvalidState)
	}

	if time.Now().Unix() > state.ExpiresAt {
		return nil, ErrStateExpired
	}

	provider, ok := sa.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, providerName)
	}

	token, err := provider.Exchange(ctx, code, WithCodeVerifier(state.CodeVerifier))
	if err != nil {
		return nil, wrapProviderError(ErrTokenExchangeFailed, providerName, "exchange", err)
	}

	profile, err := provider.UserInfo(ctx, token)
	if err != nil {
		return nil, wrapProviderError(ErrUserInfoFailed, providerName, "user_info", err)
	}

	if sa.linker == nil {
		return nil, auth.ErrIdentityNotFound
	}

	result, err := sa.linker.Resolve(ctx, profile)
	if err != nil {
		return nil, err
	}
	if result == nil || result.User == nil {
		return nil, auth.ErrIdentityNotFound
	}

	jwtToken, err := sa.tokenIssuer.IssueForEmail(ctx, result.User.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{
		User:        result.User,
		Token:       jwtToken,
		IsNewUser:   result.IsNewUser,
		Provider:    providerName,
		Profile:     profile,
		RedirectURL: state.RedirectURL,
	}, nil
}

// ListProviders returns all registered providers.
func (sa *SocialAuthenticator) ListProviders() []ProviderInfo {
	var providers []ProviderInfo
	for name, p := range sa.providers {
		providers = append(providers, ProviderInfo{
			Name:    name,
			AuthURL: p.AuthCodeURL(""),
		})
	}
	return providers
}

// ProviderInfo describes an available provider.
type ProviderInfo struct {
	Name    string
	AuthURL string
}

// AuthRedirect contains the authorization URL for redirecting users.
type AuthRedirect struct {
	URL      string
	State    string
	Provider string
}

// AuthResult contains the result of a successful authentication.
type AuthResult struct {
	User        *auth.User
	Token       string
	IsNewUser   bool
	Provider    string
	Profile     *SocialProfile
	RedirectURL string
}

// BeginAuthOption configures the auth initiation.
type BeginAuthOption func(*beginAuthConfig)

type beginAuthConfig struct {
	redirectURL string
}

// WithRedirectURL sets the post-auth redirect URL.
func WithRedirectURL(url string) BeginAuthOption {
	return func(c *beginAuthConfig) {
		c.redirectURL = url
	}
}
