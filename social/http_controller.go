package social

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-router"

	auth "github.com/xErr0Ropx876/UniResources"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController handles social auth HTTP routes.
type HTTPController struct {
	authenticator *SocialAuthenticator
	config        HTTPConfig
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// PathPrefix for routes (default: "/auth/social")
	PathPrefix string

	// CookieName for storing the JWT (default: "user")
	CookieName string

	// CookieSecure sets the Secure flag on cookies
	CookieSecure bool

	// CookieHTTPOnly sets the HttpOnly flag on cookies
	CookieHTTPOnly bool

	// CookieSameSite sets the SameSite attribute (e.g. "Lax", "Strict", "None")
	CookieSameSite string

	// SuccessRedirect is the default redirect after successful auth
	SuccessRedirect string

	// ErrorRedirect is the redirect for auth errors
	ErrorRedirect string

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error
}

// NewHTTPController creates a new social auth HTTP controller.
func NewHTTPController(authenticator *SocialAuthenticator, cfg HTTPConfig) *HTTPController {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/auth/social"
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "user"
	}
	if cfg.CookieSameSite == "" {
		cfg.CookieSameSite = "Lax"
	}
	if cfg.SuccessRedirect == "" {
		cfg.SuccessRedirect = "/dashboard"
	}
	if cfg.ErrorRedirect == "" {
		cfg.ErrorRedirect = "/login"
	}

	return &HTTPController{
		authenticator: authenticator,
		config:        cfg,
	}
}

// RegisterRoutes registers social auth routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/providers", c.ListProviders)
	group.Get("/:provider/callback", c.Callback)
	group.Get("/:provider", c.BeginAuth)
}

// ListProviders returns available social providers.
func (c *HTTPController) ListProviders(ctx router.Context) error {
	providers := c.authenticator.ListProviders()
	return ctx.JSON(router.StatusOK, map[string]any{
		"providers": providers,
	})
}

// BeginAuth starts the OAuth flow.
func (c *HTTPController) BeginAuth(ctx router.Context) error {
	providerName := ctx.Param("provider")

	redirectURL := ctx.Query("redirect_url")
	if redirectURL == "" {
		redirectURL = c.config.SuccessRedirect
	}

	redirect, err := c.authenticator.BeginAuth(
		ctx.Context(),
		providerName,
		WithRedirectURL(redirectURL),
	)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.Redirect(redirect.URL, http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback.
func (c *HTTPController) Callback(ctx router.Context) error {
	providerName := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if errCode := ctx.Query("error"); errCode != "" {
		errDesc := ctx.Query("error_description")
		redirectURL := appendQueryParam(c.config.ErrorRedirect, "oauth_error", errCode)
		if errDesc != "" {
			redirectURL = appendQueryParam(redirectURL, "desc", errDesc)
		}
		return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
	}

	if code == "" || state == "" {
		redirectURL := appendQueryParam(c.config.ErrorRedirect, "error", "missing_params")
		return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
	}

	result, err := c.authenticator.CompleteAuth(ctx.Context(), providerName, code, state)
	if err != nil {
		return c.handleError(ctx, err)
	}

	c.setAuthCookie(ctx, result.Token)

	redirectURL := result.RedirectURL
	if redirectURL == "" {
		redirectURL = c.config.SuccessRedirect
	}

	if result.IsNewUser {
		redirectURL = appendQueryParam(redirectURL, "new_user", "true")
	}

	return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
}

func (c *HTTPController) setAuthCookie(ctx router.Context, token string) {
	ctx.Cookie(&router.Cookie{
		Name:     c.config.CookieName,
		Value:    token,
		Path:     "/",
		Secure:   c.config.CookieSecure,
		HTTPOnly: c.config.CookieHTTPOnly,
		SameSite: c.config.CookieSameSite,
	})
}

// handleError sends the user back to the login page. A ban carries its
// expiry in the error message so the page can show it; everything else
// collapses to the error's message.
func (c *HTTPController) handleError(ctx router.Context, err error) error {
	if c.config.ErrorHandler != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	redirectURL := appendQueryParam(c.config.ErrorRedirect, "error", err.Error())
	if auth.IsAccountBanned(err) {
		if until, ok := auth.BannedUntil(err); ok {
			redirectURL = appendQueryParam(redirectURL, "banned_until", until.Format("2006-01-02T15:04:05Z07:00"))
		}
	}

	return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
}

func appendQueryParam(rawURL, key, value string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err == nil {
		query := parsed.Query()
		query.Set(key, value)
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
