package routegate

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup = "cookie:user"

	ErrTokenMissing = errors.New("missing or malformed session token")
)

// Validator turns a raw token string into validated claims. Any error is
// treated as "no session": the gate evaluates the request as anonymous
// instead of failing it.
type Validator func(tokenString string) (Claims, error)

type Config struct {
	// Policy defaults to DefaultPolicy when nil.
	Policy *Policy

	// Validator is required.
	Validator Validator

	// ContextKey is the locals key validated claims are stored under when
	// the request is allowed through. Defaults to "user".
	ContextKey string

	// TokenLookup follows the "source:name" syntax, comma separated, e.g.
	// "cookie:user,header:Authorization". Defaults to "cookie:user".
	TokenLookup string

	// AuthScheme applies to header extraction. Defaults to "Bearer".
	AuthScheme string

	// Filter skips the gate entirely when it returns true.
	Filter func(router.Context) bool
}

// New builds the gate middleware. For each request it extracts and
// validates the session token, evaluates the policy, and either passes
// the request through, redirects it, or steps aside for out-of-scope
// paths.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := getDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			claims := resolveClaims(ctx, cfg)

			result := cfg.Policy.Evaluate(ctx.Path(), claims)

			switch result.Decision {
			case Redirect:
				status := http.StatusSeeOther
				if ctx.Method() == string(router.GET) {
					status = http.StatusFound
				}
				return ctx.Redirect(result.Location, status)
			case Allow:
				if claims != nil {
					ctx.Locals(cfg.ContextKey, claims)
				}
				return ctx.Next()
			default:
				return ctx.Next()
			}
		}
	}
}

// resolveClaims is best effort: a missing, expired, or otherwise invalid
// token yields nil claims and the policy treats the request as anonymous.
func resolveClaims(ctx router.Context, cfg Config) Claims {
	raw, err := extractRawToken(ctx, cfg.getExtractors())
	if err != nil || raw == "" {
		return nil
	}

	claims, err := cfg.Validator(raw)
	if err != nil {
		return nil
	}

	return claims
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("AUTH: route gate configuration: Validator is required.")
	}

	if cfg.Policy == nil {
		cfg.Policy = DefaultPolicy()
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func (cfg *Config) getExtractors() []tokenExtractor {
	return getExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

type tokenExtractor func(c router.Context) (string, error)

func extractRawToken(ctx router.Context, extractors []tokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// getExtractors parses a lookup spec like
// "cookie:user,header:Authorization" into extractor functions.
func getExtractors(tokenLookup string, authScheme string) []tokenExtractor {
	extractors := make([]tokenExtractor, 0)

	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) < 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		}
	}

	return extractors
}

func tokenFromCookie(name string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}

func tokenFromHeader(header string, authScheme string) tokenExtractor {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		scheme := strings.TrimSpace(authScheme)
		l := len(scheme)
		if l == 0 || len(a) <= l+1 {
			return "", ErrTokenMissing
		}
		if !strings.EqualFold(a[:l], scheme) {
			return "", ErrTokenMissing
		}
		return strings.TrimSpace(a[l:]), nil
	}
}

func tokenFromQuery(param string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}
