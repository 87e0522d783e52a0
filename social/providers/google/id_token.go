package google

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/xErr0Ropx876/UniResources/social"
)

const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// IDTokenVerifier validates Google id_tokens against Google's published
// JWKS. The key set is fetched lazily and refreshed in the background by
// keyfunc.
type IDTokenVerifier struct {
	clientID string
	jwksURL  string

	mu   sync.Mutex
	jwks *keyfunc.JWKS
}

// NewIDTokenVerifier creates a verifier bound to the given OAuth client.
func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{
		clientID: clientID,
		jwksURL:  googleJWKSURL,
	}
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verify checks the token signature, issuer, and audience, and maps the
// claims to a profile.
func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*social.SocialProfile, error) {
	jwks, err := v.keySet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load google jwks: %w", err)
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(
		idToken,
		claims,
		jwks.Keyfunc,
		jwt.WithIssuer("https://accounts.google.com"),
		jwt.WithAudience(v.clientID),
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid id_token")
	}

	return &social.SocialProfile{
		ProviderUserID: claims.Subject,
		Provider:       "google",
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
		Name:           claims.Name,
		AvatarURL:      claims.Picture,
		Raw: map[string]any{
			"sub":            claims.Subject,
			"email":          claims.Email,
			"email_verified": claims.EmailVerified,
			"name":           claims.Name,
			"picture":        claims.Picture,
		},
	}, nil
}

func (v *IDTokenVerifier) keySet(ctx context.Context) (*keyfunc.JWKS, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.jwks != nil {
		return v.jwks, nil
	}

	jwks, err := keyfunc.Get(v.jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, err
	}

	v.jwks = jwks
	return jwks, nil
}
