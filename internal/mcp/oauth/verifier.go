package oauth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Verification failures surfaced to middleware callers.
var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
)

type claimsContextKey struct{}

// TokenVerifier validates Cognito access tokens against the issuer's
// JWKS. Keys are fetched through a refreshing cache so rotation does not
// require a restart.
type TokenVerifier struct {
	issuer   string
	audience string
	jwksURI  string
	jwksSet  *jwk.Cache
	logger   *slog.Logger
}

// NewTokenVerifier builds a verifier for the given issuer. The JWKS
// endpoint is registered with a background-refreshing cache tied to ctx.
// audience may be empty: Cognito access tokens carry the client under
// the client_id claim rather than aud, so audience enforcement is opt-in.
func NewTokenVerifier(ctx context.Context, issuer, jwksURI, audience string, logger *slog.Logger) (*TokenVerifier, error) {
	if issuer == "" {
		return nil, fmt.Errorf("issuer is required")
	}
	if jwksURI == "" {
		jwksURI = strings.TrimRight(issuer, "/") + "/.well-known/jwks.json"
	}
	if logger == nil {
		logger = slog.Default()
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURI, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS endpoint: %w", err)
	}

	return &TokenVerifier{
		issuer:   issuer,
		audience: audience,
		jwksURI:  jwksURI,
		jwksSet:  cache,
		logger:   logger,
	}, nil
}

// Verify parses and validates tokenString, returning its claims.
func (v *TokenVerifier) Verify(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		options = append(options, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.signingKey(ctx, t)
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}
	return claims, nil
}

// signingKey resolves the token's kid against the cached JWKS.
func (v *TokenVerifier) signingKey(ctx context.Context, token *jwt.Token) (any, error) {
	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, fmt.Errorf("token header missing kid")
	}

	set, err := v.jwksSet.Get(ctx, v.jwksURI)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	key, found := set.LookupKeyID(kid)
	if !found {
		return nil, fmt.Errorf("key %q not found in JWKS", kid)
	}

	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to extract raw key: %w", err)
	}
	if _, isRSA := raw.(*rsa.PublicKey); !isRSA {
		return nil, fmt.Errorf("key %q is not an RSA public key", kid)
	}
	return raw, nil
}

// Middleware enforces bearer authentication on next. Rejections carry a
// WWW-Authenticate header pointing clients at the protected resource
// metadata so they can begin the OAuth flow.
func (v *TokenVerifier) Middleware(next http.Handler, resourceMetadataURL string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := extractBearerToken(r)
		if err != nil {
			v.unauthorized(w, resourceMetadataURL, "missing bearer token")
			return
		}

		claims, err := v.Verify(r.Context(), tokenString)
		if err != nil {
			v.logger.Debug("token verification failed", "error", err)
			v.unauthorized(w, resourceMetadataURL, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (v *TokenVerifier) unauthorized(w http.ResponseWriter, resourceMetadataURL, description string) {
	challenge := `Bearer realm="fastmail-mcp"`
	if resourceMetadataURL != "" {
		challenge += fmt.Sprintf(`, resource_metadata=%q`, resourceMetadataURL)
	}
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":"unauthorized","error_description":%q}`, description)
}

// ClaimsFromContext returns the verified token claims stored by
// Middleware, or nil when the request was not authenticated.
func ClaimsFromContext(ctx context.Context) jwt.MapClaims {
	claims, _ := ctx.Value(claimsContextKey{}).(jwt.MapClaims)
	return claims
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrNoToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrNoToken
	}
	return parts[1], nil
}
