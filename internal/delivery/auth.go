package delivery

import (
	"net/http"
	"strings"

	"privuploads/pkg/serrors"

	"github.com/golang-jwt/jwt/v5"
)

// AuthorizationCheck decides whether a request may access private files. A
// nil return grants access; any error denies it.
type AuthorizationCheck func(r *http.Request) error

// JWTOptions configures the bearer-token authorization check.
type JWTOptions struct {
	// PublicKey is the PEM-encoded RSA public key the host signs tokens with.
	PublicKey string
	// RequiredRole must appear in the token's role claim. Empty accepts any
	// valid token.
	RequiredRole string
}

// tokenClaims is the host-issued token payload. Only the role claim is
// consulted beyond the registered time-based claims.
type tokenClaims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

// NewJWTAuthorizationCheck validates RS256 bearer tokens against the host's
// public key and requires the configured role.
func NewJWTAuthorizationCheck(options JWTOptions) (AuthorizationCheck, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(options.PublicKey))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrInternal, err, "could not parse RSA public key")
	}

	return func(r *http.Request) error {
		raw := bearerToken(r)
		if raw == "" {
			return serrors.With(serrors.ErrUnauthorized, "missing bearer token")
		}

		var claims tokenClaims
		if _, err := jwt.ParseWithClaims(raw, &claims,
			func(*jwt.Token) (any, error) { return key, nil },
			jwt.WithValidMethods([]string{"RS256"})); err != nil {
			return serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
		}

		if options.RequiredRole != "" && claims.Role != options.RequiredRole {
			return serrors.With(serrors.ErrForbidden, "role %q is not allowed to read private files", claims.Role)
		}

		return nil
	}, nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(auth, "Bearer "); found {
		return strings.TrimSpace(token)
	}

	return ""
}
