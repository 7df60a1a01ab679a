package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vaultsuite/onboard/pkg/slogx"
)

// AuthnMiddleware verifies a bearer JWT signed with the shared HMAC secret.
// The invitation endpoints are operator-facing, so a single service secret
// (issued out of band) is sufficient; there is no user-facing token flow.
func AuthnMiddleware(secret []byte, issuer string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims := jwt.RegisteredClaims{}
			_, err := jwt.ParseWithClaims(raw, &claims,
				func(t *jwt.Token) (any, error) { return secret, nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithIssuer(issuer),
				jwt.WithExpirationRequired(),
			)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			// Inject into context for downstream handlers.
			ctx = context.WithValue(ctx, CtxKeySubject, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
