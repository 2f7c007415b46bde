package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/portalkit/catalog/pkg/catalog"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal extracts the caller identity and stores it in the request
// context. Identity comes from a verified JWT when a verifier is
// configured; the X-User-* headers are a development fallback used when
// no token is present.
//
// Claims read from the token: sub (uid), name, email, role.
func Principal(tokenAuth *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var p catalog.Principal

			if tokenAuth != nil {
				if _, claims, err := jwtauth.FromContext(r.Context()); err == nil && claims != nil {
					p = principalFromClaims(claims)
				}
			}

			if p.UID == "" {
				p = catalog.Principal{
					UID:         r.Header.Get("X-User-Id"),
					DisplayName: r.Header.Get("X-User-Name"),
					Email:       r.Header.Get("X-User-Email"),
					Role:        r.Header.Get("X-User-Role"),
				}
			}

			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFromClaims(claims map[string]interface{}) catalog.Principal {
	var p catalog.Principal
	if sub, ok := claims["sub"].(string); ok {
		p.UID = sub
	}
	if name, ok := claims["name"].(string); ok {
		p.DisplayName = name
	}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		p.Role = role
	}
	return p
}

// PrincipalFromContext returns the caller identity stored by the
// Principal middleware. The zero Principal means anonymous.
func PrincipalFromContext(ctx context.Context) catalog.Principal {
	p, _ := ctx.Value(principalKey).(catalog.Principal)
	return p
}

// RequirePrincipal rejects requests that carry no caller identity.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()).UID == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
