package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/lockpad/internal/http/errors"
	"github.com/dropDatabas3/lockpad/internal/jwt"
	"github.com/dropDatabas3/lockpad/internal/observability/logger"
)

// TokenValidator valida un bearer token emitido por este servicio.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// bearer extrae el token de "Authorization: Bearer <t>".
func bearer(r *http.Request) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// RequireAuth exige un bearer válido y deja las claims en el contexto.
func RequireAuth(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearer(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}
			claims, err := v.ValidateToken(r.Context(), tok)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				errors.WriteError(w, errors.ErrUnauthorized.WithCause(err))
				return
			}
			ctx := withClaims(r.Context(), claims)
			ctx = logger.WithFields(ctx, logger.UserID(claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
