package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

type ctxKey int

const identityKey ctxKey = iota

// TokenVerifier проверяет bearer-токен и возвращает личность владельца
type TokenVerifier interface {
	Verify(raw string) (model.Identity, error)
}

// Authenticate отклоняет запрос без токена (401) или с невалидным токеном
// (403) без тела ответа. Иначе кладет Identity в контекст запроса.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			id, err := verifier.Verify(raw)
			if err != nil {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}
