package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/aquaflow-backend/api/cookies"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

// CartSession resolves the visitor's cart id, consent and cookie mirror
// before storefront handlers run.
func CartSession(codec *cookies.Codec, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartID, fresh := codec.CartID(w, r)
			prefs := codec.Consent(r)

			ctx := context.WithValue(r.Context(), ctxCartID, cartID)
			ctx = context.WithValue(ctx, ctxConsent, prefs)
			ctx = context.WithValue(ctx, ctxMirror, codec.Mirror(w, r, prefs))
			if logg != nil {
				ctx = logg.WithCartID(ctx, cartID)
				if fresh {
					logg.Debug(ctx, "cart.session.issued")
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
