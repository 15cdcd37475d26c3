package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/aquaflow-backend/api/cookies"
	"github.com/angelmondragon/aquaflow-backend/api/middleware"
	"github.com/angelmondragon/aquaflow-backend/api/responses"
	"github.com/angelmondragon/aquaflow-backend/api/validators"
	"github.com/angelmondragon/aquaflow-backend/internal/consent"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

type consentResponse struct {
	consent.Preferences
	Decided bool `json:"decided"`
}

func ConsentGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs := middleware.ConsentFromContext(r.Context())
		responses.WriteSuccess(w, consentResponse{Preferences: prefs, Decided: prefs.Decided()})
	}
}

// ConsentUpdate stores the visitor's choice. Withdrawing necessary consent
// drops the cart mirror cookie; the durable cart is untouched.
func ConsentUpdate(codec *cookies.Codec, logg *logger.Logger, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in consent.Input
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		prefs := consent.Apply(in, now())
		codec.SetConsent(w, prefs)
		if !prefs.AllowsCartMirror() {
			codec.ClearCart(w)
		}

		ctx := logg.WithFields(r.Context(), map[string]any{
			"necessary": prefs.Necessary,
			"analytics": prefs.Analytics,
			"marketing": prefs.Marketing,
		})
		logg.Info(ctx, "consent.updated")
		responses.WriteSuccess(w, consentResponse{Preferences: prefs, Decided: true})
	}
}
