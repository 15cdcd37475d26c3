package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/aquaflow-backend/api/middleware"
	"github.com/angelmondragon/aquaflow-backend/api/responses"
	"github.com/angelmondragon/aquaflow-backend/api/validators"
	"github.com/angelmondragon/aquaflow-backend/internal/checkout"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

type paymentInstructions interface {
	Instructions(method string) (*checkout.Instructions, error)
	Acknowledge(ctx context.Context, method, reference string) error
}

type acknowledgeRequest struct {
	Reference string `json:"reference" validate:"max=120"`
}

// CheckoutSummary returns the order summary, state and form options.
func CheckoutSummary(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		summary, err := svc.Summary(ctx, middleware.CartIDFromContext(ctx), middleware.MirrorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// CheckoutSubmit places the order for the visitor's cart.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var form checkout.Form
		if err := validators.DecodeJSON(r, &form); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		conf, err := svc.Submit(ctx, middleware.CartIDFromContext(ctx), middleware.MirrorFromContext(ctx), form)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, conf)
	}
}

func PaymentInstructions(svc paymentInstructions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inst, err := svc.Instructions(chi.URLParam(r, "method"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inst)
	}
}

// PaymentAcknowledge records that the customer reports a wallet transfer.
func PaymentAcknowledge(svc paymentInstructions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body acknowledgeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Acknowledge(r.Context(), chi.URLParam(r, "method"), validators.SanitizeString(body.Reference, 120)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "received"})
	}
}
