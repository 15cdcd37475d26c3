package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/aquaflow-backend/api/middleware"
	"github.com/angelmondragon/aquaflow-backend/api/responses"
	"github.com/angelmondragon/aquaflow-backend/api/validators"
	"github.com/angelmondragon/aquaflow-backend/internal/cart"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

type updateQuantityRequest struct {
	ProductID          string             `json:"productId" validate:"required"`
	PurchaseType       enums.PurchaseType `json:"purchaseType" validate:"required"`
	SubscriptionPlanID string             `json:"subscriptionPlan"`
	Quantity           int                `json:"quantity" validate:"gte=0,lte=999"`
}

func (r updateQuantityRequest) key() cart.LineKey {
	k := cart.LineKey{ProductID: strings.TrimSpace(r.ProductID), PurchaseType: r.PurchaseType}
	if r.PurchaseType == enums.PurchaseTypeSubscription {
		k.PlanID = strings.TrimSpace(r.SubscriptionPlanID)
	}
	return k
}

type quoteRequest struct {
	PostalCode string `json:"postalCode" validate:"max=10"`
	Coupon     string `json:"coupon" validate:"max=40"`
}

// CartGet returns the visitor's priced cart.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		c, err := svc.Load(ctx, middleware.CartIDFromContext(ctx), middleware.MirrorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.View(ctx, c)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem merges a product into the cart.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var input cart.AddItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.Add(ctx, middleware.CartIDFromContext(ctx), middleware.MirrorFromContext(ctx), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartUpdateQuantity sets the quantity of a single line. Zero removes it.
func CartUpdateQuantity(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var body updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := svc.UpdateQuantity(ctx, middleware.CartIDFromContext(ctx), middleware.MirrorFromContext(ctx), body.key(), body.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemoveItem drops every line of a product.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if productID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}
		view, err := svc.Remove(ctx, middleware.CartIDFromContext(ctx), middleware.MirrorFromContext(ctx), productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := svc.Clear(ctx, middleware.CartIDFromContext(ctx), middleware.MirrorFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// CartToggle flips the drawer visibility flag.
func CartToggle(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		view, err := svc.Toggle(ctx, middleware.CartIDFromContext(ctx), middleware.MirrorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartQuote returns the display-only shipping and coupon summary.
func CartQuote(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		c, err := svc.Load(ctx, middleware.CartIDFromContext(ctx), middleware.MirrorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		quote, err := svc.Quote(ctx, c, validators.SanitizeString(body.PostalCode, 10), validators.SanitizeString(body.Coupon, 40))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
