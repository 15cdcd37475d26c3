package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/aquaflow-backend/api/responses"
	"github.com/angelmondragon/aquaflow-backend/api/validators"
	"github.com/angelmondragon/aquaflow-backend/internal/catalog"
	"github.com/angelmondragon/aquaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

type catalogReader interface {
	List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (*catalog.Product, error)
}

type catalogAdmin interface {
	catalogReader
	Create(ctx context.Context, input catalog.ProductInput) (*catalog.Product, error)
	Update(ctx context.Context, id string, input catalog.ProductInput) (*catalog.Product, error)
	Delete(ctx context.Context, id string) error
	ResetDefaults(ctx context.Context) ([]catalog.Product, error)
}

// CatalogList returns active products, optionally narrowed by ?type= and ?featured=true.
func CatalogList(svc catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := catalogFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.IncludeInactive = false

		products, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// CatalogGet returns one active product.
func CatalogGet(svc catalogReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.Get(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminCatalogList returns every product including inactive ones.
func AdminCatalogList(svc catalogAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := catalogFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.IncludeInactive = true

		products, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func AdminCatalogCreate(svc catalogAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input catalog.ProductInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithField(r.Context(), "product_id", product.ID), "catalog.product.created")
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminCatalogUpdate(svc catalogAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input catalog.ProductInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), chi.URLParam(r, "productId"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminCatalogDelete(svc catalogAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "productId")
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithField(r.Context(), "product_id", id), "catalog.product.deleted")
		responses.WriteNoContent(w)
	}
}

// AdminCatalogReset replaces the catalog with the built-in defaults.
func AdminCatalogReset(svc catalogAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ResetDefaults(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Warn(r.Context(), "catalog.reset")
		responses.WriteSuccess(w, products)
	}
}

func catalogFilter(r *http.Request) (catalog.ListFilter, error) {
	var filter catalog.ListFilter
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("type")); raw != "" {
		t, err := enums.ParseProductType(raw)
		if err != nil {
			return filter, pkgerrors.FieldErrors("invalid filter", map[string]string{"type": err.Error()})
		}
		filter.Type = &t
	}
	if raw := strings.TrimSpace(q.Get("featured")); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, pkgerrors.FieldErrors("invalid filter", map[string]string{"featured": "must be true or false"})
		}
		filter.FeaturedOnly = featured
	}
	return filter, nil
}
