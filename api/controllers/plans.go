package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/aquaflow-backend/api/responses"
	"github.com/angelmondragon/aquaflow-backend/api/validators"
	"github.com/angelmondragon/aquaflow-backend/internal/plans"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

type planReader interface {
	List(ctx context.Context) ([]plans.Plan, error)
	Get(ctx context.Context, id string) (*plans.Plan, error)
}

type planAdmin interface {
	planReader
	Create(ctx context.Context, input plans.PlanInput) (*plans.Plan, error)
	Update(ctx context.Context, id string, input plans.PlanInput) (*plans.Plan, error)
	Delete(ctx context.Context, id string) error
	ResetDefaults(ctx context.Context) ([]plans.Plan, error)
}

func PlanList(svc planReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PlanGet(svc planReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := svc.Get(r.Context(), chi.URLParam(r, "planId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

func AdminPlanCreate(svc planAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input plans.PlanInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithField(r.Context(), "plan_id", plan.ID), "plans.created")
		responses.WriteSuccessStatus(w, http.StatusCreated, plan)
	}
}

// AdminPlanUpdate replaces a plan. Orders already placed keep their snapshot.
func AdminPlanUpdate(svc planAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input plans.PlanInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.Update(r.Context(), chi.URLParam(r, "planId"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

func AdminPlanDelete(svc planAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "planId")
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithField(r.Context(), "plan_id", id), "plans.deleted")
		responses.WriteNoContent(w)
	}
}

func AdminPlanReset(svc planAdmin, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ResetDefaults(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Warn(r.Context(), "plans.reset")
		responses.WriteSuccess(w, list)
	}
}
