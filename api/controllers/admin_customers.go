package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/aquaflow-backend/api/responses"
	"github.com/angelmondragon/aquaflow-backend/api/validators"
	"github.com/angelmondragon/aquaflow-backend/internal/customers"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
)

type customerLister interface {
	List(ctx context.Context, search string) ([]customers.Customer, error)
}

// AdminCustomerList returns customers derived from order history.
func AdminCustomerList(svc customerLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), validators.SanitizeString(r.URL.Query().Get("q"), 120))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
