package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/fooddiscount-backend/api/responses"
	"github.com/angelmondragon/fooddiscount-backend/api/validators"
	"github.com/angelmondragon/fooddiscount-backend/internal/stores"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/geo"
	"github.com/angelmondragon/fooddiscount-backend/pkg/logger"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pagination"
	"github.com/angelmondragon/fooddiscount-backend/pkg/types"
)

const (
	maxRadiusKm       = 20000
	maxAutocompleteIn = 200
)

type storeRequest struct {
	Name         string               `json:"name" validate:"required,max=255"`
	Description  *string              `json:"description,omitempty" validate:"omitempty,max=2000"`
	Address      string               `json:"address" validate:"required,max=500"`
	Latitude     *float64             `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64             `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Photo        types.NullableString `json:"photo"`
	WorkingHours types.WorkingHours   `json:"working_hours,omitempty"`
}

func (r storeRequest) toInput() stores.UpsertInput {
	return stores.UpsertInput{
		Name:         r.Name,
		Description:  r.Description,
		Address:      r.Address,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Photo:        r.Photo,
		WorkingHours: r.WorkingHours,
	}
}

// StoreList returns active stores with stock, ranked by distance when
// coordinates are supplied.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		origin, radius, params, err := parseProximityQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), stores.ListQuery{
			Origin:   origin,
			RadiusKm: radius,
			Limit:    params.Limit,
			Cursor:   params.Cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func StoreBySlug(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		store, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// StoreUpsert creates or replaces the acting store. Creation answers 201.
func StoreUpsert(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body storeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Upsert(r.Context(), actor, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Created() {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

func MyStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.MyStore(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// StoreDelete removes the acting store together with its products.
func StoreDelete(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func StoreAddressAutocomplete(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		input := validators.SanitizeString(r.URL.Query().Get("q"), maxAutocompleteIn)
		suggestions, err := svc.Autocomplete(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"suggestions": suggestions})
	}
}

// parseProximityQuery reads latitude, longitude, radius, limit and cursor.
func parseProximityQuery(r *http.Request) (*geo.Point, *float64, pagination.Params, error) {
	origin, err := validators.ParseOrigin(r)
	if err != nil {
		return nil, nil, pagination.Params{}, err
	}
	radius, err := validators.ParseQueryFloat(r, "radius", 0, maxRadiusKm)
	if err != nil {
		return nil, nil, pagination.Params{}, err
	}
	params, err := parsePagination(r)
	if err != nil {
		return nil, nil, pagination.Params{}, err
	}
	return origin, radius, params, nil
}

func parsePagination(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
