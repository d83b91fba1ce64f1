package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fooddiscount-backend/api/responses"
	"github.com/angelmondragon/fooddiscount-backend/api/validators"
	"github.com/angelmondragon/fooddiscount-backend/internal/products"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/logger"
	"github.com/angelmondragon/fooddiscount-backend/pkg/types"
)

type createProductRequest struct {
	Name          string           `json:"name" validate:"required,max=255"`
	Photo         *string          `json:"photo,omitempty" validate:"omitempty,max=1024"`
	OriginalPrice *decimal.Decimal `json:"original_price" validate:"required"`
	DiscountPrice *decimal.Decimal `json:"discount_price" validate:"required"`
	Quantity      *int             `json:"quantity,omitempty" validate:"omitempty,min=0"`
	ExpiryDate    *types.Date      `json:"expiry_date" validate:"required"`
}

func (r createProductRequest) toInput() products.CreateInput {
	return products.CreateInput{
		Name:          r.Name,
		Photo:         r.Photo,
		OriginalPrice: *r.OriginalPrice,
		DiscountPrice: *r.DiscountPrice,
		Quantity:      r.Quantity,
		ExpiryDate:    *r.ExpiryDate,
	}
}

type updateProductRequest struct {
	Name          *string              `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Photo         types.NullableString `json:"photo"`
	OriginalPrice *decimal.Decimal     `json:"original_price,omitempty"`
	DiscountPrice *decimal.Decimal     `json:"discount_price,omitempty"`
	Quantity      *int                 `json:"quantity,omitempty" validate:"omitempty,min=0"`
	ExpiryDate    *types.Date          `json:"expiry_date,omitempty"`
	IsAvailable   *bool                `json:"is_available,omitempty"`
}

func (r updateProductRequest) toInput() products.UpdateInput {
	return products.UpdateInput{
		Name:          r.Name,
		Photo:         r.Photo,
		OriginalPrice: r.OriginalPrice,
		DiscountPrice: r.DiscountPrice,
		Quantity:      r.Quantity,
		ExpiryDate:    r.ExpiryDate,
		IsAvailable:   r.IsAvailable,
	}
}

// ProductFeed lists available products, nearest first when coordinates are
// supplied.
func ProductFeed(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		origin, radius, params, err := parseProximityQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Feed(r.Context(), products.FeedQuery{
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

func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductCreate lists a product in the acting store.
func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), actor, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), actor, productID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductPickedUp marks a listing as collected by a customer.
func ProductPickedUp(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.MarkPickedUp(r.Context(), actor, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
