package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/api/responses"
	"github.com/angelmondragon/packfinderz-backend/api/validators"
	"github.com/angelmondragon/packfinderz-backend/internal/catalog"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

type cartPayload struct {
	Name              string          `json:"name" validate:"required"`
	Description       *string         `json:"description"`
	PricePerHour      decimal.Decimal `json:"price_per_hour" validate:"required"`
	Capacity          int             `json:"capacity" validate:"min=0"`
	PickupAvailable   bool            `json:"pickup_available"`
	ShippingAvailable bool            `json:"shipping_available"`
	ShippingPrice     decimal.Decimal `json:"shipping_price"`
	ImageURL          *string         `json:"image_url"`
	Active            *bool           `json:"active"`
}

func (p cartPayload) toModel(id uuid.UUID) *models.Cart {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return &models.Cart{
		ID:                id,
		Name:              p.Name,
		Description:       p.Description,
		PricePerHour:      p.PricePerHour,
		Capacity:          p.Capacity,
		PickupAvailable:   p.PickupAvailable,
		ShippingAvailable: p.ShippingAvailable,
		ShippingPrice:     p.ShippingPrice,
		ImageURL:          p.ImageURL,
		Active:            active,
	}
}

// AdminCartList returns all carts including inactive ones.
func AdminCartList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		carts, err := svc.ListCartsAdmin(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartListResponse(carts))
	}
}

// AdminCartCreate adds a cart to the catalog.
func AdminCartCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload cartPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SaveCart(r.Context(), payload.toModel(uuid.Nil))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(cart))
	}
}

// AdminCartUpdate replaces an existing cart's attributes.
func AdminCartUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "cartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SaveCart(r.Context(), payload.toModel(id))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(cart))
	}
}

type foodItemPayload struct {
	CartID   *uuid.UUID      `json:"cart_id"`
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price" validate:"required"`
	ImageURL *string         `json:"image_url"`
	Active   *bool           `json:"active"`
}

func (p foodItemPayload) toModel(id uuid.UUID) *models.FoodItem {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return &models.FoodItem{
		ID:       id,
		CartID:   p.CartID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Active:   active,
	}
}

// AdminFoodItemCreate adds a food item.
func AdminFoodItemCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload foodItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.SaveFoodItem(r.Context(), payload.toModel(uuid.Nil))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newFoodItemResponse(item))
	}
}

// AdminFoodItemUpdate replaces an existing food item.
func AdminFoodItemUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload foodItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.SaveFoodItem(r.Context(), payload.toModel(id))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newFoodItemResponse(item))
	}
}

type serviceItemPayload struct {
	CartID   *uuid.UUID      `json:"cart_id"`
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category"`
	Pricing  string          `json:"pricing" validate:"required,oneof=flat per_hour"`
	Price    decimal.Decimal `json:"price" validate:"required"`
	Active   *bool           `json:"active"`
}

func (p serviceItemPayload) toModel(id uuid.UUID) (*models.ServiceItem, error) {
	pricing, err := enums.ParseServicePricing(p.Pricing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pricing mode")
	}
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return &models.ServiceItem{
		ID:       id,
		CartID:   p.CartID,
		Name:     p.Name,
		Category: p.Category,
		Pricing:  pricing,
		Price:    p.Price,
		Active:   active,
	}, nil
}

// AdminServiceItemCreate adds a bookable service.
func AdminServiceItemCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload serviceItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		model, err := payload.toModel(uuid.Nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.SaveServiceItem(r.Context(), model)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newServiceItemResponse(item))
	}
}

// AdminServiceItemUpdate replaces an existing service.
func AdminServiceItemUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload serviceItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		model, err := payload.toModel(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.SaveServiceItem(r.Context(), model)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newServiceItemResponse(item))
	}
}
