package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/api/responses"
	"github.com/angelmondragon/packfinderz-backend/api/validators"
	"github.com/angelmondragon/packfinderz-backend/internal/coupons"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

type couponPayload struct {
	Code           string           `json:"code" validate:"required,min=3,max=32"`
	DiscountType   string           `json:"discount_type" validate:"required,oneof=percentage fixed"`
	Value          decimal.Decimal  `json:"value" validate:"required"`
	MaxDiscount    *decimal.Decimal `json:"max_discount"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	ValidFrom      *time.Time       `json:"valid_from"`
	ValidUntil     *time.Time       `json:"valid_until"`
	UsageLimit     *int             `json:"usage_limit"`
	PerEmailLimit  *int             `json:"per_email_limit"`
	Active         *bool            `json:"active"`
}

func (p couponPayload) toModel(id uuid.UUID) (*models.Coupon, error) {
	discountType, err := enums.ParseDiscountType(p.DiscountType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return &models.Coupon{
		ID:             id,
		Code:           p.Code,
		DiscountType:   discountType,
		Value:          p.Value,
		MaxDiscount:    p.MaxDiscount,
		MinOrderAmount: p.MinOrderAmount,
		ValidFrom:      p.ValidFrom,
		ValidUntil:     p.ValidUntil,
		UsageLimit:     p.UsageLimit,
		PerEmailLimit:  p.PerEmailLimit,
		Active:         active,
	}, nil
}

// AdminCouponList returns every coupon with its redemption counters.
func AdminCouponList(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]couponResponse, len(rows))
		for i := range rows {
			out[i] = newCouponResponse(&rows[i])
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminCouponCreate adds a coupon.
func AdminCouponCreate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload couponPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		model, err := payload.toModel(uuid.Nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Save(r.Context(), model)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCouponResponse(coupon))
	}
}

// AdminCouponUpdate replaces an existing coupon.
func AdminCouponUpdate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		id, err := pathUUID(r, "couponID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		model, err := payload.toModel(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Save(r.Context(), model)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCouponResponse(coupon))
	}
}
