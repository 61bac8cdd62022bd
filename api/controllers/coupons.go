package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/api/responses"
	"github.com/angelmondragon/packfinderz-backend/api/validators"
	"github.com/angelmondragon/packfinderz-backend/internal/coupons"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

type couponValidateRequest struct {
	Code          string          `json:"code" validate:"required,min=3,max=32"`
	CustomerEmail string          `json:"customer_email" validate:"required,email"`
	OrderAmount   decimal.Decimal `json:"order_amount" validate:"required"`
}

// CouponValidate checks a coupon against the current order amount so the
// wizard can show the discount before submission. Redemption is only
// counted at submission time.
func CouponValidate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}
		var body couponValidateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Validate(r.Context(), body.Code, body.CustomerEmail, body.OrderAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := *result
		resp.DiscountAmount = result.DiscountAmount.Round(2)
		resp.FinalAmount = result.FinalAmount.Round(2)
		responses.WriteSuccess(w, resp)
	}
}
