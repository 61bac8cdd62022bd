package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/types"
)

// DefaultServiceHours is the hour count applied to per-hour services when
// the caller has not picked a slot yet.
const DefaultServiceHours = 4

// ItemSelection is one food item line captured at selection time.
type ItemSelection struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// ServiceSelection is one service line. Hours only matters for per-hour
// pricing; a zero value falls back to the calculator default.
type ServiceSelection struct {
	Name      string               `json:"name"`
	Pricing   enums.ServicePricing `json:"pricing"`
	UnitPrice decimal.Decimal      `json:"unit_price"`
	Quantity  int                  `json:"quantity"`
	Hours     decimal.Decimal      `json:"hours"`
}

// DateSelection is one reserved day with its time range. CartCost holds the
// hours-times-rate amount snapshotted when the date was added.
type DateSelection struct {
	Date      string          `json:"date"`
	StartTime types.TimeOfDay `json:"start_time"`
	EndTime   types.TimeOfDay `json:"end_time"`
	Hours     decimal.Decimal `json:"hours"`
	CartCost  decimal.Decimal `json:"cart_cost"`
}

// CouponTerms carries the server-validated discount parameters. The
// client-side discount amount is never part of the input.
type CouponTerms struct {
	Code        string             `json:"code"`
	Type        enums.DiscountType `json:"type"`
	Value       decimal.Decimal    `json:"value"`
	MaxDiscount *decimal.Decimal   `json:"max_discount,omitempty"`
}

// QuoteInput is everything the calculator needs for one deterministic quote.
type QuoteInput struct {
	Items             []ItemSelection
	Services          []ServiceSelection
	Dates             []DateSelection
	DeliveryMethod    enums.DeliveryMethod
	ShippingAvailable bool
	ShippingPrice     decimal.Decimal
	Coupon            *CouponTerms
}

// Breakdown is the itemized quote. Amounts keep full precision; Round
// produces the two-decimal presentation form.
type Breakdown struct {
	FoodTotal     decimal.Decimal `json:"food_total"`
	ServicesTotal decimal.Decimal `json:"services_total"`
	CartTotal     decimal.Decimal `json:"cart_total"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
}

// Round returns the breakdown with every amount rounded to cents.
func (b Breakdown) Round() Breakdown {
	return Breakdown{
		FoodTotal:     b.FoodTotal.Round(2),
		ServicesTotal: b.ServicesTotal.Round(2),
		CartTotal:     b.CartTotal.Round(2),
		ShippingTotal: b.ShippingTotal.Round(2),
		Discount:      b.Discount.Round(2),
		Total:         b.Total.Round(2),
	}
}

// Subtotal is the pre-discount sum.
func (b Breakdown) Subtotal() decimal.Decimal {
	return b.FoodTotal.Add(b.ServicesTotal).Add(b.CartTotal).Add(b.ShippingTotal)
}

// Calculator computes quotes. It is stateless apart from the configured
// default service hours.
type Calculator struct {
	defaultHours decimal.Decimal
}

// NewCalculator builds a calculator. Non-positive defaultHours falls back
// to DefaultServiceHours.
func NewCalculator(defaultHours int) *Calculator {
	if defaultHours <= 0 {
		defaultHours = DefaultServiceHours
	}
	return &Calculator{defaultHours: decimal.NewFromInt(int64(defaultHours))}
}

// Compute produces the itemized breakdown for the input. The result is
// independent of item and service ordering.
func (c *Calculator) Compute(input QuoteInput) (Breakdown, error) {
	food := decimal.Zero
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "item price must not be negative")
		}
		food = food.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	services := decimal.Zero
	for _, svc := range input.Services {
		if svc.Quantity <= 0 {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "service quantity must be positive")
		}
		if svc.UnitPrice.IsNegative() {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "service price must not be negative")
		}
		line := svc.UnitPrice.Mul(decimal.NewFromInt(int64(svc.Quantity)))
		if svc.Pricing == enums.ServicePricingPerHour {
			hours := svc.Hours
			if hours.IsZero() {
				hours = c.bookedHours(input.Dates)
			}
			line = line.Mul(hours)
		}
		services = services.Add(line)
	}

	cart := decimal.Zero
	for _, date := range input.Dates {
		cart = cart.Add(date.CartCost)
	}

	shipping := decimal.Zero
	if input.DeliveryMethod == enums.DeliveryMethodShipping && input.ShippingAvailable {
		shipping = input.ShippingPrice
	}

	breakdown := Breakdown{
		FoodTotal:     food,
		ServicesTotal: services,
		CartTotal:     cart,
		ShippingTotal: shipping,
	}

	subtotal := breakdown.Subtotal()
	discount, err := DiscountFor(input.Coupon, subtotal)
	if err != nil {
		return Breakdown{}, err
	}
	breakdown.Discount = discount

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	breakdown.Total = total
	return breakdown, nil
}

// bookedHours sums the booked hours across dates so per-hour services can
// bill against the full reservation. Without any dates yet, the configured
// default applies.
func (c *Calculator) bookedHours(dates []DateSelection) decimal.Decimal {
	if len(dates) == 0 {
		return c.defaultHours
	}
	total := decimal.Zero
	for _, date := range dates {
		total = total.Add(date.Hours)
	}
	if total.IsZero() {
		return c.defaultHours
	}
	return total
}

// DiscountFor computes the coupon discount against a subtotal, clamped to
// [0, subtotal]. Percentage coupons honor the max discount cap.
func DiscountFor(coupon *CouponTerms, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if coupon == nil {
		return decimal.Zero, nil
	}
	if coupon.Value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeCoupon, "coupon value must not be negative")
	}

	var discount decimal.Decimal
	switch coupon.Type {
	case enums.DiscountTypePercentage:
		discount = subtotal.Mul(coupon.Value).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscount != nil && discount.GreaterThan(*coupon.MaxDiscount) {
			discount = *coupon.MaxDiscount
		}
	case enums.DiscountTypeFixed:
		discount = coupon.Value
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeCoupon, "unknown discount type")
	}

	if discount.IsNegative() {
		return decimal.Zero, nil
	}
	if discount.GreaterThan(subtotal) {
		return subtotal, nil
	}
	return discount, nil
}

// HoursBetween returns the fractional hours in [start, end).
func HoursBetween(start, end types.TimeOfDay) decimal.Decimal {
	minutes := end.Minutes() - start.Minutes()
	if minutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}
