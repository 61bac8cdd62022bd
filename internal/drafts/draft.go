package drafts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/internal/pricing"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	"github.com/angelmondragon/packfinderz-backend/pkg/types"
)

// DraftItem is one selected food item with its price snapshotted at
// selection time.
type DraftItem struct {
	FoodItemID uuid.UUID       `json:"food_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// DraftService is one selected service with its snapshotted price.
type DraftService struct {
	ServiceItemID uuid.UUID            `json:"service_item_id"`
	Name          string               `json:"name"`
	Pricing       enums.ServicePricing `json:"pricing"`
	UnitPrice     decimal.Decimal      `json:"unit_price"`
	Quantity      int                  `json:"quantity"`
	Hours         decimal.Decimal      `json:"hours"`
}

// DraftDate is one reserved day with the cart cost computed at the rate
// current when the date was added.
type DraftDate struct {
	Date      string          `json:"date"`
	StartTime types.TimeOfDay `json:"start_time"`
	EndTime   types.TimeOfDay `json:"end_time"`
	Hours     decimal.Decimal `json:"hours"`
	CartCost  decimal.Decimal `json:"cart_cost"`
}

// Customer carries the contact fields collected by the wizard.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// Draft accumulates wizard selections server-side. Fields only change when
// a patch sets them; totals are recomputed on every mutation so a stale
// total is never stored.
type Draft struct {
	ID             string               `json:"id"`
	CartID         *uuid.UUID           `json:"cart_id,omitempty"`
	Items          []DraftItem          `json:"items,omitempty"`
	Services       []DraftService       `json:"services,omitempty"`
	Dates          []DraftDate          `json:"dates,omitempty"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method,omitempty"`
	PaymentMethod  enums.PaymentMethod  `json:"payment_method,omitempty"`
	Customer       Customer             `json:"customer"`
	CouponCode     string               `json:"coupon_code,omitempty"`
	Totals         pricing.Breakdown    `json:"totals"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// QuoteInput converts the draft into calculator input.
func (d *Draft) QuoteInput(shippingAvailable bool, shippingPrice decimal.Decimal, coupon *pricing.CouponTerms) pricing.QuoteInput {
	items := make([]pricing.ItemSelection, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, pricing.ItemSelection{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	services := make([]pricing.ServiceSelection, 0, len(d.Services))
	for _, svc := range d.Services {
		services = append(services, pricing.ServiceSelection{
			Name:      svc.Name,
			Pricing:   svc.Pricing,
			UnitPrice: svc.UnitPrice,
			Quantity:  svc.Quantity,
			Hours:     svc.Hours,
		})
	}

	dates := make([]pricing.DateSelection, 0, len(d.Dates))
	for _, date := range d.Dates {
		dates = append(dates, pricing.DateSelection{
			Date:      date.Date,
			StartTime: date.StartTime,
			EndTime:   date.EndTime,
			Hours:     date.Hours,
			CartCost:  date.CartCost,
		})
	}

	return pricing.QuoteInput{
		Items:             items,
		Services:          services,
		Dates:             dates,
		DeliveryMethod:    d.DeliveryMethod,
		ShippingAvailable: shippingAvailable,
		ShippingPrice:     shippingPrice,
		Coupon:            coupon,
	}
}

// ItemInput selects a food item by id.
type ItemInput struct {
	FoodItemID uuid.UUID `json:"food_item_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
}

// ServiceInput selects a service by id. Hours overrides the booked-hours
// default for per-hour services.
type ServiceInput struct {
	ServiceItemID uuid.UUID        `json:"service_item_id" validate:"required"`
	Quantity      int              `json:"quantity" validate:"required,gt=0"`
	Hours         *decimal.Decimal `json:"hours,omitempty"`
}

// DateInput reserves one day. Either an explicit start/end pair or a preset
// slot name.
type DateInput struct {
	Date      string          `json:"date" validate:"required"`
	StartTime types.TimeOfDay `json:"start_time,omitempty"`
	EndTime   types.TimeOfDay `json:"end_time,omitempty"`
	Preset    string          `json:"preset,omitempty"`
}

// Patch is one wizard-step change. Nil fields leave the draft untouched;
// set fields overwrite. Applying the same patch twice yields the same
// draft.
type Patch struct {
	CartID         *uuid.UUID            `json:"cart_id,omitempty"`
	Items          *[]ItemInput          `json:"items,omitempty"`
	Services       *[]ServiceInput       `json:"services,omitempty"`
	Dates          *[]DateInput          `json:"dates,omitempty"`
	DeliveryMethod *enums.DeliveryMethod `json:"delivery_method,omitempty"`
	PaymentMethod  *enums.PaymentMethod  `json:"payment_method,omitempty"`
	CustomerName   *string               `json:"customer_name,omitempty"`
	CustomerEmail  *string               `json:"customer_email,omitempty"`
	CustomerPhone  *string               `json:"customer_phone,omitempty"`
	CustomerAddr   *string               `json:"customer_address,omitempty"`
	Notes          *string               `json:"notes,omitempty"`
	CouponCode     *string               `json:"coupon_code,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.CartID == nil && p.Items == nil && p.Services == nil && p.Dates == nil &&
		p.DeliveryMethod == nil && p.PaymentMethod == nil &&
		p.CustomerName == nil && p.CustomerEmail == nil && p.CustomerPhone == nil &&
		p.CustomerAddr == nil && p.Notes == nil && p.CouponCode == nil
}
