package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func fourHourDate(rate string) DateSelection {
	r := dec(rate)
	return DateSelection{
		Date:      "2026-06-01",
		StartTime: "10:00",
		EndTime:   "14:00",
		Hours:     dec("4"),
		CartCost:  r.Mul(dec("4")),
	}
}

func TestComputeCartTotalFourHourSlot(t *testing.T) {
	calc := NewCalculator(DefaultServiceHours)
	breakdown, err := calc.Compute(QuoteInput{
		Dates:          []DateSelection{fourHourDate("150")},
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !breakdown.CartTotal.Equal(dec("600")) {
		t.Fatalf("expected cart total 600, got %s", breakdown.CartTotal)
	}
	if !breakdown.Total.Equal(dec("600")) {
		t.Fatalf("expected total 600, got %s", breakdown.Total)
	}
}

func TestComputeFoodTotal(t *testing.T) {
	calc := NewCalculator(DefaultServiceHours)
	breakdown, err := calc.Compute(QuoteInput{
		Items: []ItemSelection{
			{Name: "Tacos", UnitPrice: dec("10"), Quantity: 2},
			{Name: "Nachos", UnitPrice: dec("15"), Quantity: 1},
		},
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !breakdown.FoodTotal.Equal(dec("35")) {
		t.Fatalf("expected food total 35, got %s", breakdown.FoodTotal)
	}
}

func TestComputeServicesUseBookedHours(t *testing.T) {
	calc := NewCalculator(DefaultServiceHours)
	input := QuoteInput{
		Services: []ServiceSelection{
			{Name: "Staff", Pricing: enums.ServicePricingPerHour, UnitPrice: dec("25"), Quantity: 2},
			{Name: "Setup", Pricing: enums.ServicePricingFlat, UnitPrice: dec("80"), Quantity: 1},
		},
		Dates:          []DateSelection{fourHourDate("100")},
		DeliveryMethod: enums.DeliveryMethodPickup,
	}
	breakdown, err := calc.Compute(input)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// per-hour: 25 * 2 * 4h = 200; flat: 80
	if !breakdown.ServicesTotal.Equal(dec("280")) {
		t.Fatalf("expected services total 280, got %s", breakdown.ServicesTotal)
	}
}

func TestComputeServicesDefaultHours(t *testing.T) {
	calc := NewCalculator(DefaultServiceHours)
	breakdown, err := calc.Compute(QuoteInput{
		Services: []ServiceSelection{
			{Name: "Staff", Pricing: enums.ServicePricingPerHour, UnitPrice: dec("25"), Quantity: 1},
		},
		DeliveryMethod: enums.DeliveryMethodPickup,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !breakdown.ServicesTotal.Equal(dec("100")) {
		t.Fatalf("expected services total 100 with default hours, got %s", breakdown.ServicesTotal)
	}
}

func TestComputeShippingGating(t *testing.T) {
	calc := NewCalculator(DefaultServiceHours)

	base := QuoteInput{
		Dates:         []DateSelection{fourHourDate("100")},
		ShippingPrice: dec("50"),
	}

	base.DeliveryMethod = enums.DeliveryMethodShipping
	base.ShippingAvailable = true
	breakdown, err := calc.Compute(base)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !breakdown.ShippingTotal.Equal(dec("50")) {
		t.Fatalf("expected shipping 50, got %s", breakdown.ShippingTotal)
	}

	base.ShippingAvailable = false
	breakdown, err = calc.Compute(base)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !breakdown.ShippingTotal.IsZero() {
		t.Fatalf("expected no shipping when unavailable, got %s", breakdown.ShippingTotal)
	}

	base.DeliveryMethod = enums.DeliveryMethodPickup
	base.ShippingAvailable = true
	breakdown, err = calc.Compute(base)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !breakdown.ShippingTotal.IsZero() {
		t.Fatalf("expected no shipping for pickup, got %s", breakdown.ShippingTotal)
	}
}

func TestComputePercentageCouponCapped(t *testing.T) {
	calc := NewCalculator(DefaultServiceHours)
	cap := dec("20")
	breakdown, err := calc.Compute(QuoteInput{
		Dates: []DateSelection{{
			Date:      "2026-06-01",
			StartTime: "08:00",
			EndTime:   "11:00",
			Hours:     dec("3"),
			CartCost:  dec("300"),
		}},
		DeliveryMethod: enums.DeliveryMethodPickup,
		Coupon: &CouponTerms{
			Code:        "SUMMER10",
			Type:        enums.DiscountTypePercentage,
			Value:       dec("10"),
			MaxDiscount: &cap,
		},
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !breakdown.Discount.Equal(dec("20")) {
		t.Fatalf("expected capped discount 20, got %s", breakdown.Discount)
	}
	if !breakdown.Total.Equal(dec("280")) {
		t.Fatalf("expected total 280, got %s", breakdown.Total)
	}
}

func TestComputeFixedCouponNeverExceedsSubtotal(t *testing.T) {
	calc := NewCalculator(DefaultServiceHours)
	breakdown, err := calc.Compute(QuoteInput{
		Items: []ItemSelection{
			{Name: "Tacos", UnitPrice: dec("10"), Quantity: 1},
		},
		DeliveryMethod: enums.DeliveryMethodPickup,
		Coupon: &CouponTerms{
			Code:  "BIG",
			Type:  enums.DiscountTypeFixed,
			Value: dec("50"),
		},
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !breakdown.Discount.Equal(dec("10")) {
		t.Fatalf("expected discount clamped to subtotal 10, got %s", breakdown.Discount)
	}
	if !breakdown.Total.IsZero() {
		t.Fatalf("expected total 0, got %s", breakdown.Total)
	}
}

func TestComputeOrderInvariance(t *testing.T) {
	calc := NewCalculator(DefaultServiceHours)
	items := []ItemSelection{
		{Name: "A", UnitPrice: dec("9.99"), Quantity: 3},
		{Name: "B", UnitPrice: dec("4.25"), Quantity: 1},
		{Name: "C", UnitPrice: dec("12.50"), Quantity: 2},
	}
	services := []ServiceSelection{
		{Name: "S1", Pricing: enums.ServicePricingFlat, UnitPrice: dec("30"), Quantity: 1},
		{Name: "S2", Pricing: enums.ServicePricingPerHour, UnitPrice: dec("15"), Quantity: 1},
	}
	dates := []DateSelection{fourHourDate("120")}

	forward, err := calc.Compute(QuoteInput{Items: items, Services: services, Dates: dates, DeliveryMethod: enums.DeliveryMethodPickup})
	if err != nil {
		t.Fatalf("compute forward: %v", err)
	}

	reversedItems := []ItemSelection{items[2], items[0], items[1]}
	reversedServices := []ServiceSelection{services[1], services[0]}
	backward, err := calc.Compute(QuoteInput{Items: reversedItems, Services: reversedServices, Dates: dates, DeliveryMethod: enums.DeliveryMethodPickup})
	if err != nil {
		t.Fatalf("compute backward: %v", err)
	}

	if !forward.Total.Equal(backward.Total) || !forward.FoodTotal.Equal(backward.FoodTotal) || !forward.ServicesTotal.Equal(backward.ServicesTotal) {
		t.Fatalf("quote depends on ordering: %+v vs %+v", forward, backward)
	}
}

func TestComputeValidation(t *testing.T) {
	calc := NewCalculator(DefaultServiceHours)

	cases := []struct {
		name  string
		input QuoteInput
		code  pkgerrors.Code
	}{
		{
			"zero quantity item",
			QuoteInput{Items: []ItemSelection{{UnitPrice: dec("10"), Quantity: 0}}},
			pkgerrors.CodeValidation,
		},
		{
			"negative price service",
			QuoteInput{Services: []ServiceSelection{{Pricing: enums.ServicePricingFlat, UnitPrice: dec("-1"), Quantity: 1}}},
			pkgerrors.CodeValidation,
		},
		{
			"unknown discount type",
			QuoteInput{Coupon: &CouponTerms{Type: "bogus", Value: dec("5")}},
			pkgerrors.CodeCoupon,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := calc.Compute(tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != tc.code {
				t.Fatalf("expected %s error, got %v", tc.code, err)
			}
		})
	}
}

func TestHoursBetween(t *testing.T) {
	if got := HoursBetween("10:00", "14:00"); !got.Equal(dec("4")) {
		t.Fatalf("expected 4 hours, got %s", got)
	}
	if got := HoursBetween("10:00", "11:30"); !got.Equal(dec("1.5")) {
		t.Fatalf("expected 1.5 hours, got %s", got)
	}
	if got := HoursBetween("14:00", "10:00"); !got.IsZero() {
		t.Fatalf("expected 0 hours for inverted range, got %s", got)
	}
}

func TestPresetSlots(t *testing.T) {
	slot, ok := PresetByName("Afternoon")
	if !ok {
		t.Fatal("expected afternoon preset")
	}
	if !slot.Hours().Equal(dec("4")) {
		t.Fatalf("expected 4-hour preset, got %s", slot.Hours())
	}

	if _, ok := PresetByName("midnight"); ok {
		t.Fatal("unexpected preset match")
	}

	if len(Presets()) != 4 {
		t.Fatalf("expected 4 presets, got %d", len(Presets()))
	}
}
