package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	"github.com/angelmondragon/packfinderz-backend/pkg/types"
)

type cartResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	PricePerHour      decimal.Decimal `json:"price_per_hour"`
	Capacity          int             `json:"capacity"`
	PickupAvailable   bool            `json:"pickup_available"`
	ShippingAvailable bool            `json:"shipping_available"`
	ShippingPrice     decimal.Decimal `json:"shipping_price"`
	ImageURL          *string         `json:"image_url,omitempty"`
	Active            bool            `json:"active"`
}

func newCartResponse(cart *models.Cart) cartResponse {
	return cartResponse{
		ID:                cart.ID,
		Name:              cart.Name,
		Description:       cart.Description,
		PricePerHour:      cart.PricePerHour,
		Capacity:          cart.Capacity,
		PickupAvailable:   cart.PickupAvailable,
		ShippingAvailable: cart.ShippingAvailable,
		ShippingPrice:     cart.ShippingPrice,
		ImageURL:          cart.ImageURL,
		Active:            cart.Active,
	}
}

func newCartListResponse(carts []models.Cart) []cartResponse {
	out := make([]cartResponse, len(carts))
	for i := range carts {
		out[i] = newCartResponse(&carts[i])
	}
	return out
}

type foodItemResponse struct {
	ID       uuid.UUID       `json:"id"`
	CartID   *uuid.UUID      `json:"cart_id,omitempty"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	ImageURL *string         `json:"image_url,omitempty"`
	Active   bool            `json:"active"`
}

func newFoodItemResponse(item *models.FoodItem) foodItemResponse {
	return foodItemResponse{
		ID:       item.ID,
		CartID:   item.CartID,
		Name:     item.Name,
		Category: item.Category,
		Price:    item.Price,
		ImageURL: item.ImageURL,
		Active:   item.Active,
	}
}

func newFoodItemListResponse(items []models.FoodItem) []foodItemResponse {
	out := make([]foodItemResponse, len(items))
	for i := range items {
		out[i] = newFoodItemResponse(&items[i])
	}
	return out
}

type serviceItemResponse struct {
	ID       uuid.UUID            `json:"id"`
	CartID   *uuid.UUID           `json:"cart_id,omitempty"`
	Name     string               `json:"name"`
	Category string               `json:"category"`
	Pricing  enums.ServicePricing `json:"pricing"`
	Price    decimal.Decimal      `json:"price"`
	Active   bool                 `json:"active"`
}

func newServiceItemResponse(item *models.ServiceItem) serviceItemResponse {
	return serviceItemResponse{
		ID:       item.ID,
		CartID:   item.CartID,
		Name:     item.Name,
		Category: item.Category,
		Pricing:  item.Pricing,
		Price:    item.Price,
		Active:   item.Active,
	}
}

func newServiceItemListResponse(items []models.ServiceItem) []serviceItemResponse {
	out := make([]serviceItemResponse, len(items))
	for i := range items {
		out[i] = newServiceItemResponse(&items[i])
	}
	return out
}

type bookingDateResponse struct {
	Date       string          `json:"date"`
	StartTime  types.TimeOfDay `json:"start_time"`
	EndTime    types.TimeOfDay `json:"end_time"`
	TotalHours decimal.Decimal `json:"total_hours"`
	CartCost   decimal.Decimal `json:"cart_cost"`
	Active     bool            `json:"active"`
}

type bookingItemResponse struct {
	FoodItemID uuid.UUID       `json:"food_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

type bookingServiceResponse struct {
	ServiceItemID uuid.UUID            `json:"service_item_id"`
	Name          string               `json:"name"`
	Pricing       enums.ServicePricing `json:"pricing"`
	UnitPrice     decimal.Decimal      `json:"unit_price"`
	Quantity      int                  `json:"quantity"`
	Hours         decimal.Decimal      `json:"hours"`
	LineTotal     decimal.Decimal      `json:"line_total"`
}

type bookingResponse struct {
	ID             uuid.UUID            `json:"id"`
	CartID         uuid.UUID            `json:"cart_id"`
	Status         enums.BookingStatus  `json:"status"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	PaymentMethod  enums.PaymentMethod  `json:"payment_method"`

	CustomerName    string  `json:"customer_name"`
	CustomerEmail   string  `json:"customer_email"`
	CustomerPhone   string  `json:"customer_phone"`
	CustomerAddress *string `json:"customer_address,omitempty"`
	Notes           *string `json:"notes,omitempty"`

	CouponCode     *string         `json:"coupon_code,omitempty"`
	FoodAmount     decimal.Decimal `json:"food_amount"`
	ServicesAmount decimal.Decimal `json:"services_amount"`
	CartAmount     decimal.Decimal `json:"cart_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`

	PaymentSlipURL   *string `json:"payment_slip_url,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	Dates    []bookingDateResponse    `json:"dates,omitempty"`
	Items    []bookingItemResponse    `json:"items,omitempty"`
	Services []bookingServiceResponse `json:"services,omitempty"`
}

func newBookingResponse(booking *models.Booking) bookingResponse {
	resp := bookingResponse{
		ID:              booking.ID,
		CartID:          booking.CartID,
		Status:          booking.Status,
		DeliveryMethod:  booking.DeliveryMethod,
		PaymentMethod:   booking.PaymentMethod,
		CustomerName:    booking.CustomerName,
		CustomerEmail:   booking.CustomerEmail,
		CustomerPhone:   booking.CustomerPhone,
		CustomerAddress: booking.CustomerAddress,
		Notes:           booking.Notes,
		CouponCode:      booking.CouponCode,
		FoodAmount:      booking.FoodAmount,
		ServicesAmount:  booking.ServicesAmount,
		CartAmount:      booking.CartAmount,
		ShippingAmount:  booking.ShippingAmount,
		DiscountAmount:  booking.DiscountAmount,
		TotalAmount:     booking.TotalAmount,
		PaymentSlipURL:  booking.PaymentSlipURL,
		PaymentReference: booking.PaymentReference,
		ConfirmedAt:     booking.ConfirmedAt,
		CompletedAt:     booking.CompletedAt,
		CancelledAt:     booking.CancelledAt,
		CreatedAt:       booking.CreatedAt,
	}

	for _, date := range booking.Dates {
		resp.Dates = append(resp.Dates, bookingDateResponse{
			Date:       date.Date.Format("2006-01-02"),
			StartTime:  date.StartTime,
			EndTime:    date.EndTime,
			TotalHours: date.TotalHours,
			CartCost:   date.CartCost,
			Active:     date.Active,
		})
	}
	for _, item := range booking.Items {
		resp.Items = append(resp.Items, bookingItemResponse{
			FoodItemID: item.FoodItemID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			LineTotal:  item.LineTotal,
		})
	}
	for _, svc := range booking.Services {
		resp.Services = append(resp.Services, bookingServiceResponse{
			ServiceItemID: svc.ServiceItemID,
			Name:          svc.Name,
			Pricing:       svc.Pricing,
			UnitPrice:     svc.UnitPrice,
			Quantity:      svc.Quantity,
			Hours:         svc.Hours,
			LineTotal:     svc.LineTotal,
		})
	}
	return resp
}

func newBookingListResponse(bookings []models.Booking) []bookingResponse {
	out := make([]bookingResponse, len(bookings))
	for i := range bookings {
		out[i] = newBookingResponse(&bookings[i])
	}
	return out
}

type couponResponse struct {
	ID             uuid.UUID          `json:"id"`
	Code           string             `json:"code"`
	DiscountType   enums.DiscountType `json:"discount_type"`
	Value          decimal.Decimal    `json:"value"`
	MaxDiscount    *decimal.Decimal   `json:"max_discount,omitempty"`
	MinOrderAmount *decimal.Decimal   `json:"min_order_amount,omitempty"`
	ValidFrom      *time.Time         `json:"valid_from,omitempty"`
	ValidUntil     *time.Time         `json:"valid_until,omitempty"`
	UsageLimit     *int               `json:"usage_limit,omitempty"`
	UsedCount      int                `json:"used_count"`
	PerEmailLimit  *int               `json:"per_email_limit,omitempty"`
	Active         bool               `json:"active"`
}

func newCouponResponse(coupon *models.Coupon) couponResponse {
	return couponResponse{
		ID:             coupon.ID,
		Code:           coupon.Code,
		DiscountType:   coupon.DiscountType,
		Value:          coupon.Value,
		MaxDiscount:    coupon.MaxDiscount,
		MinOrderAmount: coupon.MinOrderAmount,
		ValidFrom:      coupon.ValidFrom,
		ValidUntil:     coupon.ValidUntil,
		UsageLimit:     coupon.UsageLimit,
		UsedCount:      coupon.UsedCount,
		PerEmailLimit:  coupon.PerEmailLimit,
		Active:         coupon.Active,
	}
}

type userResponse struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Role        enums.UserRole `json:"role"`
	Active      bool           `json:"active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		Active:      user.Active,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
