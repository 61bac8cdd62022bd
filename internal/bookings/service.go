package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-backend/internal/availability"
	"github.com/angelmondragon/packfinderz-backend/internal/catalog"
	"github.com/angelmondragon/packfinderz-backend/internal/coupons"
	"github.com/angelmondragon/packfinderz-backend/internal/drafts"
	"github.com/angelmondragon/packfinderz-backend/internal/pricing"
	"github.com/angelmondragon/packfinderz-backend/pkg/db"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
	"github.com/angelmondragon/packfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/packfinderz-backend/pkg/pagination"
)

// slotExclusionConstraint is the database-level backstop for double
// bookings; see the booking_dates migration.
const slotExclusionConstraint = "booking_dates_no_overlap"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type draftSource interface {
	Get(ctx context.Context, id string) (*drafts.Draft, error)
	Delete(ctx context.Context, id string) error
}

// ConflictDetail reports one requested slot that collided with an existing
// booking.
type ConflictDetail struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Service turns drafts into bookings and drives the status lifecycle.
type Service interface {
	Submit(ctx context.Context, draftID string) (*models.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Booking, *pagination.Cursor, error)
	Confirm(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ConfirmByPaymentReference(ctx context.Context, id uuid.UUID, reference string) (*models.Booking, error)
	AttachPaymentSlip(ctx context.Context, id uuid.UUID, url, filename string) (*models.Booking, error)
}

type service struct {
	db       txRunner
	repo     *Repository
	catalog  *catalog.Repository
	slots    *availability.Repository
	coupons  *coupons.Repository
	drafts   draftSource
	calc     *pricing.Calculator
	logg     *logger.Logger
	observer *metrics.BookingMetrics
	now      func() time.Time
}

// NewService wires the booking service over its repositories. The metrics
// observer may be nil.
func NewService(
	runner txRunner,
	repo *Repository,
	catalogRepo *catalog.Repository,
	slotRepo *availability.Repository,
	couponRepo *coupons.Repository,
	draftSvc draftSource,
	calc *pricing.Calculator,
	logg *logger.Logger,
	observer *metrics.BookingMetrics,
) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil || catalogRepo == nil || slotRepo == nil || couponRepo == nil {
		return nil, fmt.Errorf("repositories required")
	}
	if draftSvc == nil {
		return nil, fmt.Errorf("draft service required")
	}
	if calc == nil {
		return nil, fmt.Errorf("calculator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if observer == nil {
		observer = &metrics.BookingMetrics{}
	}
	return &service{
		db:       runner,
		repo:     repo,
		catalog:  catalogRepo,
		slots:    slotRepo,
		coupons:  couponRepo,
		drafts:   draftSvc,
		calc:     calc,
		logg:     logg,
		observer: observer,
		now:      time.Now,
	}, nil
}

// Submit finalizes a draft into a pending booking. The availability
// recheck, coupon consumption and insert all happen in one transaction
// holding a lock on the cart row, so two submissions for the same cart
// serialize and the loser sees the winner's dates.
func (s *service) Submit(ctx context.Context, draftID string) (booking *models.Booking, err error) {
	started := s.now()
	defer func() {
		s.observer.ObserveSubmission(submissionOutcome(err), s.now().Sub(started))
	}()

	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if err := validateDraftForSubmission(draft); err != nil {
		return nil, err
	}

	requested, err := requestedSlots(draft)
	if err != nil {
		return nil, err
	}

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		cart, cErr := s.lockCart(ctx, tx, *draft.CartID)
		if cErr != nil {
			return cErr
		}

		booked, sErr := s.slots.WithTx(tx).ActiveSlotsOnDates(ctx, cart.ID, slotDates(requested))
		if sErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, sErr, "checking availability")
		}
		if conflicts := availability.FindConflicts(requested, booked); len(conflicts) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "requested dates are no longer available").
				WithDetails(conflictDetails(conflicts))
		}

		var (
			coupon *models.Coupon
			terms  *pricing.CouponTerms
		)
		if draft.CouponCode != "" {
			txCoupons, svcErr := coupons.NewService(s.coupons.WithTx(tx))
			if svcErr != nil {
				return svcErr
			}
			base, qErr := s.calc.Compute(draft.QuoteInput(cart.ShippingAvailable, cart.ShippingPrice, nil))
			if qErr != nil {
				return qErr
			}
			result, vErr := txCoupons.Validate(ctx, draft.CouponCode, draft.Customer.Email, base.Subtotal())
			if vErr != nil {
				return vErr
			}
			coupon = result.Coupon
			terms = &result.Terms
		}

		totals, qErr := s.calc.Compute(draft.QuoteInput(cart.ShippingAvailable, cart.ShippingPrice, terms))
		if qErr != nil {
			return qErr
		}

		booking = buildBooking(draft, cart, requested, totals.Round())
		if _, cErr := s.repo.WithTx(tx).Create(ctx, booking); cErr != nil {
			if db.IsExclusionViolation(cErr, slotExclusionConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "requested dates are no longer available").
					WithDetails(conflictDetails(requested))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, cErr, "creating booking")
		}

		if coupon != nil {
			txRepo := s.coupons.WithTx(tx)
			consumed, uErr := txRepo.ConsumeUsage(ctx, coupon.ID)
			if uErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, uErr, "consuming coupon usage")
			}
			if !consumed {
				return pkgerrors.New(pkgerrors.CodeCoupon, "coupon usage limit reached")
			}
			if rErr := txRepo.RecordRedemption(ctx, &models.CouponRedemption{
				CouponID:      coupon.ID,
				BookingID:     booking.ID,
				CustomerEmail: strings.ToLower(draft.Customer.Email),
			}); rErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, rErr, "recording coupon redemption")
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// the booking is durable at this point; a failed draft cleanup only
	// leaves a key to expire
	if dErr := s.drafts.Delete(ctx, draftID); dErr != nil {
		s.logg.Warn(ctx, fmt.Sprintf("deleting submitted draft %s: %v", draftID, dErr))
	}

	ctx = s.logg.WithBookingID(ctx, booking.ID.String())
	s.logg.Info(ctx, "booking submitted")
	return booking, nil
}

// Get loads one booking with its snapshot rows.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.findBooking(ctx, id)
}

// List returns bookings for the back office, newest first.
func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Booking, *pagination.Cursor, error) {
	rows, next, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing bookings")
	}
	return rows, next, nil
}

// Confirm moves a pending booking to confirmed.
func (s *service) Confirm(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	now := s.now().UTC()
	return s.transition(ctx, id, enums.BookingStatusConfirmed, map[string]any{"confirmed_at": now})
}

// Complete marks a confirmed booking as fulfilled.
func (s *service) Complete(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	now := s.now().UTC()
	return s.transition(ctx, id, enums.BookingStatusCompleted, map[string]any{"completed_at": now})
}

// Cancel ends the booking and reopens its slots by deactivating the date
// rows. The status write and the slot release commit together.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(enums.BookingStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel a %s booking", booking.Status))
	}

	now := s.now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if uErr := txRepo.UpdateStatus(ctx, id, enums.BookingStatusCancelled, map[string]any{"cancelled_at": now}); uErr != nil {
			return uErr
		}
		return txRepo.DeactivateDates(ctx, id)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancelling booking")
	}

	ctx = s.logg.WithBookingID(ctx, id.String())
	s.logg.Info(ctx, "booking cancelled")
	return s.findBooking(ctx, id)
}

// ConfirmByPaymentReference records the provider's payment id and confirms
// the booking. Confirming an already confirmed booking is a no-op so the
// payment webhook can be retried safely.
func (s *service) ConfirmByPaymentReference(ctx context.Context, id uuid.UUID, reference string) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == enums.BookingStatusConfirmed {
		return booking, nil
	}
	if !booking.Status.CanTransition(enums.BookingStatusConfirmed) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot confirm a %s booking", booking.Status))
	}

	if err := s.repo.SetPaymentReference(ctx, id, reference); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording payment reference")
	}
	return s.transition(ctx, id, enums.BookingStatusConfirmed, map[string]any{"confirmed_at": s.now().UTC()})
}

// AttachPaymentSlip stores the uploaded transfer slip on a pending booking.
func (s *service) AttachPaymentSlip(ctx context.Context, id uuid.UUID, url, filename string) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot attach a payment slip to a %s booking", booking.Status))
	}
	if strings.TrimSpace(url) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment slip url is required")
	}

	if err := s.repo.AttachPaymentSlip(ctx, id, url, filename); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attaching payment slip")
	}
	return s.findBooking(ctx, id)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, next enums.BookingStatus, columns map[string]any) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move a %s booking to %s", booking.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, id, next, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating booking status")
	}

	ctx = s.logg.WithBookingID(ctx, id.String())
	s.logg.Info(ctx, fmt.Sprintf("booking %s", next))
	return s.findBooking(ctx, id)
}

func (s *service) findBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking")
	}
	return booking, nil
}

func (s *service) lockCart(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Cart, error) {
	cart, err := s.catalog.WithTx(tx).FindCartForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking cart")
	}
	if !cart.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is no longer bookable")
	}
	return cart, nil
}

func validateDraftForSubmission(draft *drafts.Draft) error {
	var missing []string
	if draft.CartID == nil {
		missing = append(missing, "cart")
	}
	if len(draft.Dates) == 0 {
		missing = append(missing, "dates")
	}
	if strings.TrimSpace(draft.Customer.Name) == "" {
		missing = append(missing, "customer name")
	}
	email := strings.TrimSpace(draft.Customer.Email)
	if email == "" || !strings.Contains(email, "@") {
		missing = append(missing, "customer email")
	}
	if !draft.DeliveryMethod.IsValid() {
		missing = append(missing, "delivery method")
	}
	if !draft.PaymentMethod.IsValid() {
		missing = append(missing, "payment method")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"draft is incomplete: "+strings.Join(missing, ", ")).
			WithDetails(missing)
	}
	return nil
}

func requestedSlots(draft *drafts.Draft) ([]availability.Slot, error) {
	slots := make([]availability.Slot, 0, len(draft.Dates))
	for _, date := range draft.Dates {
		day, err := time.Parse("2006-01-02", date.Date)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid booking date %q", date.Date))
		}
		slots = append(slots, availability.Slot{
			Date:  day,
			Start: date.StartTime,
			End:   date.EndTime,
		})
	}
	if err := availability.ValidateSlots(slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func slotDates(slots []availability.Slot) []time.Time {
	dates := make([]time.Time, 0, len(slots))
	for _, slot := range slots {
		dates = append(dates, slot.Date)
	}
	return dates
}

func conflictDetails(slots []availability.Slot) []ConflictDetail {
	details := make([]ConflictDetail, 0, len(slots))
	for _, slot := range slots {
		details = append(details, ConflictDetail{
			Date:      slot.Date.Format("2006-01-02"),
			StartTime: slot.Start.String(),
			EndTime:   slot.End.String(),
		})
	}
	return details
}

// buildBooking assembles the persistent booking from the draft. The slots
// argument carries the dates already parsed by requestedSlots, in draft
// order.
func buildBooking(draft *drafts.Draft, cart *models.Cart, slots []availability.Slot, totals pricing.Breakdown) *models.Booking {
	booking := &models.Booking{
		CartID:         cart.ID,
		Status:         enums.BookingStatusPending,
		DeliveryMethod: draft.DeliveryMethod,
		PaymentMethod:  draft.PaymentMethod,
		CustomerName:   strings.TrimSpace(draft.Customer.Name),
		CustomerEmail:  strings.TrimSpace(draft.Customer.Email),
		CustomerPhone:  strings.TrimSpace(draft.Customer.Phone),
		FoodAmount:     totals.FoodTotal,
		ServicesAmount: totals.ServicesTotal,
		CartAmount:     totals.CartTotal,
		ShippingAmount: totals.ShippingTotal,
		DiscountAmount: totals.Discount,
		TotalAmount:    totals.Total,
	}
	if addr := strings.TrimSpace(draft.Customer.Address); addr != "" {
		booking.CustomerAddress = &addr
	}
	if notes := strings.TrimSpace(draft.Customer.Notes); notes != "" {
		booking.Notes = &notes
	}
	if draft.CouponCode != "" {
		code := draft.CouponCode
		booking.CouponCode = &code
	}

	for i, date := range draft.Dates {
		booking.Dates = append(booking.Dates, models.BookingDate{
			CartID:     cart.ID,
			Date:       slots[i].Date,
			StartTime:  date.StartTime,
			EndTime:    date.EndTime,
			TotalHours: date.Hours,
			CartCost:   date.CartCost,
			Active:     true,
		})
	}
	for _, item := range draft.Items {
		booking.Items = append(booking.Items, models.BookingItem{
			FoodItemID: item.FoodItemID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			LineTotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		})
	}
	for _, svc := range draft.Services {
		line := svc.UnitPrice.Mul(decimal.NewFromInt(int64(svc.Quantity)))
		if svc.Pricing == enums.ServicePricingPerHour {
			hours := svc.Hours
			if hours.IsZero() {
				hours = bookedHours(draft.Dates)
			}
			line = line.Mul(hours)
		}
		booking.Services = append(booking.Services, models.BookingService{
			ServiceItemID: svc.ServiceItemID,
			Name:          svc.Name,
			Pricing:       svc.Pricing,
			UnitPrice:     svc.UnitPrice,
			Quantity:      svc.Quantity,
			Hours:         svc.Hours,
			LineTotal:     line.Round(2),
		})
	}
	return booking
}

func bookedHours(dates []drafts.DraftDate) decimal.Decimal {
	total := decimal.Zero
	for _, date := range dates {
		total = total.Add(date.Hours)
	}
	if total.IsZero() {
		return decimal.NewFromInt(pricing.DefaultServiceHours)
	}
	return total
}

func submissionOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeAccepted
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return metrics.OutcomeError
	}
	switch typed.Code() {
	case pkgerrors.CodeConflict:
		return metrics.OutcomeConflict
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
		return metrics.OutcomeValidation
	case pkgerrors.CodeCoupon:
		return metrics.OutcomeCoupon
	default:
		return metrics.OutcomeError
	}
}
