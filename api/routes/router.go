package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/packfinderz-backend/api/controllers"
	"github.com/angelmondragon/packfinderz-backend/api/middleware"
	authsvc "github.com/angelmondragon/packfinderz-backend/internal/auth"
	"github.com/angelmondragon/packfinderz-backend/internal/availability"
	"github.com/angelmondragon/packfinderz-backend/internal/bookings"
	"github.com/angelmondragon/packfinderz-backend/internal/catalog"
	"github.com/angelmondragon/packfinderz-backend/internal/coupons"
	"github.com/angelmondragon/packfinderz-backend/internal/drafts"
	"github.com/angelmondragon/packfinderz-backend/internal/payments"
	"github.com/angelmondragon/packfinderz-backend/internal/settings"
	"github.com/angelmondragon/packfinderz-backend/internal/users"
	"github.com/angelmondragon/packfinderz-backend/pkg/auth/session"
	"github.com/angelmondragon/packfinderz-backend/pkg/config"
	"github.com/angelmondragon/packfinderz-backend/pkg/db"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
	"github.com/angelmondragon/packfinderz-backend/pkg/metrics"
	"github.com/angelmondragon/packfinderz-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Optional fields may be
// nil; the affected routes then answer with a dependency error instead of
// panicking at startup.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth         authsvc.Service
	Catalog      catalog.Service
	Availability availability.Service
	Drafts       drafts.Service
	Bookings     bookings.Service
	Coupons      coupons.Service
	Settings     settings.Service
	Users        users.Service
	Payments     *payments.Service

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/payment", controllers.PaymentWebhook(deps.Payments, cfg.Webhook, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		})

		r.Route("/carts", func(r chi.Router) {
			r.Get("/", controllers.CartList(deps.Catalog, logg))
			r.Get("/{cartID}", controllers.CartDetail(deps.Catalog, logg))
			r.Get("/{cartID}/availability", controllers.BookedSlots(deps.Availability, logg))
		})
		r.Get("/food-items", controllers.FoodItemList(deps.Catalog, logg))
		r.Get("/service-items", controllers.ServiceItemList(deps.Catalog, logg))

		r.Get("/time-slots", controllers.PresetSlots())
		r.Post("/availability/check", controllers.AvailabilityCheck(deps.Availability, logg))
		r.Post("/coupons/validate", controllers.CouponValidate(deps.Coupons, logg))

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", controllers.DraftCreate(deps.Drafts, logg))
			r.Route("/{draftID}", func(r chi.Router) {
				r.Get("/", controllers.DraftGet(deps.Drafts, logg))
				r.Patch("/", controllers.DraftPatch(deps.Drafts, logg))
				r.Delete("/", controllers.DraftDelete(deps.Drafts, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(deps.Redis, logg))
			r.Post("/bookings", controllers.BookingSubmit(deps.Bookings, logg))
			r.Post("/bookings/{bookingID}/payment-slip", controllers.BookingAttachPaymentSlip(deps.Bookings, logg))
		})
		r.Get("/bookings/{bookingID}", controllers.BookingDetail(deps.Bookings, logg))

		r.Get("/settings/payment", controllers.PublicPaymentSettings(deps.Settings, logg))
	})

	staff := []string{string(enums.UserRoleAdmin), string(enums.UserRoleManager)}

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, staff...))

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", controllers.AdminBookingList(deps.Bookings, logg))
				r.Get("/{bookingID}", controllers.BookingDetail(deps.Bookings, logg))
				r.Post("/{bookingID}/confirm", controllers.AdminBookingConfirm(deps.Bookings, logg))
				r.Post("/{bookingID}/complete", controllers.AdminBookingComplete(deps.Bookings, logg))
				r.Post("/{bookingID}/cancel", controllers.AdminBookingCancel(deps.Bookings, logg))
				r.Post("/{bookingID}/payment-slip", controllers.BookingAttachPaymentSlip(deps.Bookings, logg))
			})

			r.Route("/carts", func(r chi.Router) {
				r.Get("/", controllers.AdminCartList(deps.Catalog, logg))
				r.Post("/", controllers.AdminCartCreate(deps.Catalog, logg))
				r.Put("/{cartID}", controllers.AdminCartUpdate(deps.Catalog, logg))
			})
			r.Post("/food-items", controllers.AdminFoodItemCreate(deps.Catalog, logg))
			r.Put("/food-items/{itemID}", controllers.AdminFoodItemUpdate(deps.Catalog, logg))
			r.Post("/service-items", controllers.AdminServiceItemCreate(deps.Catalog, logg))
			r.Put("/service-items/{itemID}", controllers.AdminServiceItemUpdate(deps.Catalog, logg))

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.AdminCouponList(deps.Coupons, logg))
				r.Post("/", controllers.AdminCouponCreate(deps.Coupons, logg))
				r.Put("/{couponID}", controllers.AdminCouponUpdate(deps.Coupons, logg))
			})

			r.Route("/settings/payment", func(r chi.Router) {
				r.Get("/", controllers.AdminPaymentSettings(deps.Settings, logg))
				r.Put("/", controllers.AdminPaymentSettingsUpdate(deps.Settings, logg))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, string(enums.UserRoleAdmin)))
			r.Get("/", controllers.AdminUserList(deps.Users, logg))
			r.Post("/", controllers.AdminUserCreate(deps.Users, logg))
			r.Post("/{userID}/password", controllers.AdminUserChangePassword(deps.Users, logg))
			r.Post("/{userID}/active", controllers.AdminUserSetActive(deps.Users, logg))
		})
	})

	return r
}
