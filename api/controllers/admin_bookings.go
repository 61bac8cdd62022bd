package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/packfinderz-backend/api/responses"
	"github.com/angelmondragon/packfinderz-backend/api/validators"
	"github.com/angelmondragon/packfinderz-backend/internal/bookings"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	"github.com/angelmondragon/packfinderz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
	"github.com/angelmondragon/packfinderz-backend/pkg/pagination"
)

type bookingListResponse struct {
	Bookings   []bookingResponse `json:"bookings"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// AdminBookingList returns bookings newest first with optional filters.
func AdminBookingList(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := bookings.ListFilter{
			CustomerEmail: validators.SanitizeString(r.URL.Query().Get("customer_email"), 254),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseBookingStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		cartID, err := validators.ParseQueryUUID(r, "cart_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if cartID != uuid.Nil {
			filter.CartID = &cartID
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		rows, next, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := bookingListResponse{Bookings: newBookingListResponse(rows)}
		if next != nil {
			resp.NextCursor = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, resp)
	}
}

// AdminBookingConfirm moves a pending booking to confirmed.
func AdminBookingConfirm(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(svc, logg, func(r *http.Request, id uuid.UUID) (*models.Booking, error) {
		return svc.Confirm(r.Context(), id)
	})
}

// AdminBookingComplete moves a confirmed booking to completed.
func AdminBookingComplete(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(svc, logg, func(r *http.Request, id uuid.UUID) (*models.Booking, error) {
		return svc.Complete(r.Context(), id)
	})
}

// AdminBookingCancel cancels a booking and frees its slots.
func AdminBookingCancel(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(svc, logg, func(r *http.Request, id uuid.UUID) (*models.Booking, error) {
		return svc.Cancel(r.Context(), id)
	})
}

func bookingTransition(svc bookings.Service, logg *logger.Logger, apply func(*http.Request, uuid.UUID) (*models.Booking, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		id, err := pathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := apply(r, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBookingResponse(booking))
	}
}
