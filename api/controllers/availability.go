package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/packfinderz-backend/api/responses"
	"github.com/angelmondragon/packfinderz-backend/api/validators"
	"github.com/angelmondragon/packfinderz-backend/internal/availability"
	"github.com/angelmondragon/packfinderz-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
	"github.com/angelmondragon/packfinderz-backend/pkg/types"
)

type slotPayload struct {
	Date      string          `json:"date" validate:"required"`
	StartTime types.TimeOfDay `json:"start_time" validate:"required"`
	EndTime   types.TimeOfDay `json:"end_time" validate:"required"`
}

type availabilityCheckRequest struct {
	CartID uuid.UUID     `json:"cart_id" validate:"required"`
	Slots  []slotPayload `json:"slots" validate:"required,min=1,dive"`
}

func (r availabilityCheckRequest) toSlots() ([]availability.Slot, error) {
	slots := make([]availability.Slot, len(r.Slots))
	for i, payload := range r.Slots {
		date, err := time.Parse("2006-01-02", payload.Date)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be YYYY-MM-DD")
		}
		slots[i] = availability.Slot{
			Date:  date,
			Start: payload.StartTime,
			End:   payload.EndTime,
		}
	}
	return slots, nil
}

// BookedSlots lists the occupied time windows for a cart within a range.
func BookedSlots(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		cartID, err := pathUUID(r, "cartID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if to.Before(from) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from"))
			return
		}

		slots, err := svc.BookedSlots(r.Context(), cartID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"slots": slots})
	}
}

// AvailabilityCheck reports whether the requested slots are free.
func AvailabilityCheck(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		var body availabilityCheckRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slots, err := body.toSlots()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Check(r.Context(), body.CartID, slots)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PresetSlots returns the selectable time-slot presets for the wizard.
func PresetSlots() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pricing.Presets())
	}
}
