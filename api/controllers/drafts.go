package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/packfinderz-backend/api/responses"
	"github.com/angelmondragon/packfinderz-backend/api/validators"
	"github.com/angelmondragon/packfinderz-backend/internal/drafts"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

// newDraftResponse rounds the totals to cents for the wire. The stored
// draft keeps full precision so recomputation never accumulates rounding.
func newDraftResponse(draft *drafts.Draft) *drafts.Draft {
	out := *draft
	out.Totals = draft.Totals.Round()
	return &out
}

// DraftCreate opens a fresh wizard draft.
func DraftCreate(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draft service unavailable"))
			return
		}

		draft, err := svc.Create(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newDraftResponse(draft))
	}
}

// DraftGet returns the current draft state.
func DraftGet(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draft service unavailable"))
			return
		}

		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(draft))
	}
}

// DraftPatch applies one wizard-step change and returns the recomputed draft.
func DraftPatch(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draft service unavailable"))
			return
		}

		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var patch drafts.Patch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Update(r.Context(), id, patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDraftResponse(draft))
	}
}

// DraftDelete discards a draft. Deleting an unknown draft is a no-op.
func DraftDelete(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "draft service unavailable"))
			return
		}

		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func draftID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "draftID"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "draft id required")
	}
	return id, nil
}
