package controllers

import (
	"net/http"

	"github.com/angelmondragon/packfinderz-backend/api/responses"
	"github.com/angelmondragon/packfinderz-backend/api/validators"
	"github.com/angelmondragon/packfinderz-backend/internal/settings"
	"github.com/angelmondragon/packfinderz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

type settingsPayload struct {
	AccountHolder  string  `json:"account_holder" validate:"required"`
	IBAN           string  `json:"iban" validate:"required"`
	BIC            string  `json:"bic"`
	BankName       string  `json:"bank_name"`
	PayPalEmail    *string `json:"paypal_email"`
	PayPalClientID *string `json:"paypal_client_id"`
	PayPalSecret   *string `json:"paypal_secret"`
}

// PublicPaymentSettings returns the transfer details shown to customers,
// stripped of credentials.
func PublicPaymentSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		public, err := svc.Public(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, public)
	}
}

// AdminPaymentSettings returns the full settings row for the back office.
func AdminPaymentSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		row, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSettingsResponse(row))
	}
}

// AdminPaymentSettingsUpdate validates and stores new bank details.
func AdminPaymentSettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var payload settingsPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Update(r.Context(), &models.PaymentSettings{
			AccountHolder:  payload.AccountHolder,
			IBAN:           payload.IBAN,
			BIC:            payload.BIC,
			BankName:       payload.BankName,
			PayPalEmail:    payload.PayPalEmail,
			PayPalClientID: payload.PayPalClientID,
			PayPalSecret:   payload.PayPalSecret,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSettingsResponse(row))
	}
}

type settingsResponse struct {
	AccountHolder string  `json:"account_holder"`
	IBAN          string  `json:"iban"`
	BIC           string  `json:"bic"`
	BankName      string  `json:"bank_name"`
	PayPalEmail   *string `json:"paypal_email,omitempty"`
	HasPayPalKeys bool    `json:"has_paypal_keys"`
}

// Credentials never leave the server; the response only signals whether
// they are configured.
func newSettingsResponse(row *models.PaymentSettings) settingsResponse {
	if row == nil {
		return settingsResponse{}
	}
	return settingsResponse{
		AccountHolder: row.AccountHolder,
		IBAN:          row.IBAN,
		BIC:           row.BIC,
		BankName:      row.BankName,
		PayPalEmail:   row.PayPalEmail,
		HasPayPalKeys: row.PayPalClientID != nil && row.PayPalSecret != nil,
	}
}
