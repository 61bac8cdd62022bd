package controllers

import (
	"io"
	"net/http"

	"github.com/angelmondragon/packfinderz-backend/api/responses"
	"github.com/angelmondragon/packfinderz-backend/internal/payments"
	"github.com/angelmondragon/packfinderz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/packfinderz-backend/pkg/errors"
	"github.com/angelmondragon/packfinderz-backend/pkg/logger"
)

// PaymentWebhook verifies the provider signature and dispatches the event.
// Returning 2xx acknowledges receipt; any error response triggers a retry
// from the provider.
func PaymentWebhook(svc *payments.Service, cfg config.WebhookConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment webhook unavailable"))
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read webhook body"))
			return
		}

		signature := r.Header.Get(payments.SignatureHeader)
		if err := payments.VerifySignature(cfg.PaymentSecret, body, signature); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := payments.ParseEvent(body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.HandleEvent(r.Context(), event); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "received"})
	}
}
