package http

import (
	"context"
	"io"
	"net/http"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/pkg/logger"
)

// IdentitySyncServiceInterface processes verified identity events
type IdentitySyncServiceInterface interface {
	Process(ctx context.Context, event *domain.IdentityEvent) error
}

// IdentityWebhookHandler receives lifecycle webhooks from the identity
// provider. Authentication is the payload signature, not a bearer
// token. Once the signature checks out the provider always gets a 200:
// a failing event must not trigger the provider's retry loop, because
// retried deliveries are duplicates to us.
type IdentityWebhookHandler struct {
	syncService   IdentitySyncServiceInterface
	signingSecret string
	logger        logger.Logger
}

// NewIdentityWebhookHandler creates a new identity webhook handler
func NewIdentityWebhookHandler(syncService IdentitySyncServiceInterface, signingSecret string, logger logger.Logger) *IdentityWebhookHandler {
	return &IdentityWebhookHandler{
		syncService:   syncService,
		signingSecret: signingSecret,
		logger:        logger,
	}
}

// RegisterRoutes registers the webhook endpoint. No auth middleware;
// the signature check replaces it.
func (h *IdentityWebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhooks/identity", h.handleWebhook)
}

func (h *IdentityWebhookHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		WriteJSONError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	err = domain.ValidateIdentityWebhookSignature(
		payload,
		r.Header.Get("webhook-signature"),
		r.Header.Get("webhook-timestamp"),
		r.Header.Get("webhook-id"),
		h.signingSecret,
	)
	if err != nil {
		h.logger.Warn("Rejected identity webhook with bad signature: " + err.Error())
		WriteJSONError(w, "invalid webhook signature", http.StatusUnauthorized)
		return
	}

	event, err := domain.ParseIdentityEvent(payload)
	if err != nil {
		h.logger.Warn("Ignoring malformed identity webhook: " + err.Error())
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err := h.syncService.Process(r.Context(), event); err != nil {
		h.logger.WithField("event_type", string(event.Type)).
			Error("Failed to process identity event: " + err.Error())
		writeJSON(w, http.StatusOK, map[string]string{"status": "error logged"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}
