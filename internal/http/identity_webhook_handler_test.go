package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	svix "github.com/standard-webhooks/standard-webhooks/libraries/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Planora/planora/internal/domain"
	"github.com/Planora/planora/pkg/logger"
)

var webhookTestSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("webhook-test-secret"))

type fakeSyncService struct {
	processed []*domain.IdentityEvent
	err       error
}

func (f *fakeSyncService) Process(_ context.Context, event *domain.IdentityEvent) error {
	f.processed = append(f.processed, event)
	return f.err
}

func signedWebhookRequest(t *testing.T, payload []byte) *http.Request {
	wh, err := svix.NewWebhook(webhookTestSecret)
	require.NoError(t, err)

	msgID := "msg_test"
	timestamp := time.Now()
	signature, err := wh.Sign(msgID, timestamp, payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(payload))
	req.Header.Set("webhook-id", msgID)
	req.Header.Set("webhook-timestamp", strconv.FormatInt(timestamp.Unix(), 10))
	req.Header.Set("webhook-signature", signature)
	return req
}

func setupWebhookTest(t *testing.T, sync *fakeSyncService) *http.ServeMux {
	mux := http.NewServeMux()
	NewIdentityWebhookHandler(sync, webhookTestSecret, logger.NewTestLogger(t)).RegisterRoutes(mux)
	return mux
}

func TestIdentityWebhookHandler(t *testing.T) {
	t.Run("signed event is processed", func(t *testing.T) {
		sync := &fakeSyncService{}
		mux := setupWebhookTest(t, sync)

		payload := []byte(`{"type": "user.created", "data": {"id": "user_abc"}}`)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedWebhookRequest(t, payload))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"processed"}`, rec.Body.String())
		require.Len(t, sync.processed, 1)
		assert.Equal(t, domain.IdentityUserCreated, sync.processed[0].Type)
	})

	t.Run("bad signature is rejected before processing", func(t *testing.T) {
		sync := &fakeSyncService{}
		mux := setupWebhookTest(t, sync)

		payload := []byte(`{"type": "user.created", "data": {"id": "user_abc"}}`)
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(payload))
		req.Header.Set("webhook-id", "msg_test")
		req.Header.Set("webhook-timestamp", "1700000000")
		req.Header.Set("webhook-signature", "v1,Zm9yZ2VkIHNpZ25hdHVyZQ==")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, sync.processed)
	})

	t.Run("tampered payload fails verification", func(t *testing.T) {
		sync := &fakeSyncService{}
		mux := setupWebhookTest(t, sync)

		payload := []byte(`{"type": "user.created", "data": {"id": "user_abc"}}`)
		req := signedWebhookRequest(t, payload)
		req.Body = httptest.NewRequest(http.MethodPost, "/",
			bytes.NewReader([]byte(`{"type": "user.deleted", "data": {"id": "user_abc"}}`))).Body
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, sync.processed)
	})

	t.Run("malformed payload is acknowledged without processing", func(t *testing.T) {
		sync := &fakeSyncService{}
		mux := setupWebhookTest(t, sync)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedWebhookRequest(t, []byte(`{"no_type": true}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ignored"}`, rec.Body.String())
		assert.Empty(t, sync.processed)
	})

	t.Run("processing failure still returns 200", func(t *testing.T) {
		sync := &fakeSyncService{err: errors.New("database unavailable")}
		mux := setupWebhookTest(t, sync)

		payload := []byte(`{"type": "user.created", "data": {"id": "user_abc"}}`)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, signedWebhookRequest(t, payload))

		// A non-200 would trigger the provider's retry loop; retried
		// deliveries are duplicates to us
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"error logged"}`, rec.Body.String())
	})
}
