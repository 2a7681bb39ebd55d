package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

// WebhookConfig points the webhook handler at a front-desk endpoint.
type WebhookConfig struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// WebhookHandler POSTs finished assignments to an HTTP endpoint so the front
// desk learns which rooms are ready for inspection.
type WebhookHandler struct {
	cfg    WebhookConfig
	client *http.Client
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(cfg WebhookConfig) *WebhookHandler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &WebhookHandler{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (h *WebhookHandler) EventType() domain.EventType { return domain.EventFinished }

func (h *WebhookHandler) Handle(ctx context.Context, ev *domain.Event) error {
	ctx, span := otel.Tracer("notifier").Start(ctx, "handler.webhook")
	defer span.End()
	span.SetAttributes(
		attribute.String("webhook.url", h.cfg.URL),
		attribute.String("assignment.id", ev.AssignmentID),
	)

	if h.cfg.URL == "" {
		err := Permanent(fmt.Errorf("webhook url is not configured"))
		span.SetStatus(codes.Error, "missing url")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		return Permanent(fmt.Errorf("marshal webhook body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.URL, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request failed")
		return Permanent(fmt.Errorf("build webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hotelrover-Event", string(ev.Type))
	req.Header.Set("Idempotency-Key", ev.ID)
	for k, v := range h.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "http call failed")
		return fmt.Errorf("webhook call to %s: %w", h.cfg.URL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	switch {
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		err := fmt.Errorf("webhook %s returned status %d", h.cfg.URL, resp.StatusCode)
		span.SetStatus(codes.Error, "retryable status code")
		return err
	case resp.StatusCode >= http.StatusBadRequest:
		err := Permanent(fmt.Errorf("webhook %s rejected event with status %d", h.cfg.URL, resp.StatusCode))
		span.SetStatus(codes.Error, "rejected")
		return err
	}
	return nil
}
