package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

// EmailConfig holds SMTP connection details.
type EmailConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// HousekeeperDirectory resolves the recipient of an inspection notice.
type HousekeeperDirectory interface {
	GetHousekeeper(ctx context.Context, id string) (*domain.Housekeeper, error)
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailHandler tells a housekeeper by email that their room passed inspection.
type EmailHandler struct {
	cfg      EmailConfig
	dir      HousekeeperDirectory
	sendMail sendFunc
}

// NewEmailHandler creates an EmailHandler from config.
func NewEmailHandler(cfg EmailConfig, dir HousekeeperDirectory) *EmailHandler {
	return &EmailHandler{cfg: cfg, dir: dir, sendMail: smtp.SendMail}
}

func (h *EmailHandler) EventType() domain.EventType { return domain.EventInspected }

func (h *EmailHandler) Handle(ctx context.Context, ev *domain.Event) error {
	ctx, span := otel.Tracer("notifier").Start(ctx, "handler.email")
	defer span.End()
	span.SetAttributes(attribute.String("assignment.id", ev.AssignmentID))

	hk, err := h.dir.GetHousekeeper(ctx, ev.HousekeeperID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "housekeeper lookup failed")
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return Permanent(err)
		}
		return fmt.Errorf("lookup housekeeper %s: %w", ev.HousekeeperID, err)
	}
	if strings.TrimSpace(hk.Email) == "" {
		err := Permanent(fmt.Errorf("housekeeper %s has no email address", hk.ID))
		span.SetStatus(codes.Error, "missing recipient")
		return err
	}

	roomLabel := ev.RoomID
	if room, err := h.dir.GetRoom(ctx, ev.RoomID); err == nil {
		roomLabel = room.Number
	}

	span.SetAttributes(attribute.String("email.to", hk.Email))

	addr := fmt.Sprintf("%s:%d", h.cfg.Host, h.cfg.Port)
	subject := fmt.Sprintf("Room %s passed inspection", roomLabel)
	body := fmt.Sprintf("Hi %s,\n\nRoom %s was inspected and approved. Cleaning time: %d minutes.\n",
		hk.Name, roomLabel, ev.TotalMinutes)
	msg := buildMIME(h.cfg.From, hk.Email, subject, body)

	var auth smtp.Auth
	if h.cfg.Username != "" {
		auth = smtp.PlainAuth("", h.cfg.Username, h.cfg.Password, h.cfg.Host)
	}

	// smtp.SendMail takes no context; run it aside so cancellation still returns promptly.
	done := make(chan error, 1)
	go func() {
		done <- h.sendMail(addr, auth, h.cfg.From, []string{hk.Email}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "smtp send failed")
			return fmt.Errorf("smtp send to %s: %w", hk.Email, err)
		}
		return nil
	case <-ctx.Done():
		err := fmt.Errorf("email send aborted: %w", ctx.Err())
		span.RecordError(err)
		span.SetStatus(codes.Error, "timeout")
		return err
	}
}

func buildMIME(from, to, subject, body string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body,
	))
}
