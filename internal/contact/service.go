package contact

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"docforms-backend/internal/shared/metrics"
	"docforms-backend/internal/shared/telemetry"
)

// Recipient is the mailbox inquiries are addressed to.
const Recipient = "info@foci.group"

const (
	msgInvalid  = "Invalid form data. Please check your entries."
	msgAccepted = "Thank you for your inquiry! We will get back to you shortly."
)

// ErrInvalidForm is returned when any field fails validation.
var ErrInvalidForm = errors.New(msgInvalid)

// Inquiry is a submitted contact form.
type Inquiry struct {
	Name    string `json:"name" validate:"min=2"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"min=10"`
}

// Reply is what the form shows after submission.
type Reply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Notifier delivers an accepted inquiry.
type Notifier interface {
	Deliver(ctx context.Context, to string, inq Inquiry) error
}

// LogNotifier records inquiries in the service log instead of sending mail.
type LogNotifier struct{}

func (LogNotifier) Deliver(ctx context.Context, to string, inq Inquiry) error {
	_ = ctx
	telemetry.Info("contact.inquiry", map[string]any{
		"to":      to,
		"name":    inq.Name,
		"email":   inq.Email,
		"message": inq.Message,
	})
	return nil
}

type Service struct {
	Notifier Notifier

	validate *validator.Validate
	policy   *bluemonday.Policy
}

func NewService(notifier Notifier) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{
		Notifier: notifier,
		validate: validator.New(),
		policy:   bluemonday.StrictPolicy(),
	}
}

// Submit validates and delivers an inquiry. Fields are trimmed before
// validation and stripped of markup before delivery.
func (s *Service) Submit(ctx context.Context, inq Inquiry) (Reply, error) {
	inq.Name = strings.TrimSpace(inq.Name)
	inq.Email = strings.TrimSpace(inq.Email)
	inq.Message = strings.TrimSpace(inq.Message)

	if err := s.validate.Struct(inq); err != nil {
		var verrs validator.ValidationErrors
		fields := []string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
		}
		telemetry.Warn("contact.invalid", map[string]any{"fields": fields})
		return Reply{Success: false, Message: msgInvalid}, ErrInvalidForm
	}

	clean := Inquiry{
		Name:    s.policy.Sanitize(inq.Name),
		Email:   inq.Email,
		Message: s.policy.Sanitize(inq.Message),
	}
	if err := s.Notifier.Deliver(ctx, Recipient, clean); err != nil {
		telemetry.Error("contact.deliver_failed", map[string]any{"error": err.Error()})
		metrics.ContactSubmitted(false)
		return Reply{}, err
	}
	metrics.ContactSubmitted(true)
	return Reply{Success: true, Message: msgAccepted}, nil
}
