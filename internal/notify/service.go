package notify

import (
	"context"
	"fmt"

	"github.com/bettercallhomme/voiceline/internal/appointments"
	"github.com/bettercallhomme/voiceline/pkg/logging"
)

// SMSSender sends text messages to callers.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Service dispatches booking confirmations. Every send is best effort:
// failures are logged and never propagate into the call flow.
type Service struct {
	sms           SMSSender
	email         EmailSender
	operatorEmail string
	business      string
	logger        *logging.Logger
}

// NewService creates a notification service. sms and email may each be nil;
// the corresponding channel is skipped.
func NewService(sms SMSSender, email EmailSender, operatorEmail, businessName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sms:           sms,
		email:         email,
		operatorEmail: operatorEmail,
		business:      businessName,
		logger:        logger,
	}
}

// AppointmentBooked sends the caller a confirmation text and the operator a
// heads-up email for a freshly committed appointment.
func (s *Service) AppointmentBooked(ctx context.Context, appt *appointments.Appointment) {
	if appt == nil {
		return
	}
	s.sendConfirmationSMS(ctx, appt)
	s.sendOperatorEmail(ctx, appt)
}

func (s *Service) sendConfirmationSMS(ctx context.Context, appt *appointments.Appointment) {
	if s.sms == nil {
		s.logger.Debug("sms sender not configured, skipping confirmation", "appointment_id", appt.ID)
		return
	}
	if appt.CustomerPhone == "" || appt.CustomerPhone == appointments.UnknownPhone {
		s.logger.Warn("no caller phone on appointment, skipping confirmation sms", "appointment_id", appt.ID)
		return
	}

	body := fmt.Sprintf("Hi %s! Your %s appointment has been confirmed for %s at %s. "+
		"Technician: %s. Reference: %s. Thank you for choosing %s!",
		appt.CustomerName, s.business, appt.ScheduledDate, appt.ScheduledTime,
		appt.TechnicianName, appt.ID, s.business)

	if err := s.sms.SendSMS(ctx, appt.CustomerPhone, body); err != nil {
		s.logger.Error("failed to send confirmation sms", "error", err, "appointment_id", appt.ID)
		return
	}
	s.logger.Info("confirmation sms sent", "appointment_id", appt.ID, "customer_name", appt.CustomerName)
}

func (s *Service) sendOperatorEmail(ctx context.Context, appt *appointments.Appointment) {
	if s.email == nil || s.operatorEmail == "" {
		return
	}

	msg := EmailMessage{
		To:      s.operatorEmail,
		ToName:  "Operations",
		Subject: fmt.Sprintf("New appointment: %s on %s", appt.CustomerName, appt.ScheduledDate),
		Body: fmt.Sprintf("A new appointment was booked over the phone.\n\n"+
			"Customer: %s\nPhone: %s\nProblem: %s\nScheduled: %s at %s\n"+
			"Technician: %s\nReference: %s\n",
			appt.CustomerName, appt.CustomerPhone, appt.Problem,
			appt.ScheduledDate, appt.ScheduledTime, appt.TechnicianName, appt.ID),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send operator email", "error", err, "appointment_id", appt.ID)
	}
}
