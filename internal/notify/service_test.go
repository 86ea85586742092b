package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettercallhomme/voiceline/internal/appointments"
)

type fakeSMS struct {
	to   []string
	body []string
	err  error
}

func (f *fakeSMS) SendSMS(_ context.Context, to, body string) error {
	f.to = append(f.to, to)
	f.body = append(f.body, body)
	return f.err
}

type fakeEmail struct {
	msgs []EmailMessage
	err  error
}

func (f *fakeEmail) Send(_ context.Context, msg EmailMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

func bookedAppointment() *appointments.Appointment {
	return &appointments.Appointment{
		ID:             "appt-1",
		CallID:         "CA1",
		CustomerName:   "John Smith",
		CustomerPhone:  "+15551234567",
		Problem:        "dishwasher broken",
		ScheduledDate:  "2026-09-01",
		ScheduledTime:  "10:00 AM",
		TechnicianID:   "tech-001",
		TechnicianName: "John Doe",
		Status:         appointments.StatusScheduled,
	}
}

func TestAppointmentBooked_SendsSMSAndEmail(t *testing.T) {
	sms := &fakeSMS{}
	email := &fakeEmail{}
	svc := NewService(sms, email, "ops@bettercallhomme.com", "Better Call Homme", nil)

	svc.AppointmentBooked(context.Background(), bookedAppointment())

	require.Len(t, sms.to, 1)
	assert.Equal(t, "+15551234567", sms.to[0])
	assert.Equal(t, "Hi John Smith! Your Better Call Homme appointment has been confirmed for "+
		"2026-09-01 at 10:00 AM. Technician: John Doe. Reference: appt-1. "+
		"Thank you for choosing Better Call Homme!", sms.body[0])

	require.Len(t, email.msgs, 1)
	assert.Equal(t, "ops@bettercallhomme.com", email.msgs[0].To)
	assert.Contains(t, email.msgs[0].Subject, "John Smith")
	assert.Contains(t, email.msgs[0].Body, "dishwasher broken")
	assert.Contains(t, email.msgs[0].Body, "John Doe")
}

func TestAppointmentBooked_SkipsSMSForUnknownPhone(t *testing.T) {
	sms := &fakeSMS{}
	svc := NewService(sms, nil, "", "Better Call Homme", nil)

	appt := bookedAppointment()
	appt.CustomerPhone = appointments.UnknownPhone
	svc.AppointmentBooked(context.Background(), appt)

	assert.Empty(t, sms.to)
}

func TestAppointmentBooked_NilChannelsAreSkipped(t *testing.T) {
	svc := NewService(nil, nil, "ops@bettercallhomme.com", "Better Call Homme", nil)
	// Must not panic.
	svc.AppointmentBooked(context.Background(), bookedAppointment())
	svc.AppointmentBooked(context.Background(), nil)
}

func TestAppointmentBooked_SendFailuresDoNotPropagate(t *testing.T) {
	sms := &fakeSMS{err: errors.New("twilio down")}
	email := &fakeEmail{err: errors.New("sendgrid down")}
	svc := NewService(sms, email, "ops@bettercallhomme.com", "Better Call Homme", nil)

	// Best effort: no panic, no error surface.
	svc.AppointmentBooked(context.Background(), bookedAppointment())
	assert.Len(t, sms.to, 1)
	assert.Len(t, email.msgs, 1)
}

func TestAppointmentBooked_NoOperatorEmailSkipsEmail(t *testing.T) {
	email := &fakeEmail{}
	svc := NewService(nil, email, "", "Better Call Homme", nil)

	svc.AppointmentBooked(context.Background(), bookedAppointment())
	assert.Empty(t, email.msgs)
}
