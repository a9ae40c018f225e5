package email

import (
	"context"

	"github.com/medibook/booking-api/internal/model"
)

type Service interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendAppointmentConfirmation(ctx context.Context, to, patientName, practitionerName string, date model.Date, start model.TimeOfDay, appointmentType model.AppointmentType) error
	SendAppointmentCancellation(ctx context.Context, to, patientName, practitionerName string, date model.Date, start model.TimeOfDay) error
}
