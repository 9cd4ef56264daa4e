package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// GetProviderAppointmentsRequest запрос на получение записей провайдера на дату
type GetProviderAppointmentsRequest struct {
	ProviderID      int64     `json:"providerId"`
	Date            time.Time `json:"date"`
	IncludeInactive bool      `json:"includeInactive,omitempty"` // Включить отменённые записи
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64  `json:"id"`
	ProviderID      int64  `json:"providerId"`
	Date            string `json:"date"`      // "2025-10-15"
	StartTime       string `json:"startTime"` // "10:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone"`

	// Денормализованные данные услуги
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`

	ReminderSent bool    `json:"reminderSent"`
	CancelledAt  *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// FromDomainAppointment конвертирует domain модель в response
func FromDomainAppointment(appt *domain.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:              appt.ID,
		ProviderID:      appt.ProviderID,
		Date:            appt.Date.Format(domain.DateFormat),
		StartTime:       appt.StartTime.String(),
		DurationMinutes: appt.DurationMinutes,
		Status:          string(appt.Status),
		ClientName:      appt.ClientName,
		ClientPhone:     appt.ClientPhone,
		ServiceName:     appt.ServiceName,
		ServicePrice:    appt.ServicePrice,
		ReminderSent:    appt.ReminderSent,
		CreatedAt:       appt.CreatedAt,
		UpdatedAt:       appt.UpdatedAt,
	}

	if appt.CancelledAt != nil {
		cancelledAt := appt.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в response
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	result := make([]AppointmentResponse, 0, len(appointments))
	for _, appt := range appointments {
		result = append(result, *FromDomainAppointment(appt))
	}

	return &AppointmentListResponse{
		Appointments: result,
		Total:        len(result),
	}
}
