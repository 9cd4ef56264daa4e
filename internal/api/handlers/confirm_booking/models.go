package confirm_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	confirmBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/confirm_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ConfirmBookingRequest HTTP request model
type ConfirmBookingRequest struct {
	ProviderID  int64  `json:"providerId"`
	ServiceID   string `json:"serviceId"`
	Date        string `json:"date"`      // "2025-10-15"
	StartTime   string `json:"startTime"` // "10:00"
	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone"`
	HoldToken   string `json:"holdToken,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	ProviderID      int64   `json:"providerId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	ClientName      string  `json:"clientName"`
	ClientPhone     string  `json:"clientPhone"`
	ServiceName     string  `json:"serviceName"`
	ServicePrice    float64 `json:"servicePrice"`
	CancelToken     string  `json:"cancelToken"`
	CreatedAt       string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ConfirmBookingRequest) ToUseCaseRequest() (*confirmBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &confirmBooking.Request{
		ProviderID:  r.ProviderID,
		ServiceID:   r.ServiceID,
		Date:        date,
		StartTime:   startTime,
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		HoldToken:   r.HoldToken,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *confirmBooking.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		ProviderID:      resp.ProviderID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		ClientName:      resp.ClientName,
		ClientPhone:     resp.ClientPhone,
		ServiceName:     resp.ServiceName,
		ServicePrice:    resp.ServicePrice,
		CancelToken:     resp.CancelToken,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}
}
