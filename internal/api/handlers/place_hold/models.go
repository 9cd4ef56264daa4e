package place_hold

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	placeHold "github.com/m04kA/SMC-AppointmentService/internal/usecase/place_hold"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// PlaceHoldRequest HTTP request model
type PlaceHoldRequest struct {
	ProviderID int64  `json:"providerId"`
	ServiceID  string `json:"serviceId"`
	Date       string `json:"date"`      // "2025-10-15"
	StartTime  string `json:"startTime"` // "10:00"
}

// HoldResponse HTTP response model
type HoldResponse struct {
	Token      string `json:"token"`
	ProviderID int64  `json:"providerId"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	ExpiresAt  string `json:"expiresAt"` // ISO 8601
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *PlaceHoldRequest) ToUseCaseRequest() (*placeHold.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &placeHold.Request{
		ProviderID: r.ProviderID,
		ServiceID:  r.ServiceID,
		Date:       date,
		StartTime:  startTime,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *placeHold.Response) *HoldResponse {
	return &HoldResponse{
		Token:      resp.Token,
		ProviderID: resp.ProviderID,
		Date:       resp.Date.Format(domain.DateFormat),
		StartTime:  resp.StartTime.String(),
		ExpiresAt:  resp.ExpiresAt.Format(time.RFC3339),
	}
}
