package get_hold

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// HoldStatusResponse HTTP response model
type HoldStatusResponse struct {
	Token      string `json:"token"`
	ProviderID int64  `json:"providerId"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	ExpiresAt  string `json:"expiresAt"` // ISO 8601
}

// FromDomainReservation конвертирует резервацию в HTTP response
func FromDomainReservation(res *domain.TemporaryReservation) *HoldStatusResponse {
	return &HoldStatusResponse{
		Token:      res.Token,
		ProviderID: res.ProviderID,
		Date:       res.Date.Format(domain.DateFormat),
		StartTime:  res.StartTime.String(),
		ExpiresAt:  res.ExpiresAt.Format(time.RFC3339),
	}
}
