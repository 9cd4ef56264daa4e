package place_hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	reservationLedger "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/reservation"
)

// UseCase use case для удержания слота на время заполнения формы
type UseCase struct {
	store        AppointmentStore
	ledger       ReservationLedger
	catalog      ServiceCatalog
	workingHours domain.WorkingHours
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	store AppointmentStore,
	ledger ReservationLedger,
	catalog ServiceCatalog,
	workingHours domain.WorkingHours,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		store:        store,
		ledger:       ledger,
		catalog:      catalog,
		workingHours: workingHours,
		timeProvider: NewRealTimeProvider(location),
		logger:       logger,
	}
}

// Execute выполняет use case удержания слота
// Журнал броней атомарно выполняет проверку и вставку: из двух конкурентных
// запросов на один слот ровно один получает токен
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("PlaceHold: provider=%d, service=%s, date=%s, time=%s",
		req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("PlaceHold: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу из каталога
	service, ok := uc.catalog.Get(req.ServiceID)
	if !ok {
		uc.logger.Warn("PlaceHold: service id=%s not found", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 3. Проверяем, что слот не в прошлом
	now := uc.timeProvider.Now()
	if err := validateSlotTime(req.Date, req.StartTime, now); err != nil {
		uc.logger.Warn("PlaceHold: slot time validation failed: %v", err)
		return nil, err
	}

	// 4. Проверяем, что слот целиком попадает в рабочие часы
	if !uc.workingHours.ContainsSlot(req.StartTime, service.DurationMinutes) {
		uc.logger.Warn("PlaceHold: slot %s (+%dm) is outside working hours", req.StartTime, service.DurationMinutes)
		return nil, ErrOutsideWorkingHours
	}

	// 5. Проверяем, что слот не занят подтвержденной записью
	taken, err := uc.store.IsOverlapping(ctx, req.ProviderID, req.Date, req.StartTime, service.DurationMinutes)
	if err != nil {
		uc.logger.Error("PlaceHold: failed to check overlapping appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to check overlapping appointments: %v", ErrInternal, err)
	}
	if taken {
		uc.logger.Warn("PlaceHold: slot %s on %s is already taken", req.StartTime, req.Date.Format(domain.DateFormat))
		return nil, ErrSlotTaken
	}

	// 6. Удерживаем слот
	res, err := uc.ledger.Place(req.ProviderID, req.Date, req.StartTime)
	if err != nil {
		if errors.Is(err, reservationLedger.ErrSlotHeld) {
			uc.logger.Warn("PlaceHold: slot %s on %s is already held", req.StartTime, req.Date.Format(domain.DateFormat))
			return nil, ErrSlotHeld
		}
		uc.logger.Error("PlaceHold: failed to place hold: %v", err)
		return nil, fmt.Errorf("%w: failed to place hold: %v", ErrInternal, err)
	}

	uc.logger.Info("PlaceHold: held slot %s on %s until %s",
		req.StartTime, req.Date.Format(domain.DateFormat), res.ExpiresAt.Format("15:04:05"))

	return &Response{
		Token:      res.Token,
		ProviderID: res.ProviderID,
		Date:       res.Date,
		StartTime:  res.StartTime,
		ExpiresAt:  res.ExpiresAt,
	}, nil
}
