package get_availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// UseCase use case для получения сетки доступных слотов
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

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: provider=%d, service=%s, date=%s",
		req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу из каталога - её длительность определяет размер слота
	service, ok := uc.catalog.Get(req.ServiceID)
	if !ok {
		uc.logger.Warn("GetAvailability: service id=%s not found", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 3. Получаем текущее время
	now := uc.timeProvider.Now()

	if isDateInPast(req.Date, now) {
		uc.logger.Warn("GetAvailability: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}

	// 4. Генерируем сетку времен начала по рабочим часам
	timeSlots, err := generateTimeSlots(uc.workingHours, service.DurationMinutes, req.Date, now)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to generate time slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate time slots: %v", ErrInternal, err)
	}

	// 5. Получаем записи провайдера на дату
	appointments, err := uc.store.GetByProviderAndDate(ctx, req.ProviderID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 6. Получаем активные временные брони на дату
	held := uc.ledger.HeldSlots(req.ProviderID, req.Date)

	// 7. Помечаем занятые слоты
	slots := markAvailability(timeSlots, service.DurationMinutes, appointments, held)

	uc.logger.Info("GetAvailability: generated %d slots for provider=%d, service=%s, date=%s",
		len(slots), req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:            req.Date,
		ProviderID:      req.ProviderID,
		ServiceID:       req.ServiceID,
		ServiceName:     service.Name,
		DurationMinutes: service.DurationMinutes,
		Slots:           slots,
	}, nil
}
