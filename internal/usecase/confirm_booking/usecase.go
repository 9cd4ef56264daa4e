package confirm_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentStore "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	reservationLedger "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-AppointmentService/pkg/memtx"
)

// UseCase use case для подтверждения бронирования
type UseCase struct {
	store        AppointmentStore
	ledger       ReservationLedger
	catalog      ServiceCatalog
	txManager    TransactionManager
	notifier     Notifier
	workingHours domain.WorkingHours
	timeProvider TimeProvider
	logger       Logger

	onCreated  func()
	onConflict func(reason string)
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	store AppointmentStore,
	ledger ReservationLedger,
	catalog ServiceCatalog,
	txManager TransactionManager,
	notifier Notifier,
	workingHours domain.WorkingHours,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		store:        store,
		ledger:       ledger,
		catalog:      catalog,
		txManager:    txManager,
		notifier:     notifier,
		workingHours: workingHours,
		timeProvider: NewRealTimeProvider(location),
		logger:       logger,
	}
}

// SetCreatedCallback устанавливает колбэк успешного создания записи (для метрик)
func (uc *UseCase) SetCreatedCallback(fn func()) {
	uc.onCreated = fn
}

// SetConflictCallback устанавливает колбэк отклоненной попытки бронирования (для метрик)
func (uc *UseCase) SetConflictCallback(fn func(reason string)) {
	uc.onConflict = fn
}

// Execute выполняет use case подтверждения бронирования
// Проверка занятости и вставка выполняются в сериализуемой транзакции под
// ключом (провайдер, дата): из двух конкурентных подтверждений одного слота
// ровно одно создает запись, второе получает ErrSlotTaken
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ConfirmBooking: provider=%d, service=%s, date=%s, time=%s",
		req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ConfirmBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу из каталога
	service, ok := uc.catalog.Get(req.ServiceID)
	if !ok {
		uc.logger.Warn("ConfirmBooking: service id=%s not found", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 3. Проверяем, что слот не в прошлом
	now := uc.timeProvider.Now()
	if err := validateSlotTime(req.Date, req.StartTime, now); err != nil {
		uc.logger.Warn("ConfirmBooking: slot time validation failed: %v", err)
		return nil, err
	}

	// 4. Проверяем, что слот целиком попадает в рабочие часы
	if !uc.workingHours.ContainsSlot(req.StartTime, service.DurationMinutes) {
		uc.logger.Warn("ConfirmBooking: slot %s (+%dm) is outside working hours",
			req.StartTime, service.DurationMinutes)
		return nil, ErrOutsideWorkingHours
	}

	// 5. Если передан токен брони, проверяем соответствие слоту
	// Истекшая или отсутствующая бронь не блокирует подтверждение:
	// источником истины о занятости остается проверка внутри транзакции
	if req.HoldToken != "" {
		res, err := uc.ledger.GetByToken(req.HoldToken)
		if err == nil && !res.IsSameSlot(req.ProviderID, req.Date, req.StartTime) {
			uc.logger.Warn("ConfirmBooking: hold token points to a different slot")
			return nil, ErrHoldMismatch
		}
		if err != nil && !errors.Is(err, reservationLedger.ErrReservationNotFound) {
			uc.logger.Error("ConfirmBooking: failed to get reservation: %v", err)
			return nil, fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
		}
	}

	// Переменная для хранения результата
	var result *domain.Appointment

	// 6. Выполняем проверку занятости и вставку в сериализуемой транзакции
	lockKey := domain.SlotLockKey(req.ProviderID, req.Date)
	err := uc.txManager.DoSerializable(ctx, lockKey, func(txCtx context.Context) error {
		// 6.1. Получаем все записи провайдера на дату с блокировкой (FOR UPDATE)
		appointments, err := uc.store.GetByProviderAndDate(txCtx, req.ProviderID, req.Date)
		if err != nil {
			uc.logger.Error("ConfirmBooking: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		// 6.2. Проверяем доступность слота
		overlappingCount, err := countOverlappingAppointments(req.StartTime, service.DurationMinutes, appointments)
		if err != nil {
			uc.logger.Error("ConfirmBooking: failed to count overlapping appointments: %v", err)
			return fmt.Errorf("%w: failed to count overlapping appointments: %v", ErrInternal, err)
		}

		if overlappingCount > 0 {
			uc.logger.Warn("ConfirmBooking: slot %s on %s is already taken",
				req.StartTime, req.Date.Format(domain.DateFormat))
			return ErrSlotTaken
		}

		// 6.3. Создаем запись с денормализацией данных услуги
		appt := &domain.Appointment{
			ProviderID:      req.ProviderID,
			Date:            req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: service.DurationMinutes,
			Status:          domain.StatusConfirmed,
			ClientName:      req.ClientName,
			ClientPhone:     req.ClientPhone,
			ServiceName:     service.Name,
			ServicePrice:    service.Price,
		}

		created, err := uc.store.Create(txCtx, appt)
		if err != nil {
			// Хранилище выполняет собственную атомарную проверку пересечений
			if errors.Is(err, appointmentStore.ErrSlotTaken) {
				return ErrSlotTaken
			}
			uc.logger.Error("ConfirmBooking: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, memtx.ErrBusy) {
			uc.logger.Warn("ConfirmBooking: slot lock is busy for key %s", lockKey)
			if uc.onConflict != nil {
				uc.onConflict("lock_busy")
			}
			return nil, ErrBusy
		}
		if errors.Is(err, ErrSlotTaken) && uc.onConflict != nil {
			uc.onConflict("slot_taken")
		}
		return nil, err
	}

	// 7. Снимаем временную бронь - слот уже занят подтвержденной записью
	if req.HoldToken != "" {
		uc.ledger.Release(req.HoldToken)
	}

	uc.logger.Info("ConfirmBooking: successfully created appointment id=%d", result.ID)
	if uc.onCreated != nil {
		uc.onCreated()
	}

	// 8. Отправляем подтверждение клиенту
	// Ошибка отправки не откатывает бронирование: запись уже создана
	if err := uc.notifier.SendConfirmation(ctx, result); err != nil {
		uc.logger.Error("ConfirmBooking: failed to send confirmation for appointment id=%d: %v", result.ID, err)
	}

	return &Response{
		ID:              result.ID,
		ProviderID:      result.ProviderID,
		Date:            result.Date,
		StartTime:       result.StartTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		ClientName:      result.ClientName,
		ClientPhone:     result.ClientPhone,
		ServiceName:     result.ServiceName,
		ServicePrice:    result.ServicePrice,
		CancelToken:     result.CancelToken,
		CreatedAt:       result.CreatedAt,
	}, nil
}
