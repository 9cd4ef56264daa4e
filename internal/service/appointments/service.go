package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentStore "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service сервис для работы с существующими записями:
// просмотр, отмена и завершение. Создание записей идет через usecase
// подтверждения бронирования
type Service struct {
	store    AppointmentStore
	notifier Notifier
	logger   Logger

	onCancelled func()
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	store AppointmentStore,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// SetCancelledCallback устанавливает колбэк успешной отмены записи (для метрик)
func (s *Service) SetCancelledCallback(fn func()) {
	s.onCancelled = fn
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d", id)

	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentStore.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: store error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - store error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appt), nil
}

// GetByCancelToken получает запись по токену отмены
// Токен - единственный способ для клиента сослаться на свою запись
func (s *Service) GetByCancelToken(ctx context.Context, token string) (*models.AppointmentResponse, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: cancel token is required", ErrInvalidInput)
	}

	appt, err := s.store.GetByCancelToken(ctx, token)
	if err != nil {
		if errors.Is(err, appointmentStore.ErrAppointmentNotFound) {
			s.logger.Warn("GetByCancelToken: appointment not found")
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByCancelToken: store error: %v", err)
		return nil, fmt.Errorf("%w: GetByCancelToken - store error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appt), nil
}

// GetProviderAppointments получает записи провайдера на дату
// По умолчанию возвращает только активные записи; IncludeInactive добавляет отмененные
func (s *Service) GetProviderAppointments(ctx context.Context, req *models.GetProviderAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetProviderAppointments: provider=%d, date=%s, includeInactive=%t",
		req.ProviderID, req.Date.Format(domain.DateFormat), req.IncludeInactive)

	if req.ProviderID <= 0 {
		return nil, fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	appointments, err := s.store.GetByProviderAndDate(ctx, req.ProviderID, req.Date)
	if err != nil {
		s.logger.Error("GetProviderAppointments: store error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderAppointments - store error: %v", ErrInternal, err)
	}

	if !req.IncludeInactive {
		active := make([]*domain.Appointment, 0, len(appointments))
		for _, appt := range appointments {
			if appt.IsActive() {
				active = append(active, appt)
			}
		}
		appointments = active
	}

	s.logger.Info("GetProviderAppointments: fetched %d appointments for provider=%d",
		len(appointments), req.ProviderID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Complete переводит запись в статус completed
// Допустимо только из статуса confirmed
func (s *Service) Complete(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("Complete: completing appointment id=%d", id)

	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentStore.ErrAppointmentNotFound) {
			s.logger.Warn("Complete: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Complete: store error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Complete - store error: %v", ErrInternal, err)
	}

	if !appt.CanBeCompleted() {
		s.logger.Warn("Complete: appointment id=%d has status %s, cannot complete", id, appt.Status)
		return nil, ErrCannotComplete
	}

	if err := s.store.UpdateStatus(ctx, id, domain.StatusCompleted); err != nil {
		if errors.Is(err, appointmentStore.ErrInvalidTransition) {
			return nil, ErrCannotComplete
		}
		s.logger.Error("Complete: failed to update status for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Complete - store error: %v", ErrInternal, err)
	}

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Complete: failed to reload appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Complete - store error: %v", ErrInternal, err)
	}

	s.logger.Info("Complete: successfully completed appointment id=%d", id)
	return models.FromDomainAppointment(updated), nil
}

// CancelByID отменяет запись по ID
// Отмена идемпотентна на уровне хранилища: повторная отмена возвращает
// ErrAlreadyCancelled и уведомление не отправляется второй раз
func (s *Service) CancelByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("CancelByID: cancelling appointment id=%d", id)

	cancelled, err := s.store.Cancel(ctx, id)
	if err != nil {
		return nil, s.mapCancelError(id, err)
	}

	s.notifyCancellation(ctx, cancelled)
	if s.onCancelled != nil {
		s.onCancelled()
	}

	s.logger.Info("CancelByID: successfully cancelled appointment id=%d", id)
	return models.FromDomainAppointment(cancelled), nil
}

// CancelByToken отменяет запись по токену отмены
func (s *Service) CancelByToken(ctx context.Context, token string) (*models.AppointmentResponse, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: cancel token is required", ErrInvalidInput)
	}

	appt, err := s.store.GetByCancelToken(ctx, token)
	if err != nil {
		if errors.Is(err, appointmentStore.ErrAppointmentNotFound) {
			s.logger.Warn("CancelByToken: appointment not found")
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("CancelByToken: store error: %v", err)
		return nil, fmt.Errorf("%w: CancelByToken - store error: %v", ErrInternal, err)
	}

	cancelled, err := s.store.Cancel(ctx, appt.ID)
	if err != nil {
		return nil, s.mapCancelError(appt.ID, err)
	}

	s.notifyCancellation(ctx, cancelled)
	if s.onCancelled != nil {
		s.onCancelled()
	}

	s.logger.Info("CancelByToken: successfully cancelled appointment id=%d", cancelled.ID)
	return models.FromDomainAppointment(cancelled), nil
}

// mapCancelError конвертирует ошибки хранилища при отмене в ошибки сервиса
func (s *Service) mapCancelError(id int64, err error) error {
	if errors.Is(err, appointmentStore.ErrAppointmentNotFound) {
		s.logger.Warn("Cancel: appointment id=%d not found", id)
		return ErrAppointmentNotFound
	}
	if errors.Is(err, appointmentStore.ErrAlreadyCancelled) {
		s.logger.Warn("Cancel: appointment id=%d is already cancelled", id)
		return ErrAlreadyCancelled
	}
	if errors.Is(err, appointmentStore.ErrInvalidTransition) {
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled from its current status", id)
		return ErrCannotCancel
	}
	s.logger.Error("Cancel: store error for appointment id=%d: %v", id, err)
	return fmt.Errorf("%w: Cancel - store error: %v", ErrInternal, err)
}

// notifyCancellation отправляет уведомление об отмене
// Ошибка отправки не откатывает отмену: запись уже отменена
func (s *Service) notifyCancellation(ctx context.Context, appt *domain.Appointment) {
	if err := s.notifier.SendCancellation(ctx, appt); err != nil {
		s.logger.Error("Cancel: failed to send cancellation for appointment id=%d: %v", appt.ID, err)
	}
}
