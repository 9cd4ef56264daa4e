package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	appointmentStore "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
)

// Scheduler периодически сканирует хранилище и отправляет напоминания
// о предстоящих записях.
//
// Гарантии доставки: at-least-once. Флаг напоминания выставляется только
// после успешной отправки, поэтому при сбое отправка повторится на следующем
// тике. Повторная установка флага отсекается хранилищем (ErrReminderAlreadySent),
// так что флаг выставляется ровно один раз.
//
// Пропущенные тики (простой сервиса, долгий предыдущий скан) не теряют
// напоминаний: критерий выборки - "момент напоминания уже наступил",
// а не попадание в текущее окно
type Scheduler struct {
	store        AppointmentStore
	notifier     Notifier
	period       time.Duration
	offset       time.Duration
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger

	mu        sync.Mutex
	running   bool   // защита от наложения тиков
	enabled   bool
	active    bool   // запущен ли цикл
	lastRunAt time.Time
	lastSent  int
	totalSent int64
	totalErrs int64
	stopCh    chan struct{}
	doneCh    chan struct{}

	onSent        func()
	onSendError   func()
	onTickSkipped func()
}

// Status снимок состояния планировщика
type Status struct {
	Active     bool      `json:"active"`
	Enabled    bool      `json:"enabled"`
	LastRunAt  time.Time `json:"lastRunAt"`
	NextRunAt  time.Time `json:"nextRunAt"`
	LastSent   int       `json:"lastSent"`
	TotalSent  int64     `json:"totalSent"`
	TotalErrs  int64     `json:"totalErrors"`
	PeriodSecs int       `json:"periodSeconds"`
}

// NewScheduler создает новый планировщик напоминаний
// offset - за сколько до начала записи отправляется напоминание
func NewScheduler(
	store AppointmentStore,
	notifier Notifier,
	period time.Duration,
	offset time.Duration,
	location *time.Location,
	logger Logger,
) *Scheduler {
	return &Scheduler{
		store:        store,
		notifier:     notifier,
		period:       period,
		offset:       offset,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		enabled:      true,
	}
}

// SetTimeProvider подменяет источник времени (для тестов)
func (s *Scheduler) SetTimeProvider(tp TimeProvider) {
	s.timeProvider = tp
}

// SetSentCallback устанавливает колбэк успешной отправки (для метрик)
func (s *Scheduler) SetSentCallback(fn func()) {
	s.onSent = fn
}

// SetSendErrorCallback устанавливает колбэк ошибки отправки (для метрик)
func (s *Scheduler) SetSendErrorCallback(fn func()) {
	s.onSendError = fn
}

// SetTickSkippedCallback устанавливает колбэк пропущенного тика (для метрик)
func (s *Scheduler) SetTickSkippedCallback(fn func()) {
	s.onTickSkipped = fn
}

// Start запускает цикл планировщика в отдельной горутине
// Повторный вызов при запущенном цикле игнорируется
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()

	s.logger.Info("ReminderScheduler: started, period=%s, offset=%s", s.period, s.offset)

	go func() {
		defer close(doneCh)

		ticker := time.NewTicker(s.period)
		defer ticker.Stop()

		// Первый скан сразу при старте: после простоя сервиса
		// накопившиеся напоминания уходят без ожидания первого тика
		s.tick(ctx)

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("ReminderScheduler: context cancelled, stopping")
				return
			case <-stopCh:
				s.logger.Info("ReminderScheduler: stopped")
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop останавливает цикл планировщика и дожидается завершения текущего скана
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
}

// Enable включает отправку напоминаний
func (s *Scheduler) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	s.logger.Info("ReminderScheduler: enabled")
}

// Disable выключает отправку напоминаний (цикл продолжает работать вхолостую)
func (s *Scheduler) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	s.logger.Info("ReminderScheduler: disabled")
}

// GetStatus возвращает снимок состояния планировщика
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Active:     s.active,
		Enabled:    s.enabled,
		LastRunAt:  s.lastRunAt,
		LastSent:   s.lastSent,
		TotalSent:  s.totalSent,
		TotalErrs:  s.totalErrs,
		PeriodSecs: int(s.period.Seconds()),
	}
	if s.active && !s.lastRunAt.IsZero() {
		status.NextRunAt = s.lastRunAt.Add(s.period)
	}
	return status
}

// tick выполняет один скан, если предыдущий уже завершился
// Наложение тиков не допускается: затянувшийся скан приводит к пропуску
// очередного тика, а не к параллельной обработке
func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("ReminderScheduler: previous scan still running, skipping tick")
		if s.onTickSkipped != nil {
			s.onTickSkipped()
		}
		return
	}
	s.running = true
	s.mu.Unlock()

	sent, errs := s.RunOnce(ctx)

	s.mu.Lock()
	s.running = false
	s.lastRunAt = s.timeProvider.Now()
	s.lastSent = sent
	s.totalSent += int64(sent)
	s.totalErrs += int64(errs)
	s.mu.Unlock()
}

// RunOnce выполняет один скан хранилища и отправляет созревшие напоминания
// Возвращает количество отправленных напоминаний и количество ошибок
func (s *Scheduler) RunOnce(ctx context.Context) (sent int, errs int) {
	now := s.timeProvider.Now().In(s.location)

	pending, err := s.store.ListPendingReminders(ctx)
	if err != nil {
		s.logger.Error("ReminderScheduler: failed to list pending reminders: %v", err)
		return 0, 1
	}

	for _, appt := range pending {
		startAt, err := appt.StartDateTime(s.location)
		if err != nil {
			s.logger.Error("ReminderScheduler: invalid start time for appointment id=%d: %v", appt.ID, err)
			continue
		}

		// Запись уже началась - напоминание потеряло смысл, помечаем без отправки
		if !startAt.After(now) {
			if err := s.markSent(ctx, appt.ID, now); err != nil {
				errs++
			}
			continue
		}

		remindAt := startAt.Add(-s.offset)
		if remindAt.After(now) {
			continue
		}

		if err := s.notifier.SendReminder(ctx, appt); err != nil {
			// Флаг не выставляем: отправка повторится на следующем тике
			s.logger.Error("ReminderScheduler: failed to send reminder for appointment id=%d: %v", appt.ID, err)
			if s.onSendError != nil {
				s.onSendError()
			}
			errs++
			continue
		}

		if err := s.markSent(ctx, appt.ID, now); err != nil {
			errs++
			continue
		}

		s.logger.Info("ReminderScheduler: sent reminder for appointment id=%d (starts at %s)",
			appt.ID, startAt.Format(time.RFC3339))
		if s.onSent != nil {
			s.onSent()
		}
		sent++
	}

	return sent, errs
}

// markSent выставляет флаг напоминания
// Уже выставленный флаг не считается ошибкой: конкурентный скан успел раньше
func (s *Scheduler) markSent(ctx context.Context, id int64, sentAt time.Time) error {
	err := s.store.MarkReminderSent(ctx, id, sentAt)
	if err == nil || errors.Is(err, appointmentStore.ErrReminderAlreadySent) {
		return nil
	}
	if errors.Is(err, appointmentStore.ErrAppointmentNotFound) {
		return nil
	}
	s.logger.Error("ReminderScheduler: failed to mark reminder sent for appointment id=%d: %v", id, err)
	return err
}
