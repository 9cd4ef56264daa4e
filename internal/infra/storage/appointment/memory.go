package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// MemoryRepository in-memory реализация хранилища записей
// Эталонная реализация: единственный владелец коллекции записей и
// единственный писатель полей статуса и флага напоминания.
// Все методы потокобезопасны; наружу отдаются только копии записей,
// чтобы вызывающие стороны не могли изменить общее состояние
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*domain.Appointment
	byDay  map[string][]int64 // ключ domain.SlotLockKey -> id записей
	tokens map[string]int64   // cancel token -> id
	nextID int64

	now func() time.Time
}

// NewMemoryRepository создает новое in-memory хранилище записей
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[int64]*domain.Appointment),
		byDay:  make(map[string][]int64),
		tokens: make(map[string]int64),
		now:    time.Now,
	}
}

// SetNowFunc подменяет источник времени (для тестов)
func (r *MemoryRepository) SetNowFunc(now func() time.Time) {
	r.now = now
}

// Create создает новую запись
// Проверка конфликта и вставка выполняются атомарно под мьютексом хранилища:
// если слот пересекается с активной записью провайдера, возвращает ErrSlotTaken
func (r *MemoryRepository) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlapsLocked(appt.ProviderID, appt.Date, appt.StartTime, appt.DurationMinutes) {
		return nil, ErrSlotTaken
	}

	r.nextID++
	now := r.now()

	stored := cloneAppointment(appt)
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.CancelToken == "" {
		stored.CancelToken = uuid.NewString()
	}

	key := domain.SlotLockKey(stored.ProviderID, stored.Date)
	r.byID[stored.ID] = stored
	r.byDay[key] = append(r.byDay[key], stored.ID)
	r.tokens[stored.CancelToken] = stored.ID

	return cloneAppointment(stored), nil
}

// GetByID получает запись по ID
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return cloneAppointment(appt), nil
}

// GetByCancelToken получает запись по токену отмены
func (r *MemoryRepository) GetByCancelToken(_ context.Context, token string) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.tokens[token]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return cloneAppointment(r.byID[id]), nil
}

// GetByProviderAndDate получает все записи провайдера на дату (любой статус)
// Результат отсортирован по времени начала
func (r *MemoryRepository) GetByProviderAndDate(_ context.Context, providerID int64, date time.Time) ([]*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := domain.SlotLockKey(providerID, date)
	ids := r.byDay[key]

	appointments := make([]*domain.Appointment, 0, len(ids))
	for _, id := range ids {
		appointments = append(appointments, cloneAppointment(r.byID[id]))
	}

	sortByStartTime(appointments)
	return appointments, nil
}

// IsOverlapping проверяет, пересекается ли слот [start, start+duration) с какой-либо
// активной записью провайдера на дату (полуоткрытые интервалы)
func (r *MemoryRepository) IsOverlapping(_ context.Context, providerID int64, date time.Time, start types.TimeString, durationMinutes int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.overlapsLocked(providerID, date, start, durationMinutes), nil
}

// ListPendingReminders возвращает подтвержденные записи без отправленного напоминания
func (r *MemoryRepository) ListPendingReminders(_ context.Context) ([]*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make([]*domain.Appointment, 0)
	for _, appt := range r.byID {
		if appt.NeedsReminder() {
			pending = append(pending, cloneAppointment(appt))
		}
	}

	sortByDateAndTime(pending)
	return pending, nil
}

// UpdateStatus обновляет статус записи
// Отмена терминальна: попытка сменить статус отмененной записи возвращает ErrInvalidTransition
func (r *MemoryRepository) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byID[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	if appt.IsCancelled() {
		return ErrInvalidTransition
	}

	appt.Status = status
	appt.UpdatedAt = r.now()
	return nil
}

// Cancel отменяет запись
// Отменить можно только подтвержденную запись: повторная отмена возвращает
// ErrAlreadyCancelled (уведомление об отмене должно отправляться не более
// одного раза), отмена завершенной записи - ErrInvalidTransition
func (r *MemoryRepository) Cancel(_ context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if appt.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}
	if !appt.CanBeCancelled() {
		return nil, ErrInvalidTransition
	}

	now := r.now()
	appt.Status = domain.StatusCancelled
	appt.CancelledAt = ptr.Ptr(now)
	appt.UpdatedAt = now

	return cloneAppointment(appt), nil
}

// MarkReminderSent устанавливает флаг отправленного напоминания
// Если флаг уже установлен, возвращает ErrReminderAlreadySent - защита от
// двойной отправки при конкурентных сканах планировщика
func (r *MemoryRepository) MarkReminderSent(_ context.Context, id int64, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.byID[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	if appt.ReminderSent {
		return ErrReminderAlreadySent
	}

	appt.ReminderSent = true
	appt.ReminderSentAt = ptr.Ptr(sentAt)
	appt.UpdatedAt = r.now()
	return nil
}

// overlapsLocked проверка пересечения без захвата мьютекса (вызывающий держит его)
func (r *MemoryRepository) overlapsLocked(providerID int64, date time.Time, start types.TimeString, durationMinutes int) bool {
	slotEnd, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return false
	}

	key := domain.SlotLockKey(providerID, date)
	for _, id := range r.byDay[key] {
		appt := r.byID[id]
		if !appt.IsActive() {
			continue
		}

		apptEnd, err := appt.StartTime.AddMinutes(appt.DurationMinutes)
		if err != nil {
			continue
		}

		// Полуоткрытые интервалы: граничащие записи не пересекаются
		if appt.StartTime.IsBefore(slotEnd) && apptEnd.IsAfter(start) {
			return true
		}
	}

	return false
}

// cloneAppointment возвращает глубокую копию записи
func cloneAppointment(a *domain.Appointment) *domain.Appointment {
	clone := *a
	if a.ReminderSentAt != nil {
		t := *a.ReminderSentAt
		clone.ReminderSentAt = &t
	}
	if a.CancelledAt != nil {
		t := *a.CancelledAt
		clone.CancelledAt = &t
	}
	return &clone
}

func sortByStartTime(appointments []*domain.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].StartTime.IsBefore(appointments[j].StartTime)
	})
}

func sortByDateAndTime(appointments []*domain.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		if !appointments[i].Date.Equal(appointments[j].Date) {
			return appointments[i].Date.Before(appointments[j].Date)
		}
		return appointments[i].StartTime.IsBefore(appointments[j].StartTime)
	})
}
