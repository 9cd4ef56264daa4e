package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentStore "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []int64
	failNext int // количество ближайших отправок, завершающихся ошибкой
}

func (n *fakeNotifier) SendReminder(_ context.Context, appt *domain.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext > 0 {
		n.failNext--
		return errors.New("notifier unavailable")
	}
	n.sent = append(n.sent, appt.ID)
	return nil
}

func (n *fakeNotifier) sentIDs() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.sent...)
}

func newTestScheduler(t *testing.T) (*Scheduler, *appointmentStore.MemoryRepository, *fakeNotifier, *fakeClock) {
	t.Helper()

	store := appointmentStore.NewMemoryRepository()
	notifier := &fakeNotifier{}
	clock := &fakeClock{now: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)}

	s := NewScheduler(store, notifier, 5*time.Minute, time.Hour, time.UTC, nopLogger{})
	s.SetTimeProvider(clock)

	return s, store, notifier, clock
}

func createConfirmed(t *testing.T, store *appointmentStore.MemoryRepository, start string) *domain.Appointment {
	t.Helper()

	appt, err := store.Create(context.Background(), &domain.Appointment{
		ProviderID:      1,
		Date:            time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString(start),
		DurationMinutes: 30,
		Status:          domain.StatusConfirmed,
		ClientName:      "Анна",
		ClientPhone:     "+79990001122",
	})
	require.NoError(t, err)
	return appt
}

func TestScheduler_SendsDueReminder(t *testing.T) {
	s, store, notifier, _ := newTestScheduler(t)
	ctx := context.Background()

	// Запись в 10:00, напоминание за час, сейчас 09:00 - пора отправлять
	appt := createConfirmed(t, store, "10:00")

	sent, errs := s.RunOnce(ctx)
	assert.Equal(t, 1, sent)
	assert.Zero(t, errs)
	assert.Equal(t, []int64{appt.ID}, notifier.sentIDs())

	got, err := store.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)

	// Повторный скан ничего не отправляет
	sent, errs = s.RunOnce(ctx)
	assert.Zero(t, sent)
	assert.Zero(t, errs)
	assert.Len(t, notifier.sentIDs(), 1)
}

func TestScheduler_NotYetDueSkipped(t *testing.T) {
	s, store, notifier, clock := newTestScheduler(t)
	ctx := context.Background()

	// Запись в 11:00, сейчас 09:00 - момент напоминания (10:00) еще не наступил
	appt := createConfirmed(t, store, "11:00")

	sent, _ := s.RunOnce(ctx)
	assert.Zero(t, sent)
	assert.Empty(t, notifier.sentIDs())

	// В 10:00 напоминание созревает
	clock.Set(time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC))
	sent, _ = s.RunOnce(ctx)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []int64{appt.ID}, notifier.sentIDs())
}

func TestScheduler_RetryAfterNotifierFailure(t *testing.T) {
	s, store, notifier, _ := newTestScheduler(t)
	ctx := context.Background()

	appt := createConfirmed(t, store, "10:00")
	notifier.failNext = 2

	sendErrors := 0
	s.SetSendErrorCallback(func() { sendErrors++ })

	// Два неудачных скана: флаг не выставлен, отправка будет повторена
	for i := 0; i < 2; i++ {
		sent, errs := s.RunOnce(ctx)
		assert.Zero(t, sent)
		assert.Equal(t, 1, errs)

		got, err := store.GetByID(ctx, appt.ID)
		require.NoError(t, err)
		assert.False(t, got.ReminderSent, "флаг не выставляется при ошибке отправки")
	}
	assert.Equal(t, 2, sendErrors)

	// Третий скан доставляет напоминание и выставляет флаг
	sent, errs := s.RunOnce(ctx)
	assert.Equal(t, 1, sent)
	assert.Zero(t, errs)
	assert.Equal(t, []int64{appt.ID}, notifier.sentIDs())

	got, err := store.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)
}

func TestScheduler_StartedAppointmentMarkedWithoutSending(t *testing.T) {
	s, store, notifier, clock := newTestScheduler(t)
	ctx := context.Background()

	// Сервис простаивал, запись уже началась
	appt := createConfirmed(t, store, "10:00")
	clock.Set(time.Date(2026, 2, 10, 10, 15, 0, 0, time.UTC))

	sent, errs := s.RunOnce(ctx)
	assert.Zero(t, sent, "напоминание о начавшейся записи не отправляется")
	assert.Zero(t, errs)
	assert.Empty(t, notifier.sentIDs())

	got, err := store.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent, "флаг выставляется, чтобы запись не висела в выборке")
}

func TestScheduler_CatchUpAfterDowntime(t *testing.T) {
	s, store, notifier, clock := newTestScheduler(t)
	ctx := context.Background()

	// Момент напоминания (09:00) давно прошел, но запись еще не началась.
	// Критерий выборки - "момент уже наступил", поэтому напоминание не теряется
	appt := createConfirmed(t, store, "10:00")
	clock.Set(time.Date(2026, 2, 10, 9, 42, 0, 0, time.UTC))

	sent, _ := s.RunOnce(ctx)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []int64{appt.ID}, notifier.sentIDs())
}

func TestScheduler_DisableStopsSending(t *testing.T) {
	s, store, notifier, _ := newTestScheduler(t)
	ctx := context.Background()

	createConfirmed(t, store, "10:00")

	s.Disable()
	s.tick(ctx)
	assert.Empty(t, notifier.sentIDs())

	s.Enable()
	s.tick(ctx)
	assert.Len(t, notifier.sentIDs(), 1)

	status := s.GetStatus()
	assert.True(t, status.Enabled)
	assert.Equal(t, int64(1), status.TotalSent)
	assert.Equal(t, 1, status.LastSent)
}

func TestScheduler_StartStop(t *testing.T) {
	s, store, notifier, _ := newTestScheduler(t)

	createConfirmed(t, store, "10:00")

	s.Start(context.Background())

	// Первый скан выполняется сразу при старте
	require.Eventually(t, func() bool {
		return len(notifier.sentIDs()) == 1
	}, time.Second, 10*time.Millisecond)

	status := s.GetStatus()
	assert.True(t, status.Active)
	assert.False(t, status.LastRunAt.IsZero())
	assert.Equal(t, status.LastRunAt.Add(5*time.Minute), status.NextRunAt,
		"следующий запуск - предыдущий плюс период")

	s.Stop()
	status = s.GetStatus()
	assert.False(t, status.Active)
	assert.True(t, status.NextRunAt.IsZero(), "у остановленного цикла нет следующего запуска")

	// Повторный Stop не паникует
	s.Stop()

	// Цикл можно запустить заново после остановки
	s.Start(context.Background())
	require.Eventually(t, func() bool {
		return s.GetStatus().Active
	}, time.Second, 10*time.Millisecond)
	s.Stop()
}
