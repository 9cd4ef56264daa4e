package confirm_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentStore "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	reservationStore "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-AppointmentService/pkg/memtx"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type recordingNotifier struct {
	mu            sync.Mutex
	confirmations []int64
	err           error
}

func (n *recordingNotifier) SendConfirmation(_ context.Context, appt *domain.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.confirmations = append(n.confirmations, appt.ID)
	return nil
}

func testCatalog() *domain.ServiceCatalog {
	return domain.NewServiceCatalog([]domain.ServiceSpec{
		{ID: "haircut", Name: "Стрижка", Price: 1500, DurationMinutes: 30},
	})
}

func testWorkingHours() domain.WorkingHours {
	return domain.WorkingHours{
		Ranges: []domain.TimeRange{
			{Start: "09:00", End: "12:00"},
			{Start: "14:00", End: "18:00"},
		},
		GranularityMinutes: 15,
	}
}

func newTestUseCase(t *testing.T) (*UseCase, *appointmentStore.MemoryRepository, *reservationStore.Ledger, *recordingNotifier) {
	t.Helper()

	store := appointmentStore.NewMemoryRepository()
	ledger := reservationStore.NewLedger(15 * time.Minute)
	notifier := &recordingNotifier{}
	txMgr := memtx.NewTransactionManager(500 * time.Millisecond)

	uc := NewUseCase(store, ledger, testCatalog(), txMgr, notifier, testWorkingHours(), time.UTC, nopLogger{})
	uc.timeProvider = fixedTime{now: time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)}

	return uc, store, ledger, notifier
}

func validRequest() *Request {
	return &Request{
		ProviderID:  1,
		ServiceID:   "haircut",
		Date:        time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		StartTime:   "10:00",
		ClientName:  "Анна",
		ClientPhone: "+79990001122",
	}
}

func TestConfirmBooking_Success(t *testing.T) {
	uc, store, _, notifier := newTestUseCase(t)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, 30, resp.DurationMinutes, "длительность берется из каталога услуг")
	assert.Equal(t, "Стрижка", resp.ServiceName)
	assert.NotEmpty(t, resp.CancelToken)

	stored, err := store.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	assert.Equal(t, []int64{resp.ID}, notifier.confirmations)
}

func TestConfirmBooking_SlotTaken(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.Execute(ctx, validRequest())
	require.NoError(t, err)

	// Тот же слот
	_, err = uc.Execute(ctx, validRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Частичное пересечение: 10:15-10:45
	req := validRequest()
	req.StartTime = "10:15"
	_, err = uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Граничащий слот 10:30-11:00 проходит
	req = validRequest()
	req.StartTime = "10:30"
	_, err = uc.Execute(ctx, req)
	assert.NoError(t, err)
}

func TestConfirmBooking_ConcurrentSingleWinner(t *testing.T) {
	uc, store, _, _ := newTestUseCase(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(ctx, validRequest())
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		default:
			assert.ErrorIs(t, err, ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, winners, "ровно одно из конкурентных подтверждений должно создать запись")

	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	appointments, err := store.GetByProviderAndDate(ctx, 1, date)
	require.NoError(t, err)
	assert.Len(t, appointments, 1)
}

func TestConfirmBooking_WithHoldToken(t *testing.T) {
	uc, _, ledger, _ := newTestUseCase(t)
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	res, err := ledger.Place(1, date, "10:00")
	require.NoError(t, err)

	req := validRequest()
	req.HoldToken = res.Token

	resp, err := uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)

	// Бронь снята после подтверждения
	assert.False(t, ledger.IsHeld(1, date, "10:00"))
}

func TestConfirmBooking_HoldMismatch(t *testing.T) {
	uc, _, ledger, _ := newTestUseCase(t)
	ctx := context.Background()
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	res, err := ledger.Place(1, date, "11:00")
	require.NoError(t, err)

	req := validRequest() // слот 10:00
	req.HoldToken = res.Token

	_, err = uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrHoldMismatch)
}

func TestConfirmBooking_ExpiredHoldDoesNotBlock(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	req := validRequest()
	req.HoldToken = "expired-or-unknown-token"

	// Источник истины о занятости - проверка в транзакции, не журнал броней
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
}

func TestConfirmBooking_OutsideWorkingHours(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	// 11:45 + 30 минут вылезает за конец утреннего интервала
	req := validRequest()
	req.StartTime = "11:45"
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)

	// 13:00 попадает в перерыв
	req = validRequest()
	req.StartTime = "13:00"
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)
}

func TestConfirmBooking_TimezoneWestOfUTC(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	// Сервис настроен на зону UTC-5, локально утро 10 февраля.
	// Дата запроса парсится как UTC-полночь 10 февраля: как момент времени она
	// раньше локального "сейчас", но календарный день тот же - бронирование
	// на сегодня должно проходить
	loc := time.FixedZone("UTC-5", -5*60*60)
	uc.timeProvider = fixedTime{now: time.Date(2026, 2, 10, 9, 30, 0, 0, loc)}

	req := validRequest()
	req.Date = time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	req.StartTime = "10:00"

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err, "сегодняшний слот в будущем не должен отклоняться как прошедший")
	assert.NotZero(t, resp.ID)
}

func TestConfirmBooking_TimezoneEastOfUTC(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	// В зоне UTC+9 уже наступило 11 февраля: бронирование на 10 февраля -
	// это вчерашний день по календарю сервиса, даже если в UTC еще 10-е
	loc := time.FixedZone("UTC+9", 9*60*60)
	uc.timeProvider = fixedTime{now: time.Date(2026, 2, 11, 1, 0, 0, 0, loc)}

	req := validRequest()
	req.Date = time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestConfirmBooking_MetricCallbacks(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	ctx := context.Background()

	created := 0
	conflicts := make(map[string]int)
	uc.SetCreatedCallback(func() { created++ })
	uc.SetConflictCallback(func(reason string) { conflicts[reason]++ })

	_, err := uc.Execute(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	_, err = uc.Execute(ctx, validRequest())
	require.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, 1, created, "колбэк создания не вызывается при конфликте")
	assert.Equal(t, 1, conflicts["slot_taken"])
}

func TestConfirmBooking_PastSlot(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	req := validRequest()
	req.Date = time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)

	// Сегодня, но время уже прошло (now = 10:00)
	req = validRequest()
	req.Date = time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	req.StartTime = "09:00"
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestConfirmBooking_Validation(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	ctx := context.Background()

	req := validRequest()
	req.ClientName = ""
	_, err := uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	req.ClientPhone = "   "
	_, err = uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	req.ServiceID = "unknown"
	_, err = uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	req = validRequest()
	req.StartTime = types.TimeString("25:99")
	_, err = uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConfirmBooking_NotifierFailureDoesNotFailBooking(t *testing.T) {
	uc, store, _, notifier := newTestUseCase(t)
	notifier.err = context.DeadlineExceeded

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err, "ошибка уведомления не откатывает бронирование")

	stored, err := store.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}
