package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// appointmentColumns полный набор колонок таблицы appointments
var appointmentColumns = []string{
	"id",
	"provider_id",
	"appointment_date",
	"start_time",
	"duration_minutes",
	"status",
	"client_name",
	"client_phone",
	"service_name",
	"service_price",
	"cancel_token",
	"reminder_sent",
	"reminder_sent_at",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository PostgreSQL реализация хранилища записей
// Атомарность check-then-act обеспечивается сериализуемой транзакцией
// менеджера транзакций и блокировкой FOR UPDATE внутри неё
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Вызывать внутри сериализуемой транзакции вместе с проверкой пересечений -
// иначе возможна гонка двух конкурентных подтверждений
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	cancelToken := appt.CancelToken
	if cancelToken == "" {
		cancelToken = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"provider_id",
			"appointment_date",
			"start_time",
			"duration_minutes",
			"status",
			"client_name",
			"client_phone",
			"service_name",
			"service_price",
			"cancel_token",
			"reminder_sent",
		).
		Values(
			appt.ProviderID,
			appt.Date,
			appt.StartTime,
			appt.DurationMinutes,
			appt.Status,
			appt.ClientName,
			appt.ClientPhone,
			appt.ServiceName,
			appt.ServicePrice,
			cancelToken,
			false,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	created := *appt
	created.CancelToken = cancelToken

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&created.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	created.CreatedAt = createdAt.Time
	created.UpdatedAt = updatedAt.Time

	return &created, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByCancelToken получает запись по токену отмены
func (r *Repository) GetByCancelToken(ctx context.Context, token string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"cancel_token": token}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByCancelToken - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByCancelToken")
}

// GetByProviderAndDate получает все записи провайдера на дату (любой статус)
// Внутри транзакции добавляет FOR UPDATE для блокировки строк дня -
// используется при подтверждении бронирования
func (r *Repository) GetByProviderAndDate(ctx context.Context, providerID int64, date time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"appointment_date": date}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// IsOverlapping проверяет пересечение слота [start, start+duration) с активными
// записями провайдера на дату (полуоткрытые интервалы: граничащие не пересекаются)
func (r *Repository) IsOverlapping(ctx context.Context, providerID int64, date time.Time, start types.TimeString, durationMinutes int) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	slotEnd, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return false, fmt.Errorf("%w: IsOverlapping - compute slot end: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Select("1").
		From("appointments").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"appointment_date": date}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Where(squirrel.Expr("start_time < ?::time", slotEnd)).
		Where(squirrel.Expr("start_time + make_interval(mins => duration_minutes) > ?::time", start)).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: IsOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: IsOverlapping - execute query: %v", ErrExecQuery, err)
	}

	return true, nil
}

// ListPendingReminders возвращает подтвержденные записи без отправленного напоминания
func (r *Repository) ListPendingReminders(ctx context.Context) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.Eq{"reminder_sent": false}).
		OrderBy("appointment_date ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingReminders - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingReminders - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// UpdateStatus обновляет статус записи
// Отмена терминальна: попытка сменить статус отмененной записи возвращает ErrInvalidTransition
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Различаем "нет записи" и "запись уже отменена"
		if _, err := r.GetByID(ctx, id); err != nil {
			return ErrAppointmentNotFound
		}
		return ErrInvalidTransition
	}

	return nil
}

// Cancel отменяет запись
// Отменить можно только подтвержденную запись: повторная отмена возвращает
// ErrAlreadyCancelled, отмена завершенной записи - ErrInvalidTransition
func (r *Repository) Cancel(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelled).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Suffix("RETURNING " + joinColumns(appointmentColumns)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	appt, err := r.scanOne(executor.QueryRowContext(ctx, query, args...), "Cancel")
	if err == ErrAppointmentNotFound {
		// Различаем "нет записи", "уже отменена" и "завершена"
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, ErrAppointmentNotFound
		}
		if existing.IsCancelled() {
			return nil, ErrAlreadyCancelled
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	return appt, nil
}

// MarkReminderSent устанавливает флаг отправленного напоминания
// Условие reminder_sent = false делает установку атомарной: при конкурентных
// сканах планировщика флаг выставится ровно один раз
func (r *Repository) MarkReminderSent(ctx context.Context, id int64, sentAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("reminder_sent", true).
		Set("reminder_sent_at", sentAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"reminder_sent": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return ErrAppointmentNotFound
		}
		return ErrReminderAlreadySent
	}

	return nil
}

// scanOne сканирует одну запись из строки результата
func (r *Repository) scanOne(row *sql.Row, method string) (*domain.Appointment, error) {
	var appt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.ProviderID,
		&appt.Date,
		&appt.StartTime,
		&appt.DurationMinutes,
		&appt.Status,
		&appt.ClientName,
		&appt.ClientPhone,
		&appt.ServiceName,
		&appt.ServicePrice,
		&appt.CancelToken,
		&appt.ReminderSent,
		&appt.ReminderSentAt,
		&appt.CancelledAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan appointment: %v", ErrScanRow, method, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return &appt, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func (r *Repository) scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		var appt domain.Appointment
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&appt.ID,
			&appt.ProviderID,
			&appt.Date,
			&appt.StartTime,
			&appt.DurationMinutes,
			&appt.Status,
			&appt.ClientName,
			&appt.ClientPhone,
			&appt.ServiceName,
			&appt.ServicePrice,
			&appt.CancelToken,
			&appt.ReminderSent,
			&appt.ReminderSentAt,
			&appt.CancelledAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}

		appt.CreatedAt = createdAt.Time
		appt.UpdatedAt = updatedAt.Time

		appointments = append(appointments, &appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

func joinColumns(columns []string) string {
	out := ""
	for i, c := range columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
