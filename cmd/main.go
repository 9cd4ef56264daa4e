package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	completeAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/complete_appointment"
	confirmBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/confirm_booking"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_availability"
	getHoldHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_hold"
	getProviderAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_provider_appointments"
	placeHoldHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/place_hold"
	releaseHoldHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/release_hold"
	schedulerControlHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/scheduler_control"
	schedulerStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/scheduler_status"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentStore "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	reservationStore "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/reservation"
	notifierClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	reminderScheduler "github.com/m04kA/SMC-AppointmentService/internal/scheduler/reminder"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	confirmBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/confirm_booking"
	getAvailabilityUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_availability"
	placeHoldUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/place_hold"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/memtx"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// AppointmentStore общий контракт хранилища записей
// Реализуется in-memory и PostgreSQL репозиториями
type AppointmentStore interface {
	appointmentsService.AppointmentStore
	confirmBookingUC.AppointmentStore
	placeHoldUC.AppointmentStore
	reminderScheduler.AppointmentStore
}

// TxManager контракт менеджера критических секций
type TxManager interface {
	DoSerializable(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from config.toml")

	// Доменные справочники из конфигурации
	catalog := domain.NewServiceCatalog(cfg.ToDomainServices())
	workingHours := cfg.ToDomainWorkingHours()
	location := cfg.Location()
	log.Info("Catalog: %d services, working hours: %d ranges, granularity %dm, timezone %s",
		len(cfg.Services), len(workingHours.Ranges), workingHours.GranularityMinutes, cfg.Booking.Timezone)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем хранилище записей и менеджер критических секций
	var (
		store AppointmentStore
		txMgr TxManager
	)

	switch cfg.Storage.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Storage.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Storage.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Storage.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Storage.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Storage.Database.Host, cfg.Storage.Database.Port, cfg.Storage.Database.DBName)

		if cfg.Metrics.Enabled {
			wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
			log.Info("Database metrics collection started")

			store = appointmentStore.NewRepository(wrappedDB)
			txMgr = txmanager.NewTransactionManager(wrappedDB)
		} else {
			store = appointmentStore.NewRepository(db)
			txMgr = simpletxmanager.NewTransactionManager(db)
		}

	case "memory":
		store = appointmentStore.NewMemoryRepository()
		txMgr = memtx.NewTransactionManager(time.Duration(cfg.Booking.LockTimeoutMillis) * time.Millisecond)
		log.Info("Using in-memory appointment store")

	default:
		log.Fatal("Unknown storage driver: %s", cfg.Storage.Driver)
	}

	// Журнал временных броней живет только в памяти процесса
	ledger := reservationStore.NewLedger(time.Duration(cfg.Booking.HoldTTLMinutes) * time.Minute)
	if cfg.Metrics.Enabled {
		ledger.SetPlacedCallback(metricsCollector.HoldsPlacedTotal.Inc)
		ledger.SetExpiredCallback(func(count int) {
			metricsCollector.HoldsExpiredTotal.Add(float64(count))
		})
	}
	log.Info("Reservation ledger initialized, hold TTL %dm", cfg.Booking.HoldTTLMinutes)

	// Шлюз уведомлений
	notifier := notifierClient.NewClient(
		cfg.Notifier.URL,
		time.Duration(cfg.Notifier.Timeout)*time.Second,
		log,
	)
	if cfg.Notifier.URL == "" {
		log.Info("Notifier running in log-only mode")
	} else {
		log.Info("Notifier gateway: %s, timeout %ds", cfg.Notifier.URL, cfg.Notifier.Timeout)
	}

	// Сервис записей
	appointmentsSvc := appointmentsService.NewService(store, notifier, log)

	// Use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(store, ledger, catalog, workingHours, location, log)
	placeHoldUseCase := placeHoldUC.NewUseCase(store, ledger, catalog, workingHours, location, log)
	confirmBookingUseCase := confirmBookingUC.NewUseCase(store, ledger, catalog, txMgr, notifier, workingHours, location, log)

	if cfg.Metrics.Enabled {
		confirmBookingUseCase.SetCreatedCallback(metricsCollector.AppointmentsCreatedTotal.Inc)
		confirmBookingUseCase.SetConflictCallback(func(reason string) {
			metricsCollector.BookingConflictsTotal.WithLabelValues(reason).Inc()
		})
		appointmentsSvc.SetCancelledCallback(metricsCollector.AppointmentsCancelledTotal.Inc)
	}

	// Планировщик напоминаний
	scheduler := reminderScheduler.NewScheduler(
		store,
		notifier,
		time.Duration(cfg.Reminders.PeriodMinutes)*time.Minute,
		time.Duration(cfg.Reminders.OffsetMinutes)*time.Minute,
		location,
		log,
	)
	if cfg.Metrics.Enabled {
		scheduler.SetSentCallback(metricsCollector.RemindersSentTotal.Inc)
		scheduler.SetSendErrorCallback(metricsCollector.ReminderSendErrorsTotal.Inc)
		scheduler.SetTickSkippedCallback(metricsCollector.ReminderTicksSkippedTotal.Inc)
	}

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()

	if cfg.Reminders.Enabled {
		scheduler.Start(schedulerCtx)
	} else {
		log.Info("Reminder scheduler disabled by config")
	}

	// Handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	placeHold := placeHoldHandler.NewHandler(placeHoldUseCase, log)
	getHold := getHoldHandler.NewHandler(ledger, log)
	releaseHold := releaseHoldHandler.NewHandler(ledger, log)
	confirmBooking := confirmBookingHandler.NewHandler(confirmBookingUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	completeAppointment := completeAppointmentHandler.NewHandler(appointmentsSvc, log)
	getProviderAppointments := getProviderAppointmentsHandler.NewHandler(appointmentsSvc, log)
	schedulerStatus := schedulerStatusHandler.NewHandler(scheduler, log)
	schedulerControl := schedulerControlHandler.NewHandler(scheduler, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Доступность и брони ---
	api.HandleFunc("/providers/{providerId}/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/holds", placeHold.Handle).Methods(http.MethodPost)
	api.HandleFunc("/holds/{token}", getHold.Handle).Methods(http.MethodGet)
	api.HandleFunc("/holds/{token}", releaseHold.Handle).Methods(http.MethodDelete)

	// --- Записи ---
	api.HandleFunc("/appointments", confirmBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{id:[0-9]+}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id:[0-9]+}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{id:[0-9]+}/complete", completeAppointment.Handle).Methods(http.MethodPatch)

	// Путь клиента: просмотр и отмена по токену, выданному при подтверждении
	api.HandleFunc("/appointments/by-token/{token}", getAppointment.HandleByToken).Methods(http.MethodGet)
	api.HandleFunc("/appointments/by-token/{token}", cancelAppointment.HandleByToken).Methods(http.MethodDelete)

	// --- Провайдер ---
	api.HandleFunc("/providers/{providerId}/appointments", getProviderAppointments.Handle).Methods(http.MethodGet)

	// --- Планировщик напоминаний ---
	api.HandleFunc("/scheduler/reminders/status", schedulerStatus.Handle).Methods(http.MethodGet)
	api.HandleFunc("/scheduler/reminders/{action}", schedulerControl.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем планировщик и дожидаемся завершения текущего скана
	if cfg.Reminders.Enabled {
		scheduler.Stop()
		log.Info("Reminder scheduler stopped")
	}

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
