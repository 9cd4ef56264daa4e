package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Storage      StorageConfig      `toml:"storage"`
	Booking      BookingConfig      `toml:"booking"`
	Reminders    RemindersConfig    `toml:"reminders"`
	Notifier     NotifierConfig     `toml:"notifier"`
	Services     []ServiceConfig    `toml:"services"`
	WorkingHours WorkingHoursConfig `toml:"working_hours"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// StorageConfig настройки хранилища записей
// driver = "memory" поднимает сервис без внешних зависимостей,
// driver = "postgres" использует PostgreSQL
type StorageConfig struct {
	Driver   string         `toml:"driver"`
	Database DatabaseConfig `toml:"database"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// BookingConfig настройки бронирования
type BookingConfig struct {
	GranularityMinutes int    `toml:"granularity_minutes"`
	HoldTTLMinutes     int    `toml:"hold_ttl_minutes"`
	LockTimeoutMillis  int    `toml:"lock_timeout_millis"`
	Timezone           string `toml:"timezone"` // IANA, например "Europe/Moscow"
}

// RemindersConfig настройки планировщика напоминаний
type RemindersConfig struct {
	Enabled       bool `toml:"enabled"`
	PeriodMinutes int  `toml:"period_minutes"`
	OffsetMinutes int  `toml:"offset_minutes"` // за сколько до записи отправлять
}

// NotifierConfig настройки шлюза уведомлений
// Пустой url включает log-only режим
type NotifierConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// ServiceConfig описание услуги в каталоге
type ServiceConfig struct {
	ID              string  `toml:"id"`
	Name            string  `toml:"name"`
	Price           float64 `toml:"price"`
	DurationMinutes int     `toml:"duration_minutes"`
}

// WorkingHoursConfig рабочие часы провайдера
type WorkingHoursConfig struct {
	Ranges []TimeRangeConfig `toml:"ranges"`
}

// TimeRangeConfig один рабочий интервал, например 09:00-12:00
type TimeRangeConfig struct {
	Start string `toml:"start"` // "09:00"
	End   string `toml:"end"`   // "12:00"
}

// Load загружает конфигурацию из TOML файла и применяет дефолты
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Booking.GranularityMinutes == 0 {
		c.Booking.GranularityMinutes = domain.DefaultSlotGranularityMinutes
	}
	if c.Booking.HoldTTLMinutes == 0 {
		c.Booking.HoldTTLMinutes = domain.DefaultHoldTTLMinutes
	}
	if c.Booking.LockTimeoutMillis == 0 {
		c.Booking.LockTimeoutMillis = domain.DefaultLockTimeoutMillis
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "UTC"
	}
	if c.Reminders.PeriodMinutes == 0 {
		c.Reminders.PeriodMinutes = domain.DefaultReminderPeriodMinutes
	}
	if c.Reminders.OffsetMinutes == 0 {
		c.Reminders.OffsetMinutes = domain.DefaultReminderOffsetMinutes
	}
	if c.Notifier.Timeout == 0 {
		c.Notifier.Timeout = 5
	}
}

func (c *Config) validate() error {
	if c.Storage.Driver != "memory" && c.Storage.Driver != "postgres" {
		return fmt.Errorf("invalid storage driver %q, expected memory or postgres", c.Storage.Driver)
	}

	if len(c.Services) == 0 {
		return fmt.Errorf("at least one service must be configured")
	}
	for _, s := range c.Services {
		if s.ID == "" {
			return fmt.Errorf("service id is required")
		}
		if s.DurationMinutes < domain.MinServiceDurationMinutes || s.DurationMinutes > domain.MaxServiceDurationMinutes {
			return fmt.Errorf("service %s: duration %d is out of range [%d, %d]",
				s.ID, s.DurationMinutes, domain.MinServiceDurationMinutes, domain.MaxServiceDurationMinutes)
		}
	}

	if len(c.WorkingHours.Ranges) == 0 {
		return fmt.Errorf("at least one working hours range must be configured")
	}
	for _, r := range c.WorkingHours.Ranges {
		start, err := types.NewTimeStringFromString(r.Start)
		if err != nil {
			return fmt.Errorf("working hours: invalid start %q: %w", r.Start, err)
		}
		end, err := types.NewTimeStringFromString(r.End)
		if err != nil {
			return fmt.Errorf("working hours: invalid end %q: %w", r.End, err)
		}
		if !start.IsBefore(end) {
			return fmt.Errorf("working hours: range %s-%s is empty", r.Start, r.End)
		}
	}

	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Booking.Timezone, err)
	}

	return nil
}

// ToDomainServices конвертирует каталог услуг в domain модели
func (c *Config) ToDomainServices() []domain.ServiceSpec {
	services := make([]domain.ServiceSpec, 0, len(c.Services))
	for _, s := range c.Services {
		services = append(services, domain.ServiceSpec{
			ID:              s.ID,
			Name:            s.Name,
			Price:           s.Price,
			DurationMinutes: s.DurationMinutes,
		})
	}
	return services
}

// ToDomainWorkingHours конвертирует рабочие часы в domain модель
// Валидация форматов уже выполнена в validate
func (c *Config) ToDomainWorkingHours() domain.WorkingHours {
	ranges := make([]domain.TimeRange, 0, len(c.WorkingHours.Ranges))
	for _, r := range c.WorkingHours.Ranges {
		start, _ := types.NewTimeStringFromString(r.Start)
		end, _ := types.NewTimeStringFromString(r.End)
		ranges = append(ranges, domain.TimeRange{Start: start, End: end})
	}

	return domain.WorkingHours{
		Ranges:             ranges,
		GranularityMinutes: c.Booking.GranularityMinutes,
	}
}

// Location возвращает таймзону сервиса
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
