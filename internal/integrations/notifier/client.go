package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для отправки сообщений клиентам через внешний шлюз
// (WhatsApp или SMS). Если адрес шлюза не сконфигурирован, работает в
// log-only режиме: сообщения пишутся в лог и считаются доставленными.
// Это позволяет запускать сервис без внешних зависимостей
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента шлюза уведомлений
// Пустой baseURL включает log-only режим
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendConfirmation отправляет подтверждение записи
func (c *Client) SendConfirmation(ctx context.Context, appt *domain.Appointment) error {
	return c.send(ctx, appt.ClientPhone, confirmationMessage(appt))
}

// SendReminder отправляет напоминание о предстоящей записи
func (c *Client) SendReminder(ctx context.Context, appt *domain.Appointment) error {
	return c.send(ctx, appt.ClientPhone, reminderMessage(appt))
}

// SendCancellation отправляет уведомление об отмене записи
func (c *Client) SendCancellation(ctx context.Context, appt *domain.Appointment) error {
	return c.send(ctx, appt.ClientPhone, cancellationMessage(appt))
}

// send отправляет сообщение через шлюз
func (c *Client) send(ctx context.Context, phone, message string) error {
	if c.baseURL == "" {
		c.log.Info("Notifier (log-only): to=%s message=%q", phone, message)
		return nil
	}

	payload, err := json.Marshal(sendMessageRequest{
		Phone:   phone,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/api/v1/messages", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if !result.Sent {
		return fmt.Errorf("%w: %s", ErrSendFailed, result.Error)
	}

	c.log.Info("Notifier: message sent to=%s id=%s", phone, result.MessageID)
	return nil
}
