package notifier

// sendMessageRequest запрос на отправку сообщения через шлюз
type sendMessageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// sendMessageResponse ответ шлюза
type sendMessageResponse struct {
	Sent      bool   `json:"sent"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}
