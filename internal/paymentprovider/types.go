package paymentprovider

import "encoding/json"

// Customer — клиент у платёжного провайдера.
type Customer struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateCheckoutSessionRequest — параметры создания checkout сессии подписки.
type CreateCheckoutSessionRequest struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	UserUID    string
}

// CheckoutSession — созданная hosted checkout сессия.
type CheckoutSession struct {
	ID       string            `json:"id"`
	URL      string            `json:"url"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Subscription — объект подписки из webhook-уведомления об отмене.
type Subscription struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Event — webhook-уведомление провайдера. Data.Object разбирается
// по месту в зависимости от типа события.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ErrorResponse — тело ошибки API провайдера.
type ErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
