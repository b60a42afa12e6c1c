package models

// SubscriptionNotice — сообщение воркеру-отправителю о новой подписке.
type SubscriptionNotice struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}
