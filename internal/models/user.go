// Package models содержит доменную модель пользователя сервиса,
// включающую учётные данные, хэш пароля и состояние подписки.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя сервиса.
type User struct {
	UID               string    // Уникальный идентификатор пользователя
	Email             string    // Электронная почта (уникальная, в нижнем регистре)
	PasswordHash      string    // Хэш пароля пользователя
	IsSubscribed      bool      // Признак активной платной подписки
	PaymentCustomerID string    // Идентификатор клиента у платёжного провайдера
	CreatedAt         time.Time // Дата регистрации
}

// PublicUser — безопасное представление пользователя для ответов API.
// Никогда не содержит хэш пароля.
type PublicUser struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// Public возвращает представление пользователя без чувствительных полей.
func (u *User) Public() PublicUser {
	return PublicUser{
		UID:          u.UID,
		Email:        u.Email,
		IsSubscribed: u.IsSubscribed,
	}
}
