package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/briefe-einfach/internal/models"
)

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// NotificationPublisher публикует задания на отправку писем.
type NotificationPublisher struct {
	ch *amqp.Channel
}

func NewNotificationPublisher(ch *amqp.Channel) *NotificationPublisher {
	return &NotificationPublisher{ch: ch}
}

// SubscriptionActivated ставит в очередь письмо-подтверждение оформления подписки.
func (p *NotificationPublisher) SubscriptionActivated(user models.User) error {
	return PublishMessage(p.ch, NotificationsExchange, "subscription", models.SubscriptionNotice{
		Email: user.Email,
		UID:   user.UID,
	})
}
