// Package checkout содержит логику оформления платной подписки через
// hosted checkout платёжного провайдера и обработку его webhook-событий.
//
// Флаг подписки пользователя меняется исключительно по проверенным
// webhook-событиям; редирект клиента после оплаты на состояние не влияет.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/briefe-einfach/internal/config"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/sl"
	"github.com/magabrotheeeer/briefe-einfach/internal/metrics"
	"github.com/magabrotheeeer/briefe-einfach/internal/models"
	"github.com/magabrotheeeer/briefe-einfach/internal/paymentprovider"
	"github.com/magabrotheeeer/briefe-einfach/internal/storage/repository"
)

// ErrNotConfigured возвращается, когда не заданы ключ провайдера или тариф.
var ErrNotConfigured = errors.New("payment provider is not configured")

// ErrProvider возвращается, когда запрос к провайдеру не удался.
var ErrProvider = errors.New("payment provider request failed")

// Типы обрабатываемых webhook-событий. Остальные принимаются и игнорируются.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// UserRepository описывает контракт хранилища для операций оформления подписки.
type UserRepository interface {
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	SetPaymentCustomerID(ctx context.Context, userUID, customerID string) error
	ActivateSubscription(ctx context.Context, userUID, customerID string) error
	DeactivateSubscriptionByCustomerID(ctx context.Context, customerID string) error
}

// ProviderClient описывает контракт клиента платёжного провайдера.
type ProviderClient interface {
	CreateCustomer(ctx context.Context, email, userUID string) (*paymentprovider.Customer, error)
	CreateCheckoutSession(ctx context.Context, reqParams paymentprovider.CreateCheckoutSessionRequest) (*paymentprovider.CheckoutSession, error)
}

// Notifier ставит в очередь письма о событиях подписки.
type Notifier interface {
	SubscriptionActivated(user models.User) error
}

// CheckoutService оформляет подписку и обрабатывает webhook-события провайдера.
type CheckoutService struct {
	repo     UserRepository
	provider ProviderClient
	notifier Notifier // может быть nil, уведомления опциональны
	cfg      config.PaymentProvider
	log      *slog.Logger
}

// New создает новый экземпляр CheckoutService.
func New(repo UserRepository, provider ProviderClient, notifier Notifier, cfg config.PaymentProvider, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		repo:     repo,
		provider: provider,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}
}

// Configured сообщает, заданы ли ключ провайдера и тариф подписки.
func (s *CheckoutService) Configured() bool {
	return s.cfg.SecretKey != "" && s.cfg.PriceID != ""
}

// CreateCheckoutSession создает hosted checkout сессию подписки для
// пользователя и возвращает её redirect URL без изменений.
// Клиент провайдера создается один раз и переиспользуется.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userUID string) (string, error) {
	const op = "checkout.CreateCheckoutSession"

	if !s.Configured() {
		return "", ErrNotConfigured
	}

	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	customerID := user.PaymentCustomerID
	if customerID == "" {
		customer, err := s.provider.CreateCustomer(ctx, user.Email, user.UID)
		if err != nil {
			s.log.Error("failed to create provider customer", sl.Err(err))
			return "", fmt.Errorf("%s: %w", op, ErrProvider)
		}
		customerID = customer.ID
		if err := s.repo.SetPaymentCustomerID(ctx, user.UID, customerID); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CreateCheckoutSessionRequest{
		CustomerID: customerID,
		PriceID:    s.cfg.PriceID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
		UserUID:    user.UID,
	})
	if err != nil {
		s.log.Error("failed to create checkout session", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ErrProvider)
	}

	metrics.CheckoutSessions.Inc()
	return session.URL, nil
}

// ProcessWebhookEvent применяет проверенное webhook-событие провайдера.
// Подпись события проверяет транспортный слой до вызова этого метода.
// Неизвестные типы событий игнорируются без ошибки.
func (s *CheckoutService) ProcessWebhookEvent(ctx context.Context, event *paymentprovider.Event) error {
	const op = "checkout.ProcessWebhookEvent"

	switch event.Type {
	case EventCheckoutCompleted:
		var session paymentprovider.CheckoutSession
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
			return fmt.Errorf("%s: %w", op, err)
		}
		// Пользователь определяется только по метаданным, заложенным
		// при создании сессии, не по email из события.
		userUID := session.Metadata["user_uid"]
		if userUID == "" {
			metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
			return fmt.Errorf("%s: event %s has no user_uid metadata", op, event.ID)
		}
		if err := s.repo.ActivateSubscription(ctx, userUID, session.Customer); err != nil {
			metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("subscription activated",
			slog.String("user_uid", userUID), slog.String("event_id", event.ID))
		s.notifyActivated(ctx, userUID)
		metrics.WebhookEvents.WithLabelValues(event.Type, "processed").Inc()
		return nil

	case EventSubscriptionDeleted:
		var subscription paymentprovider.Subscription
		if err := json.Unmarshal(event.Data.Object, &subscription); err != nil {
			metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
			return fmt.Errorf("%s: %w", op, err)
		}
		err := s.repo.DeactivateSubscriptionByCustomerID(ctx, subscription.Customer)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Отмена для неизвестного клиента: состояние не меняется.
				s.log.Warn("subscription cancel for unknown customer",
					slog.String("customer", subscription.Customer))
				metrics.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
				return nil
			}
			metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("subscription deactivated", slog.String("customer", subscription.Customer))
		metrics.WebhookEvents.WithLabelValues(event.Type, "processed").Inc()
		return nil

	default:
		s.log.Info("ignored webhook event", slog.String("event", event.Type))
		metrics.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
		return nil
	}
}

func (s *CheckoutService) notifyActivated(ctx context.Context, userUID string) {
	if s.notifier == nil {
		return
	}
	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		s.log.Error("failed to load user for notification", sl.Err(err))
		return
	}
	if err := s.notifier.SubscriptionActivated(*user); err != nil {
		s.log.Error("failed to enqueue subscription notice", sl.Err(err))
	}
}
