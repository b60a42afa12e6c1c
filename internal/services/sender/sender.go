// Package sender реализует отправку писем-уведомлений о событиях подписки.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/briefe-einfach/internal/lib/sl"
	smtplib "github.com/magabrotheeeer/briefe-einfach/internal/lib/smtp"
	"github.com/magabrotheeeer/briefe-einfach/internal/models"
)

// Transport описывает контракт SMTP транспорта.
type Transport interface {
	Connect() (smtplib.Client, error)
	GetSMTPUser() string
}

// SenderService отправляет письма по заданиям из очереди уведомлений.
type SenderService struct {
	transport Transport
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport Transport) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendSubscriptionActivated отправляет подтверждение оформления подписки.
// body — JSON-сообщение models.SubscriptionNotice из очереди.
func (s *SenderService) SendSubscriptionActivated(body []byte) error {
	var notice models.SubscriptionNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		s.log.Error("failed to unmarshal notice", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Dein briefe-einfach Abo ist aktiv"
	bodyText := "Hallo!\n\n" +
		"Danke für dein Abo bei briefe-einfach. Ab sofort stehen dir alle " +
		"Funktionen zur Verfügung, inklusive Übersetzungen.\n\n" +
		"Viele Grüße\nDein briefe-einfach Team"

	return s.sendEmail([]string{notice.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer func() {
		if err := client.Quit(); err != nil {
			s.log.Error("failed to quit smtp client", sl.Err(err))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	s.log.Info("notification email sent", slog.String("to", strings.Join(to, ";")))
	return nil
}
