package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance — максимальный допустимый возраст подписанного уведомления.
const DefaultTolerance = 5 * time.Minute

// ErrInvalidSignature возвращается, если подпись webhook не прошла проверку.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Заголовок подписи имеет вид "t=<unix>,v1=<hex hmac>". HMAC-SHA256
// считается от строки "<t>.<raw body>" на секрете эндпоинта.
func parseSignatureHeader(header string) (timestamp int64, signatures []string, err error) {
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp, err = strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}

// VerifySignature проверяет подпись сырого тела webhook с учётом
// допуска по времени. Сравнение подписи выполняется за постоянное время.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		age := time.Since(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return ErrInvalidSignature
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		got, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, got) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// ConstructEvent проверяет подпись и разбирает webhook-уведомление.
// При неверной подписи уведомление отбрасывается без разбора тела.
func ConstructEvent(payload []byte, header, secret string) (*Event, error) {
	const op = "paymentprovider.ConstructEvent"

	if err := VerifySignature(payload, header, secret, DefaultTolerance); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &event, nil
}

// SignPayload формирует значение заголовка подписи для указанного тела.
// Используется в тестах и при эмуляции провайдера.
func SignPayload(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
