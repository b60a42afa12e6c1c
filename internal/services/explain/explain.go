// Package explain содержит логику подготовки простых объяснений
// бюрократических писем: валидацию входа, кэширование и выбор между
// внешним LLM-провайдером и локальным детерминированным шаблоном.
package explain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/briefe-einfach/internal/lib/sl"
	"github.com/magabrotheeeer/briefe-einfach/internal/metrics"
)

// ErrEmptyText возвращается для пустого или состоящего из пробелов текста.
var ErrEmptyText = errors.New("no text provided")

// ErrUpstream возвращается, когда внешний провайдер недоступен или отклонил запрос.
var ErrUpstream = errors.New("explanation provider unavailable")

// ErrNotConfigured возвращается для операций, требующих внешнего провайдера,
// когда его ключ не задан.
var ErrNotConfigured = errors.New("explanation provider is not configured")

// Completer описывает контракт внешнего LLM-провайдера.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ResultCache хранит готовые результаты по ключу.
type ResultCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// ExplainService готовит объяснения и переводы входного текста.
// Нулевой llm переключает сервис на локальный шаблон: объяснение
// в этом режиме всегда успешно и не требует внешних зависимостей.
type ExplainService struct {
	llm      Completer
	cache    ResultCache
	cacheTTL time.Duration
	log      *slog.Logger
}

// New создает новый экземпляр ExplainService.
func New(llm Completer, cache ResultCache, cacheTTL time.Duration, log *slog.Logger) *ExplainService {
	return &ExplainService{
		llm:      llm,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Локальный шаблон из MVP-версии: срабатывает всегда, без внешних вызовов.
const localTemplate = "Das ist eine einfache Erklärung:\n\n" +
	"- Der Brief/Text enthält wichtige Informationen.\n" +
	"- Prüfe, ob Fristen oder Aufgaben drin stehen.\n" +
	"- Wenn du unsicher bist: markiere die wichtigsten Stellen und frage nach.\n\n" +
	"Kurz gesagt: Bitte lies den Text genau und reagiere ggf. rechtzeitig."

func explainPrompt(text string) string {
	return "Erkläre den folgenden Behörden-/Brieftext in sehr einfachem Deutsch.\n" +
		"Regeln:\n" +
		"- Bulletpoints\n" +
		"- Was bedeutet das?\n" +
		"- Was muss ich jetzt tun?\n" +
		"- Welche Fristen/Termine?\n" +
		"- Welche Unterlagen?\n" +
		"- Max. 12 Zeilen\n\n" +
		"TEXT:\n" +
		text
}

func translatePrompt(text, target string) string {
	return fmt.Sprintf("Übersetze den folgenden Text nach %q. "+
		"Gib nur die Übersetzung aus, ohne Kommentare.\n\nTEXT:\n%s", target, text)
}

// Explain готовит короткое объяснение текста письма.
func (s *ExplainService) Explain(ctx context.Context, text string) (string, error) {
	const op = "explain.Explain"

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}

	key := cacheKey("explain", text)
	var cached string
	if found, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.Error("cache lookup failed", sl.Err(err))
	} else if found {
		metrics.ExplainRequests.WithLabelValues("cache").Inc()
		return cached, nil
	}

	if s.llm == nil {
		metrics.ExplainRequests.WithLabelValues("local").Inc()
		return localTemplate, nil
	}

	result, err := s.llm.Complete(ctx, explainPrompt(text))
	if err != nil {
		s.log.Error("provider call failed", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ErrUpstream)
	}
	if result == "" {
		result = "Keine Erklärung erhalten."
	}

	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.log.Error("failed to cache explanation", sl.Err(err))
	}
	metrics.ExplainRequests.WithLabelValues("llm").Inc()
	return result, nil
}

// Translate переводит текст письма на указанный язык. Доступен только
// при настроенном внешнем провайдере.
func (s *ExplainService) Translate(ctx context.Context, text, target string) (string, error) {
	const op = "explain.Translate"

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if target == "" {
		target = "de"
	}
	if s.llm == nil {
		return "", ErrNotConfigured
	}

	key := cacheKey("translate:"+target, text)
	var cached string
	if found, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.Error("cache lookup failed", sl.Err(err))
	} else if found {
		return cached, nil
	}

	result, err := s.llm.Complete(ctx, translatePrompt(text, target))
	if err != nil {
		s.log.Error("provider call failed", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ErrUpstream)
	}

	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.log.Error("failed to cache translation", sl.Err(err))
	}
	return result, nil
}

func cacheKey(kind, text string) string {
	sum := sha256.Sum256([]byte(text))
	return kind + ":" + hex.EncodeToString(sum[:])
}
