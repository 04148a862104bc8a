package logics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"amani-server/internal/apperrors"
	"amani-server/internal/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const translatorSystemPrompt = "You are a professional translator. Translate the given message to %s. " +
	"Preserve the tone and meaning. Only return the translation, nothing else."

// translationCacheTTL bounds how long a cached translation is served before
// the model is consulted again.
const translationCacheTTL = 30 * 24 * time.Hour

// TranslationMessageRepository is the slice of message persistence the
// translation service touches.
type TranslationMessageRepository interface {
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	SaveTranslation(ctx context.Context, messageID, language, translated string) error
}

// TranslationService translates message bodies between the donor-facing and
// family-facing languages. Results are cached in redis and mirrored onto the
// message row; the stored original body is never rewritten.
type TranslationService struct {
	messages TranslationMessageRepository
	client   *openai.Client
	model    string
	redis    *redis.Client
	logger   *zap.Logger
}

// NewTranslationService returns a TranslationService instance.
func NewTranslationService(messages TranslationMessageRepository, apiKey, model string, redisClient *redis.Client, logger *zap.Logger) *TranslationService {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &TranslationService{
		messages: messages,
		client:   client,
		model:    model,
		redis:    redisClient,
		logger:   logger,
	}
}

// Translate returns the message body in targetLang. Cached translations are
// served from the message row or redis; otherwise the model is called and the
// result persisted. Upstream failures come back as ErrUpstreamUnavailable and
// leave the message untouched.
func (s *TranslationService) Translate(ctx context.Context, messageID, targetLang string) (string, error) {
	tag, err := language.Parse(targetLang)
	if err != nil {
		return "", &apperrors.ValidationError{Field: "target_lang", Message: fmt.Sprintf("unknown language %q", targetLang)}
	}
	base, _ := tag.Base()
	targetLang = base.String()

	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return "", err
	}
	if msg.OriginalLanguage == targetLang {
		return msg.Body, nil
	}

	// Column cache first: en/ar translations live on the row itself.
	switch targetLang {
	case "en":
		if msg.BodyEn != nil && *msg.BodyEn != "" {
			return *msg.BodyEn, nil
		}
	case "ar":
		if msg.BodyAr != nil && *msg.BodyAr != "" {
			return *msg.BodyAr, nil
		}
	}

	cacheKey := fmt.Sprintf("translation:%s:%s", messageID, targetLang)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil && cached != "" {
			return cached, nil
		}
	}

	translated, err := s.translate(ctx, msg.Body, tag)
	if err != nil {
		s.logger.Error("translation call failed",
			zap.String("message_id", messageID),
			zap.String("target_lang", targetLang),
			zap.Error(err),
		)
		return "", apperrors.ErrUpstreamUnavailable
	}

	if targetLang == "en" || targetLang == "ar" {
		if err := s.messages.SaveTranslation(ctx, messageID, targetLang, translated); err != nil {
			s.logger.Warn("failed to persist translation on message",
				zap.String("message_id", messageID),
				zap.Error(err),
			)
		}
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, translated, translationCacheTTL).Err(); err != nil {
			s.logger.Warn("failed to cache translation", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return translated, nil
}

func (s *TranslationService) translate(ctx context.Context, body string, target language.Tag) (string, error) {
	languageName := display.English.Tags().Name(target)
	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(s.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(translatorSystemPrompt, languageName)),
			openai.UserMessage(body),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
