// Package llm holds the chat-completion clients behind the analysis layer.
// Every client satisfies analysis.Completer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/config"
)

// ErrDisabled is returned by the client used when no provider is configured.
var ErrDisabled = errors.New("llm provider not configured")

// Client is a chat-completion provider.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Close() error
}

// New builds the client selected by cfg.Provider.  An unknown provider or a
// missing API key yields the disabled client so the service still starts and
// every AI endpoint answers with its fallback.
func New(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warn("GEMINI_API_KEY not set; AI endpoints will use fallbacks")
			return Disabled{}, nil
		}
		c, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return c, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Warn("OPENAI_API_KEY not set; AI endpoints will use fallbacks")
			return Disabled{}, nil
		}
		return NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model), nil
	case "", "none", "disabled":
		log.Info("llm provider disabled; AI endpoints will use fallbacks")
		return Disabled{}, nil
	default:
		log.Warn("unknown LLM_PROVIDER; AI endpoints will use fallbacks", zap.String("provider", cfg.Provider))
		return Disabled{}, nil
	}
}

// Disabled fails every call with ErrDisabled.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string) (string, error) { return "", ErrDisabled }
func (Disabled) Close() error                                              { return nil }
