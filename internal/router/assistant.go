package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"curebird/internal/providers"
)

const ApologyMessage = "I'm sorry, I couldn't process your request right now. Please try again in a moment."

// ContextSource supplies the disease-trend block embedded in system prompts.
type ContextSource interface {
	PromptContext(ctx context.Context) string
}

type ChatResult struct {
	Success        bool           `json:"success"`
	Response       string         `json:"response"`
	ConversationID string         `json:"conversation_id"`
	Timestamp      string         `json:"timestamp,omitempty"`
	Error          string         `json:"error,omitempty"`
	Tier           providers.Tier `json:"tier,omitempty"`
}

type AssistantConfig struct {
	Temperature float64
	MaxTokens   int
}

type Assistant struct {
	completer Completer
	sessions  *SessionStore
	diseases  ContextSource
	cfg       AssistantConfig
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAssistant(c Completer, sessions *SessionStore, diseases ContextSource, cfg AssistantConfig, logger zerolog.Logger) *Assistant {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	return &Assistant{
		completer: c,
		sessions:  sessions,
		diseases:  diseases,
		cfg:       cfg,
		logger:    logger.With().Str("component", "assistant").Logger(),
		now:       time.Now,
	}
}

// GenerateResponse runs one chat turn. The user turn is recorded before
// dispatch; the assistant turn only on success, so a retried turn resumes
// the same history. Failures come back as a ChatResult, never as an error.
func (a *Assistant) GenerateResponse(ctx context.Context, conversationID, message, medicalContext string) ChatResult {
	if strings.TrimSpace(conversationID) == "" {
		conversationID = "conv_" + uuid.NewString()
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatResult{ConversationID: conversationID, Error: "empty_message", Response: "Please enter a message."}
	}
	tier := SelectTier(message)

	content := message
	if mc := strings.TrimSpace(medicalContext); mc != "" {
		content = message + "\n\nMedical context from the patient's analyzed document:\n" + mc
	}

	sess := a.sessions.Lock(conversationID, func() []providers.Message {
		return []providers.Message{{Role: providers.RoleSystem, Content: a.systemPrompt(ctx)}}
	})
	defer sess.Unlock()
	sess.Append(providers.Message{Role: providers.RoleUser, Content: content})

	resp, info, err := a.completer.Complete(WithConversation(ctx, conversationID), providers.GenerateRequest{
		Operation:   "chat",
		Tier:        tier,
		Messages:    sess.Messages(),
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
	if err == nil && strings.TrimSpace(resp.Text) == "" {
		err = providers.ErrMalformedResponse
	}
	if err != nil {
		a.logger.Error().Err(err).Str("conversation_id", conversationID).Str("tier", string(tier)).
			Str("provider", info.Name).Msg("chat.turn.failed")
		return ChatResult{
			ConversationID: conversationID,
			Error:          chatErrorCode(err),
			Response:       ApologyMessage,
			Tier:           tier,
		}
	}
	sess.Append(providers.Message{Role: providers.RoleAssistant, Content: resp.Text})
	return ChatResult{
		Success:        true,
		Response:       resp.Text,
		ConversationID: conversationID,
		Timestamp:      a.now().UTC().Format(time.RFC3339),
		Tier:           tier,
	}
}

func (a *Assistant) ClearConversation(conversationID string) bool {
	return a.sessions.Delete(conversationID)
}

func (a *Assistant) History(conversationID string) ([]providers.Message, bool) {
	return a.sessions.History(conversationID)
}

func chatErrorCode(err error) string {
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	switch providers.ClassifyError(err) {
	case providers.ErrorRate, providers.ErrorQuota:
		return "rate_limited"
	case providers.ErrorTransient:
		return "provider_unavailable"
	case providers.ErrorAuth:
		return "provider_auth"
	case providers.ErrorMalformed:
		return "malformed_response"
	default:
		return "request_failed"
	}
}

func (a *Assistant) systemPrompt(ctx context.Context) string {
	diseaseContext := "Disease trend data temporarily unavailable."
	if a.diseases != nil {
		diseaseContext = a.diseases.PromptContext(ctx)
	}
	var b strings.Builder
	b.WriteString("You are Cure AI, the professional, reliable and empathetic AI assistant for Curebird.\n\n")
	b.WriteString(diseaseContext)
	b.WriteString("\n\n")
	b.WriteString(chatRules)
	b.WriteString("\nCurrent Date: ")
	b.WriteString(a.now().Format("January 02, 2006"))
	b.WriteString("\n")
	return b.String()
}

const chatRules = `GREETING RULE
- If the user input is ONLY a casual greeting (for example "hi", "hello", "good morning"), reply briefly in Curebird's bird-like brand tone, such as "Chirp! Hello, Curebird AI is here to help."
- Greeting-only replies carry no medical headers, analysis or disclaimer.
- If the user asks a medical or clinical question, with or without a greeting, skip the bird-style greeting and follow the clinical format.

CLINICAL FORMAT
- Open with at most one short professional sentence, then go straight to the headers.
- Use markdown: "###" headers and "-" bullets, written as "- **Key Point**: brief description."
- Put a blank line between every section and every bullet.
- Be brief and dense. No filler.

MEDICAL SAFETY
- Do not diagnose or prescribe.
- End every medical answer with the one-line italic disclaimer: *Note: Consult a qualified healthcare professional for personalized advice.*
`
