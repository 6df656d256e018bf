package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/huggnote/api/internal/client"
	"github.com/huggnote/api/internal/model"
	"github.com/huggnote/api/internal/store"
)

const (
	// MaxPromptLength is the longest prompt accepted by the generator.
	MaxPromptLength = 300

	promptTemperature = 0.7
	promptMaxTokens   = 150
)

// PromptService drafts generation prompts with Groq
type PromptService struct {
	groq  client.Completer
	store *store.Store
}

// NewPromptService creates a new prompt service. st may be nil when only
// Compose is used.
func NewPromptService(groq client.Completer, st *store.Store) *PromptService {
	return &PromptService{
		groq:  groq,
		store: st,
	}
}

// IsConfigured reports whether a Groq key is present.
func (s *PromptService) IsConfigured() bool {
	return s.groq != nil && s.groq.IsConfigured()
}

// Compose asks the model for a prompt describing form.
func (s *PromptService) Compose(ctx context.Context, form *model.PromptForm) (string, error) {
	if !s.IsConfigured() {
		return "", ErrNotConfigured
	}

	messages := []client.ChatMessage{
		{Role: "user", Content: buildPromptInstructions(form)},
	}

	generated, err := s.groq.ChatCompletion(ctx, messages, client.CompletionOptions{
		Temperature: promptTemperature,
		MaxTokens:   promptMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("prompt generation failed: %w", err)
	}

	return ClampPrompt(strings.TrimSpace(generated)), nil
}

// Draft composes a prompt for owner and stores it with the form for the
// finalize step.
func (s *PromptService) Draft(ctx context.Context, owner string, form *model.PromptForm) (string, error) {
	state, err := s.store.State(ctx, owner)
	if err != nil {
		return "", err
	}
	if state.Credits <= 0 {
		return "", store.ErrInsufficientCredits
	}

	prompt, err := s.Compose(ctx, form)
	if err != nil {
		return "", err
	}

	if err := s.store.SaveDraft(ctx, owner, model.Draft{Form: *form, Prompt: prompt}); err != nil {
		return "", err
	}

	log.Printf("[PROMPT] Drafted %d-character prompt for %s", len([]rune(prompt)), owner)
	return prompt, nil
}

// ClampPrompt cuts p to MaxPromptLength characters, marking the cut with an
// ellipsis.
func ClampPrompt(p string) string {
	runes := []rune(p)
	if len(runes) <= MaxPromptLength {
		return p
	}
	return string(runes[:MaxPromptLength-3]) + "..."
}

func buildPromptInstructions(form *model.PromptForm) string {
	return fmt.Sprintf(`You are an expert song prompt engineer.
Create a concise, descriptive prompt (max %d characters) for an AI music generator based on the user's order details.
Focus on style, mood, instrumentation, and key lyrical themes.

Input Data:
- Recipient: %s (%s)
- Occasion/Context: %s
- Emotion: %s
- Vibe: %s
- Holiday Style: %s
- Story/Memories: %s
- Keywords: %s
- Personalisation Level: %s
- Include Name: %t

Output only the prompt string. No explanations.`,
		MaxPromptLength,
		form.RecipientName, form.Relationship,
		form.Who,
		form.Feelings,
		form.Vibe,
		form.Style,
		form.Story,
		form.Keywords,
		form.Personalisation,
		form.IncludeName,
	)
}
