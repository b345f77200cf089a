package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bistro-service/internal/models"
	"bistro-service/internal/util"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Waiter replies shown when the model cannot answer
const (
	ReplyUnavailable = "AI service is unavailable. Please set API_KEY."
	ReplyEmpty       = "I'm sorry, I'm having trouble thinking right now. How about the Butter Chicken?"
	ReplyOverwhelmed = "My apologies, I am currently overwhelmed with orders. Please try again in a moment."
)

const waiterTemperature = 0.7

const waiterInstructions = `You are Chef Pierre, a charming and knowledgeable virtual waiter for BistroFlow.
You have access to the restaurant's live menu below and must strictly adhere to it.
If an item is marked UNAVAILABLE, tell the customer it is currently unavailable and suggest an available alternative.

=== LIVE MENU ===
%s
=================

Rules:
1. Be polite, concise and appetizing in your descriptions.
2. Prices are in Indian Rupees (₹).
3. Only recommend items that are explicitly listed in the live menu.
4. If a user asks for something not on the menu, suggest a similar available item.
5. Keep responses under 50 words unless the user asks for detail.
6. Use emojis occasionally.`

// Generator is the part of an LLM client the waiter needs
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// MenuSource supplies the live catalog for the prompt
type MenuSource interface {
	Menu(ctx context.Context) ([]models.MenuItem, error)
}

// NewOpenAIGenerator creates an OpenAI-compatible client. baseURL may be
// empty to use the default endpoint.
func NewOpenAIGenerator(apiKey, model, baseURL string) (Generator, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// WaiterService answers customer questions about the menu
type WaiterService struct {
	menu    MenuSource
	llm     Generator
	timeout time.Duration
	logger  *zap.Logger
}

// NewWaiterService creates a waiter. A nil llm makes every reply
// ReplyUnavailable.
func NewWaiterService(menu MenuSource, llm Generator, timeout time.Duration) *WaiterService {
	return &WaiterService{
		menu:    menu,
		llm:     llm,
		timeout: timeout,
		logger:  util.GetLogger(),
	}
}

// Chat answers message. It never fails; problems degrade to a canned reply.
func (s *WaiterService) Chat(ctx context.Context, message string) string {
	util.ChatRequestsTotal.Inc()

	if s.llm == nil {
		util.ChatFailuresTotal.WithLabelValues("unconfigured").Inc()
		return ReplyUnavailable
	}

	ctx, span := util.StartSpan(ctx, "WaiterService.Chat")
	defer span.End()

	items, err := s.menu.Menu(ctx)
	if err != nil {
		util.ChatFailuresTotal.WithLabelValues("menu").Inc()
		s.logger.Error("Failed to load menu for chat", zap.Error(err))
		return ReplyOverwhelmed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt(items)),
		llms.TextParts(llms.ChatMessageTypeHuman, message),
	}, llms.WithTemperature(waiterTemperature))
	util.ChatLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		util.ChatFailuresTotal.WithLabelValues("llm").Inc()
		s.logger.Error("LLM request failed", zap.Error(err))
		return ReplyOverwhelmed
	}

	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		util.ChatFailuresTotal.WithLabelValues("empty").Inc()
		return ReplyEmpty
	}
	return resp.Choices[0].Content
}

// SystemPrompt renders the waiter instructions around the live menu
func SystemPrompt(items []models.MenuItem) string {
	var b strings.Builder
	for _, item := range items {
		status := "Available"
		if !item.Available {
			status = "UNAVAILABLE"
		}
		fmt.Fprintf(&b, "ITEM: %s\nCATEGORY: %s\nPRICE: ₹%d\nDESCRIPTION: %s\nSTATUS: %s\n---\n",
			item.Name, item.Category, item.Price, item.Description, status)
	}
	return fmt.Sprintf(waiterInstructions, strings.TrimSuffix(b.String(), "\n"))
}
