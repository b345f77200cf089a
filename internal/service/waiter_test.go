package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bistro-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tmc/langchaingo/llms"
)

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

type staticMenu []models.MenuItem

func (s staticMenu) Menu(ctx context.Context) ([]models.MenuItem, error) {
	return s, nil
}

type brokenMenu struct{}

func (brokenMenu) Menu(ctx context.Context) ([]models.MenuItem, error) {
	return nil, errors.New("menu offline")
}

func reply(text string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}
}

func TestChatWithoutModel(t *testing.T) {
	svc := NewWaiterService(staticMenu(sampleMenu()), nil, time.Second)
	assert.Equal(t, ReplyUnavailable, svc.Chat(context.Background(), "hello"))
}

func TestChatReturnsModelText(t *testing.T) {
	llm := new(MockLLM)
	llm.On("GenerateContent", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.MatchedBy(func(msgs []llms.MessageContent) bool {
		return len(msgs) == 2 &&
			msgs[0].Role == llms.ChatMessageTypeSystem &&
			msgs[1].Role == llms.ChatMessageTypeHuman
	})).Return(reply("Try the Paneer Tikka!"), nil)

	svc := NewWaiterService(staticMenu(sampleMenu()), llm, 5*time.Second)
	assert.Equal(t, "Try the Paneer Tikka!", svc.Chat(context.Background(), "something light?"))
	llm.AssertExpectations(t)
}

func TestChatFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		resp  *llms.ContentResponse
		err   error
		menu  MenuSource
		reply string
	}{
		{"empty answer", reply("   "), nil, staticMenu(sampleMenu()), ReplyEmpty},
		{"no choices", &llms.ContentResponse{}, nil, staticMenu(sampleMenu()), ReplyEmpty},
		{"model error", nil, errors.New("rate limited"), staticMenu(sampleMenu()), ReplyOverwhelmed},
		{"menu error", reply("unused"), nil, brokenMenu{}, ReplyOverwhelmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := new(MockLLM)
			llm.On("GenerateContent", mock.Anything, mock.Anything).Return(tt.resp, tt.err).Maybe()

			svc := NewWaiterService(tt.menu, llm, time.Second)
			assert.Equal(t, tt.reply, svc.Chat(context.Background(), "hi"))
		})
	}
}

func TestSystemPromptListsAvailability(t *testing.T) {
	prompt := SystemPrompt(sampleMenu())
	assert.Contains(t, prompt, "ITEM: Masala Chai")
	assert.Contains(t, prompt, "PRICE: ₹50")
	assert.Contains(t, prompt, "ITEM: Saffron Kulfi\nCATEGORY: Dessert\nPRICE: ₹90\nDESCRIPTION: Frozen milk dessert\nSTATUS: UNAVAILABLE")
}
