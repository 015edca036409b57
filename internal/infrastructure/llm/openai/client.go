package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/core/domain"
	"github.com/minerva-learning/minerva-backend/internal/infrastructure/resilience"
)

// Client speaks the OpenAI-compatible chat completions protocol. Any
// server exposing /v1/chat/completions works, local or hosted.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	exec       *resilience.Executor
}

const defaultRequestTimeout = 180 * time.Second

func New(baseURL, apiKey, model string, timeout time.Duration, exec *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		exec:       exec,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) complete(ctx context.Context, operation string, messages []chatMessage, jsonMode bool) (string, error) {
	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
	}
	if jsonMode {
		payload["response_format"] = map[string]string{"type": "json_object"}
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/chat/completions", payload, &response, operation)
	}
	if err := c.exec.Execute(ctx, operation, call, classifyUpstreamError); err != nil {
		return "", wrapUpstreamError(operation, err)
	}
	if len(response.Choices) == 0 {
		return "", domain.WrapError(domain.ErrGeneration, operation, fmt.Errorf("no choices in response"))
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// StoryGenerator asks the model for a complete story as JSON and maps
// it onto the domain shape.
type StoryGenerator struct {
	client *Client
}

func NewStoryGenerator(client *Client) *StoryGenerator {
	return &StoryGenerator{client: client}
}

func (g *StoryGenerator) Generate(ctx context.Context, doc *domain.Document, user *domain.User,
	framework domain.NarrativeFramework, character domain.UserCharacter) (*domain.Story, error) {
	raw, err := g.client.complete(ctx, "generate_story", []chatMessage{
		{Role: "system", Content: storySystemPrompt},
		{Role: "user", Content: buildStoryPrompt(doc, user, framework, character)},
	}, true)
	if err != nil {
		return nil, err
	}
	story, err := parseStoryJSON(raw, framework, doc.KeyConcepts)
	if err != nil {
		return nil, err
	}
	return story, nil
}

// ChatResponder produces a single conversational turn.
type ChatResponder struct {
	client *Client
}

func NewChatResponder(client *Client) *ChatResponder {
	return &ChatResponder{client: client}
}

func (r *ChatResponder) Reply(ctx context.Context, system string, history []domain.Message, userMessage string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: system})
	for _, m := range history {
		role := m.Role
		if role != "assistant" {
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	return r.client.complete(ctx, "chat_reply", messages, false)
}
