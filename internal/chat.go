package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// ChatMessage is one message sent to a chat model
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is a model reply together with what was asked
type ChatResponse struct {
	VideoID          string    `json:"video_id,omitempty"`
	Model            string    `json:"model"`
	Role             string    `json:"role"`
	Prompt           string    `json:"prompt"`
	Content          string    `json:"content"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	CreatedAt        time.Time `json:"created_at"`
}

// ChatClient sends a conversation to a chat model
type ChatClient interface {
	Chat(ctx context.Context, model string, messages []ChatMessage) (*ChatResponse, error)
}

// OpenAIChatClient talks to any OpenAI-compatible chat completions endpoint,
// including Ollama's /v1 API.
type OpenAIChatClient struct {
	client *openai.Client
}

// NewOpenAIChatClient creates a client for baseURL. Ollama ignores the API key
// but the SDK requires one, so an empty key is replaced.
func NewOpenAIChatClient(baseURL, apiKey string) *OpenAIChatClient {
	if apiKey == "" {
		apiKey = "ollama"
	}
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)
	return &OpenAIChatClient{client: &client}
}

// Chat implements ChatClient
func (c *OpenAIChatClient) Chat(ctx context.Context, model string, messages []ChatMessage) (*ChatResponse, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		p, err := messageParam(m)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: params,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices from %s", model)
	}

	last := messages[len(messages)-1]
	return &ChatResponse{
		Model:            model,
		Role:             last.Role,
		Prompt:           last.Content,
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		CreatedAt:        time.Now(),
	}, nil
}

func messageParam(m ChatMessage) (openai.ChatCompletionMessageParamUnion, error) {
	switch m.Role {
	case "user", "":
		return openai.UserMessage(m.Content), nil
	case "system":
		return openai.SystemMessage(m.Content), nil
	case "assistant":
		return openai.AssistantMessage(m.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported role: %s", m.Role)
	}
}

// AI sends prompts to the configured chat model
type AI struct {
	client     ChatClient
	model      string
	timeout    time.Duration
	baseURL    string
	apiKey     string
	clientOnce sync.Once
}

// NewAI creates an AI processor around an existing client
func NewAI(client ChatClient, model string, timeout time.Duration) *AI {
	return &AI{
		client:  client,
		model:   model,
		timeout: timeout,
	}
}

// NewAIWithEndpoint creates an AI processor with lazy client initialization
func NewAIWithEndpoint(baseURL, apiKey, model string, timeout time.Duration) *AI {
	return &AI{
		model:   model,
		timeout: timeout,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// ensureClient initializes the chat client if needed
func (ai *AI) ensureClient() error {
	ai.clientOnce.Do(func() {
		if ai.client == nil && ai.baseURL != "" {
			ai.client = NewOpenAIChatClient(ai.baseURL, ai.apiKey)
		}
	})
	if ai.client == nil {
		return fmt.Errorf("chat endpoint is not configured - set ollama_url in config.toml or YTSUM_OLLAMA_URL")
	}
	return nil
}

// Chat sends a single prompt with the given role. An empty model uses the default.
func (ai *AI) Chat(ctx context.Context, model, role, prompt string) (*ChatResponse, error) {
	if err := ai.ensureClient(); err != nil {
		return nil, err
	}
	if model == "" {
		model = ai.model
	}
	if role == "" {
		role = "user"
	}

	if ai.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.timeout)
		defer cancel()
	}

	resp, err := ai.client.Chat(ctx, model, []ChatMessage{{Role: role, Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("creating chat completion: %w", err)
	}
	return resp, nil
}
