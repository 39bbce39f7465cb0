package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client using the official openai-go SDK
// (chat completions). Any OpenAI-compatible endpoint works via BaseURL,
// including local inference servers.
type OpenAIClient struct {
	model   string
	timeout time.Duration
	opts    []option.RequestOption
}

// NewOpenAIClient creates a client from config.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}

	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAIClient{
		model:   cfg.Model,
		timeout: timeout,
		opts:    opts,
	}, nil
}

// pingTimeout bounds the reachability check so a hung backend cannot
// stall the health endpoint for the full completion timeout.
const pingTimeout = 10 * time.Second

// Ping lists the backend's models, the cheapest authenticated call the
// API offers.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	client := openai.NewClient(c.opts...)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	_, err := client.Models.List(ctx)
	return err
}

// Complete performs one chat completion. When a schema is provided, it is
// sent as a strict response_format so the backend enforces
// schema-constrained decoding where supported.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	client := openai.NewClient(c.opts...)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
	}

	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
