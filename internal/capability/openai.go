package capability

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIChat serves the chat and image-analysis capabilities through the
// OpenAI Chat Completions API and delegates every other capability to the
// wrapped registry. Used when chat_provider is set to "openai".
type OpenAIChat struct {
	Registry

	client *openai.Client
	model  string
}

// NewOpenAIChat wraps rest with an OpenAI-backed chat capability.
func NewOpenAIChat(apiKey, model string, rest Registry) *OpenAIChat {
	return &OpenAIChat{
		Registry: rest,
		client:   openai.NewClient(apiKey),
		model:    model,
	}
}

func (o *OpenAIChat) Chat(ctx context.Context, _ ChatModel, prompt, uid string) (*ChatResult, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		User:  uid,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &Error{Capability: "openai-chat", Cause: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, capErr("openai-chat", "empty completion")
	}

	return &ChatResult{Text: resp.Choices[0].Message.Content}, nil
}

func (o *OpenAIChat) AnalyzeImage(ctx context.Context, imageURL, uid string) (*ChatResult, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		User:  uid,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Describe and analyze this image."},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
				},
			},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &Error{Capability: "openai-vision", Cause: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, capErr("openai-vision", "empty completion")
	}

	return &ChatResult{Text: resp.Choices[0].Message.Content}, nil
}
