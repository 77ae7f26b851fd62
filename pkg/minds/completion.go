package minds

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mindsdb/minds-go/pkg/apperrors"
	"github.com/mindsdb/minds-go/pkg/httpclient"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// completer talks to the OpenAI compatible endpoint that answers questions with a mind.
// The mind name is used as the model.
type completer struct {
	client       openai.Client
	streamClient openai.Client
}

// The openai client's own retries are off: it would retry 408, 409, 429 and 5xx
// responses. Only transport failures are retried, by the wrapped round tripper.
func newCompleter(config *Config, httpClient *http.Client) *completer {
	retrying := *httpClient
	retrying.Transport = httpclient.NewRetryTransport(httpClient.Transport, config.Transport)

	// Streams are bounded by the caller's context only.
	streamHTTP := retrying
	streamHTTP.Timeout = 0

	opts := func(hc *http.Client) []option.RequestOption {
		return []option.RequestOption{
			option.WithAPIKey(config.APIKey),
			option.WithBaseURL(config.CompletionsURL),
			option.WithMaxRetries(0),
			option.WithHTTPClient(hc),
		}
	}
	return &completer{
		client:       openai.NewClient(opts(&retrying)...),
		streamClient: openai.NewClient(opts(&streamHTTP)...),
	}
}

func completionParams(mindName, message string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(message),
		},
		Model: openai.ChatModel(mindName),
	}
}

// Completion asks the named mind a question and returns its answer.
func (s *MindsService) Completion(ctx context.Context, mindName, message string) (string, error) {
	if err := ValidateName("mind", mindName); err != nil {
		return "", err
	}
	if err := ValidateName("message", message); err != nil {
		return "", err
	}
	completion, err := s.completions.client.Chat.Completions.New(ctx, completionParams(mindName, message))
	if err != nil {
		return "", completionError(mindName, err)
	}
	if len(completion.Choices) == 0 {
		return "", apperrors.ErrParse.Msg("completion has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// StreamCompletion asks the named mind a question and calls onChunk with each piece of
// the answer as it arrives. Streaming stops at the first error returned by onChunk.
func (s *MindsService) StreamCompletion(ctx context.Context, mindName, message string, onChunk func(string) error) error {
	if err := ValidateName("mind", mindName); err != nil {
		return err
	}
	if err := ValidateName("message", message); err != nil {
		return err
	}
	if onChunk == nil {
		return apperrors.ErrMissingRequiredAttribute("onChunk")
	}

	stream := s.completions.streamClient.Chat.Completions.NewStreaming(ctx, completionParams(mindName, message))
	defer stream.Close()
	for stream.Next() {
		chunk := stream.Current()
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onChunk(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return completionError(mindName, err)
	}
	return nil
}

// completionError maps an OpenAI client error into the apperrors taxonomy.
func completionError(mindName string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if body == "" {
			body = apiErr.Error()
		}
		if mapped := apperrors.FromStatus(apiErr.StatusCode, body); mapped != nil {
			return mapped
		}
		return apperrors.ErrServerOrClient.MsgErr(fmt.Sprintf("completion for mind %s failed", mindName), err)
	}
	return apperrors.ErrTransport.MsgErr(fmt.Sprintf("completion for mind %s failed: %v", mindName, err), err)
}
