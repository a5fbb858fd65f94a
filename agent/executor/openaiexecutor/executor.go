/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaiexecutor

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/ticketwatcher/agent/executor/retry"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
)

// DefaultModel is used unless WithModel overrides it.
const DefaultModel = "gpt-4o-mini"

// Executor sends one chat completion per call to the OpenAI API.
type Executor struct {
	client      openai.Client
	modelName   string
	temperature float64
	retryConfig retry.Config
}

// New creates an Executor with the given client and options.
func New(client openai.Client, opts ...Option) (*Executor, error) {
	e := &Executor{
		client:      client,
		modelName:   DefaultModel,
		temperature: 0,
		retryConfig: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}
	return e, nil
}

// Complete sends the system instruction and user prompt as a single-turn
// conversation and returns the model's text reply.
func (e *Executor) Complete(ctx context.Context, system, user string) (string, error) {
	log := clog.FromContext(ctx)
	log.With("model", e.modelName).With("prompt_length", len(user)).
		Info("Requesting OpenAI completion")

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(e.temperature),
	}

	completion, err := retry.WithBackoff(ctx, e.retryConfig, "openai_completion", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
		return e.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("creating completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("no choices in OpenAI's response")
	}
	text := completion.Choices[0].Message.Content
	if text == "" {
		return "", errors.New("no text content in OpenAI's response")
	}

	log.With("reply_length", len(text)).Info("OpenAI completion finished")
	return text, nil
}

// isRetryableOpenAIError reports whether an error is a transient OpenAI API
// error: rate limited, timed out, or a server-side failure.
func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 408, 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
