/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/ticketwatcher/agent/executor/retry"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
)

// DefaultModel is used unless WithModel overrides it.
const DefaultModel = "claude-sonnet-4-5"

// Executor sends one chat-style completion per call to the Anthropic API.
type Executor struct {
	client      anthropic.Client
	modelName   string
	maxTokens   int64
	temperature float64
	retryConfig retry.Config
}

// New creates an Executor with the given client and options.
func New(client anthropic.Client, opts ...Option) (*Executor, error) {
	e := &Executor{
		client:      client,
		modelName:   DefaultModel,
		maxTokens:   8192,
		temperature: 0, // the reply contract wants determinism, not flair
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
		Info("Requesting Claude completion")

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.modelName),
		MaxTokens: e.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		Temperature: anthropic.Float(e.temperature),
	}

	message, err := retry.WithBackoff(ctx, e.retryConfig, "claude_message", isRetryableClaudeError, func() (*anthropic.Message, error) {
		return e.client.Messages.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("creating message: %w", err)
	}

	var text string
	for _, content := range message.Content {
		if content.Type == "text" {
			text += content.Text
		}
	}
	if text == "" {
		return "", errors.New("no text content in Claude's response")
	}

	log.With("reply_length", len(text)).Info("Claude completion finished")
	return text, nil
}

// isRetryableClaudeError reports whether an error is a transient Claude API
// error: rate limited, overloaded, or a gateway failure.
func isRetryableClaudeError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 503, 504, 529:
			return true
		}
	}
	return false
}
