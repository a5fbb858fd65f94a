/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"context"
	"fmt"
	"slices"

	"chainguard.dev/ticketwatcher/sandbox"
	"chainguard.dev/ticketwatcher/snippet"
	"github.com/chainguard-dev/clog"
)

// Completer is one chat-style model call: a system instruction plus a user
// prompt in, the model's text reply out. Executors implement this.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// FetchFunc retrieves snippets for sanitized context needs between rounds.
type FetchFunc func(ctx context.Context, needs []Need) ([]snippet.Snippet, error)

// Contract runs the bounded conversation with the model: at most two
// rounds, with one context escalation in between.
type Contract struct {
	completer    Completer
	resolver     *sandbox.Resolver
	allow        sandbox.AllowList
	allowedPaths []string
	maxFiles     int
	maxLines     int
	aroundLines  int
	system       string
}

// Option is a functional option for configuring the contract.
type Option func(*Contract) error

// WithMaxFiles sets the file budget advertised to the model.
func WithMaxFiles(n int) Option {
	return func(c *Contract) error {
		if n <= 0 {
			return fmt.Errorf("max files must be positive, got %d", n)
		}
		c.maxFiles = n
		return nil
	}
}

// WithMaxLines sets the changed-line budget advertised to the model.
func WithMaxLines(n int) Option {
	return func(c *Contract) error {
		if n <= 0 {
			return fmt.Errorf("max lines must be positive, got %d", n)
		}
		c.maxLines = n
		return nil
	}
}

// WithAroundLines sets the default context window, which is also the upper
// clamp for model-requested windows.
func WithAroundLines(n int) Option {
	return func(c *Contract) error {
		if n <= 0 {
			return fmt.Errorf("around lines must be positive, got %d", n)
		}
		c.aroundLines = n
		return nil
	}
}

// NewContract wires a contract over the given completer. allowedPaths are
// the raw prefixes advertised in the prompt; the allow list derived from
// them gates sanitized needs.
func NewContract(completer Completer, resolver *sandbox.Resolver, allowedPaths []string, opts ...Option) (*Contract, error) {
	c := &Contract{
		completer:    completer,
		resolver:     resolver,
		allow:        sandbox.NewAllowList(allowedPaths),
		allowedPaths: allowedPaths,
		maxFiles:     4,
		maxLines:     200,
		aroundLines:  60,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	system, err := buildSystemPrompt()
	if err != nil {
		return nil, fmt.Errorf("building system prompt: %w", err)
	}
	c.system = system
	return c, nil
}

// RunRound makes exactly one model call with the given snippets and decodes
// the reply. The only error path is the completer itself failing; malformed
// model output comes back as a degraded request_context reply.
func (c *Contract) RunRound(ctx context.Context, title, body string, snippets []snippet.Snippet) (Reply, error) {
	user, err := c.buildUserPrompt(title, body, snippets)
	if err != nil {
		return Reply{}, fmt.Errorf("building user prompt: %w", err)
	}

	raw, err := c.completer.Complete(ctx, c.system, user)
	if err != nil {
		return Reply{}, fmt.Errorf("completing round: %w", err)
	}

	reply := DecodeReply(raw)
	clog.FromContext(ctx).With("action", reply.Action).With("needs", len(reply.Needs)).
		Info("Decoded model reply")
	return reply, nil
}

// RunTwoRounds runs round one with the seed snippets and, if the model asks
// for context, fetches the sanitized needs and runs exactly one more round
// with the fetched snippets appended to the seeds. A second request_context
// is returned to the caller as-is; there is no third round.
func (c *Contract) RunTwoRounds(ctx context.Context, title, body string, seeds []snippet.Snippet, fetch FetchFunc) (Reply, error) {
	first, err := c.RunRound(ctx, title, body, seeds)
	if err != nil {
		return Reply{}, err
	}
	if first.Action != ActionRequestContext {
		return first, nil
	}

	needs := c.SanitizeNeeds(first.Needs)
	if len(needs) == 0 {
		return first, nil
	}

	more, err := fetch(ctx, needs)
	if err != nil {
		return Reply{}, fmt.Errorf("fetching requested context: %w", err)
	}

	return c.RunRound(ctx, title, body, append(slices.Clone(seeds), more...))
}

// SanitizeNeeds drops needs whose normalized path falls outside the allow
// list and clamps around_lines into [10, configured default]. Symbol and
// line pass through untouched. Paths come back normalized so downstream
// fetches and prompt text agree on spelling.
func (c *Contract) SanitizeNeeds(needs []Need) []Need {
	var out []Need
	for _, n := range needs {
		rel := c.resolver.RepoRelative(n.Path)
		if !c.allow.Allowed(rel) {
			continue
		}
		around := n.AroundLines
		if around == 0 {
			around = c.aroundLines
		}
		around = max(10, min(around, c.aroundLines))
		out = append(out, Need{
			Path:        rel,
			Symbol:      n.Symbol,
			Line:        n.Line,
			AroundLines: around,
		})
	}
	return out
}
