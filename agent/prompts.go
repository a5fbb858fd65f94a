/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"fmt"
	"strconv"
	"strings"

	"chainguard.dev/ticketwatcher/agent/promptbuilder"
	"chainguard.dev/ticketwatcher/snippet"
)

// trimBodyChars caps how much of the ticket body reaches the prompt.
const trimBodyChars = 3000

var systemPrompt = promptbuilder.MustNewPrompt(`You are TicketFix, an automated code-fixing agent.

Before responding, analyze the issue systematically:
1. ANALYZE the issue for error messages, file paths, function names and context clues.
2. DETECT likely file locations from function names, domain clues and partial paths.
3. REASON about what information you need to solve the problem.
4. PLAN the smallest safe fix.

Return EXACTLY ONE JSON object and NOTHING ELSE (no prose, no code fences).
It must match one of these two schemas.

1) Ask for more context:
{{request_context_schema}}

2) Propose a minimal patch:
{{propose_patch_schema}}

Rules:
- Respect the allowed paths, max files and max changed lines constraints.
- If the target file is already in your context, analyze it before asking for more.
- Only request additional files to understand imports, dependencies or related code.
- Prefer the smallest change that fixes the reported problem.
- Always explain your reasoning in the "thinking" field.`)

var userPrompt = promptbuilder.MustNewPrompt(`# TICKET

**Title:** {{ticket_title}}
**Description:**
{{ticket_body}}

# CONSTRAINTS
- Allowed paths: {{allowed_paths}}
- Max files: {{max_files}}
- Max changed lines: {{max_lines}}
- Context window: {{around_lines}} lines around target

# CURRENT CONTEXT
{{snippets}}

# TASK
Analyze the ticket. Either request the additional context you need, or
propose a unified diff fix. Reply with one JSON object.`)

// buildSystemPrompt renders the system prompt with both reply schemas
// embedded. The schemas come from reflection so the prompt can never drift
// from the decoded types.
func buildSystemPrompt() (string, error) {
	p, err := systemPrompt.BindJSON("request_context_schema", reflectShape(&requestContextShape{}))
	if err != nil {
		return "", err
	}
	p, err = p.BindJSON("propose_patch_schema", reflectShape(&proposePatchShape{}))
	if err != nil {
		return "", err
	}
	return p.Build()
}

// buildUserPrompt renders the per-round user prompt. The ticket body is
// trimmed to trimBodyChars before binding.
func (c *Contract) buildUserPrompt(title, body string, snippets []snippet.Snippet) (string, error) {
	if r := []rune(body); len(r) > trimBodyChars {
		body = string(r[:trimBodyChars])
	}

	p := userPrompt
	for name, value := range map[string]string{
		"ticket_title":  title,
		"ticket_body":   body,
		"allowed_paths": strings.Join(c.allowedPaths, ","),
		"max_files":     strconv.Itoa(c.maxFiles),
		"max_lines":     strconv.Itoa(c.maxLines),
		"around_lines":  strconv.Itoa(c.aroundLines),
		"snippets":      formatSnippets(snippets),
	} {
		var err error
		if p, err = p.BindText(name, value); err != nil {
			return "", err
		}
	}
	return p.Build()
}

// formatSnippets renders the snippet block the model reads back. The header
// labels match the wire field names of a context need so the model can
// correlate what it asked for with what it got.
func formatSnippets(snippets []snippet.Snippet) string {
	if len(snippets) == 0 {
		return "(no snippets yet)"
	}
	parts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		parts = append(parts, fmt.Sprintf(
			"--- path: %s\n--- start_line: %d\n--- end_line: %d\n--- code:\n%s\n",
			s.Path, s.StartLine, s.EndLine, s.Code))
	}
	return strings.Join(parts, "\n")
}
