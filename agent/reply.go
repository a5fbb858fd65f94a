/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"chainguard.dev/ticketwatcher/agent/result"
)

// Action discriminates the two reply shapes the model may return.
type Action string

const (
	// ActionRequestContext asks the pipeline for more file slices.
	ActionRequestContext Action = "request_context"
	// ActionProposePatch carries a unified diff ready for validation.
	ActionProposePatch Action = "propose_patch"
)

// Need is one context request: a path plus an optional symbol or line to
// center the window on. A zero Line or Symbol means "not specified".
type Need struct {
	Path        string `json:"path" jsonschema:"required"`
	Symbol      string `json:"symbol,omitempty"`
	Line        int    `json:"line,omitempty"`
	AroundLines int    `json:"around_lines,omitempty"`
}

// Reply is the decoded model response. Which fields are meaningful depends
// on Action: Needs/Reason for request_context, Diff/FilesTouched/
// EstimatedChangedLines/Notes for propose_patch. Thinking may accompany
// either. Raw is only set on degraded replies synthesized from undecodable
// model output.
type Reply struct {
	Action Action `json:"action"`

	Needs  []Need `json:"needs,omitempty"`
	Reason string `json:"reason,omitempty"`

	Format                string   `json:"format,omitempty"`
	Diff                  string   `json:"diff,omitempty"`
	FilesTouched          []string `json:"files_touched,omitempty"`
	EstimatedChangedLines int      `json:"estimated_changed_lines,omitempty"`
	Notes                 string   `json:"notes,omitempty"`

	Thinking string `json:"thinking,omitempty"`
	Raw      string `json:"raw,omitempty"`
}

// rawExcerptLimit bounds how much undecodable model output a degraded
// reply carries along for operators to inspect.
const rawExcerptLimit = 2000

// DecodeReply turns raw model output into a Reply. Output that is not
// valid JSON (after fence stripping and one repair attempt) or that lacks
// a recognized action degrades to a synthetic request_context with empty
// needs, so a confused model costs a round instead of crashing the run.
func DecodeReply(raw string) Reply {
	r, err := result.Decode[Reply](raw)
	if err != nil {
		return degradedReply("Model did not return valid JSON. Please provide exact slices you need.", raw)
	}
	switch r.Action {
	case ActionRequestContext, ActionProposePatch:
		return r
	}
	return degradedReply("Missing or invalid 'action'. Expected 'request_context' or 'propose_patch'.", raw)
}

func degradedReply(reason, raw string) Reply {
	excerpt := result.ExtractJSON(raw)
	if len(excerpt) > rawExcerptLimit {
		excerpt = excerpt[:rawExcerptLimit]
	}
	return Reply{
		Action: ActionRequestContext,
		Needs:  []Need{},
		Reason: reason,
		Raw:    excerpt,
	}
}
