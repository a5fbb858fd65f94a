/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agent

import "github.com/invopop/jsonschema"

// requestContextShape and proposePatchShape are the two wire shapes the
// model must emit, declared separately from Reply so each can be reflected
// into a standalone JSON Schema for the system prompt.
type requestContextShape struct {
	Action   string `json:"action" jsonschema:"required,enum=request_context"`
	Needs    []Need `json:"needs" jsonschema:"required"`
	Reason   string `json:"reason" jsonschema:"required"`
	Thinking string `json:"thinking,omitempty" jsonschema:"description=Your reasoning process"`
}

type proposePatchShape struct {
	Action                string   `json:"action" jsonschema:"required,enum=propose_patch"`
	Format                string   `json:"format" jsonschema:"required,enum=unified_diff"`
	Diff                  string   `json:"diff" jsonschema:"required,description=Standard unified diff with --- a/<path> and +++ b/<path> headers"`
	FilesTouched          []string `json:"files_touched" jsonschema:"required"`
	EstimatedChangedLines int      `json:"estimated_changed_lines" jsonschema:"required"`
	Notes                 string   `json:"notes,omitempty"`
	Thinking              string   `json:"thinking,omitempty" jsonschema:"description=Your reasoning process"`
}

// reflectShape derives the JSON schema for a wire shape with the reflector
// defaults we want for prompt embedding: inline everything, no $ref
// indirection the model would have to chase.
func reflectShape(v any) *jsonschema.Schema {
	r := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
	}
	return r.Reflect(v)
}
