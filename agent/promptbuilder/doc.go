/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package promptbuilder assembles prompts from templates with {{name}}
// placeholders. Placeholders are declared by the template and bound
// explicitly — building a prompt with an unbound placeholder is an error,
// which keeps prompt text and the data flowing into it honest about each
// other.
package promptbuilder
