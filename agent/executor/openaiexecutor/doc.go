/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaiexecutor implements the agent's Completer contract against
// the OpenAI chat completions API, mirroring claudeexecutor: one bounded
// system+user call per round, transient errors retried with backoff.
package openaiexecutor
