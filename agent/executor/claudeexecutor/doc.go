/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudeexecutor implements the agent's Completer contract against
// the Anthropic Messages API: one bounded system+user call per round, no
// tool conversation. Transient API errors (rate limits, overload) are
// retried with exponential backoff; everything else propagates.
package claudeexecutor
