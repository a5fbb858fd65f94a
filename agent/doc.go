/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package agent implements the conversation contract with the fixer model:
// prompt construction, strict reply decoding with graceful degradation, and
// the bounded two-round request_context / propose_patch protocol.
package agent
