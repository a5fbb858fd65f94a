/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result turns free-form model reply text into decoded JSON values.
// Models asked for "exactly one JSON object" still wrap replies in markdown
// fences or emit slightly broken JSON often enough that both need handling
// before the caller can enforce its reply contract.
package result
