/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package pipeline orchestrates one issue event end to end: trigger
// filtering, candidate file detection, seed snippet fetching, the two-round
// model conversation, budget enforcement, patch application, and finally a
// draft pull request or an explanatory comment. Every triggered run leaves
// human-visible feedback on the issue.
package pipeline
