/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

// Outcome is the terminal state of handling one event.
type Outcome string

const (
	// NoAction means the event did not trigger the pipeline.
	NoAction Outcome = "no_action"
	// CommentPosted means the run ended with an explanatory issue comment
	// instead of a patch.
	CommentPosted Outcome = "comment_posted"
	// BudgetExceeded means the proposed patch was larger than the
	// configured budgets allow.
	BudgetExceeded Outcome = "budget_exceeded"
	// PatchApplyFailed means the proposed diff could not be applied.
	PatchApplyFailed Outcome = "patch_apply_failed"
	// PullRequestOpened means a draft PR with the fix was created.
	PullRequestOpened Outcome = "pull_request_opened"
)
