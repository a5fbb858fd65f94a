/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracker

import "context"

// Interface is everything the pipeline needs from the repository host.
type Interface interface {
	// DefaultBranch returns the repository's default branch name.
	DefaultBranch(ctx context.Context) (string, error)

	// FileExists reports whether path exists as a file on ref.
	FileExists(ctx context.Context, path, ref string) (bool, error)

	// FileText returns the decoded text of path on ref.
	FileText(ctx context.Context, path, ref string) (string, error)

	// CreateBranch creates branch pointing at the head of base. Creating a
	// branch that already exists is not an error.
	CreateBranch(ctx context.Context, branch, base string) error

	// CreateOrUpdateFile commits content to path on branch, creating the
	// file or replacing its current contents.
	CreateOrUpdateFile(ctx context.Context, path, content, message, branch string) error

	// CreatePullRequest opens a pull request from head into base and
	// returns its HTML URL and number.
	CreatePullRequest(ctx context.Context, title, body, head, base string, draft bool) (string, int, error)

	// AddComment posts a comment on the given issue or pull request.
	AddComment(ctx context.Context, number int, body string) error
}
