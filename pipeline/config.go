/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"path"
	"strings"
)

// Config carries the knobs for a pipeline run. Values are read from the
// environment once at startup and never mutated afterwards.
type Config struct {
	// AllowedPaths are the repo-relative prefixes the bot may read and
	// patch. An empty list or an empty-string entry allows everything.
	AllowedPaths []string `env:"ALLOWED_PATHS,default=src/,app/"`

	// MaxFiles and MaxLines bound how large a proposed patch may be.
	MaxFiles int `env:"MAX_FILES,default=4"`
	MaxLines int `env:"MAX_LINES,default=200"`

	// AroundLines is the default context window around a target line, and
	// the upper clamp for model-requested windows.
	AroundLines int `env:"DEFAULT_AROUND_LINES,default=60"`

	// TriggerLabels fire the pipeline when added to an issue.
	TriggerLabels []string `env:"TICKETWATCHER_TRIGGER_LABELS,default=agent-fix,auto-pr"`

	// BranchPrefix and PRTitlePrefix name the artifacts the bot creates.
	BranchPrefix  string `env:"TICKETWATCHER_BRANCH_PREFIX,default=agent-fix/"`
	PRTitlePrefix string `env:"TICKETWATCHER_PR_TITLE_PREFIX,default=agent: auto-fix for issue"`

	// BaseBranch overrides the repository default branch when set.
	BaseBranch string `env:"TICKETWATCHER_BASE_BRANCH"`

	// RepoRoot is the checkout root absolute paths are relativized
	// against. RepoFullName is the "owner/name" slug.
	RepoRoot     string `env:"GITHUB_WORKSPACE"`
	RepoFullName string `env:"GITHUB_REPOSITORY"`
}

// Owner returns the repository owner from the full name, or "".
func (c Config) Owner() string {
	if owner, _, ok := strings.Cut(c.RepoFullName, "/"); ok {
		return owner
	}
	return ""
}

// RepoName returns the bare repository name, falling back to the base of
// the checkout root when the full name is unset.
func (c Config) RepoName() string {
	if _, name, ok := strings.Cut(c.RepoFullName, "/"); ok && name != "" {
		return name
	}
	if c.RepoFullName != "" {
		return c.RepoFullName
	}
	return path.Base(c.RepoRoot)
}
