/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"chainguard.dev/ticketwatcher/agent"
	"chainguard.dev/ticketwatcher/diffengine"
	"chainguard.dev/ticketwatcher/snippet"
)

// The report helpers render the markdown the bot posts back on issues and
// pull requests. They are pure so the tests can assert on exact content.

func outOfScopeReport(outOfScope, allowed []string) string {
	return fmt.Sprintf(`**TicketWatcher: files out of scope**

The following files are not under the allowed paths:
%s

Allowed paths: %s

Move the files, adjust ALLOWED_PATHS, or file the issue where these paths are in scope. The bot only patches files under the allowed prefixes.`,
		"`"+strings.Join(outOfScope, "`, `")+"`",
		strings.Join(allowed, ", "))
}

func noFilesReport(allowed []string, base string) string {
	return fmt.Sprintf(`**TicketWatcher: no files identified**

No target files could be detected from this issue. To point the bot at the right code, include one of:

1. An explicit target line:
   `+"```"+`
   Target: src/main.py
   `+"```"+`
2. A traceback with file paths:
   `+"```"+`
   File "src/main.py", line 10, in my_function
   `+"```"+`
3. A path:line reference such as src/main.py:10.

Allowed paths: %s
Files must exist on branch %s.`,
		strings.Join(allowed, ", "), base)
}

func filesNotFoundReport(paths []string, base string) string {
	return fmt.Sprintf(`**TicketWatcher: files not found**

The detected files do not exist on branch %s:
%s

Check the paths and the branch, then retry.`,
		base, "`"+strings.Join(paths, "`, `")+"`")
}

func needsMoreContextReport(reply agent.Reply, seeds []snippet.Snippet, allowed []string, base string) string {
	var b strings.Builder
	b.WriteString("**TicketWatcher: more context needed**\n\n")
	if reply.Thinking != "" {
		fmt.Fprintf(&b, "Model reasoning:\n%s\n\n", reply.Thinking)
	}
	fmt.Fprintf(&b, "Reason: %s\n\n", reply.Reason)

	if len(seeds) > 0 {
		paths := make([]string, 0, len(seeds))
		for _, s := range seeds {
			paths = append(paths, s.Path)
		}
		fmt.Fprintf(&b, "Files already provided: %s\n\n", strings.Join(paths, ", "))
	}
	if len(reply.Needs) > 0 {
		needsJSON, _ := json.MarshalIndent(reply.Needs, "", "  ")
		fmt.Fprintf(&b, "Additional slices requested:\n```json\n%s\n```\n\n", needsJSON)
	}
	fmt.Fprintf(&b, "Add a `Target: <path>` line or a traceback to the issue and retry.\nAllowed paths: %s. Files must exist on branch %s.",
		strings.Join(allowed, ", "), base)
	return b.String()
}

func budgetReport(stats diffengine.Stats, maxFiles, maxLines int) string {
	return fmt.Sprintf("**TicketWatcher: proposed change exceeds budgets** (files=%d > %d or lines=%d > %d). Escalating to human review; narrowing the issue scope may help.",
		stats.FilesTouched, maxFiles, stats.ChangedLines, maxLines)
}

func applyFailedReport(err error) string {
	return fmt.Sprintf("**TicketWatcher: could not apply patch**\n\n```\n%v\n```", err)
}

func prBody(reply agent.Reply, stats diffengine.Stats, seeds []snippet.Snippet) string {
	var b strings.Builder
	b.WriteString("Draft PR opened by TicketWatcher.\n\n")
	if reply.Thinking != "" {
		fmt.Fprintf(&b, "**Analysis:**\n%s\n\n", reply.Thinking)
	}
	fmt.Fprintf(&b, "**Files:** %d | **Changed lines:** %d\n", stats.FilesTouched, stats.ChangedLines)
	if reply.Notes != "" {
		fmt.Fprintf(&b, "**Notes:** %s\n", reply.Notes)
	}
	if len(seeds) > 0 {
		paths := make([]string, 0, len(seeds))
		for _, s := range seeds {
			paths = append(paths, s.Path)
		}
		fmt.Fprintf(&b, "**Context used:** %s\n", strings.Join(paths, ", "))
	}
	b.WriteString("\nReview before merging.")
	return b.String()
}

func prSummaryComment(prURL, branch, base string, reply agent.Reply, stats diffengine.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Draft PR created:** %s\n\n", prURL)
	if reply.Thinking != "" {
		fmt.Fprintf(&b, "**Model reasoning:**\n%s\n\n", reply.Thinking)
	}
	fmt.Fprintf(&b, "- Files touched: %d\n- Lines changed: %d\n- Branch: `%s`\n- Base: `%s`\n",
		stats.FilesTouched, stats.ChangedLines, branch, base)
	if reply.Notes != "" {
		fmt.Fprintf(&b, "\n**Notes:** %s\n", reply.Notes)
	}
	b.WriteString("\nPlease review the PR before merging.")
	return b.String()
}
