/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"chainguard.dev/ticketwatcher/agent"
	"chainguard.dev/ticketwatcher/diffengine"
	"chainguard.dev/ticketwatcher/sandbox"
	"chainguard.dev/ticketwatcher/snippet"
	"chainguard.dev/ticketwatcher/tracker"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// ErrPathRejected marks a proposed change outside the allowed prefixes. A
// single rejected path aborts the whole patch.
var ErrPathRejected = errors.New("path not allowed")

// Orchestrator drives one issue event through detection, the model
// conversation, validation, and the final PR or comment.
type Orchestrator struct {
	cfg      Config
	tracker  tracker.Interface
	contract *agent.Contract
	fetcher  *snippet.Fetcher
	resolver *sandbox.Resolver
	allow    sandbox.AllowList
}

// New wires an orchestrator from the config, the repository tracker, and a
// model completer.
func New(cfg Config, trk tracker.Interface, completer agent.Completer) (*Orchestrator, error) {
	if cfg.MaxFiles <= 0 || cfg.MaxLines <= 0 || cfg.AroundLines <= 0 {
		return nil, fmt.Errorf("budgets must be positive: max_files=%d max_lines=%d around_lines=%d",
			cfg.MaxFiles, cfg.MaxLines, cfg.AroundLines)
	}

	resolver := sandbox.NewResolver(cfg.RepoRoot, cfg.RepoName())
	allow := sandbox.NewAllowList(cfg.AllowedPaths)

	contract, err := agent.NewContract(completer, resolver, cfg.AllowedPaths,
		agent.WithMaxFiles(cfg.MaxFiles),
		agent.WithMaxLines(cfg.MaxLines),
		agent.WithAroundLines(cfg.AroundLines))
	if err != nil {
		return nil, fmt.Errorf("creating agent contract: %w", err)
	}

	return &Orchestrator{
		cfg:      cfg,
		tracker:  trk,
		contract: contract,
		fetcher:  snippet.NewFetcher(trk, resolver, allow),
		resolver: resolver,
		allow:    allow,
	}, nil
}

// HandleIssueEvent processes an issues webhook payload. It triggers on
// opened and reopened issues, on trigger-label additions, and on issues
// already carrying a trigger label. A labeled event for a non-trigger label
// never fires, even when a trigger label is already present.
func (o *Orchestrator) HandleIssueEvent(ctx context.Context, event *github.IssuesEvent) (Outcome, error) {
	issue := event.GetIssue()
	if issue == nil {
		return NoAction, nil
	}
	action := event.GetAction()

	hasTrigger := false
	for _, l := range issue.Labels {
		if slices.Contains(o.cfg.TriggerLabels, l.GetName()) {
			hasTrigger = true
			break
		}
	}
	if action != "opened" && action != "reopened" && action != "labeled" && !hasTrigger {
		return NoAction, nil
	}
	if action == "labeled" {
		if name := event.GetLabel().GetName(); name != "" && !slices.Contains(o.cfg.TriggerLabels, name) {
			return NoAction, nil
		}
	}

	return o.run(ctx, issue.GetNumber(), issue.GetTitle(), issue.GetBody())
}

// HandleIssueCommentEvent processes an issue_comment webhook payload. Only
// newly created comments starting with "/agent fix" re-enter the pipeline;
// the comment text is appended to the issue body as extra context.
func (o *Orchestrator) HandleIssueCommentEvent(ctx context.Context, event *github.IssueCommentEvent) (Outcome, error) {
	if event.GetAction() != "created" {
		return NoAction, nil
	}
	comment := event.GetComment().GetBody()
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(comment)), "/agent fix") {
		return NoAction, nil
	}

	issue := event.GetIssue()
	if issue == nil {
		return NoAction, nil
	}
	body := issue.GetBody() + "\n\n" + comment
	return o.run(ctx, issue.GetNumber(), issue.GetTitle(), body)
}

// run is the triggered pipeline. Every return after this point leaves a
// comment or a PR on the issue, except for collaborator failures which
// surface as errors.
func (o *Orchestrator) run(ctx context.Context, number int, title, body string) (Outcome, error) {
	log := clog.FromContext(ctx).With("issue", number)

	base := o.cfg.BaseBranch
	if base == "" {
		var err error
		if base, err = o.tracker.DefaultBranch(ctx); err != nil {
			return NoAction, fmt.Errorf("resolving base branch: %w", err)
		}
	}

	candidates := o.detectCandidates(ctx, body, base)

	var inScope []Candidate
	var outOfScope []string
	for _, c := range candidates {
		if o.allow.Allowed(c.Path) {
			inScope = append(inScope, c)
		} else {
			outOfScope = append(outOfScope, c.Path)
		}
	}
	if len(outOfScope) > 0 {
		log.With("paths", outOfScope).Info("Detected out-of-scope targets")
		return o.comment(ctx, number, outOfScopeReport(outOfScope, o.cfg.AllowedPaths), CommentPosted)
	}
	if len(inScope) == 0 {
		return o.comment(ctx, number, noFilesReport(o.cfg.AllowedPaths, base), CommentPosted)
	}

	var seeds []snippet.Snippet
	var missing []string
	for _, c := range inScope {
		s, err := o.fetcher.ByLine(ctx, c.Path, base, c.Line, o.cfg.AroundLines)
		if err != nil {
			return NoAction, fmt.Errorf("fetching seed snippet: %w", err)
		}
		if s == nil {
			missing = append(missing, c.Path)
			continue
		}
		seeds = append(seeds, *s)
	}
	if len(seeds) == 0 {
		return o.comment(ctx, number, filesNotFoundReport(missing, base), CommentPosted)
	}

	reply, err := o.contract.RunTwoRounds(ctx, title, body, seeds, o.fetchNeeds(base))
	if err != nil {
		return NoAction, fmt.Errorf("running agent: %w", err)
	}

	if reply.Action == agent.ActionRequestContext {
		return o.comment(ctx, number, needsMoreContextReport(reply, seeds, o.cfg.AllowedPaths, base), CommentPosted)
	}

	// Budgets are enforced before any file is read or written.
	stats := diffengine.ComputeStats(reply.Diff)
	if stats.FilesTouched > o.cfg.MaxFiles || stats.ChangedLines > o.cfg.MaxLines {
		log.With("files", stats.FilesTouched).With("lines", stats.ChangedLines).Info("Patch over budget")
		return o.comment(ctx, number, budgetReport(stats, o.cfg.MaxFiles, o.cfg.MaxLines), BudgetExceeded)
	}

	updates, err := o.applyDiff(ctx, reply.Diff, base)
	if err != nil {
		log.With("error", err).Info("Patch did not apply")
		return o.comment(ctx, number, applyFailedReport(err), PatchApplyFailed)
	}

	branch := o.cfg.BranchPrefix + strconv.Itoa(number)
	if err := o.tracker.CreateBranch(ctx, branch, base); err != nil {
		return NoAction, fmt.Errorf("creating branch: %w", err)
	}
	message := commitMessage(title)
	for _, u := range updates {
		if err := o.tracker.CreateOrUpdateFile(ctx, u.path, u.text, message, branch); err != nil {
			return NoAction, fmt.Errorf("committing %s: %w", u.path, err)
		}
	}

	prTitle := fmt.Sprintf("%s #%d", o.cfg.PRTitlePrefix, number)
	prURL, prNumber, err := o.tracker.CreatePullRequest(ctx, prTitle, prBody(reply, stats, seeds), branch, base, true)
	if err != nil {
		return NoAction, fmt.Errorf("opening pull request: %w", err)
	}

	if err := o.tracker.AddComment(ctx, prNumber, prSummaryComment(prURL, branch, base, reply, stats)); err != nil {
		log.Warnf("Could not comment on PR #%d: %v", prNumber, err)
	}
	if err := o.tracker.AddComment(ctx, number, "Draft PR opened: "+prURL); err != nil {
		log.Warnf("Could not comment on issue #%d: %v", number, err)
	}

	log.With("pr", prURL).Info("Opened draft PR")
	return PullRequestOpened, nil
}

// comment posts body on the issue and resolves to the given outcome.
func (o *Orchestrator) comment(ctx context.Context, number int, body string, outcome Outcome) (Outcome, error) {
	if err := o.tracker.AddComment(ctx, number, body); err != nil {
		return NoAction, fmt.Errorf("posting comment: %w", err)
	}
	return outcome, nil
}

// fetchNeeds adapts the snippet fetcher to the agent's escalation callback.
// Needs arrive already sanitized; fetches that come back empty are skipped.
func (o *Orchestrator) fetchNeeds(base string) agent.FetchFunc {
	return func(ctx context.Context, needs []agent.Need) ([]snippet.Snippet, error) {
		var out []snippet.Snippet
		for _, n := range needs {
			var s *snippet.Snippet
			var err error
			if n.Symbol != "" {
				s, err = o.fetcher.BySymbol(ctx, n.Path, base, n.Symbol, n.AroundLines)
			} else {
				s, err = o.fetcher.ByLine(ctx, n.Path, base, n.Line, n.AroundLines)
			}
			if err != nil {
				return nil, err
			}
			if s != nil {
				out = append(out, *s)
			}
		}
		return out, nil
	}
}

type fileUpdate struct {
	path string
	text string
}

// applyDiff turns the proposed diff into full replacement texts, reading
// each touched file fresh from base. Nothing is written here: any rejected
// path or misaligned hunk aborts the whole patch before the first commit.
func (o *Orchestrator) applyDiff(ctx context.Context, diffText, base string) ([]fileUpdate, error) {
	parsed := diffengine.Parse(diffText)
	if len(parsed.Files) == 0 {
		return nil, errors.New("diff contains no file changes")
	}

	var updates []fileUpdate
	for _, f := range parsed.Files {
		rel := o.resolver.RepoRelative(f.Path)
		if !o.allow.Allowed(rel) {
			return nil, fmt.Errorf("%w: %s", ErrPathRejected, f.Path)
		}
		current, err := o.tracker.FileText(ctx, rel, base)
		if err != nil {
			return nil, fmt.Errorf("reading %s on %s: %w", rel, base, err)
		}
		text, err := diffengine.Apply(current, f.Hunks)
		if err != nil {
			return nil, fmt.Errorf("applying hunks to %s: %w", rel, err)
		}
		updates = append(updates, fileUpdate{path: rel, text: text})
	}
	return updates, nil
}

// commitMessage derives the commit subject from the issue title, trimmed to
// 72 characters on a rune boundary.
func commitMessage(title string) string {
	if r := []rune(title); len(r) > 72 {
		title = string(r[:72])
	}
	return "agent: " + title
}
