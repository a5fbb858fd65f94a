/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"chainguard.dev/ticketwatcher/sandbox"
	"github.com/chainguard-dev/clog"
)

// Candidate is a detected file hint. A zero Line means no line is known.
type Candidate struct {
	Path string
	Line int
}

// maxCandidates caps how many detected files seed the first round.
const maxCandidates = 5

var (
	// "Target: path" lines, optionally "Target: path:123".
	reTargetLine = regexp.MustCompile(`(?m)^\s*Target:\s*(.+?)\s*$`)
	// Python traceback frames: File "path", line N.
	reTracebackFrame = regexp.MustCompile(`File\s+"([^"]+)"\s*,\s*line\s+(\d+)\b`)
	// Generic token:line references.
	reTokenLine = regexp.MustCompile(`([^\s'",)\]]+):(\d+)\b`)
)

// entryPoints are the conventional files probed under each allowed prefix
// when the issue text carries no usable hints.
var entryPoints = []string{
	"main.py",
	"app.py",
	"index.py",
	"src/main.py",
	"src/app.py",
	"lib/main.py",
	"lib/app.py",
}

// detectCandidates extracts candidate files from issue text in priority
// tiers: explicit Target lines, traceback frames, generic token:line
// references, then an entry-point probe under the allowed prefixes. The
// first tier that yields anything wins; results are deduplicated in order
// of appearance and capped at maxCandidates.
//
// Target-derived candidates are deliberately not gated on the allow list
// here, so the caller can report out-of-scope requests back to the author.
func (o *Orchestrator) detectCandidates(ctx context.Context, text, base string) []Candidate {
	for _, tier := range []func(context.Context, string, string) []Candidate{
		o.detectTargets,
		o.detectTracebacks,
		o.detectTokenLines,
		o.probeEntryPoints,
	} {
		if found := tier(ctx, text, base); len(found) > 0 {
			return dedupeCandidates(found)
		}
	}
	return nil
}

func (o *Orchestrator) detectTargets(ctx context.Context, text, _ string) []Candidate {
	var out []Candidate
	for _, m := range reTargetLine.FindAllStringSubmatch(text, -1) {
		raw := sandbox.CleanToken(m[1])
		line := 0
		if i := strings.LastIndex(raw, ":"); i >= 0 {
			if n, err := strconv.Atoi(raw[i+1:]); err == nil {
				raw, line = raw[:i], n
			}
		}
		if path := o.resolver.RepoRelative(raw); path != "" {
			out = append(out, Candidate{Path: path, Line: line})
		}
	}
	if len(out) > 0 {
		clog.FromContext(ctx).With("count", len(out)).Info("Detected explicit targets")
	}
	return out
}

func (o *Orchestrator) detectTracebacks(ctx context.Context, text, _ string) []Candidate {
	var out []Candidate
	for _, m := range reTracebackFrame.FindAllStringSubmatch(text, -1) {
		path := o.resolver.RepoRelative(sandbox.CleanToken(m[1]))
		line, _ := strconv.Atoi(m[2])
		if path != "" && o.allow.Allowed(path) {
			out = append(out, Candidate{Path: path, Line: line})
		}
	}
	if len(out) > 0 {
		clog.FromContext(ctx).With("count", len(out)).Info("Detected traceback frames")
	}
	return out
}

func (o *Orchestrator) detectTokenLines(ctx context.Context, text, _ string) []Candidate {
	var out []Candidate
	for _, m := range reTokenLine.FindAllStringSubmatch(text, -1) {
		path := o.resolver.RepoRelative(sandbox.CleanToken(m[1]))
		line, _ := strconv.Atoi(m[2])
		if path != "" && o.allow.Allowed(path) {
			out = append(out, Candidate{Path: path, Line: line})
		}
	}
	if len(out) > 0 {
		clog.FromContext(ctx).With("count", len(out)).Info("Detected token:line references")
	}
	return out
}

// probeEntryPoints looks for one conventional entry point per allowed
// prefix, keeping the first that exists on base.
func (o *Orchestrator) probeEntryPoints(ctx context.Context, _, base string) []Candidate {
	log := clog.FromContext(ctx)

	prefixes := o.cfg.AllowedPaths
	if o.allow.AllowsAll() {
		prefixes = []string{""}
	}

	var out []Candidate
	for _, prefix := range prefixes {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		for _, entry := range entryPoints {
			path := prefix + entry
			exists, err := o.tracker.FileExists(ctx, path, base)
			if err != nil {
				log.With("path", path).Warnf("Probing entry point: %v", err)
				continue
			}
			if exists {
				log.With("path", path).Info("Probed entry point")
				out = append(out, Candidate{Path: path})
				break
			}
		}
	}
	return out
}

// dedupeCandidates removes repeats while preserving first-seen order.
func dedupeCandidates(in []Candidate) []Candidate {
	seen := make(map[Candidate]struct{}, len(in))
	var out []Candidate
	for _, c := range in {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) >= maxCandidates {
			break
		}
	}
	return out
}
