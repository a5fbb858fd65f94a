/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package snippet

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"chainguard.dev/ticketwatcher/sandbox"
	"github.com/chainguard-dev/clog"
)

// Snippet is a contiguous, 1-indexed, inclusive line range of a file's text
// at the time of fetch. Snippets are never mutated after creation; rounds
// that reuse them copy them forward.
type Snippet struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Code      string `json:"code"`
}

// Reader is the repository-read subset of the tracker collaborator.
type Reader interface {
	FileExists(ctx context.Context, path, ref string) (bool, error)
	FileText(ctx context.Context, path, ref string) (string, error)
}

// Fetcher retrieves snippets from the repository, honoring the path sandbox.
type Fetcher struct {
	reader   Reader
	resolver *sandbox.Resolver
	allow    sandbox.AllowList
}

// NewFetcher returns a Fetcher reading through the given collaborator.
func NewFetcher(reader Reader, resolver *sandbox.Resolver, allow sandbox.AllowList) *Fetcher {
	return &Fetcher{reader: reader, resolver: resolver, allow: allow}
}

// ByLine fetches around*2+1 lines centered at centerLine (clamped to file
// bounds). A centerLine of 0 means "no line known": the head of the file is
// returned instead, at most 2*around lines from line 1. Returns (nil, nil)
// when the path is outside the sandbox or the file does not exist on ref.
func (f *Fetcher) ByLine(ctx context.Context, path, ref string, centerLine, around int) (*Snippet, error) {
	lines, ok, err := f.load(ctx, path, ref)
	if err != nil || !ok || len(lines) == 0 {
		return nil, err
	}
	rel := f.resolver.RepoRelative(path)

	n := len(lines)
	var start, end int
	if centerLine < 1 || centerLine > n {
		start = 1
		end = min(n, 2*around)
	} else {
		start = max(1, centerLine-around)
		end = min(n, centerLine+around)
	}

	return slice(rel, lines, start, end), nil
}

// BySymbol searches the file top-to-bottom for a "(def|class) <symbol>"
// definition, falling back to the first line containing symbol as a
// substring, and centers an around-line window on the match. Returns
// (nil, nil) when the path is outside the sandbox, the file is absent, or
// the symbol does not occur.
func (f *Fetcher) BySymbol(ctx context.Context, path, ref, symbol string, around int) (*Snippet, error) {
	lines, ok, err := f.load(ctx, path, ref)
	if err != nil || !ok || len(lines) == 0 {
		return nil, err
	}
	rel := f.resolver.RepoRelative(path)

	defPattern := regexp.MustCompile(`^\s*(def|class)\s+` + regexp.QuoteMeta(symbol) + `\b`)
	match := 0
	for i, line := range lines {
		if defPattern.MatchString(line) {
			match = i + 1
			break
		}
	}
	if match == 0 {
		for i, line := range lines {
			if strings.Contains(line, symbol) {
				match = i + 1
				break
			}
		}
	}
	if match == 0 {
		clog.FromContext(ctx).With("path", rel).With("symbol", symbol).
			Debug("Symbol not found in file")
		return nil, nil
	}

	start := max(1, match-around)
	end := min(len(lines), match+around)
	return slice(rel, lines, start, end), nil
}

// load resolves and gates the path, then reads the file's lines. The bool
// result is false when the pipeline has nothing to offer for this path.
func (f *Fetcher) load(ctx context.Context, path, ref string) ([]string, bool, error) {
	log := clog.FromContext(ctx)

	rel := f.resolver.RepoRelative(path)
	if !f.allow.Allowed(rel) {
		log.With("path", rel).Debug("Path outside sandbox, no snippet")
		return nil, false, nil
	}

	exists, err := f.reader.FileExists(ctx, rel, ref)
	if err != nil {
		return nil, false, fmt.Errorf("checking %s on %s: %w", rel, ref, err)
	}
	if !exists {
		log.With("path", rel).With("ref", ref).Debug("File absent, no snippet")
		return nil, false, nil
	}

	text, err := f.reader.FileText(ctx, rel, ref)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s on %s: %w", rel, ref, err)
	}
	return splitLines(text), true, nil
}

// slice builds a Snippet for the 1-based inclusive range [start, end].
func slice(path string, lines []string, start, end int) *Snippet {
	if end < start {
		end = start
	}
	return &Snippet{
		Path:      path,
		StartLine: start,
		EndLine:   end,
		Code:      strings.Join(lines[start-1:end], "\n"),
	}
}

// splitLines splits file text the way a 1-based line numbering expects:
// a trailing newline does not produce a phantom final line.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
