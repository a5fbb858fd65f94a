/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package diffengine

import (
	"regexp"
	"strconv"
	"strings"
)

// OpKind classifies one line of a hunk body.
type OpKind int

const (
	// OpContext copies one line from the original into the output.
	OpContext OpKind = iota
	// OpDelete consumes one original line without emitting it.
	OpDelete
	// OpInsert emits the op's text without consuming an original line.
	OpInsert
)

// LineOp is a single hunk-body operation. Text carries the line content with
// its leading marker stripped; for OpContext the original text is
// authoritative at apply time and Text is informational only.
type LineOp struct {
	Kind OpKind
	Text string
}

// Hunk is one contiguous change region, anchored at 1-based old/new line
// positions. A missing length in the header means 1.
type Hunk struct {
	OldStart int
	OldLen   int
	NewStart int
	NewLen   int
	Ops      []LineOp
}

// FileDiff is the ordered sequence of hunks targeting a single file.
type FileDiff struct {
	Path  string
	Hunks []Hunk
}

// ParsedDiff preserves file order of first appearance and hunk order within
// each file. Hunks within a file are assumed non-overlapping and strictly
// increasing in OldStart; the engine does not re-sort or detect overlap.
type ParsedDiff struct {
	Files []FileDiff
}

// Paths returns the touched paths in order of first appearance.
func (d ParsedDiff) Paths() []string {
	out := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		out = append(out, f.Path)
	}
	return out
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse decomposes unified-diff text into per-file hunks. A file boundary is
// the two-line marker "--- a/<path>" immediately followed by "+++ b/<path>";
// the path is taken from the second line with its fixed 6-character prefix
// stripped. Lines after a hunk header up to the next header or file boundary
// belong to that hunk. Content that matches neither pattern is skipped.
func Parse(diffText string) ParsedDiff {
	var parsed ParsedDiff
	index := map[string]int{} // path -> position in parsed.Files

	// A trailing newline would otherwise read as an empty context op and
	// throw off the old_len accounting of the final hunk.
	diffText = strings.TrimSuffix(diffText, "\n")
	lines := strings.Split(diffText, "\n")
	curFile := -1

	for i := 0; i < len(lines); {
		line := lines[i]

		if strings.HasPrefix(line, "--- a/") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ b/") {
			path := lines[i+1][len("+++ b/"):]
			if at, ok := index[path]; ok {
				curFile = at
			} else {
				index[path] = len(parsed.Files)
				curFile = len(parsed.Files)
				parsed.Files = append(parsed.Files, FileDiff{Path: path})
			}
			i += 2
			continue
		}

		if m := hunkHeader.FindStringSubmatch(line); m != nil && curFile >= 0 {
			h := Hunk{
				OldStart: atoiDefault(m[1], 1),
				OldLen:   atoiDefault(m[2], 1),
				NewStart: atoiDefault(m[3], 1),
				NewLen:   atoiDefault(m[4], 1),
			}
			i++
			for i < len(lines) && !strings.HasPrefix(lines[i], "@@") && !strings.HasPrefix(lines[i], "--- a/") {
				h.Ops = append(h.Ops, tagOp(lines[i]))
				i++
			}
			parsed.Files[curFile].Hunks = append(parsed.Files[curFile].Hunks, h)
			continue
		}

		i++
	}

	return parsed
}

// tagOp classifies a raw hunk-body line by its leading marker. Any marker
// other than '-' or '+' (including a missing one) is treated as context.
func tagOp(line string) LineOp {
	switch {
	case strings.HasPrefix(line, "-"):
		return LineOp{Kind: OpDelete, Text: line[1:]}
	case strings.HasPrefix(line, "+"):
		return LineOp{Kind: OpInsert, Text: line[1:]}
	case strings.HasPrefix(line, " "):
		return LineOp{Kind: OpContext, Text: line[1:]}
	default:
		return LineOp{Kind: OpContext, Text: line}
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
