/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package diffengine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHunkMismatch reports that a hunk's body consumed a different number of
// original lines than its header's old_len declared. Applying such a hunk
// would silently desynchronize the rest of the file, so the whole apply is
// rejected instead.
var ErrHunkMismatch = errors.New("hunk body disagrees with old_len")

// Apply rewrites original according to hunks and returns the new file text.
//
// The walk is forward-only and single-pass over the original's lines with a
// 1-based cursor: unchanged lines before each hunk are copied verbatim,
// context ops re-emit the original line at the cursor (the original text is
// authoritative, not the hunk body), delete ops consume a line silently, and
// insert ops emit their text without moving the cursor. Remaining lines
// after the last hunk are copied verbatim.
//
// Context lines are not verified against the hunk body; the only integrity
// check is that each hunk consumes exactly old_len source lines, which
// fails with ErrHunkMismatch. Out-of-order or overlapping hunks are the
// caller's problem.
func Apply(original string, hunks []Hunk) (string, error) {
	src := strings.Split(original, "\n")
	dst := make([]string, 0, len(src))
	cursor := 1 // 1-based index into src

	for i, h := range hunks {
		for cursor < h.OldStart && cursor <= len(src) {
			dst = append(dst, src[cursor-1])
			cursor++
		}

		consumed := 0
		for _, op := range h.Ops {
			switch op.Kind {
			case OpContext:
				if cursor <= len(src) {
					dst = append(dst, src[cursor-1])
				}
				cursor++
				consumed++
			case OpDelete:
				cursor++
				consumed++
			case OpInsert:
				dst = append(dst, op.Text)
			}
		}

		if consumed != h.OldLen {
			return "", fmt.Errorf("hunk %d at -%d,%d consumed %d source lines: %w",
				i+1, h.OldStart, h.OldLen, consumed, ErrHunkMismatch)
		}
	}

	for cursor <= len(src) {
		dst = append(dst, src[cursor-1])
		cursor++
	}

	return strings.Join(dst, "\n"), nil
}
