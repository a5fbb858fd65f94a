/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package diffengine

import "strings"

// Stats summarizes the footprint of a diff for budget enforcement.
type Stats struct {
	FilesTouched int
	ChangedLines int
}

// ComputeStats is a line-oriented scan independent of Parse: a file is
// touched when a "+++ b/" line is seen, and a changed line is any "+" or
// "-" line that is not one of the file-boundary markers.
func ComputeStats(diffText string) Stats {
	files := map[string]bool{}
	changed := 0

	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ b/"):
			files[line[len("+++ b/"):]] = true
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			// file boundary markers, not changes
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, "-"):
			changed++
		}
	}

	return Stats{FilesTouched: len(files), ChangedLines: changed}
}
