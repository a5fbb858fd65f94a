/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func detectWith(t *testing.T, files map[string]string, text string) []Candidate {
	t.Helper()
	o := newTestOrchestrator(t, testConfig(), newFakeTracker(files), &scriptedCompleter{})
	return o.detectCandidates(context.Background(), text, "main")
}

func TestDetectCandidates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Candidate
	}{{
		name: "explicit target",
		text: "Something broke.\nTarget: src/app/auth.py\n",
		want: []Candidate{{Path: "src/app/auth.py"}},
	}, {
		name: "target with line",
		text: "Target: src/app/auth.py:42",
		want: []Candidate{{Path: "src/app/auth.py", Line: 42}},
	}, {
		name: "target wins over traceback",
		text: "Target: src/a.py\n  File \"src/b.py\", line 9, in f",
		want: []Candidate{{Path: "src/a.py"}},
	}, {
		name: "target kept even when out of scope",
		text: "Target: vendor/lib.py",
		want: []Candidate{{Path: "vendor/lib.py"}},
	}, {
		name: "traceback frames with absolute paths",
		text: "Traceback (most recent call last):\n" +
			"  File \"/work/repo/src/app/auth.py\", line 12, in get_user_profile\n" +
			"  File \"src/app/util.py\", line 3, in load\n",
		want: []Candidate{
			{Path: "src/app/auth.py", Line: 12},
			{Path: "src/app/util.py", Line: 3},
		},
	}, {
		name: "disallowed traceback frames dropped",
		text: "  File \"/usr/lib/python3.11/json.py\", line 100, in loads\n" +
			"  File \"src/app/auth.py\", line 12, in get_user_profile\n",
		want: []Candidate{{Path: "src/app/auth.py", Line: 12}},
	}, {
		name: "generic token line",
		text: "the crash is at src/app/auth.py:12 every time",
		want: []Candidate{{Path: "src/app/auth.py", Line: 12}},
	}, {
		name: "duplicates collapsed",
		text: "Target: src/a.py:1\nTarget: src/a.py:1\nTarget: src/b.py",
		want: []Candidate{{Path: "src/a.py", Line: 1}, {Path: "src/b.py"}},
	}, {
		name: "capped at five",
		text: "Target: src/a.py\nTarget: src/b.py\nTarget: src/c.py\n" +
			"Target: src/d.py\nTarget: src/e.py\nTarget: src/f.py",
		want: []Candidate{
			{Path: "src/a.py"}, {Path: "src/b.py"}, {Path: "src/c.py"},
			{Path: "src/d.py"}, {Path: "src/e.py"},
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectWith(t, map[string]string{}, tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("detectCandidates() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectCandidatesProbesEntryPoints(t *testing.T) {
	files := map[string]string{
		"src/main.py": "print('hi')\n",
		"app/app.py":  "app = make()\n",
	}
	got := detectWith(t, files, "no usable hints at all")
	want := []Candidate{{Path: "src/main.py"}, {Path: "app/app.py"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("probe mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectCandidatesSanitizesTokens(t *testing.T) {
	got := detectWith(t, map[string]string{}, "Target: `src/app/auth.py`")
	want := []Candidate{{Path: "src/app/auth.py"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sanitize mismatch (-want +got):\n%s", diff)
	}

	// A trailing quote-comma run after the token is junk, not path.
	if got := detectWith(t, map[string]string{}, "Target: \"src/a.py\","); len(got) != 1 || got[0].Path != "src/a.py" {
		t.Errorf("quoted target: got = %v", got)
	}
}
