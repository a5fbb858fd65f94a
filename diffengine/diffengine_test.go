/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package diffengine

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleDiff = `--- a/src/app/auth.py
+++ b/src/app/auth.py
@@ -10,7 +10,7 @@ def get_user_profile(user_id):
 def get_user_profile(user_id):
     user = load(user_id)
-    name = user["name"]
+    name = user.get("name", "")
     return name


 def other():
--- a/src/app/payments.py
+++ b/src/app/payments.py
@@ -1,3 +1,4 @@
 import math
+import logging

 TAX = 0.2
`

func TestParse(t *testing.T) {
	parsed := Parse(sampleDiff)

	wantPaths := []string{"src/app/auth.py", "src/app/payments.py"}
	if diff := cmp.Diff(wantPaths, parsed.Paths()); diff != "" {
		t.Errorf("Paths() mismatch (-want +got):\n%s", diff)
	}

	auth := parsed.Files[0]
	if len(auth.Hunks) != 1 {
		t.Fatalf("hunk count: got = %d, wanted = 1", len(auth.Hunks))
	}
	h := auth.Hunks[0]
	if h.OldStart != 10 || h.OldLen != 7 || h.NewStart != 10 || h.NewLen != 7 {
		t.Errorf("hunk header: got = %+v", h)
	}
	if len(h.Ops) != 8 {
		t.Fatalf("op count: got = %d, wanted = 8", len(h.Ops))
	}
	if h.Ops[2].Kind != OpDelete || h.Ops[2].Text != `    name = user["name"]` {
		t.Errorf("delete op: got = %+v", h.Ops[2])
	}
	if h.Ops[3].Kind != OpInsert || h.Ops[3].Text != `    name = user.get("name", "")` {
		t.Errorf("insert op: got = %+v", h.Ops[3])
	}
}

func TestParseMissingLengthsDefaultToOne(t *testing.T) {
	diff := "--- a/f.py\n+++ b/f.py\n@@ -3 +3 @@\n-old\n+new\n"
	parsed := Parse(diff)
	if len(parsed.Files) != 1 || len(parsed.Files[0].Hunks) != 1 {
		t.Fatalf("unexpected parse shape: %+v", parsed)
	}
	h := parsed.Files[0].Hunks[0]
	if h.OldStart != 3 || h.OldLen != 1 || h.NewStart != 3 || h.NewLen != 1 {
		t.Errorf("hunk header defaults: got = %+v", h)
	}
}

func TestParseUnknownMarkerIsContext(t *testing.T) {
	diff := "--- a/f.py\n+++ b/f.py\n@@ -1,2 +1,2 @@\n\\ No newline at end of file\n x = 1\n"
	h := Parse(diff).Files[0].Hunks[0]
	if h.Ops[0].Kind != OpContext {
		t.Errorf("unknown marker: got = %v, wanted = OpContext", h.Ops[0].Kind)
	}
}

func TestParseIgnoresContentBeforeFirstFile(t *testing.T) {
	diff := "some prose the model emitted\n@@ -1,1 +1,1 @@\n-x\n+y\n" + sampleDiff
	parsed := Parse(diff)
	if len(parsed.Files) != 2 {
		t.Errorf("file count: got = %d, wanted = 2", len(parsed.Files))
	}
}

func TestApply(t *testing.T) {
	original := strings.Join([]string{
		"line 1",
		"line 2",
		"line 3",
		"line 4",
		"line 5",
	}, "\n")

	hunks := []Hunk{{
		OldStart: 2, OldLen: 2, NewStart: 2, NewLen: 2,
		Ops: []LineOp{
			{Kind: OpContext, Text: "line 2"},
			{Kind: OpDelete, Text: "line 3"},
			{Kind: OpInsert, Text: "line three"},
		},
	}}

	got, err := Apply(original, hunks)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	want := strings.Join([]string{
		"line 1",
		"line 2",
		"line three",
		"line 4",
		"line 5",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyContextComesFromOriginal(t *testing.T) {
	// The hunk body lies about the context line; the original text wins.
	original := "real line\nto delete\n"
	hunks := []Hunk{{
		OldStart: 1, OldLen: 2, NewStart: 1, NewLen: 1,
		Ops: []LineOp{
			{Kind: OpContext, Text: "fabricated line"},
			{Kind: OpDelete, Text: "to delete"},
		},
	}}
	got, err := Apply(original, hunks)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !strings.HasPrefix(got, "real line") {
		t.Errorf("context line: got = %q, wanted original text preserved", got)
	}
}

func TestApplyHunkMismatch(t *testing.T) {
	hunks := []Hunk{{
		OldStart: 1, OldLen: 3, NewStart: 1, NewLen: 1,
		Ops: []LineOp{
			{Kind: OpContext, Text: "a"},
			{Kind: OpDelete, Text: "b"},
			// old_len says 3 but the body only consumes 2
		},
	}}
	_, err := Apply("a\nb\nc", hunks)
	if !errors.Is(err, ErrHunkMismatch) {
		t.Errorf("Apply() error = %v, wanted ErrHunkMismatch", err)
	}
}

func TestParseApplyRoundTrip(t *testing.T) {
	// Applying the engine's own parse of a diff from A to B must reproduce
	// B exactly for ordered, non-overlapping hunks.
	a := strings.Join([]string{
		"def get_user_profile(user_id):",
		"    user = load(user_id)",
		`    name = user["name"]`,
		"    return name",
		"",
		"",
		"def other():",
		"    pass",
	}, "\n")
	b := strings.Join([]string{
		"def get_user_profile(user_id):",
		"    user = load(user_id)",
		`    name = user.get("name", "")`,
		"    return name",
		"",
		"",
		"def other():",
		"    pass",
	}, "\n")

	diff := strings.Join([]string{
		"--- a/src/app/auth.py",
		"+++ b/src/app/auth.py",
		"@@ -1,4 +1,4 @@",
		" def get_user_profile(user_id):",
		"    user = load(user_id)",
		`-    name = user["name"]`,
		`+    name = user.get("name", "")`,
		"    return name",
		"",
	}, "\n")
	parsed := Parse(diff)
	if len(parsed.Files) != 1 {
		t.Fatalf("file count: got = %d, wanted = 1", len(parsed.Files))
	}
	got, err := Apply(a, parsed.Files[0].Hunks)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sampleDiff)
	want := Stats{FilesTouched: 2, ChangedLines: 3}
	if stats != want {
		t.Errorf("ComputeStats(): got = %+v, wanted = %+v", stats, want)
	}
}

func TestComputeStatsTwoFilesFiveChanges(t *testing.T) {
	diff := strings.Join([]string{
		"--- a/one.py",
		"+++ b/one.py",
		"@@ -1,2 +1,3 @@",
		"+added one",
		"+added two",
		"-removed one",
		"--- a/two.py",
		"+++ b/two.py",
		"@@ -1,1 +1,2 @@",
		"+added three",
		"-removed two",
		"",
	}, "\n")
	stats := ComputeStats(diff)
	want := Stats{FilesTouched: 2, ChangedLines: 5}
	if stats != want {
		t.Errorf("ComputeStats(): got = %+v, wanted = %+v", stats, want)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	if got := ComputeStats(""); got != (Stats{}) {
		t.Errorf("ComputeStats(\"\"): got = %+v, wanted zero", got)
	}
}
