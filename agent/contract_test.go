/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"chainguard.dev/ticketwatcher/sandbox"
	"chainguard.dev/ticketwatcher/snippet"
	"github.com/google/go-cmp/cmp"
)

// scriptedCompleter returns canned replies in order and records prompts.
type scriptedCompleter struct {
	replies []string
	calls   []string
}

func (s *scriptedCompleter) Complete(_ context.Context, _, user string) (string, error) {
	s.calls = append(s.calls, user)
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply, nil
}

func newTestContract(t *testing.T, c Completer) *Contract {
	t.Helper()
	contract, err := NewContract(c, sandbox.NewResolver("/work/repo", "repo"), []string{"src/", "app/"})
	if err != nil {
		t.Fatalf("NewContract() = %v", err)
	}
	return contract
}

func TestRunRoundEmbedsTicketAndSnippets(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{`{"action":"propose_patch","diff":"d"}`}}
	contract := newTestContract(t, completer)

	reply, err := contract.RunRound(context.Background(), "login crashes", strings.Repeat("b", 4000), []snippet.Snippet{
		{Path: "src/app/auth.py", StartLine: 7, EndLine: 17, Code: "def get_user_profile(user_id):"},
	})
	if err != nil {
		t.Fatalf("RunRound() = %v", err)
	}
	if reply.Action != ActionProposePatch {
		t.Errorf("Action: got = %v, wanted = %v", reply.Action, ActionProposePatch)
	}
	if len(completer.calls) != 1 {
		t.Fatalf("completer calls: got = %d, wanted = 1", len(completer.calls))
	}

	user := completer.calls[0]
	for _, want := range []string{
		"login crashes",
		"--- path: src/app/auth.py",
		"--- start_line: 7",
		"def get_user_profile(user_id):",
		"Allowed paths: src/,app/",
		"Max files: 4",
		"Max changed lines: 200",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
	// Body over the trim limit must not arrive whole.
	if strings.Contains(user, strings.Repeat("b", 3001)) {
		t.Error("ticket body was not trimmed")
	}
	if !strings.Contains(user, strings.Repeat("b", 3000)) {
		t.Error("trimmed ticket body missing")
	}
}

func TestRunRoundTrimsBodyOnRuneBoundary(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{`{"action":"propose_patch","diff":"d"}`}}
	contract := newTestContract(t, completer)

	if _, err := contract.RunRound(context.Background(), "crash", strings.Repeat("é", 4000), nil); err != nil {
		t.Fatalf("RunRound() = %v", err)
	}

	user := completer.calls[0]
	if !utf8.ValidString(user) {
		t.Error("trimming split a multi-byte character")
	}
	if strings.Contains(user, strings.Repeat("é", 3001)) {
		t.Error("ticket body was not trimmed")
	}
	if !strings.Contains(user, strings.Repeat("é", 3000)) {
		t.Error("trimmed ticket body missing or cut mid-character")
	}
}

func TestRunTwoRoundsEscalatesOnce(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		`{"action":"request_context","needs":[{"path":"src/app/auth.py","line":42,"around_lines":500}],"reason":"need auth"}`,
		`{"action":"propose_patch","diff":"d","files_touched":["src/app/auth.py"]}`,
	}}
	contract := newTestContract(t, completer)

	var fetched []Need
	fetch := func(_ context.Context, needs []Need) ([]snippet.Snippet, error) {
		fetched = needs
		return []snippet.Snippet{{Path: "src/app/auth.py", StartLine: 1, EndLine: 10, Code: "fetched-code"}}, nil
	}

	seeds := []snippet.Snippet{{Path: "src/main.py", StartLine: 1, EndLine: 5, Code: "seed-code"}}
	reply, err := contract.RunTwoRounds(context.Background(), "t", "b", seeds, fetch)
	if err != nil {
		t.Fatalf("RunTwoRounds() = %v", err)
	}
	if reply.Action != ActionProposePatch {
		t.Errorf("Action: got = %v, wanted = %v", reply.Action, ActionProposePatch)
	}
	if len(completer.calls) != 2 {
		t.Fatalf("completer calls: got = %d, wanted = 2", len(completer.calls))
	}

	wantNeeds := []Need{{Path: "src/app/auth.py", Line: 42, AroundLines: 60}}
	if diff := cmp.Diff(wantNeeds, fetched); diff != "" {
		t.Errorf("sanitized needs mismatch (-want +got):\n%s", diff)
	}

	// Round two sees seeds plus fetched snippets.
	round2 := completer.calls[1]
	if !strings.Contains(round2, "seed-code") || !strings.Contains(round2, "fetched-code") {
		t.Error("round two prompt missing seed or fetched snippet")
	}
	// Round one must not see the fetched snippet.
	if strings.Contains(completer.calls[0], "fetched-code") {
		t.Error("round one prompt already contains fetched snippet")
	}
}

func TestRunTwoRoundsReturnsSecondRequestContext(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		`{"action":"request_context","needs":[{"path":"src/a.py"}],"reason":"first"}`,
		`{"action":"request_context","needs":[{"path":"src/b.py"}],"reason":"second"}`,
	}}
	contract := newTestContract(t, completer)

	fetch := func(context.Context, []Need) ([]snippet.Snippet, error) {
		return []snippet.Snippet{{Path: "src/a.py", StartLine: 1, EndLine: 1, Code: "x"}}, nil
	}
	reply, err := contract.RunTwoRounds(context.Background(), "t", "b", nil, fetch)
	if err != nil {
		t.Fatalf("RunTwoRounds() = %v", err)
	}
	if reply.Action != ActionRequestContext || reply.Reason != "second" {
		t.Errorf("reply: got = %+v, wanted second request_context returned as-is", reply)
	}
	if len(completer.calls) != 2 {
		t.Errorf("completer calls: got = %d, wanted = 2", len(completer.calls))
	}
}

func TestRunTwoRoundsStopsWhenNothingFetchable(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		`{"action":"request_context","needs":[{"path":"/etc/passwd"}],"reason":"fishing"}`,
	}}
	contract := newTestContract(t, completer)

	fetch := func(context.Context, []Need) ([]snippet.Snippet, error) {
		t.Fatal("fetch called for fully-dropped needs")
		return nil, nil
	}
	reply, err := contract.RunTwoRounds(context.Background(), "t", "b", nil, fetch)
	if err != nil {
		t.Fatalf("RunTwoRounds() = %v", err)
	}
	if reply.Action != ActionRequestContext || reply.Reason != "fishing" {
		t.Errorf("reply: got = %+v, wanted round-one reply as-is", reply)
	}
	if len(completer.calls) != 1 {
		t.Errorf("completer calls: got = %d, wanted = 1", len(completer.calls))
	}
}

func TestSanitizeNeeds(t *testing.T) {
	contract := newTestContract(t, &scriptedCompleter{})

	tests := []struct {
		name string
		in   []Need
		want []Need
	}{{
		name: "window clamped up to ten",
		in:   []Need{{Path: "src/a.py", AroundLines: 3}},
		want: []Need{{Path: "src/a.py", AroundLines: 10}},
	}, {
		name: "window clamped down to default",
		in:   []Need{{Path: "src/a.py", AroundLines: 500}},
		want: []Need{{Path: "src/a.py", AroundLines: 60}},
	}, {
		name: "missing window gets default",
		in:   []Need{{Path: "src/a.py", Symbol: "login", Line: 9}},
		want: []Need{{Path: "src/a.py", Symbol: "login", Line: 9, AroundLines: 60}},
	}, {
		name: "disallowed path dropped",
		in:   []Need{{Path: "/etc/passwd"}, {Path: "vendor/x.py"}},
		want: nil,
	}, {
		name: "absolute workspace path normalized",
		in:   []Need{{Path: "/work/repo/src/app/auth.py", AroundLines: 40}},
		want: []Need{{Path: "src/app/auth.py", AroundLines: 40}},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, contract.SanitizeNeeds(tt.in)); diff != "" {
				t.Errorf("SanitizeNeeds() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
