/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package sandbox

import (
	"path/filepath"
	"regexp"
	"strings"
)

// genericRoots are path segments that name generic system directories.
// The best-effort resolver skips past these when guessing where a
// repository-relative suffix begins inside an unrecognized absolute path.
var genericRoots = map[string]bool{
	"Users": true,
	"home":  true,
	"tmp":   true,
	"var":   true,
	"opt":   true,
	"usr":   true,
	"bin":   true,
	"sbin":  true,
	"etc":   true,
}

// trailingJunk matches quotes, whitespace, and closing punctuation that
// commonly trail paths quoted out of tracebacks or prose.
var trailingJunk = regexp.MustCompile(`['"\s,)\]>]+$`)

// CleanToken strips wrapping quotes/backticks and trailing punctuation from
// a path token extracted from free text.
func CleanToken(tok string) string {
	tok = strings.TrimSpace(tok)
	tok = strings.Trim(tok, "`\"'")
	return trailingJunk.ReplaceAllString(tok, "")
}

// Resolver normalizes raw path strings to repo-relative form. The repository
// root and name are injected at construction; Resolver never consults the
// environment.
type Resolver struct {
	root string // absolute path of the repository working copy
	name string // repository name, e.g. "ticketwatcher"
}

// NewResolver returns a Resolver for the given repository root and name.
// Either may be empty, which disables the corresponding match rule.
func NewResolver(root, name string) *Resolver {
	return &Resolver{
		root: strings.TrimRight(strings.ReplaceAll(root, "\\", "/"), "/"),
		name: name,
	}
}

// RepoRelative converts raw to a repo-relative, forward-slash path with no
// leading "./" or "/". Inputs are handled in order:
//
//  1. Already relative: returned with slashes normalized and any leading
//     "./" or "/" stripped.
//  2. Absolute under the repository root: relativized against the root.
//  3. Absolute containing "/<repo-name>/": the suffix after that marker.
//  4. Anything else: best effort — the suffix starting at the first segment
//     that is not a generic system directory, falling back to relativizing
//     against the root.
//
// RepoRelative is idempotent for repo-relative inputs. An empty input stays
// empty.
func (r *Resolver) RepoRelative(raw string) string {
	p := strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/")
	if p == "" {
		return ""
	}

	if !strings.HasPrefix(p, "/") {
		return trimRelative(p)
	}

	if r.root != "" && strings.HasPrefix(p, r.root+"/") {
		return trimRelative(strings.TrimPrefix(p, r.root+"/"))
	}

	if r.name != "" {
		if needle := "/" + r.name + "/"; strings.Contains(p, needle) {
			_, rest, _ := strings.Cut(p, needle)
			return trimRelative(rest)
		}
	}

	// Best effort: skip leading generic system directories and keep the
	// suffix from the first segment that could plausibly be project code.
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, seg := range segs {
		if seg == "" || i == len(segs)-1 {
			continue
		}
		if !genericRoots[seg] {
			return trimRelative(strings.Join(segs[i:], "/"))
		}
	}

	if r.root != "" {
		if rel, err := filepath.Rel(r.root, p); err == nil {
			return trimRelative(strings.ReplaceAll(rel, "\\", "/"))
		}
	}
	return trimRelative(p)
}

// trimRelative strips any leading "./" and "/" runs from p.
func trimRelative(p string) string {
	for {
		switch {
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		case strings.HasPrefix(p, "/"):
			p = p[1:]
		default:
			return p
		}
	}
}

// AllowList is an ordered set of repo-relative path prefixes the pipeline is
// permitted to touch. An empty list, or a list containing the empty string,
// allows every path — an explicit escape hatch for unrestricted
// deployments, not a default.
type AllowList []string

// NewAllowList builds an AllowList from raw prefix strings, dropping
// surrounding whitespace. Empty entries are preserved because a literal ""
// entry means "allow everything".
func NewAllowList(prefixes []string) AllowList {
	out := make(AllowList, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// AllowsAll reports whether the list permits every path, either because it
// is empty or because it contains a literal empty-string entry.
func (a AllowList) AllowsAll() bool {
	if len(a) == 0 {
		return true
	}
	for _, p := range a {
		if p == "" {
			return true
		}
	}
	return false
}

// Allowed reports whether the repo-relative path is inside the sandbox.
// A path is allowed iff it equals some prefix with its trailing slash
// removed, or starts with the prefix normalized to end with "/". The empty
// path is never allowed.
func (a AllowList) Allowed(path string) bool {
	if path == "" {
		return false
	}
	if a.AllowsAll() {
		return true
	}
	for _, prefix := range a {
		if prefix == "" {
			return true
		}
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		if path == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
