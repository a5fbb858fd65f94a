/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package sandbox decides which repository paths the pipeline may read or
// write. It normalizes arbitrary path strings (relative, absolute,
// traceback-style, repo-qualified) to repo-relative form and tests them
// against an allow-list of prefixes. All functions are pure: no filesystem
// access, no environment access.
package sandbox
