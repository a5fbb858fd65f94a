/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package snippet fetches bounded, line-numbered excerpts of repository
// files to offer the model as context. Absence — a disallowed path, a
// missing file, an unmatched symbol — is reported as a nil snippet rather
// than an error; only collaborator I/O failures surface as errors.
package snippet
