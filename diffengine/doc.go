/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package diffengine parses unified-diff text into structured hunks and
// applies those hunks to original file text to produce new file contents,
// without shelling out to any external diff tool. It also computes change
// statistics used for budget enforcement.
//
// The engine knows nothing about path allow-listing; callers must gate
// every parsed path before applying anything.
package diffengine
