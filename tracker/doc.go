/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package tracker abstracts the issue tracker and repository host behind a
// small interface: read files at a ref, create branches and commits, open
// draft pull requests, and post comments. The GitHub implementation works
// entirely through the REST API, so the bot never needs a local clone.
package tracker
