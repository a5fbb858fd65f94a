/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs TicketWatcher over a single GitHub webhook event: it
// reads the event payload from disk (the GitHub Actions convention), runs
// the pipeline once, and exits. All reporting happens through issue
// comments and draft pull requests; the exit status is informational.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"chainguard.dev/ticketwatcher/agent"
	"chainguard.dev/ticketwatcher/agent/executor/claudeexecutor"
	"chainguard.dev/ticketwatcher/agent/executor/openaiexecutor"
	"chainguard.dev/ticketwatcher/pipeline"
	"chainguard.dev/ticketwatcher/tracker"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"github.com/openai/openai-go"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	Pipeline pipeline.Config

	// Provider selects the model backend. The SDK clients read their API
	// keys from the conventional environment variables.
	Provider string `env:"TICKETWATCHER_PROVIDER,default=anthropic"`
	Model    string `env:"TICKETWATCHER_MODEL"`

	// Token auth is the default; App auth is used when all three App
	// values are present.
	GitHubToken    string `env:"GITHUB_TOKEN"`
	AppID          int64  `env:"TICKETWATCHER_APP_ID"`
	InstallationID int64  `env:"TICKETWATCHER_INSTALLATION_ID"`
	PrivateKeyPath string `env:"TICKETWATCHER_APP_PRIVATE_KEY_PATH"`

	EventName string `env:"GITHUB_EVENT_NAME"`
	EventPath string `env:"GITHUB_EVENT_PATH"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eventFile := flag.String("event-file", "", "path to the webhook event payload (overrides GITHUB_EVENT_PATH)")
	flag.Parse()

	log := clog.FromContext(ctx)

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "failed to process config: %v", err)
	}
	if *eventFile != "" {
		cfg.EventPath = *eventFile
	}
	if cfg.EventPath == "" {
		clog.FatalContextf(ctx, "no event payload: set --event-file or GITHUB_EVENT_PATH")
	}
	if cfg.Pipeline.RepoFullName == "" {
		clog.FatalContextf(ctx, "GITHUB_REPOSITORY must be set (owner/name)")
	}

	payload, err := os.ReadFile(cfg.EventPath)
	if err != nil {
		clog.FatalContextf(ctx, "failed to read event payload: %v", err)
	}

	trk, err := buildTracker(ctx, cfg)
	if err != nil {
		clog.FatalContextf(ctx, "failed to build tracker: %v", err)
	}

	completer, err := buildCompleter(cfg)
	if err != nil {
		clog.FatalContextf(ctx, "failed to build completer: %v", err)
	}

	orchestrator, err := pipeline.New(cfg.Pipeline, trk, completer)
	if err != nil {
		clog.FatalContextf(ctx, "failed to build pipeline: %v", err)
	}

	var outcome pipeline.Outcome
	switch cfg.EventName {
	case "issues":
		var event github.IssuesEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			clog.FatalContextf(ctx, "failed to parse issues event: %v", err)
		}
		outcome, err = orchestrator.HandleIssueEvent(ctx, &event)
	case "issue_comment":
		var event github.IssueCommentEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			clog.FatalContextf(ctx, "failed to parse issue_comment event: %v", err)
		}
		outcome, err = orchestrator.HandleIssueCommentEvent(ctx, &event)
	default:
		log.With("event", cfg.EventName).Info("Unsupported event, nothing to do")
		return
	}
	if err != nil {
		clog.FatalContextf(ctx, "pipeline failed: %v", err)
	}

	log.With("event", cfg.EventName).With("outcome", outcome).Info("Done")
}

// buildTracker picks App installation auth when fully configured, token
// auth otherwise.
func buildTracker(ctx context.Context, cfg config) (tracker.Interface, error) {
	var client *github.Client
	if cfg.AppID != 0 && cfg.InstallationID != 0 && cfg.PrivateKeyPath != "" {
		var err error
		client, err = tracker.NewAppClient(cfg.AppID, cfg.InstallationID, cfg.PrivateKeyPath)
		if err != nil {
			return nil, err
		}
	} else {
		client = tracker.NewTokenClient(ctx, cfg.GitHubToken)
	}
	return tracker.NewGitHub(client, cfg.Pipeline.Owner(), cfg.Pipeline.RepoName()), nil
}

// buildCompleter constructs the selected provider's executor. The SDK
// clients pick up ANTHROPIC_API_KEY / OPENAI_API_KEY on their own.
func buildCompleter(cfg config) (agent.Completer, error) {
	switch cfg.Provider {
	case "openai":
		var opts []openaiexecutor.Option
		if cfg.Model != "" {
			opts = append(opts, openaiexecutor.WithModel(cfg.Model))
		}
		return openaiexecutor.New(openai.NewClient(), opts...)
	default:
		var opts []claudeexecutor.Option
		if cfg.Model != "" {
			opts = append(opts, claudeexecutor.WithModel(cfg.Model))
		}
		return claudeexecutor.New(anthropic.NewClient(), opts...)
	}
}
