/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// GitHub implements Interface against a single owner/repo pair.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHub returns a tracker for the given repository.
func NewGitHub(client *github.Client, owner, repo string) *GitHub {
	return &GitHub{client: client, owner: owner, repo: repo}
}

// NewTokenClient builds a GitHub client authenticated with a personal
// access or Actions token.
func NewTokenClient(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, ts))
}

// NewAppClient builds a GitHub client authenticated as an App installation
// using a private key file.
func NewAppClient(appID, installationID int64, privateKeyPath string) (*github.Client, error) {
	itr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	return github.NewClient(&http.Client{Transport: itr}), nil
}

// DefaultBranch returns the repository's default branch name.
func (g *GitHub) DefaultBranch(ctx context.Context) (string, error) {
	repo, _, err := g.client.Repositories.Get(ctx, g.owner, g.repo)
	if err != nil {
		return "", fmt.Errorf("getting repository: %w", err)
	}
	return repo.GetDefaultBranch(), nil
}

// FileExists reports whether path exists as a file on ref. Directories do
// not count.
func (g *GitHub) FileExists(ctx context.Context, path, ref string) (bool, error) {
	fc, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("getting contents of %s: %w", path, err)
	}
	return fc != nil, nil
}

// FileText returns the decoded text of path on ref.
func (g *GitHub) FileText(ctx context.Context, path, ref string) (string, error) {
	fc, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", fmt.Errorf("getting contents of %s: %w", path, err)
	}
	if fc == nil {
		return "", fmt.Errorf("%s on %s is not a file", path, ref)
	}
	text, err := fc.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding contents of %s: %w", path, err)
	}
	return text, nil
}

// CreateBranch creates branch at the head of base. If the branch already
// exists it is left alone.
func (g *GitHub) CreateBranch(ctx context.Context, branch, base string) error {
	baseRef, _, err := g.client.Git.GetRef(ctx, g.owner, g.repo, "heads/"+base)
	if err != nil {
		return fmt.Errorf("getting ref for %s: %w", base, err)
	}

	_, _, err = g.client.Git.CreateRef(ctx, g.owner, g.repo, github.CreateRef{
		Ref: "refs/heads/" + branch,
		SHA: baseRef.Object.GetSHA(),
	})
	if err != nil {
		if isAlreadyExists(err) {
			clog.FromContext(ctx).With("branch", branch).Info("Branch already exists, reusing")
			return nil
		}
		return fmt.Errorf("creating ref for %s: %w", branch, err)
	}
	return nil
}

// CreateOrUpdateFile commits content to path on branch. An existing file is
// updated in place using its current blob SHA.
func (g *GitHub) CreateOrUpdateFile(ctx context.Context, path, content, message, branch string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: []byte(content),
		Branch:  github.Ptr(branch),
	}

	fc, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, &github.RepositoryContentGetOptions{Ref: branch})
	switch {
	case err == nil && fc != nil:
		opts.SHA = fc.SHA
		if _, _, err := g.client.Repositories.UpdateFile(ctx, g.owner, g.repo, path, opts); err != nil {
			return fmt.Errorf("updating %s on %s: %w", path, branch, err)
		}
	case err == nil || isNotFound(err):
		if _, _, err := g.client.Repositories.CreateFile(ctx, g.owner, g.repo, path, opts); err != nil {
			return fmt.Errorf("creating %s on %s: %w", path, branch, err)
		}
	default:
		return fmt.Errorf("checking %s on %s: %w", path, branch, err)
	}

	clog.FromContext(ctx).With("path", path).With("branch", branch).Info("Committed file")
	return nil
}

// CreatePullRequest opens a pull request from head into base.
func (g *GitHub) CreatePullRequest(ctx context.Context, title, body, head, base string, draft bool) (string, int, error) {
	pr, _, err := g.client.PullRequests.Create(ctx, g.owner, g.repo, &github.NewPullRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
		Head:  github.Ptr(head),
		Base:  github.Ptr(base),
		Draft: github.Ptr(draft),
	})
	if err != nil {
		return "", 0, fmt.Errorf("creating pull request: %w", err)
	}

	clog.FromContext(ctx).With("pr", pr.GetNumber()).With("url", pr.GetHTMLURL()).Info("Opened pull request")
	return pr.GetHTMLURL(), pr.GetNumber(), nil
}

// AddComment posts a comment on the given issue or pull request.
func (g *GitHub) AddComment(ctx context.Context, number int, body string) error {
	if _, _, err := g.client.Issues.CreateComment(ctx, g.owner, g.repo, number, &github.IssueComment{
		Body: github.Ptr(body),
	}); err != nil {
		return fmt.Errorf("posting comment on #%d: %w", number, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

func isAlreadyExists(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusUnprocessableEntity
}
