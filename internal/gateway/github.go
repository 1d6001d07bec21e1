// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST client.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// RepositoryInfo holds the repository metadata the site displays.
type RepositoryInfo struct {
	Stars    int
	Language string
}

// Count is the raw material for a pagination-derived item count.
// LastPage is the page number of the rel="last" Link entry, 0 when the response had none.
// Items is the length of the list that was actually returned.
type Count struct {
	LastPage int
	Items    int
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchRepository(ctx context.Context, owner, repo string) (*RepositoryInfo, error)
	FetchLatestRelease(ctx context.Context, owner, repo string) (string, error)
	// Both count methods request a single item per page so the total can be read
	// from the pagination header instead of downloading the full list.
	FetchContributorCount(ctx context.Context, owner, repo string) (*Count, error)
	FetchReleaseCount(ctx context.Context, owner, repo string) (*Count, error)
}

// Options configures the GitHub gateway.
type Options struct {
	// Token is optional; public repositories can be read anonymously.
	Token string
	// BaseURL overrides the REST endpoint, e.g. for GitHub Enterprise.
	BaseURL string
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	logger     *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Minute, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	var transport http.RoundTripper = rateLimitWaiter
	if opts.Token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}
	}
	restClient := github.NewClient(&http.Client{Transport: transport})
	if opts.BaseURL != "" {
		baseURL, err := parseBaseURL(opts.BaseURL)
		if err != nil {
			return nil, err
		}
		restClient.BaseURL = baseURL
	}
	return &GitHubGateway{
		restClient: restClient,
		logger:     logger,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	baseURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", raw, err)
	}
	return baseURL, nil
}

func (g *GitHubGateway) FetchRepository(ctx context.Context, owner, repo string) (*RepositoryInfo, error) {
	g.logger.Println("[1/4] Fetching repository metadata...")
	repository, _, err := g.restClient.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository %s/%s: %w", owner, repo, err)
	}
	return &RepositoryInfo{
		Stars:    repository.GetStargazersCount(),
		Language: repository.GetLanguage(),
	}, nil
}

func (g *GitHubGateway) FetchLatestRelease(ctx context.Context, owner, repo string) (string, error) {
	g.logger.Println("[2/4] Fetching latest release...")
	release, _, err := g.restClient.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest release of %s/%s: %w", owner, repo, err)
	}
	return release.GetTagName(), nil
}

func (g *GitHubGateway) FetchContributorCount(ctx context.Context, owner, repo string) (*Count, error) {
	g.logger.Println("[3/4] Fetching contributor count...")
	opts := &github.ListContributorsOptions{
		Anon:        "true",
		ListOptions: github.ListOptions{PerPage: 1},
	}
	contributors, resp, err := g.restClient.Repositories.ListContributors(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributors of %s/%s: %w", owner, repo, err)
	}
	return &Count{LastPage: resp.LastPage, Items: len(contributors)}, nil
}

func (g *GitHubGateway) FetchReleaseCount(ctx context.Context, owner, repo string) (*Count, error) {
	g.logger.Println("[4/4] Fetching release count...")
	releases, resp, err := g.restClient.Repositories.ListReleases(ctx, owner, repo, &github.ListOptions{PerPage: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to list releases of %s/%s: %w", owner, repo, err)
	}
	return &Count{LastPage: resp.LastPage, Items: len(releases)}, nil
}
