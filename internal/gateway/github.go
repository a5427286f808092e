// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/gregjones/httpcache"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-contribs/internal/domain"
)

// pageSize is the number of items requested per call. No call follows up with further pages.
const pageSize = 100

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	ListOrgMembers(ctx context.Context, org string) ([]string, error)
	ListOrgRepos(ctx context.Context, org string) ([]domain.Repository, error)
	ListCommits(ctx context.Context, org, repo string, since time.Time) ([]domain.Commit, error)
	ListPullRequestComments(ctx context.Context, org, repo string, since time.Time) ([]domain.Comment, error)
	ListIssueComments(ctx context.Context, org, repo string, since time.Time) ([]domain.Comment, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	// graphqlClient is nil for unauthenticated gateways; GitHub rejects anonymous GraphQL.
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// orgMembersQuery reads the first page of an organization's members.
type orgMembersQuery struct {
	Organization struct {
		MembersWithRole struct {
			Nodes []struct {
				Login string
			}
		} `graphql:"membersWithRole(first: 100)"`
	} `graphql:"organization(login: $org)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty token yields an unauthenticated gateway with the lower anonymous rate limit.
// Requests go through an ETag cache and the secondary rate limit waiter.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := newCachingTransport(nil)
	if err != nil {
		return nil, err
	}

	if token == "" {
		logger.Println("No token configured, using unauthenticated GitHub access.")
		return &GitHubGateway{
			restClient: github.NewClient(&http.Client{Transport: rateLimitWaiter}),
			logger:     logger,
		}, nil
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// newCachingTransport stacks the secondary rate limit waiter on an in-memory ETag
// cache over base (http.DefaultTransport when nil). Repeated reads of an unchanged
// resource are revalidated with If-None-Match, and GitHub does not count 304s
// against the rate limit.
func newCachingTransport(base http.RoundTripper) (http.RoundTripper, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	cacheTransport.Transport = base
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(cacheTransport, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	return rateLimitWaiter, nil
}

// ListOrgMembers returns the logins of the organization's members.
// Authenticated gateways use GraphQL, which also sees private memberships the token can read.
func (g *GitHubGateway) ListOrgMembers(ctx context.Context, org string) ([]string, error) {
	g.logger.Printf("Fetching members of %s...\n", org)
	if g.graphqlClient != nil {
		return g.listOrgMembersGraphQL(ctx, org)
	}

	opts := &github.ListMembersOptions{ListOptions: github.ListOptions{PerPage: pageSize}}
	users, _, err := g.restClient.Organizations.ListMembers(ctx, org, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of %s with REST API: %w", org, err)
	}
	logins := make([]string, 0, len(users))
	for _, u := range users {
		logins = append(logins, u.GetLogin())
	}
	return logins, nil
}

func (g *GitHubGateway) listOrgMembersGraphQL(ctx context.Context, org string) ([]string, error) {
	var q orgMembersQuery
	variables := map[string]interface{}{"org": githubv4.String(org)}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for members of %s: %w", org, err)
	}
	logins := make([]string, 0, len(q.Organization.MembersWithRole.Nodes))
	for _, node := range q.Organization.MembersWithRole.Nodes {
		logins = append(logins, node.Login)
	}
	return logins, nil
}

func (g *GitHubGateway) ListOrgRepos(ctx context.Context, org string) ([]domain.Repository, error) {
	g.logger.Printf("Fetching repositories of %s...\n", org)
	opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{PerPage: pageSize}}
	repos, _, err := g.restClient.Repositories.ListByOrg(ctx, org, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories of %s: %w", org, err)
	}
	result := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, domain.Repository{Name: r.GetName()})
	}
	g.logger.Printf("Found %d repositories in %s.\n", len(result), org)
	return result, nil
}

func (g *GitHubGateway) ListCommits(ctx context.Context, org, repo string, since time.Time) ([]domain.Commit, error) {
	opts := &github.CommitsListOptions{
		Since:       since,
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, org, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits for %s/%s: %w", org, repo, err)
	}
	result := make([]domain.Commit, 0, len(commits))
	for _, c := range commits {
		result = append(result, domain.Commit{
			URL:         c.GetHTMLURL(),
			Message:     c.GetCommit().GetMessage(),
			Author:      mapAccount(c.GetAuthor()),
			Committer:   mapAccount(c.GetCommitter()),
			AuthoredAt:  c.GetCommit().GetAuthor().GetDate().Time,
			CommittedAt: c.GetCommit().GetCommitter().GetDate().Time,
		})
	}
	g.logger.Printf("  %s/%s: %d commits\n", org, repo, len(result))
	return result, nil
}

func (g *GitHubGateway) ListPullRequestComments(ctx context.Context, org, repo string, since time.Time) ([]domain.Comment, error) {
	opts := &github.PullRequestListCommentsOptions{
		Since:       since,
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	// Pull request number 0 lists review comments across the whole repository.
	comments, _, err := g.restClient.PullRequests.ListComments(ctx, org, repo, 0, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull request comments for %s/%s: %w", org, repo, err)
	}
	result := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		result = append(result, domain.Comment{
			User:      accountOf(c.GetUser()),
			Body:      c.GetBody(),
			URL:       c.GetHTMLURL(),
			CreatedAt: c.GetCreatedAt().Time,
		})
	}
	g.logger.Printf("  %s/%s: %d pull request comments\n", org, repo, len(result))
	return result, nil
}

func (g *GitHubGateway) ListIssueComments(ctx context.Context, org, repo string, since time.Time) ([]domain.Comment, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: pageSize}}
	if !since.IsZero() {
		opts.Since = &since
	}
	// Issue number 0 lists comments across the whole repository.
	comments, _, err := g.restClient.Issues.ListComments(ctx, org, repo, 0, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list issue comments for %s/%s: %w", org, repo, err)
	}
	result := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		result = append(result, domain.Comment{
			User:      accountOf(c.GetUser()),
			Body:      c.GetBody(),
			URL:       c.GetHTMLURL(),
			CreatedAt: c.GetCreatedAt().Time,
		})
	}
	g.logger.Printf("  %s/%s: %d issue comments\n", org, repo, len(result))
	return result, nil
}

// mapAccount returns nil for commits whose git identity is not linked to a GitHub account.
func mapAccount(u *github.User) *domain.Account {
	if u.GetLogin() == "" {
		return nil
	}
	a := accountOf(u)
	return &a
}

func accountOf(u *github.User) domain.Account {
	return domain.Account{Login: u.GetLogin(), AvatarURL: u.GetAvatarURL()}
}
