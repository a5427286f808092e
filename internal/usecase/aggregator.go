// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/naka-gawa/github-contribs/internal/domain"
	"github.com/naka-gawa/github-contribs/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// Options configures an Aggregator.
type Options struct {
	// Accounts is the configured allow-list. It must not be nil.
	Accounts []string
	// ReferenceOrg's members are merged into Accounts. Empty disables the lookup.
	ReferenceOrg string
	// Concurrency bounds the number of in-flight fetches. Zero means unbounded.
	Concurrency int
}

// Aggregator is the use case for aggregating contributions of allow-listed accounts.
// It orchestrates the fetching, filtering and combining of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	opts    Options
	logger  *log.Logger

	allowMu sync.Mutex
	// allowWait is closed when the in-flight lookup finishes.
	allowWait     chan struct{}
	allowResolved bool
	allowList     domain.AllowList
	allowErr      error
}

// NewAggregator creates a new Aggregator instance.
// It fails with domain.ErrNoAccounts when no allow-list is configured.
func NewAggregator(fetcher gateway.Fetcher, opts Options, logger *log.Logger) (*Aggregator, error) {
	if opts.Accounts == nil {
		return nil, domain.ErrNoAccounts
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must not be negative, got %d", opts.Concurrency)
	}
	return &Aggregator{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger,
	}, nil
}

// allowed resolves the allow-list at most once per Aggregator. Concurrent callers
// share the in-flight lookup and give up when their own ctx is done. A failed
// lookup is remembered unless it failed because the caller's context ended.
func (a *Aggregator) allowed(ctx context.Context) (domain.AllowList, error) {
	for {
		a.allowMu.Lock()
		if a.allowResolved {
			list, err := a.allowList, a.allowErr
			a.allowMu.Unlock()
			return list, err
		}
		if wait := a.allowWait; wait != nil {
			a.allowMu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		wait := make(chan struct{})
		a.allowWait = wait
		a.allowMu.Unlock()

		list, err := a.resolveAllowList(ctx)

		a.allowMu.Lock()
		if isContextErr(err) {
			// Let the next caller retry with its own context.
			a.allowWait = nil
		} else {
			a.allowList, a.allowErr, a.allowResolved = list, err, true
		}
		close(wait)
		a.allowMu.Unlock()
		return list, err
	}
}

func (a *Aggregator) resolveAllowList(ctx context.Context) (domain.AllowList, error) {
	if a.opts.ReferenceOrg == "" {
		return domain.NewAllowList(a.opts.Accounts), nil
	}
	members, err := a.fetcher.ListOrgMembers(ctx, a.opts.ReferenceOrg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve members of %s: %w", a.opts.ReferenceOrg, err)
	}
	list := domain.NewAllowList(a.opts.Accounts, members)
	a.logger.Printf("Usecase: Allow-list resolved with %d accounts.\n", len(list))
	return list, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Aggregate performs the main business logic.
// It lists every repository of org, fetches commits and comments made since the
// given time concurrently, keeps only allow-listed activity and returns it sorted
// by repository name and date. Any failed fetch fails the whole call.
func (a *Aggregator) Aggregate(ctx context.Context, org string, since time.Time) ([]domain.Contribution, error) {
	a.logger.Println("Usecase: Starting data aggregation...")

	allow, err := a.allowed(ctx)
	if err != nil {
		return nil, err
	}

	repos, err := a.fetcher.ListOrgRepos(ctx, org)
	if err != nil {
		return nil, err
	}

	// Each fetch owns one slot, so goroutines never share a slice.
	const fetchesPerRepo = 3
	results := make([][]domain.Contribution, len(repos)*fetchesPerRepo)

	// Use an errgroup to fetch all data concurrently.
	eg, egCtx := errgroup.WithContext(ctx)
	if a.opts.Concurrency > 0 {
		eg.SetLimit(a.opts.Concurrency)
	}

	for i, repo := range repos {
		slot := results[i*fetchesPerRepo : (i+1)*fetchesPerRepo]
		name := repo.Name

		eg.Go(func() error {
			commits, err := a.fetcher.ListCommits(egCtx, org, name, since)
			if err != nil {
				return err
			}
			slot[0] = commitContributions(commits, name, allow)
			return nil
		})

		eg.Go(func() error {
			comments, err := a.fetcher.ListPullRequestComments(egCtx, org, name, since)
			if err != nil {
				return err
			}
			slot[1] = commentContributions(comments, domain.PRComment, name, allow)
			return nil
		})

		eg.Go(func() error {
			comments, err := a.fetcher.ListIssueComments(egCtx, org, name, since)
			if err != nil {
				return err
			}
			slot[2] = commentContributions(comments, domain.IssueComment, name, allow)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.logger.Println("Usecase: All data fetched successfully.")

	contributions := make([]domain.Contribution, 0)
	for _, r := range results {
		contributions = append(contributions, r...)
	}
	domain.SortContributions(contributions)

	a.logger.Printf("Usecase: Aggregation complete, %d contributions.\n", len(contributions))
	return contributions, nil
}

// commitContributions keeps commits authored or committed by allow-listed accounts.
// A commit already reported for its author is not reported again for its committer.
func commitContributions(commits []domain.Commit, repo string, allow domain.AllowList) []domain.Contribution {
	var out []domain.Contribution
	authored := make(map[string]bool)

	for _, c := range commits {
		if c.Author == nil || !allow.Contains(c.Author.Login) {
			continue
		}
		out = append(out, domain.Contribution{
			Type:             domain.CommitAuthor,
			Contributor:      c.Author.Login,
			ContributorImage: c.Author.AvatarURL,
			Repo:             repo,
			Message:          c.Message,
			URL:              c.URL,
			Date:             c.AuthoredAt,
		})
		authored[c.URL] = true
	}

	for _, c := range commits {
		if c.Committer == nil || !allow.Contains(c.Committer.Login) || authored[c.URL] {
			continue
		}
		out = append(out, domain.Contribution{
			Type:             domain.CommitCommitter,
			Contributor:      c.Committer.Login,
			ContributorImage: c.Committer.AvatarURL,
			Repo:             repo,
			Message:          c.Message,
			URL:              c.URL,
			Date:             c.CommittedAt,
		})
	}
	return out
}

func commentContributions(comments []domain.Comment, typ domain.ContributionType, repo string, allow domain.AllowList) []domain.Contribution {
	var out []domain.Contribution
	for _, c := range comments {
		if !allow.Contains(c.User.Login) {
			continue
		}
		out = append(out, domain.Contribution{
			Type:             typ,
			Contributor:      c.User.Login,
			ContributorImage: c.User.AvatarURL,
			Repo:             repo,
			Message:          c.Body,
			URL:              c.URL,
			Date:             c.CreatedAt,
		})
	}
	return out
}
