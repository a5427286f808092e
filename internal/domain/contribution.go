// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrNoAccounts is returned when an aggregator is built without an allow-list.
var ErrNoAccounts = errors.New("allow-listed accounts must be provided")

// ContributionType tags the kind of activity a Contribution records.
type ContributionType string

const (
	CommitAuthor    ContributionType = "commit-author"
	CommitCommitter ContributionType = "commit-committer"
	PRComment       ContributionType = "pr-comment"
	IssueComment    ContributionType = "issue-comment"
)

// ContributionTypes lists every contribution type in display order.
var ContributionTypes = []ContributionType{CommitAuthor, CommitCommitter, PRComment, IssueComment}

// Valid reports whether t is one of the known contribution types.
func (t ContributionType) Valid() bool {
	switch t {
	case CommitAuthor, CommitCommitter, PRComment, IssueComment:
		return true
	}
	return false
}

// Contribution is a single unit of activity attributed to an allow-listed account.
// It is the core domain entity of this application.
type Contribution struct {
	Type             ContributionType `json:"type"`
	Contributor      string           `json:"contributor"`
	ContributorImage string           `json:"contributor_image"`
	Repo             string           `json:"repo"`
	Message          string           `json:"message"`
	URL              string           `json:"url"`
	Date             time.Time        `json:"date"`
}

// Account is a GitHub user as seen on commits and comments.
type Account struct {
	Login     string
	AvatarURL string
}

// Repository is a repository of the target organization.
type Repository struct {
	Name string
}

// Commit is a listed commit. Author and Committer are nil when GitHub could
// not link the git identity to an account.
type Commit struct {
	URL         string
	Message     string
	Author      *Account
	Committer   *Account
	AuthoredAt  time.Time
	CommittedAt time.Time
}

// Comment is a pull request review comment or an issue comment.
type Comment struct {
	User      Account
	Body      string
	URL       string
	CreatedAt time.Time
}

// SortContributions orders contributions by repository name, case-insensitively,
// and then by date. Equal keys keep their relative order.
func SortContributions(cs []Contribution) {
	sort.SliceStable(cs, func(i, j int) bool {
		ri, rj := strings.ToLower(cs[i].Repo), strings.ToLower(cs[j].Repo)
		if ri != rj {
			return ri < rj
		}
		return cs[i].Date.Before(cs[j].Date)
	})
}
