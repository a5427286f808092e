package usecase

import (
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/github-contribs/internal/domain"
)

// Summarize counts contributions per type and per contributor. Contributors are
// ordered by descending count, then by login.
func Summarize(contributions []domain.Contribution) domain.Summary {
	summary := domain.Summary{
		Total:         len(contributions),
		ByType:        make(map[domain.ContributionType]int),
		ByContributor: []domain.ContributorCount{},
	}

	perContributor := make(map[string]int)
	for _, c := range contributions {
		summary.ByType[c.Type]++
		perContributor[c.Contributor]++
	}
	if len(perContributor) == 0 {
		return summary
	}

	counts := make(stats.Float64Data, 0, len(perContributor))
	for login, n := range perContributor {
		summary.ByContributor = append(summary.ByContributor, domain.ContributorCount{Contributor: login, Count: n})
		counts = append(counts, float64(n))
	}
	sort.Slice(summary.ByContributor, func(i, j int) bool {
		a, b := summary.ByContributor[i], summary.ByContributor[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Contributor < b.Contributor
	})

	// counts is non-empty here, so neither call can fail.
	summary.MeanPerContributor, _ = counts.Mean()
	summary.MedianPerContributor, _ = counts.Median()
	return summary
}
