package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContributionType_Valid(t *testing.T) {
	for _, typ := range ContributionTypes {
		assert.True(t, typ.Valid(), string(typ))
	}
	assert.False(t, ContributionType("review").Valid())
	assert.False(t, ContributionType("").Valid())
}

func TestSortContributions(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	cs := []Contribution{
		{Repo: "beta", URL: "b2", Date: t2},
		{Repo: "Beta", URL: "b1", Date: t1},
		{Repo: "alpha", URL: "a-tie-1", Date: t2},
		{Repo: "Alpha", URL: "a-early", Date: t1},
		{Repo: "ALPHA", URL: "a-tie-2", Date: t2},
	}
	SortContributions(cs)

	var urls []string
	for _, c := range cs {
		urls = append(urls, c.URL)
	}
	assert.Equal(t, []string{"a-early", "a-tie-1", "a-tie-2", "b1", "b2"}, urls)
}
