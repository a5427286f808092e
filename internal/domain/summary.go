package domain

// ContributorCount holds the number of contributions made by one account.
type ContributorCount struct {
	Contributor string `json:"contributor"`
	Count       int    `json:"count"`
}

// Summary condenses a list of contributions into per-contributor and per-type counts.
type Summary struct {
	Total              int                      `json:"total"`
	ByType             map[ContributionType]int `json:"by_type"`
	ByContributor      []ContributorCount       `json:"by_contributor"`
	MeanPerContributor float64                  `json:"mean_per_contributor"`
	// MedianPerContributor is zero when there are no contributions.
	MedianPerContributor float64 `json:"median_per_contributor"`
}
