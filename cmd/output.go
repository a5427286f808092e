package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/naka-gawa/github-contribs/internal/domain"
	"github.com/olekukonko/tablewriter"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// messageWidth caps commit messages and comment bodies in table output.
const messageWidth = 60

func renderContributions(w io.Writer, format string, contributions []domain.Contribution) error {
	if format == formatJSON {
		return writeJSON(w, contributions)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Repo", "Date", "Type", "Contributor", "Message", "URL"})
	table.SetAutoWrapText(false)
	for _, c := range contributions {
		table.Append([]string{
			c.Repo,
			c.Date.UTC().Format(time.RFC3339),
			string(c.Type),
			c.Contributor,
			firstLine(c.Message, messageWidth),
			c.URL,
		})
	}
	table.Render()
	return nil
}

func renderSummary(w io.Writer, format string, summary domain.Summary) error {
	if format == formatJSON {
		return writeJSON(w, summary)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Contributor", "Contributions"})
	for _, c := range summary.ByContributor {
		table.Append([]string{c.Contributor, strconv.Itoa(c.Count)})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(summary.Total)})
	table.Render()

	byType := tablewriter.NewWriter(w)
	byType.SetHeader([]string{"Type", "Contributions"})
	for _, typ := range domain.ContributionTypes {
		byType.Append([]string{string(typ), strconv.Itoa(summary.ByType[typ])})
	}
	byType.Render()

	fmt.Fprintf(w, "Mean per contributor: %.2f, median: %.2f\n", summary.MeanPerContributor, summary.MedianPerContributor)
	return nil
}

// writeJSON writes v as pretty-printed JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// firstLine returns the first line of s, truncated to width runes.
func firstLine(s string, width int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return s
}
