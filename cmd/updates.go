package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/naka-gawa/github-contribs/internal/config"
	"github.com/naka-gawa/github-contribs/internal/gateway"
	"github.com/naka-gawa/github-contribs/internal/usecase"
	"github.com/spf13/cobra"
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Lists recent contributions of allow-listed accounts to an organization",
	Long: `Lists commits, pull request comments and issue comments made since a cutoff
by allow-listed accounts in every repository of an organization, sorted by
repository and date.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		configPath, _ := cmd.InheritedFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		applyFlagOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		org, _ := cmd.Flags().GetString("org")
		sinceStr, _ := cmd.Flags().GetString("since")
		format, _ := cmd.Flags().GetString("format")
		summary, _ := cmd.Flags().GetBool("summary")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		since, err := parseSince(sinceStr, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --since value. Use RFC 3339, YYYY-MM-DD or a duration like 72h. Error: %v\n", err)
			os.Exit(1)
		}
		if format != formatJSON && format != formatTable {
			fmt.Fprintf(os.Stderr, "Invalid --format %q. Use %q or %q.\n", format, formatJSON, formatTable)
			os.Exit(1)
		}

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(cfg.Token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		aggregator, err := usecase.NewAggregator(githubGateway, usecase.Options{
			Accounts:     cfg.Accounts,
			ReferenceOrg: cfg.ReferenceOrg,
			Concurrency:  cfg.Concurrency,
		}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create aggregator: %v\n", err)
			os.Exit(1)
		}

		logger.Printf("Listing contributions to %s since %s\n", org, since.Format(time.RFC3339))
		contributions, err := aggregator.Aggregate(ctx, org, since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate contributions: %v\n", err)
			os.Exit(1)
		}

		if summary {
			err = renderSummary(os.Stdout, format, usecase.Summarize(contributions))
		} else {
			err = renderContributions(os.Stdout, format, contributions)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			os.Exit(1)
		}
	},
}

// applyFlagOverrides lets explicitly set flags win over file and environment configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("accounts") {
		v, _ := cmd.Flags().GetString("accounts")
		cfg.Accounts = config.SplitList(v)
	}
	if cmd.Flags().Changed("reference-org") {
		cfg.ReferenceOrg, _ = cmd.Flags().GetString("reference-org")
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
}

// parseSince accepts an RFC 3339 timestamp, a YYYY-MM-DD date (UTC) or a
// duration counted back from now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, err
	}
	if d < 0 {
		return time.Time{}, fmt.Errorf("duration %s must not be negative", s)
	}
	return now.Add(-d), nil
}

func init() {
	rootCmd.AddCommand(updatesCmd)
	updatesCmd.Flags().StringP("org", "o", "", "Target GitHub organization name (required)")
	updatesCmd.MarkFlagRequired("org")
	updatesCmd.Flags().StringP("since", "s", "168h", "Cutoff as RFC 3339, YYYY-MM-DD or a duration before now")
	updatesCmd.Flags().StringP("format", "f", formatJSON, "Output format: json or table")
	updatesCmd.Flags().Bool("summary", false, "Print per-contributor counts instead of individual contributions")
	updatesCmd.Flags().Duration("timeout", 0, "Abort the aggregation after this long (0 disables)")
	updatesCmd.Flags().String("accounts", "", "Comma separated allow-listed accounts (overrides configuration)")
	updatesCmd.Flags().String("reference-org", "", "Organization whose members are allow-listed (overrides configuration)")
	updatesCmd.Flags().Int("concurrency", 0, "Maximum number of in-flight API requests (0 is unbounded)")
}
