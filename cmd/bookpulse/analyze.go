package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spacesedan/bookpulse/internal/models"
	"github.com/spf13/cobra"
)

var (
	flagLimit         int
	flagQualityFilter bool
	flagRequireMatch  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <query>",
	Short: "Analyze sentiment for a book or author once and print the summary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&flagLimit, "limit", 0, "maximum number of posts to fetch (default from BOOKPULSE_FETCH_LIMIT)")
	analyzeCmd.Flags().BoolVar(&flagQualityFilter, "quality-filter", false, "drop low-quality posts before summarizing")
	analyzeCmd.Flags().BoolVar(&flagRequireMatch, "require-match", false, "keep only posts that mention the query")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if flagLimit > 0 {
		cfg.Pipeline.FetchLimit = flagLimit
	}
	if cmd.Flags().Changed("quality-filter") {
		cfg.Pipeline.QualityFilter = flagQualityFilter
	}
	if cmd.Flags().Changed("require-match") {
		cfg.Pipeline.RequireQueryMatch = flagRequireMatch
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.close()

	query := strings.Join(args, " ")
	result, err := p.analyzer.Analyze(cmd.Context(), query)
	if err != nil {
		if result.Error != "" {
			return fmt.Errorf("%s: %w", result.Error, err)
		}
		return err
	}

	printResult(cmd.OutOrStdout(), result, time.Now())
	return nil
}

func printResult(w io.Writer, result models.AnalysisResult, now time.Time) {
	if !result.Success {
		fmt.Fprintln(w, result.Message)
		return
	}

	fmt.Fprintf(w, "Sentiment for %q: %s\n", result.Query, result.Summary)
	fmt.Fprintf(w, "Posts analyzed: %s   Average sentiment: %.3f\n",
		humanize.Comma(int64(result.PostCount)), result.AverageSentiment)
	if result.Filtered > 0 {
		fmt.Fprintf(w, "Filtered as low quality: %s\n", humanize.Comma(int64(result.Filtered)))
	}
	fmt.Fprintf(w, "Distribution: positive %d, negative %d, neutral %d\n",
		result.SentimentDistribution[models.CategoryPositive],
		result.SentimentDistribution[models.CategoryNegative],
		result.SentimentDistribution[models.CategoryNeutral])

	if result.Trend != nil {
		if result.Trend.CurrentSentiment != nil {
			fmt.Fprintf(w, "Trend: %s (current %.3f)\n", result.Trend.Label, *result.Trend.CurrentSentiment)
		} else {
			fmt.Fprintf(w, "Trend: %s\n", result.Trend.Label)
		}
	}
	if result.Partial {
		fmt.Fprintln(w, "Note: Reddit stopped responding mid-search, results are incomplete.")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top posts:")
	for i, post := range result.TopPosts {
		age := "unknown date"
		if !post.CreatedAt.IsZero() {
			age = humanize.RelTime(post.CreatedAt, now, "ago", "from now")
		}
		fmt.Fprintf(w, "%2d. %s\n", i+1, post.Title)
		fmt.Fprintf(w, "    score %s, sentiment %.3f, %s, r/%s\n",
			humanize.Comma(int64(post.Popularity)), post.Sentiment, age, post.SourceGroup)
		fmt.Fprintf(w, "    %s\n", post.URL)
	}
}
