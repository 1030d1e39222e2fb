package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dayflow/internal/history"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Review your day with an AI-written summary",
	Long: `Summarize today's focus history: what you accomplished, what stood
out, and suggestions for tomorrow. The summary is stored alongside your
focus history.

Example:
  dayflow summarize
  dayflow summarize --date 2026-08-30`,
	RunE: runSummarize,
}

var summarizeDate string

func init() {
	summarizeCmd.Flags().StringVar(&summarizeDate, "date", "", "Day to summarize (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	date := summarizeDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	histStore, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = histStore.Close() }()

	runs, err := histStore.RunsForDate(date)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("No focus history for %s yet. Finish a task with 'dayflow focus' first.\n", date)
		return nil
	}

	stats, err := histStore.StatsForDate(date)
	if err != nil {
		return err
	}

	client, transformer, err := newTransformer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	summary, err := transformer.SummarizeDay(ctx, buildActivities(runs))
	if err != nil {
		return err
	}

	if err := histStore.SaveSummary(date, summary); err != nil {
		logger.Warn("failed to save day summary", "date", date, "error", err)
	}

	fmt.Printf("\n%s: %d completed, %d skipped, %s focused\n",
		date, stats.Completed, stats.Skipped, schedule.FormatCountdown(stats.FocusedSeconds))

	printSection("Accomplishments", summary.Accomplishments)
	printSection("Learnings", summary.Learnings)
	printSection("For tomorrow", summary.Suggestions)
	return nil
}

// buildActivities renders the day's runs as the plain-text activity log the
// summarizer expects.
func buildActivities(runs []history.FocusRun) string {
	var b strings.Builder
	for _, run := range runs {
		switch run.Status {
		case history.RunCompleted:
			fmt.Fprintf(&b, "Completed %q (scheduled %s, focused %s of %s).\n",
				run.Task, run.ScheduledTime,
				schedule.FormatCountdown(run.FocusedSeconds),
				schedule.FormatCountdown(run.DurationSeconds))
		case history.RunSkipped:
			fmt.Fprintf(&b, "Skipped %q (scheduled %s).\n", run.Task, run.ScheduledTime)
		}
	}
	return b.String()
}

func printSection(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}
