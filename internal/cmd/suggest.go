package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <goal>",
	Short: "Break a goal into suggested tasks and routines",
	Long: `Ask the AI to break a goal down into schedulable pieces: one-off
tasks, short flows of related tasks, and recurring routines.

Example:
  dayflow suggest "write a novel"
  dayflow suggest get in shape before summer`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	client, transformer, err := newTransformer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	goal := strings.Join(args, " ")
	suggestions, err := transformer.SuggestTasksFromGoal(cmd.Context(), goal)
	if err != nil {
		return err
	}

	printSection("Tasks", suggestions.SuggestedTasks)
	printSection("Flows", suggestions.SuggestedFlows)
	printSection("Routines", suggestions.SuggestedRoutines)
	return nil
}
