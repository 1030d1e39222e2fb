// Package cmd implements the dayflow CLI.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dayflow",
	Short: "Natural-language daily planning and focus timer",
	Long: `dayflow turns a plain-language description of your day into a
structured, timed schedule using an AI provider, then walks you through it
one focused task at a time.

Describe your day, answer any clarifying questions, and start the timer:

  dayflow plan "standup at 9:30, deep work until lunch, gym at 6"
  dayflow focus
  dayflow summarize`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
