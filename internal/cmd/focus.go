package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dayflow/internal/history"
	"github.com/felixgeelhaar/dayflow/internal/tui"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Work through your schedule with a focus timer",
	Long: `Start the interactive focus session for today's schedule. Each task
runs on a countdown timer; pause, complete early, or skip as your day
actually unfolds. Finished tasks are recorded in your focus history.

Keys:
  s / enter   start the pending task (or resume when paused)
  space       pause / resume
  c           complete the current task
  k           skip the current task
  q           quit (progress is saved)`,
	RunE: runFocus,
}

func init() {
	rootCmd.AddCommand(focusCmd)
}

func runFocus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	machine, err := newMachine(cfg, logger)
	if err != nil {
		return err
	}

	histStore, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = histStore.Close() }()

	model := tui.NewFocusModel(machine, tui.WithRunRecorder(func(run history.FocusRun) {
		if recErr := histStore.RecordRun(&run); recErr != nil {
			logger.Warn("failed to record focus run", "task", run.Task, "error", recErr)
		}
	}))

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("focus session: %w", err)
	}
	return nil
}
