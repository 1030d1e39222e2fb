package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dayflow/internal/clarify"
	"github.com/felixgeelhaar/dayflow/internal/log"
	"github.com/felixgeelhaar/dayflow/internal/planner"
	"github.com/felixgeelhaar/dayflow/internal/schedule"
	"github.com/felixgeelhaar/dayflow/internal/transcript"
)

var planCmd = &cobra.Command{
	Use:   "plan [description]",
	Short: "Turn a description of your day into a schedule",
	Long: `Describe your day in plain language and dayflow builds a timed
schedule for it. When the description is ambiguous, dayflow asks clarifying
questions one at a time before committing to a schedule.

Example:
  dayflow plan "standup at 9:30, two hours of deep work, gym at 6 for an hour"

  # Dictation mode: type lines as they come to you, finish with a blank line.
  # Task candidates appear as you go.
  dayflow plan --capture`,
	RunE: runPlan,
}

var planCapture bool

func init() {
	planCmd.Flags().BoolVar(&planCapture, "capture", false, "Build the plan line by line with live task extraction")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	plan := strings.TrimSpace(strings.Join(args, " "))
	if planCapture {
		plan, err = capturePlan(ctx, transformer, logger)
		if err != nil {
			return err
		}
	}
	if plan == "" {
		if err := promptForPlan(&plan); err != nil {
			return err
		}
	}

	controller := clarify.NewController(transformer, logger)
	currentDate := time.Now().Format("Monday, January 2, 2006")

	status, err := controller.Submit(ctx, plan, currentDate)
	if err != nil {
		return err
	}

	for status.Mode == clarify.AwaitingAnswer {
		answer, promptErr := promptForAnswer(status.Question)
		if promptErr != nil {
			return promptErr
		}

		status, err = controller.Answer(ctx, answer)
		if err != nil {
			return err
		}
	}

	machine, err := newMachine(cfg, logger)
	if err != nil {
		return err
	}
	if err := machine.Generate(status.Schedule); err != nil {
		return err
	}

	printSchedule(status.Schedule)
	fmt.Println("\nRun 'dayflow focus' to start your first task.")
	return nil
}

// capturePlan accumulates a plan line by line, echoing extracted task
// candidates as the provider spots them.
func capturePlan(ctx context.Context, transformer *planner.Transformer, logger *log.Logger) (string, error) {
	capture := transcript.NewCapture(ctx, transformer,
		transcript.WithLogger(logger),
		transcript.OnCandidates(printCandidates),
	)

	fmt.Println("Describe your day, one thought per line. Finish with a blank line.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		if err := capture.Append(line + " "); err != nil {
			return "", err
		}
	}
	if err := scanner.Err(); err != nil {
		capture.Cancel()
		return "", fmt.Errorf("reading input: %w", err)
	}

	return capture.Finalize()
}

func printCandidates(candidates []planner.TaskCandidate) {
	if len(candidates) == 0 {
		return
	}
	fmt.Println("  so far:")
	for _, c := range candidates {
		detail := ""
		if c.Time != "" {
			detail += " " + c.Time
		}
		if c.Duration != "" {
			detail += " (" + c.Duration + ")"
		}
		marker := "·"
		if c.Status == planner.CandidateNeedsInfo {
			marker = "?"
		}
		fmt.Printf("  %s %s%s\n", marker, c.Name, detail)
	}
}

func promptForPlan(plan *string) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("What does your day look like?").
			Description("Times, durations, and anything fixed. dayflow fills in the rest.").
			Value(plan).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("describe at least one thing you want to do")
				}
				return nil
			}),
	)).Run()
}

func promptForAnswer(question string) (string, error) {
	var answer string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(question).
			Value(&answer).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("an answer is required")
				}
				return nil
			}),
	)).Run()
	return answer, err
}

func printSchedule(events []schedule.Event) {
	fmt.Printf("\nYour schedule:\n\n")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIME\tTASK\tDURATION") //nolint:errcheck
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Time, e.Task, e.Duration) //nolint:errcheck
	}
	w.Flush() //nolint:errcheck
}
