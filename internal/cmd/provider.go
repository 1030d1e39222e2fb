package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dayflow/internal/config"
	"github.com/felixgeelhaar/dayflow/internal/provider"
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage the AI provider",
	Long: `Inspect and switch the AI provider dayflow uses to build schedules.
Supported providers: anthropic, openai, gemini. API keys come from
<NAME>_API_KEY environment variables unless set in the config file.`,
}

var providerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client, err := provider.New(cfg.Provider)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		info := client.Info()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Provider:\t%s\n", info.Name)     //nolint:errcheck
		fmt.Fprintf(w, "Model:\t%s\n", info.Model)       //nolint:errcheck
		fmt.Fprintf(w, "Endpoint:\t%s\n", info.Endpoint) //nolint:errcheck
		configured := "no (set " + apiKeyEnvVar(info.Name) + ")"
		if client.IsAvailable() {
			configured = "yes"
		}
		fmt.Fprintf(w, "API key:\t%s\n", configured) //nolint:errcheck
		w.Flush()                                    //nolint:errcheck

		return nil
	},
}

var providerHealthCmd = &cobra.Command{
	Use:     "health",
	Aliases: []string{"doctor"},
	Short:   "Check connectivity for every supported provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		registry := provider.NewRegistry()
		defer func() { _ = registry.CloseAll() }()

		for _, name := range provider.Supported() {
			settings := provider.Settings{Name: name}
			if name == cfg.Provider.Name {
				settings = cfg.Provider
			}
			client, err := provider.New(settings)
			if err != nil {
				return err
			}
			if err := registry.Register(name, client); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		// The command fails only when the configured provider is unhealthy;
		// the others are reported for information.
		var configuredErr error
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		for _, name := range registry.List() {
			client, err := registry.Get(name)
			if err != nil {
				return err
			}

			label := name
			if name == cfg.Provider.Name {
				label += " (configured)"
			}

			switch {
			case !client.IsAvailable():
				fmt.Fprintf(w, "%s\tno API key (set %s)\n", label, apiKeyEnvVar(name)) //nolint:errcheck
			default:
				if healthErr := client.Health(ctx); healthErr != nil {
					fmt.Fprintf(w, "%s\tUNHEALTHY: %v\n", label, healthErr) //nolint:errcheck
					if name == cfg.Provider.Name {
						configuredErr = healthErr
					}
					break
				}
				fmt.Fprintf(w, "%s\thealthy (%s)\n", label, client.Info().Model) //nolint:errcheck
			}
		}
		w.Flush() //nolint:errcheck

		return configuredErr
	},
}

var providerUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to a different provider",
	Long: `Switch the configured provider and persist the choice to the config
file. Supported: anthropic, openai, gemini.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		dir, err := config.Dir()
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}

		cfg.Provider.Name = name
		cfg.Provider.Model = "" // back to the provider default

		// Fail fast on unknown names before persisting
		client, err := provider.New(cfg.Provider)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		if err := config.Write(dir, cfg); err != nil {
			return err
		}

		fmt.Printf("✓ Switched provider to %s (%s)\n", name, client.Info().Model)
		if !client.IsAvailable() {
			fmt.Printf("  Note: %s is not set; schedule generation will fail until it is.\n", apiKeyEnvVar(name))
		}
		return nil
	},
}

func apiKeyEnvVar(providerName string) string {
	switch providerName {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "the provider API key"
	}
}

func init() {
	rootCmd.AddCommand(providerCmd)

	providerCmd.AddCommand(providerShowCmd)
	providerCmd.AddCommand(providerHealthCmd)
	providerCmd.AddCommand(providerUseCmd)
}
