package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"shellmind/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(config.SettableKeys, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], cfg.Path())
			return nil
		},
	})

	return configCmd
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Config file:    %s\n", cfg.Path())
	fmt.Fprintf(w, "API key:        %s\n", cfg.MaskedKey())
	fmt.Fprintf(w, "API type:       %s\n", cfg.API.Type)
	fmt.Fprintf(w, "API host:       %s\n", cfg.API.Host)
	fmt.Fprintf(w, "gRPC endpoint:  %s\n", cfg.API.GRPCEndpoint)
	fmt.Fprintf(w, "Ollama host:    %s\n", cfg.API.OllamaHost)
	fmt.Fprintf(w, "Model:          %s\n", cfg.Model.Name)
	fmt.Fprintf(w, "Temperature:    %.2f\n", cfg.Model.Temperature)
	fmt.Fprintf(w, "System prompt:  %s\n", cfg.Model.SystemPrompt)
	fmt.Fprintf(w, "Allowed:        %d command(s)\n", len(cfg.Permission.AllowedCommands))
	fmt.Fprintf(w, "Log level:      %s\n", cfg.Logging.Level)
}
