package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shellmind/internal/app"
	"shellmind/internal/config"
	"shellmind/internal/logging"
)

var (
	version = "0.1.0"
	cfgFile string
	model   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shellmind",
		Short: "AI assistant that turns requests into shell commands",
		Long: `Shellmind turns natural-language requests into shell commands, tool calls
or plain answers. Every command and every state-changing tool call is shown
for confirmation before it runs.`,
		SilenceUsage: true,
		RunE:         runApp,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/shellmind/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model to use (default is "+config.DefaultModel+")")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shellmind version %s\n", version)
		},
	})
	rootCmd.AddCommand(newConfigCmd(), newPromptCmd(), newSessionsCmd())

	return rootCmd
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if model != "" {
		cfg.Model.Name = model
	}
	cfg.Version = version

	if cfg.Logging.File {
		if err := logging.EnableFileLogging(config.ConfigDir(), logging.ParseLevel(cfg.Logging.Level)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging not available: %v\n", err)
		}
	}
	return cfg, nil
}

func runApp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	// SIGINT is handled per turn by the session.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, workDir)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return application.Run(ctx)
}

func newPromptCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Send a single request and print the raw reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logging.Close()

			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Prompt(ctx, cfg, text, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "request text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
