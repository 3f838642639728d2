package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shellmind/internal/chat"
	"shellmind/internal/config"
)

func newSessionsCmd() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List or show saved session transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTranscripts()
			if err != nil {
				return err
			}
			ids, err := store.List()
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No saved sessions.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}

	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTranscripts()
			if err != nil {
				return err
			}
			tr, err := store.Load(args[0])
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s (%s, %s - %s)\n", tr.SessionID, tr.Model,
				tr.StartTime.Format("2006-01-02 15:04:05"), tr.EndTime.Format("15:04:05"))
			for _, turn := range tr.Turns {
				fmt.Fprintf(out, "[%s] %s\n", turn.Role, turn.Text)
			}
			return nil
		},
	})

	return sessionsCmd
}

func openTranscripts() (*chat.TranscriptStore, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Session.TranscriptDir == "" {
		return nil, errors.New("no transcript directory configured")
	}
	return chat.NewTranscriptStore(cfg.Session.TranscriptDir)
}
