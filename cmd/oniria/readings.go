package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbaille/oniria/internal/app"
	"github.com/pbaille/oniria/internal/interpret"
	"github.com/pbaille/oniria/internal/printers"
)

func narrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "narrate [id]",
		Short: "Write a poetic reading of a dream from its symbol and emotion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			r, err := e.svc.Narrate(args[0])
			if err != nil {
				return err
			}
			printers.New().Narrative(r.Text, "")
			return nil
		},
	}
}

func interpretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interpret [id]",
		Short: "Ask Gemini to interpret a dream (local reading without an API key)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			r, err := e.svc.Interpret(cmdContext(cmd), args[0])
			if errors.Is(err, interpret.ErrUnavailable) {
				fmt.Fprintln(cmd.ErrOrStderr(), interpret.FailureMessage)
				return err
			}
			if err != nil {
				return err
			}

			source := "Gemini"
			if r.Source == app.SourceLocal {
				source = "leitura local"
			}
			printers.New().Narrative(r.Text, source)
			return nil
		},
	}
}

func similarCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "similar [id]",
		Short: "List dreams that share the most words with a dream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			matches, err := e.svc.Related(args[0], n)
			if err != nil {
				return err
			}
			printers.New().Related(matches)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "limit", "n", 5, "number of dreams to show")
	return cmd
}
