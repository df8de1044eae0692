package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"

	"github.com/pbaille/oniria/internal/api"
	"github.com/pbaille/oniria/internal/app"
	"github.com/pbaille/oniria/internal/export"
)

func exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every dream to a backup or diary file",
		Example: `
oniria export                 # oniria_backup_YYYYMMDD.json in the current directory
oniria export -f txt -o -     # plain-text diary on stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			data, name, err := e.svc.Export(f)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = name
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported dreams to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, txt, yaml or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file ("-" for stdout, default a dated name)`)
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Merge dreams from a JSON or YAML backup (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.svc.Import(cmdContext(cmd), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d dreams\n", n)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			session := app.NewSession(e.svc)
			if e.warning != nil {
				session.Notify("Erro ao carregar sonhos.")
			}

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.New(e.svc, session, e.cfg.Addr, e.log.With().Str("component", "api").Logger())
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringP("addr", "a", "", "server address (default 127.0.0.1:8080)")
	return cmd
}

func versionCmd() *cobra.Command {
	shortened := false
	output := "json"

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the oniria version",
		Run: func(cmd *cobra.Command, _ []string) {
			resp := goversion.FuncWithOutput(shortened, version, commit, date, output)
			fmt.Fprint(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format. One of 'yaml' or 'json'.")
	return cmd
}

// Set by the linker.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
