package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pbaille/oniria/internal/domain"
	"github.com/pbaille/oniria/internal/filter"
	"github.com/pbaille/oniria/internal/printers"
)

// readDescription takes the flag value, or stdin when it is "-".
func readDescription(cmd *cobra.Command, v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read description: %w", err)
	}
	return string(data), nil
}

func addCmd() *cobra.Command {
	var description, date, emotion, symbol, tags string

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Record a new dream",
		Example: `
oniria add "Voo sobre o mar" -d "Eu voava baixo sobre as ondas" -e alegria -t "mar, voo"
echo "..." | oniria add "Casa antiga" -d -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := readDescription(cmd, description)
			if err != nil {
				return err
			}
			d := domain.Draft{
				Title:       strings.Join(args, " "),
				Description: desc,
				Emotion:     domain.Emotion(emotion),
				Symbol:      symbol,
				Tags:        domain.ParseTags(tags),
			}
			if date != "" {
				if d.Date, err = domain.ParseDate(date); err != nil {
					return err
				}
			}

			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			entry, err := e.svc.Create(cmdContext(cmd), d)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added dream: %s\n", shortID(entry.ID))
			printers.New().Entry(entry)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", `what happened in the dream ("-" reads stdin)`)
	cmd.Flags().StringVar(&date, "date", "", "dream date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&emotion, "emotion", "e", "", "emotion: paz, alegria, medo, tristeza, saudade, amor, ansiedade, confusao (default paz)")
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "symbol glyph (default the emotion icon)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "comma-separated tags")
	return cmd
}

func listCmd() *cobra.Command {
	var (
		c      filter.Criteria
		emo    string
		byDate bool
		full   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dreams, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			c.Emotion = domain.Emotion(emo)
			dreams := e.svc.List(c, byDate)

			if len(dreams) == 0 && c.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "No dreams yet. Use 'oniria add' to record one.")
				return nil
			}

			pp := printers.New()
			pp.FullIDs = full
			pp.TitleWithCount("Sonhos", len(dreams))
			pp.List(dreams)
			return nil
		},
	}

	cmd.Flags().StringVarP(&c.Keyword, "keyword", "k", "", "match title, description or tags")
	cmd.Flags().StringVarP(&c.Tag, "tag", "t", "", "match the tag list")
	cmd.Flags().StringVarP(&emo, "emotion", "e", "", "exact emotion")
	cmd.Flags().BoolVar(&byDate, "by-date", false, "order by dream date instead of creation")
	cmd.Flags().BoolVar(&full, "full-ids", false, "print whole ids")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a dream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			entry, err := e.svc.Get(args[0])
			if err != nil {
				return err
			}
			printers.New().Entry(entry)
			return nil
		},
	}
}

func editCmd() *cobra.Command {
	var title, description, date, emotion, symbol, tags string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change fields of a dream",
		Example: `
oniria edit 0192f3a4 --emotion saudade --tags "casa, infância"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p domain.Patch
			f := cmd.Flags()
			if f.Changed("title") {
				p.Title = &title
			}
			if f.Changed("description") {
				desc, err := readDescription(cmd, description)
				if err != nil {
					return err
				}
				p.Description = &desc
			}
			if f.Changed("date") {
				d, err := domain.ParseDate(date)
				if err != nil {
					return err
				}
				p.Date = &d
			}
			if f.Changed("emotion") {
				em := domain.Emotion(emotion)
				p.Emotion = &em
			}
			if f.Changed("symbol") {
				p.Symbol = &symbol
			}
			if f.Changed("tags") {
				t := domain.ParseTags(tags)
				p.Tags = &t
			}
			if p.Empty() {
				return fmt.Errorf("nothing to change, pass at least one field flag")
			}

			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			target, err := e.svc.Get(args[0])
			if err != nil {
				return err
			}
			entry, err := e.svc.Edit(cmdContext(cmd), target.ID, p)
			if err != nil {
				return err
			}
			printers.New().Entry(entry)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", `new description ("-" reads stdin)`)
	cmd.Flags().StringVar(&date, "date", "", "new date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&emotion, "emotion", "e", "", "new emotion")
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "new symbol (empty follows the emotion)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "replace tags, comma-separated")
	return cmd
}

func rmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a dream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			entry, err := e.svc.Get(args[0])
			if err != nil {
				return err
			}

			if !yes && isatty.IsTerminal(os.Stdin.Fd()) {
				fmt.Fprintf(cmd.OutOrStdout(), "Tem certeza que deseja excluir %q? [s/N] ", entry.Title)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(answer)) {
				case "s", "sim", "y", "yes":
				default:
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := e.svc.Delete(cmdContext(cmd), entry.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted dream: %s\n", shortID(entry.ID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func randomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Show a random dream",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			entry, err := e.svc.Random()
			if err != nil {
				return err
			}
			printers.New().Entry(entry)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show emotion, symbol and monthly statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := getEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			printers.New().Stats(e.svc.Stats())
			return nil
		},
	}
}
