package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joestump/joe-prompts/internal/placeholder"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <prompt-id|->",
		Short: "List a prompt's placeholders and report template problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body string
			if args[0] == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read template: %w", err)
				}
				body = string(b)
			} else {
				e, err := openEnv()
				if err != nil {
					return err
				}
				defer func() { _ = e.Close() }()

				ctx := commandContext(cmd)
				p, err := e.prompts.GetByID(ctx, args[0])
				if err != nil {
					return fmt.Errorf("prompt %q: %w", args[0], err)
				}
				body = p.Body
			}
			return writeCheck(cmd.OutOrStdout(), body)
		},
	}
}

// writeCheck prints the placeholder table followed by any warnings.
func writeCheck(w io.Writer, body string) error {
	phs := placeholder.Extract(body)
	if len(phs) == 0 {
		fmt.Fprintln(w, "no placeholders")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tKIND\tDEFAULT\tOPTIONS")
		for _, ph := range phs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				ph.Key, ph.Kind, oneLine(ph.DefaultValue), strings.Join(ph.Options[min(1, len(ph.Options)):], ", "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	warnings := placeholder.Validate(body)
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	_, err := fmt.Fprintf(w, "%d placeholder(s), %d warning(s)\n", len(phs), len(warnings))
	return err
}

// oneLine collapses a multi-line default so the table stays aligned.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	if r := []rune(s); len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return s
}
