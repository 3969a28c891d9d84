package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joestump/joe-prompts/internal/placeholder"
)

func newFillCmd() *cobra.Command {
	var (
		sets    []string
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "fill <prompt-id|->",
		Short: "Fill a prompt's placeholders and print the result",
		Long: "Fill substitutes --set values into a stored prompt, or into a template read\n" +
			"from stdin when the argument is \"-\". Placeholders without a value use their\n" +
			"default. With --preview, unfilled placeholders show their quoted key instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseSets(sets)
			if err != nil {
				return err
			}

			render := placeholder.Fill
			if preview {
				render = placeholder.Preview
			}

			if args[0] == "-" {
				body, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read template: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSuffix(render(string(body), values), "\n"))
				return err
			}

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
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), render(p.Body, values)); err != nil {
				return err
			}
			if !preview {
				if _, err := e.prompts.MarkUsed(ctx, p.ID); err != nil {
					e.log.Warn("mark prompt used", "id", p.ID, "error", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "placeholder value as key=value (repeatable)")
	cmd.Flags().BoolVar(&preview, "preview", false, "show unfilled placeholders as their quoted key")
	return cmd
}

// parseSets turns repeated key=value flags into a value map. Keys are
// trimmed to match how placeholder keys are parsed; values are kept as given.
// A later flag for the same key wins.
func parseSets(sets []string) (map[string]string, error) {
	values := make(map[string]string, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", s)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid --set %q: empty key", s)
		}
		values[key] = value
	}
	return values, nil
}
