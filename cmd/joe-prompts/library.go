package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joestump/joe-prompts/internal/library"
)

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every prompt to a YAML library file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			n, err := library.Export(commandContext(cmd), e.prompts, w)
			if err != nil {
				return err
			}
			e.log.Info("exported prompts", "count", n, "out", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Load prompts from a YAML library file",
		Long: "Import creates prompts whose title does not exist yet. Existing titles are\n" +
			"skipped unless --overwrite is given, in which case the old content is kept\n" +
			"as a version.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			res, err := library.Import(commandContext(cmd), e.prompts, r, library.ImportOptions{Overwrite: overwrite})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d, skipped %d\n", res.Created, res.Updated, res.Skipped)
			return err
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace prompts whose title already exists")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
