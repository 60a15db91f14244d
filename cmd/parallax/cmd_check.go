package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"parallax/internal/format"
	"parallax/internal/ollama"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that Ollama is running and list its models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := root.services()
			if err != nil {
				return err
			}
			c := svc.Client
			models, err := c.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("cannot connect to Ollama at %s, make sure it is running: %w", c.BaseURL(), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ollama is running at %s\n", c.BaseURL())
			if !ollama.HasModel(models, c.Model()) {
				fmt.Fprintf(out, "WARNING: configured model %q is not installed (ollama pull %s)\n", c.Model(), c.Model())
			}
			if len(models) == 0 {
				fmt.Fprintln(out, "No models installed.")
				return nil
			}
			tb := format.NewTable(format.ASCII)
			tb.Header("Model", "Size (MB)", "Modified")
			for _, m := range models {
				modified := ""
				if !m.ModifiedAt.IsZero() {
					modified = m.ModifiedAt.Format("2006-01-02")
				}
				tb.Row(m.Name, m.Size/(1<<20), modified)
			}
			tb.Columns(format.ColumnConfig{Number: 2, AlignRight: true})
			fmt.Fprintln(out, tb.String())
			return nil
		},
	}
}
