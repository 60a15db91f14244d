package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"parallax/internal/format"
	"parallax/internal/sectioning"
)

func newNewsletterCmd(root *rootOptions) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "newsletter <topic>",
		Short: "Generate an AI newsletter with all sections written in parallel",
		Long: `Newsletter splits the newsletter into five sections (Headlines, Technical
Deep Dive, Industry News, Tools & Resources, Analysis & Outlook), generates
them concurrently and prints the combined Markdown document.

A section whose request fails shows the error text in its place.`,
		Example: `  parallax newsletter "Computer Vision"
  parallax newsletter Reinforcement Learning --raw`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.services()
			if err != nil {
				return err
			}
			doc, err := svc.Newsletters.Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, doc.Markdown)
			if raw {
				fmt.Fprintln(out)
				fmt.Fprintln(out, rawSectionsTable(doc))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Newsletter generated in %s using parallel processing (%d/%d sections ok)\n",
				format.Seconds(doc.Batch.Elapsed), len(doc.Sections)-len(doc.Batch.Failed()), len(doc.Sections))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Also print a table of the raw section outputs")
	return cmd
}

func rawSectionsTable(doc *sectioning.Document) string {
	tb := format.NewTable(format.ASCII)
	tb.Title("Raw section outputs")
	tb.Header("Section", "Status", "Output")
	for _, s := range doc.Sections {
		status := "ok"
		switch {
		case s.Missing:
			status = "missing"
		case !s.Result.OK():
			status = "error"
		}
		tb.Row(s.Heading, status, s.Body)
	}
	tb.Columns(format.ColumnConfig{Number: 3, MaxWidth: 80})
	return tb.String()
}
