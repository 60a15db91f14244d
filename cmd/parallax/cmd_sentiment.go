package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"parallax/internal/format"
	"parallax/internal/voting"
)

func newSentimentCmd(root *rootOptions) *cobra.Command {
	var tieBreak string
	cmd := &cobra.Command{
		Use:   "sentiment [text]",
		Short: "Classify sentiment by majority vote over three prompt variants",
		Long: `Sentiment asks three differently worded prompts to classify the text as
POSITIVE, NEGATIVE or NEUTRAL, runs them concurrently and reports the
plurality winner. Responses that cannot be classified are not counted.

Without arguments the text is read from stdin.`,
		Example: `  parallax sentiment "The update fixed every bug I reported"
  cat review.txt | parallax sentiment --tie-break=priority`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			if cmd.Flags().Changed("tie-break") {
				root.cfg.Voting.TieBreak = tieBreak
			}
			svc, err := root.services()
			if err != nil {
				return err
			}
			o, err := svc.Sentiments.Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), o)
			return nil
		},
	}
	cmd.Flags().StringVar(&tieBreak, "tie-break", "", "Tie-break policy: first-seen or priority (default from config)")
	return cmd
}

func printOutcome(w io.Writer, o *voting.Outcome) {
	fmt.Fprintf(w, "Final Sentiment: %s\n", o.Winner)
	fmt.Fprintf(w, "Analysis completed in %s\n\n", format.Seconds(o.Batch.Elapsed))

	fmt.Fprintln(w, "Individual Votes")
	for _, b := range o.Ballots {
		if b.Classified {
			fmt.Fprintf(w, "  %s: %s\n", b.Analyzer, b.Category)
			continue
		}
		fmt.Fprintf(w, "  %s: (not counted) %s\n", b.Analyzer, format.Truncate(strings.TrimSpace(b.Raw), 60))
	}

	dist := o.Tally.Distribution()
	if len(dist) == 0 {
		return
	}
	total := o.Tally.Total()
	tb := format.NewTable(format.ASCII)
	tb.Title("Vote Distribution")
	tb.Header("Sentiment", "Votes", "Share", "")
	for _, s := range dist {
		tb.Row(s.Category, fmt.Sprintf("%d/%d", s.Count, total), format.Percent(s.Percent), format.Bar(s.Percent, 20))
	}
	tb.Columns(format.ColumnConfig{Number: 2, AlignRight: true}, format.ColumnConfig{Number: 3, AlignRight: true})
	fmt.Fprintln(w)
	fmt.Fprintln(w, tb.String())
}
