// Package voting classifies sentiment by running several prompt variants
// concurrently and taking the plurality of their answers.
package voting

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"parallax/internal/fanout"
	"parallax/internal/logging"
	"parallax/internal/ollama"
)

//go:embed variants.yaml
var variantsYAML []byte

// ErrEmptyText is returned when the text to analyze is blank.
var ErrEmptyText = errors.New("voting: text is empty")

// Variant is one prompt wording; its ID labels the analyzer's vote.
type Variant struct {
	ID     string `yaml:"id"`
	Prompt string `yaml:"prompt"`

	tmpl *template.Template
}

var variants = sync.OnceValues(func() ([]Variant, error) {
	return parseVariants(variantsYAML)
})

func parseVariants(data []byte) ([]Variant, error) {
	var f struct {
		Variants []Variant `yaml:"variants"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompt variants: %w", err)
	}
	if len(f.Variants) == 0 {
		return nil, fmt.Errorf("no prompt variants defined")
	}
	for i := range f.Variants {
		v := &f.Variants[i]
		if v.ID == "" || v.Prompt == "" {
			return nil, fmt.Errorf("variant %d: id and prompt are required", i)
		}
		t, err := template.New(v.ID).Option("missingkey=error").Parse(v.Prompt)
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w", v.ID, err)
		}
		v.tmpl = t
	}
	return f.Variants, nil
}

// Variants returns the prompt variants in dispatch order.
func Variants() ([]Variant, error) {
	vs, err := variants()
	if err != nil {
		return nil, err
	}
	return append([]Variant(nil), vs...), nil
}

// Tasks renders one prompt task per variant for text.
func Tasks(text string) ([]fanout.Task, error) {
	vs, err := Variants()
	if err != nil {
		return nil, err
	}
	tasks := make([]fanout.Task, 0, len(vs))
	for _, v := range vs {
		var b strings.Builder
		if err := v.tmpl.Execute(&b, struct{ Text string }{text}); err != nil {
			return nil, fmt.Errorf("render %s prompt: %w", v.ID, err)
		}
		tasks = append(tasks, fanout.Task{Label: v.ID, Prompt: b.String()})
	}
	return tasks, nil
}

// Ballot is one analyzer's response and the vote extracted from it.
type Ballot struct {
	Analyzer   string        `json:"analyzer"`
	Response   ollama.Result `json:"-"`
	Raw        string        `json:"raw"`
	Category   Category      `json:"category,omitempty"`
	Classified bool          `json:"classified"`
}

// Outcome is the result of one vote.
type Outcome struct {
	Winner       string       `json:"winner"`
	Votes        []Category   `json:"votes"`
	Ballots      []Ballot     `json:"ballots"`
	Tally        *Tally       `json:"tally"`
	Unclassified int          `json:"unclassified"`
	TieBreak     TieBreak     `json:"-"`
	Batch        fanout.Batch `json:"-"`
}

// Decided reports whether any response could be classified.
func (o *Outcome) Decided() bool { return o.Winner != Undetermined }

// Decide classifies each result in batch order and picks the plurality
// winner. Unclassifiable responses, including faults, are dropped from the
// tally and counted in Unclassified.
func Decide(batch fanout.Batch, tb TieBreak) *Outcome {
	o := &Outcome{Votes: []Category{}, TieBreak: tb, Batch: batch}
	for _, r := range batch.Results {
		raw := r.Result.String()
		c, ok := Classify(raw)
		o.Ballots = append(o.Ballots, Ballot{
			Analyzer:   r.Label,
			Response:   r.Result,
			Raw:        raw,
			Category:   c,
			Classified: ok,
		})
		if !ok {
			o.Unclassified++
			continue
		}
		o.Votes = append(o.Votes, c)
	}
	o.Tally = NewTally(o.Votes)
	if w, ok := o.Tally.Winner(tb); ok {
		o.Winner = string(w)
	} else {
		o.Winner = Undetermined
	}
	return o
}

// Runner executes a batch of prompt tasks. *fanout.Executor implements it.
type Runner interface {
	Run(ctx context.Context, tasks []fanout.Task) (fanout.Batch, error)
}

// Analyzer runs sentiment votes.
type Analyzer struct {
	runner   Runner
	tieBreak TieBreak
	logger   *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTieBreak sets the tie-break policy. The default is TieBreakFirstSeen.
func WithTieBreak(tb TieBreak) Option {
	return func(a *Analyzer) { a.tieBreak = tb }
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer returns an Analyzer that fans prompt variants out through r.
func NewAnalyzer(r Runner, opts ...Option) *Analyzer {
	a := &Analyzer{runner: r}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.New("voting")
	}
	return a
}

// Analyze asks every variant about text concurrently and returns the vote.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	tasks, err := Tasks(text)
	if err != nil {
		return nil, err
	}
	batch, err := a.runner.Run(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("run sentiment prompts: %w", err)
	}
	o := Decide(batch, a.tieBreak)
	a.logger.InfoContext(ctx, "sentiment decided", "batch", batch.ID, "winner", o.Winner,
		"votes", len(o.Votes), "unclassified", o.Unclassified, "tie_break", a.tieBreak.String())
	return o, nil
}
