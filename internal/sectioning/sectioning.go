// Package sectioning builds a newsletter by generating its fixed sections
// concurrently and stitching the results into one Markdown document.
package sectioning

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"parallax/internal/fanout"
	"parallax/internal/logging"
	"parallax/internal/ollama"
)

//go:embed newsletter.md.tmpl
var newsletterTemplate string

var docTemplate = template.Must(template.New("newsletter").Parse(newsletterTemplate))

// DateLayout is the layout of the "Generated on" line.
const DateLayout = "January 02, 2006"

// ErrEmptyTopic is returned when the topic is blank.
var ErrEmptyTopic = errors.New("sectioning: topic is empty")

// Runner executes a batch of prompt tasks. *fanout.Executor implements it.
type Runner interface {
	Run(ctx context.Context, tasks []fanout.Task) (fanout.Batch, error)
}

// SectionOutput is one rendered section of a Document.
type SectionOutput struct {
	ID      string
	Heading string
	Body    string
	Result  ollama.Result
	Missing bool
}

// Document is a generated newsletter.
type Document struct {
	Topic       string
	GeneratedAt time.Time
	Sections    []SectionOutput
	Markdown    string
	Batch       fanout.Batch
}

// Generator produces newsletters.
type Generator struct {
	runner Runner
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator returns a Generator that fans section prompts out through r.
func NewGenerator(r Runner, opts ...Option) *Generator {
	g := &Generator{runner: r, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.New("sectioning")
	}
	return g
}

// Tasks renders one prompt task per section, labelled by section ID.
func Tasks(topic string) ([]fanout.Task, error) {
	secs, err := Sections()
	if err != nil {
		return nil, err
	}
	tasks := make([]fanout.Task, 0, len(secs))
	for _, s := range secs {
		p, err := s.RenderPrompt(topic)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, fanout.Task{Label: s.ID, Prompt: p})
	}
	return tasks, nil
}

// Generate runs all section prompts for topic concurrently and renders the
// newsletter. Failed sections carry their error text in place of content.
func (g *Generator) Generate(ctx context.Context, topic string) (*Document, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	tasks, err := Tasks(topic)
	if err != nil {
		return nil, err
	}
	batch, err := g.runner.Run(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("generate sections: %w", err)
	}

	doc, err := Assemble(topic, batch, g.now())
	if err != nil {
		return nil, err
	}
	g.logger.InfoContext(ctx, "newsletter generated", "topic", topic, "batch", batch.ID,
		"failed_sections", len(batch.Failed()), "elapsed", batch.Elapsed)
	return doc, nil
}

// Assemble builds a Document from an already-run batch.
func Assemble(topic string, batch fanout.Batch, now time.Time) (*Document, error) {
	secs, err := Sections()
	if err != nil {
		return nil, err
	}
	doc := &Document{Topic: topic, GeneratedAt: now, Batch: batch}
	bodies := make(map[string]string, len(batch.Results))
	for _, s := range secs {
		out := SectionOutput{ID: s.ID, Heading: s.Heading}
		if res, ok := batch.Get(s.ID); ok {
			out.Result = res
			out.Body = res.String()
			bodies[s.ID] = out.Body
		} else {
			out.Missing = true
			out.Body = s.Placeholder
		}
		doc.Sections = append(doc.Sections, out)
	}
	doc.Markdown, err = Render(topic, bodies, now)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type renderedSection struct {
	Emoji   string
	Heading string
	Body    string
}

// Render fills the newsletter template. bodies is keyed by section ID;
// sections without an entry get their placeholder.
func Render(topic string, bodies map[string]string, now time.Time) (string, error) {
	secs, err := Sections()
	if err != nil {
		return "", err
	}
	data := struct {
		Topic    string
		Date     string
		Sections []renderedSection
	}{Topic: topic, Date: now.Format(DateLayout)}
	for _, s := range secs {
		body, ok := bodies[s.ID]
		if !ok {
			body = s.Placeholder
		}
		data.Sections = append(data.Sections, renderedSection{Emoji: s.Emoji, Heading: s.Heading, Body: body})
	}

	var b strings.Builder
	if err := docTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render newsletter: %w", err)
	}
	return b.String(), nil
}
