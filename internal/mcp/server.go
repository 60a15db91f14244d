// Package mcp exposes newsletter generation, sentiment voting and the
// connection check as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"sync"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"parallax/internal/logging"
	"parallax/internal/ollama"
	"parallax/internal/sectioning"
	"parallax/internal/voting"
)

// Newsletters generates sectioned newsletters.
type Newsletters interface {
	Generate(ctx context.Context, topic string) (*sectioning.Document, error)
}

// Sentiments runs sentiment votes.
type Sentiments interface {
	Analyze(ctx context.Context, text string) (*voting.Outcome, error)
}

// ModelLister lists the models installed on the inference server.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ollama.Model, error)
}

// Deps are the core services the tools call into.
type Deps struct {
	Newsletters Newsletters
	Sentiments  Sentiments
	Models      ModelLister
	Model       string // configured model name, reported by check_connection
	Version     string
}

// Server wraps the MCP SDK server. Tool calls that fan out run one at a time.
type Server struct {
	MCPServer *sdkmcp.Server

	deps Deps
	mu   sync.Mutex
}

// NewServer creates an MCP server with the parallax tools registered.
func NewServer(deps Deps) *Server {
	if deps.Version == "" {
		deps.Version = "dev"
	}
	s := &Server{deps: deps}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "parallax", Version: deps.Version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "generate_newsletter",
		Description: "Generate an AI newsletter on a topic. Five sections are written concurrently by separate model calls and combined into one Markdown document.",
	}, s.handleGenerateNewsletter)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_sentiment",
		Description: "Classify the sentiment of a text as POSITIVE, NEGATIVE or NEUTRAL by majority vote over three concurrently asked prompt variants.",
	}, s.handleAnalyzeSentiment)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "check_connection",
		Description: "Check that the Ollama server is reachable and list its installed models.",
	}, s.handleCheckConnection)
}

// --- Tool input/output types ---

type generateNewsletterInput struct {
	Topic string `json:"topic" jsonschema:"AI topic for the newsletter, e.g. Large Language Models"`
}

type sectionOutput struct {
	ID      string `json:"id"`
	Heading string `json:"heading"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

type generateNewsletterOutput struct {
	Topic     string          `json:"topic"`
	Markdown  string          `json:"markdown"`
	Sections  []sectionOutput `json:"sections"`
	BatchID   string          `json:"batch_id"`
	ElapsedMS int64           `json:"elapsed_ms"`
}

type analyzeSentimentInput struct {
	Text string `json:"text" jsonschema:"text to classify"`
}

type analyzeSentimentOutput struct {
	Winner       string            `json:"winner"`
	Votes        []voting.Category `json:"votes"`
	Ballots      []ballotOutput    `json:"ballots"`
	Distribution []voting.Share    `json:"distribution"`
	Unclassified int               `json:"unclassified"`
	BatchID      string            `json:"batch_id"`
	ElapsedMS    int64             `json:"elapsed_ms"`
}

type ballotOutput struct {
	Analyzer   string `json:"analyzer"`
	Response   string `json:"response"`
	Category   string `json:"category,omitempty"`
	Classified bool   `json:"classified"`
}

type checkConnectionInput struct{}

type checkConnectionOutput struct {
	Reachable      bool     `json:"reachable"`
	Model          string   `json:"model"`
	ModelInstalled bool     `json:"model_installed"`
	Models         []string `json:"models"`
	Error          string   `json:"error,omitempty"`
}

// --- Tool handlers ---

func (s *Server) handleGenerateNewsletter(ctx context.Context, _ *sdkmcp.CallToolRequest, input generateNewsletterInput) (*sdkmcp.CallToolResult, generateNewsletterOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.deps.Newsletters.Generate(ctx, input.Topic)
	if err != nil {
		return nil, generateNewsletterOutput{}, fmt.Errorf("generate_newsletter: %w", err)
	}
	out := generateNewsletterOutput{
		Topic:     doc.Topic,
		Markdown:  doc.Markdown,
		BatchID:   doc.Batch.ID,
		ElapsedMS: doc.Batch.Elapsed.Milliseconds(),
	}
	for _, sec := range doc.Sections {
		so := sectionOutput{ID: sec.ID, Heading: sec.Heading, Content: sec.Body}
		if sec.Result.Err != nil {
			so.Error = sec.Result.Err.Error()
		}
		out.Sections = append(out.Sections, so)
	}
	return nil, out, nil
}

func (s *Server) handleAnalyzeSentiment(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzeSentimentInput) (*sdkmcp.CallToolResult, analyzeSentimentOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.deps.Sentiments.Analyze(ctx, input.Text)
	if err != nil {
		return nil, analyzeSentimentOutput{}, fmt.Errorf("analyze_sentiment: %w", err)
	}
	out := analyzeSentimentOutput{
		Winner:       o.Winner,
		Votes:        o.Votes,
		Distribution: o.Tally.Distribution(),
		Unclassified: o.Unclassified,
		BatchID:      o.Batch.ID,
		ElapsedMS:    o.Batch.Elapsed.Milliseconds(),
	}
	if out.Distribution == nil {
		out.Distribution = []voting.Share{}
	}
	for _, b := range o.Ballots {
		out.Ballots = append(out.Ballots, ballotOutput{
			Analyzer:   b.Analyzer,
			Response:   b.Raw,
			Category:   string(b.Category),
			Classified: b.Classified,
		})
	}
	return nil, out, nil
}

func (s *Server) handleCheckConnection(ctx context.Context, _ *sdkmcp.CallToolRequest, _ checkConnectionInput) (*sdkmcp.CallToolResult, checkConnectionOutput, error) {
	out := checkConnectionOutput{Model: s.deps.Model, Models: []string{}}
	models, err := s.deps.Models.ListModels(ctx)
	if err != nil {
		logging.New("mcp").Warn("ollama unreachable", "error", err)
		out.Error = err.Error()
		return nil, out, nil
	}
	out.Reachable = true
	out.ModelInstalled = ollama.HasModel(models, s.deps.Model)
	for _, m := range models {
		out.Models = append(out.Models, m.Name)
	}
	return nil, out, nil
}
