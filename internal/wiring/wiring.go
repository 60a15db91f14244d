// Package wiring assembles the Ollama client, the fan-out executor and the
// sectioning and voting services from a resolved config.
package wiring

import (
	"fmt"
	"time"

	"parallax/internal/config"
	"parallax/internal/fanout"
	"parallax/internal/logging"
	"parallax/internal/mcp"
	"parallax/internal/ollama"
	"parallax/internal/sectioning"
	"parallax/internal/voting"
)

// Services is the set of components every command runs against.
type Services struct {
	Client      *ollama.Client
	Executor    *fanout.Executor
	Newsletters *sectioning.Generator
	Sentiments  *voting.Analyzer
}

// New builds Services from cfg. cfg must have passed Validate.
// opts are passed through to the Ollama client.
func New(cfg *config.Config, opts ...ollama.Option) (*Services, error) {
	tb, err := voting.ParseTieBreak(cfg.Voting.TieBreak)
	if err != nil {
		return nil, err
	}
	opts = append([]ollama.Option{ollama.WithLogger(logging.New("ollama"))}, opts...)
	client, err := ollama.New(ollama.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
		Timeout: time.Duration(cfg.Ollama.Timeout),
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	ex := fanout.NewExecutor(fanout.ClientOpener{Client: client}, logging.New("fanout"))
	return &Services{
		Client:      client,
		Executor:    ex,
		Newsletters: sectioning.NewGenerator(ex, sectioning.WithLogger(logging.New("sectioning"))),
		Sentiments:  voting.NewAnalyzer(ex, voting.WithTieBreak(tb), voting.WithLogger(logging.New("voting"))),
	}, nil
}

// MCPDeps exposes the services to the MCP tool server.
func (s *Services) MCPDeps(version string) mcp.Deps {
	return mcp.Deps{
		Newsletters: s.Newsletters,
		Sentiments:  s.Sentiments,
		Models:      s.Client,
		Model:       s.Client.Model(),
		Version:     version,
	}
}
