// Package fanouttest provides scripted inference sessions for tests.
package fanouttest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"parallax/internal/fanout"
	"parallax/internal/ollama"
)

// Responder answers one prompt.
type Responder func(ctx context.Context, prompt string) ollama.Result

// Opener hands out sessions that answer with Respond and counts their
// lifecycle and calls.
type Opener struct {
	Respond Responder

	opened atomic.Int32
	closed atomic.Int32

	mu      sync.Mutex
	prompts []string
}

// NewOpener returns an Opener answering with fn.
func NewOpener(fn Responder) *Opener { return &Opener{Respond: fn} }

func (o *Opener) OpenSession() fanout.Session {
	o.opened.Add(1)
	return &session{o: o}
}

// Opened returns how many sessions were opened.
func (o *Opener) Opened() int { return int(o.opened.Load()) }

// Closed returns how many sessions were closed.
func (o *Opener) Closed() int { return int(o.closed.Load()) }

// Prompts returns every prompt received, in arrival order.
func (o *Opener) Prompts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.prompts...)
}

type session struct {
	o *Opener
}

func (s *session) Generate(ctx context.Context, prompt string) ollama.Result {
	s.o.mu.Lock()
	s.o.prompts = append(s.o.prompts, prompt)
	s.o.mu.Unlock()
	return s.o.Respond(ctx, prompt)
}

func (s *session) Close() { s.o.closed.Add(1) }

// ByPrefix answers with the result whose key is a prefix of the prompt.
// Unmatched prompts get a 404 status fault.
func ByPrefix(answers map[string]ollama.Result) Responder {
	return func(_ context.Context, prompt string) ollama.Result {
		for prefix, res := range answers {
			if strings.HasPrefix(prompt, prefix) {
				return res
			}
		}
		return ollama.Failure(&ollama.StatusFault{Code: 404})
	}
}

// Constant answers every prompt with text.
func Constant(text string) Responder {
	return func(context.Context, string) ollama.Result { return ollama.Success(text) }
}

// Echo answers every prompt with "echo: <prompt>".
func Echo() Responder {
	return func(_ context.Context, prompt string) ollama.Result {
		return ollama.Success(fmt.Sprintf("echo: %s", prompt))
	}
}
