// Package fanout dispatches a fixed set of prompts concurrently against one
// inference session and joins on all of them.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"parallax/internal/logging"
	"parallax/internal/ollama"
)

var (
	ErrNoTasks        = errors.New("fanout: no tasks")
	ErrDuplicateLabel = errors.New("fanout: duplicate task label")
)

// Task is one prompt to dispatch, identified by a label unique within a batch.
type Task struct {
	Label  string
	Prompt string
}

// TaskResult pairs a task label with its inference result.
type TaskResult struct {
	Label  string
	Result ollama.Result
}

// Batch is the joined output of one Run. Results[i] belongs to the i-th task.
type Batch struct {
	ID      string
	Results []TaskResult
	Elapsed time.Duration
}

// Get returns the result for label.
func (b Batch) Get(label string) (ollama.Result, bool) {
	for _, r := range b.Results {
		if r.Label == label {
			return r.Result, true
		}
	}
	return ollama.Result{}, false
}

// Failed returns the results that carry a fault.
func (b Batch) Failed() []TaskResult {
	var out []TaskResult
	for _, r := range b.Results {
		if !r.Result.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Session is the connection context shared by the calls of one batch.
type Session interface {
	Generate(ctx context.Context, prompt string) ollama.Result
	Close()
}

// Opener starts a session per batch.
type Opener interface {
	OpenSession() Session
}

// ClientOpener adapts an *ollama.Client to Opener.
type ClientOpener struct {
	Client *ollama.Client
}

func (o ClientOpener) OpenSession() Session { return o.Client.Open() }

// OpenerFunc adapts a function to Opener.
type OpenerFunc func() Session

func (f OpenerFunc) OpenSession() Session { return f() }

// Executor runs batches of tasks.
type Executor struct {
	opener Opener
	logger *slog.Logger
}

// NewExecutor returns an Executor that opens sessions via opener.
// A nil logger falls back to logging.New("fanout").
func NewExecutor(opener Opener, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.New("fanout")
	}
	return &Executor{opener: opener, logger: logger}
}

// Run dispatches every task concurrently and waits for all of them. A failed
// call never cancels its siblings; its fault is carried in the TaskResult.
// The only errors are ErrNoTasks and ErrDuplicateLabel, checked before any
// call is made.
func (e *Executor) Run(ctx context.Context, tasks []Task) (Batch, error) {
	if len(tasks) == 0 {
		return Batch{}, ErrNoTasks
	}
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.Label] {
			return Batch{}, fmt.Errorf("%w: %q", ErrDuplicateLabel, t.Label)
		}
		seen[t.Label] = true
	}

	batch := Batch{ID: uuid.NewString(), Results: make([]TaskResult, len(tasks))}
	logger := e.logger.With("batch", batch.ID)
	logger.InfoContext(ctx, "fan-out start", "tasks", len(tasks))

	sess := e.opener.OpenSession()
	defer sess.Close()

	start := time.Now()
	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			res := sess.Generate(ctx, task.Prompt)
			if !res.OK() {
				logger.WarnContext(ctx, "task failed", "label", task.Label, "error", res.Err)
			}
			batch.Results[i] = TaskResult{Label: task.Label, Result: res}
			return nil
		})
	}
	_ = g.Wait() // faults are carried in each TaskResult
	batch.Elapsed = time.Since(start)

	logger.InfoContext(ctx, "fan-out done", "tasks", len(tasks), "failed", len(batch.Failed()), "elapsed", batch.Elapsed)
	return batch, nil
}
