package wiring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// reply is the canned answer for prompts containing a marker.
type reply struct {
	marker string
	delay  time.Duration
	status int
	text   string
}

// fakeOllama serves /api/generate from a reply table and records the peak
// number of requests in flight.
type fakeOllama struct {
	*httptest.Server

	replies []reply

	mu       sync.Mutex
	inFlight int
	peak     int
	prompts  []string
}

func newFakeOllama(replies ...reply) *fakeOllama {
	f := &fakeOllama{replies: replies}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", f.generate)
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"gemma3:latest","size":1}]}`))
	})
	f.Server = httptest.NewServer(mux)
	return f
}

func (f *fakeOllama) generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	for _, rp := range f.replies {
		if !strings.Contains(req.Prompt, rp.marker) {
			continue
		}
		select {
		case <-time.After(rp.delay):
		case <-r.Context().Done():
			return
		}
		if rp.status != 0 && rp.status != http.StatusOK {
			http.Error(w, `{"error":"fake failure"}`, rp.status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "response": rp.text, "done": true})
		return
	}
	http.Error(w, `{"error":"no reply configured"}`, http.StatusNotFound)
}

func (f *fakeOllama) Peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

func (f *fakeOllama) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
