package llm

import (
	"context"
	"sync"
)

// StaticCompleter is an in-memory Completer for tests. It returns queued
// completions in order, repeating the last one once the queue is drained, and
// records every prompt it receives.
type StaticCompleter struct {
	mu        sync.Mutex
	name      string
	responses []string
	prompts   []string
	err       error
}

// NewStaticCompleter returns a completer answering with responses in order.
func NewStaticCompleter(responses ...string) *StaticCompleter {
	return &StaticCompleter{name: "static", responses: responses}
}

// WithError makes every subsequent call fail with err.
func (s *StaticCompleter) WithError(err error) *StaticCompleter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

func (s *StaticCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}

	if len(s.responses) == 0 {
		return "", nil
	}
	out := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return out, nil
}

func (s *StaticCompleter) Model() string {
	return s.name
}

// Prompts returns a snapshot of received prompts.
func (s *StaticCompleter) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
