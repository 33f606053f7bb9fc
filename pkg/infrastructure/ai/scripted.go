package ai

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Reply is one canned answer of a Scripted generator
type Reply struct {
	Text  string
	Err   error
	Delay time.Duration
}

// Call records a prompt received by a Scripted generator
type Call struct {
	Prompt string
	Opts   Options
}

// Scripted replays canned replies in order. It stands in for the model in
// tests and offline demos.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

// NewScripted creates a generator that returns replies in order
func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Text is shorthand for a successful Reply
func Text(text string) Reply {
	return Reply{Text: text}
}

// Generate returns the next scripted reply, honouring its delay and ctx
func (s *Scripted) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Prompt: prompt, Opts: opts})
	if len(s.replies) == 0 {
		s.mu.Unlock()
		return "", fmt.Errorf("scripted generator exhausted after %d calls", len(s.calls)-1)
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	s.mu.Unlock()

	if reply.Delay > 0 {
		timer := time.NewTimer(reply.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if reply.Err != nil {
		return "", reply.Err
	}
	return reply.Text, nil
}

// Calls returns the prompts received so far
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

var _ Generator = (*Scripted)(nil)
