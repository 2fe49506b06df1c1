package page

import (
	"context"
	"sync"

	"emojiscraper/pkg/collector"
)

// Static is a Page backed by an in-memory node list that can change between
// scans.
type Static struct {
	mu    sync.Mutex
	nodes []*Node
	err   error
	calls int
}

// NewStatic returns a Static page showing nodes.
func NewStatic(nodes ...*Node) *Static {
	return &Static{nodes: nodes}
}

// Set replaces the visible nodes.
func (s *Static) Set(nodes ...*Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nodes
}

// Append adds nodes after the visible ones.
func (s *Static) Append(nodes ...*Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, nodes...)
}

// Fail makes subsequent Candidates calls return err; nil clears it.
func (s *Static) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many times Candidates ran.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Candidates implements collector.Page.
func (s *Static) Candidates(ctx context.Context) ([]collector.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]collector.Element, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n
	}
	return out, nil
}
