package analyzer

import (
	"context"
	"sync"
)

// Mock is a test double for the Analyzer interface.
type Mock struct {
	Estimate *Estimate
	Err      error
	// Block makes Analyze wait for ctx to finish before returning.
	Block bool

	mu    sync.Mutex
	Calls []string // records media types sent
}

// Analyze records the call and returns the canned estimate.
func (m *Mock) Analyze(ctx context.Context, image []byte, mediaType string) (*Estimate, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, mediaType)
	m.mu.Unlock()

	if m.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Estimate == nil {
		return nil, ErrNoContent
	}
	est := *m.Estimate
	return &est, nil
}
