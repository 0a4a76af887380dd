package mock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockOracle is a test double for ai.Oracle.
// It allows custom behavior injection via function fields and can simulate
// per-call latency for concurrency tests.
type MockOracle struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default canned-response behavior.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	// Latency is an artificial delay applied before every call.
	// Zero means no delay.
	Latency time.Duration

	mu        sync.Mutex
	callCount int
	prompts   []string
}

// NewMockOracle creates a mock oracle with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockOracle().
func NewMockOracle() *MockOracle {
	return &MockOracle{}
}

// Generate records the prompt and returns a canned response.
// Default behavior: returns "50" so that score extraction finds a number.
// Safe for concurrent use.
func (m *MockOracle) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	fn := m.GenerateFunc
	latency := m.Latency
	m.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if fn != nil {
		return fn(ctx, prompt)
	}

	return "50", nil
}

// CallCount returns the number of times Generate was called.
func (m *MockOracle) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns a copy of all prompts seen so far, in call order.
func (m *MockOracle) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "" if none were recorded.
func (m *MockOracle) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears the call count, recorded prompts, and custom functions.
func (m *MockOracle) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.GenerateFunc = nil
	m.Latency = 0
}

// ScriptedOracle returns a MockOracle that replies from a fixed script,
// consuming one response per call. Calls past the end of the script fail.
func ScriptedOracle(responses ...string) *MockOracle {
	var mu sync.Mutex
	next := 0
	oracle := NewMockOracle()
	oracle.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(responses) {
			return "", fmt.Errorf("scripted oracle exhausted after %d responses", len(responses))
		}
		response := responses[next]
		next++
		return response, nil
	}
	return oracle
}
