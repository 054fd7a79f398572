package llm

import "context"

// MockSynthesizer is a configurable Synthesizer for tests. Set the
// function fields to control behavior; call counters track usage.
type MockSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, req SynthesisRequest) (string, error)
	RepairFunc     func(ctx context.Context, req RepairRequest) (string, error)
	AnalyzeFunc    func(ctx context.Context, question string, rows []map[string]any) (string, error)

	SynthesizeCalls int
	RepairCalls     int
	AnalyzeCalls    int
}

// NewMockSynthesizer creates an empty mock.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// Synthesize implements Synthesizer.
func (m *MockSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (string, error) {
	m.SynthesizeCalls++
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, req)
	}
	return "SELECT 1", nil
}

// Repair implements Synthesizer.
func (m *MockSynthesizer) Repair(ctx context.Context, req RepairRequest) (string, error) {
	m.RepairCalls++
	if m.RepairFunc != nil {
		return m.RepairFunc(ctx, req)
	}
	return "SELECT 1", nil
}

// Analyze implements Synthesizer.
func (m *MockSynthesizer) Analyze(ctx context.Context, question string, rows []map[string]any) (string, error) {
	m.AnalyzeCalls++
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, question, rows)
	}
	return "analysis", nil
}

// Ensure the mock satisfies the interface.
var _ Synthesizer = (*MockSynthesizer)(nil)
