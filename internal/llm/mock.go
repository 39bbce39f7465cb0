package llm

import "context"

// MockClient returns canned responses in order. Used by tests that need to
// drive the extractor through repair and failure paths.
type MockClient struct {
	// Responses are returned one per call; the last repeats if calls exceed it
	Responses []string

	// Err, if set, is returned by every call
	Err error

	// PingErr, if set, is returned by Ping
	PingErr error

	// Requests records every request received, in order
	Requests []Request

	next int
}

// Complete implements Client.
func (m *MockClient) Complete(_ context.Context, req Request) (string, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	i := m.next
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	m.next++
	return m.Responses[i], nil
}

// Ping implements Client.
func (m *MockClient) Ping(_ context.Context) error {
	return m.PingErr
}

// Calls returns how many completions were requested.
func (m *MockClient) Calls() int {
	return len(m.Requests)
}
