package llm

import "context"

// MockClient is a canned-response Client for tests and local runs
// without an API key.
type MockClient struct {
	Response string
	Err      error

	Calls      int
	LastSystem string
	LastUser   string
}

func (m *MockClient) Complete(_ context.Context, systemPrompt, userContent string) (string, error) {
	m.Calls++
	m.LastSystem = systemPrompt
	m.LastUser = userContent

	if m.Err != nil {
		return "", m.Err
	}

	return m.Response, nil
}
