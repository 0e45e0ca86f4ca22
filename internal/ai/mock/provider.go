// Package mock provides in-process AI providers for tests and offline runs.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/kiranshivaraju/insightreporter/internal/ai/aierr"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// MockProvider satisfies models.AIProvider. Every prompt it receives is recorded.
type MockProvider struct {
	Name_        string
	Model_       string
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Model() string {
	if m.Model_ == "" {
		return "mock-v1"
	}
	return m.Model_
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}

// Prompts returns a copy of every prompt received so far, in call order.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls returns the number of Generate calls.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

const (
	cannedArticle = `BREAKING: Customer Exodus Hits Record High

Churn spiked far above the yearly average while revenue slid below trend.
The numbers point to a service failure customers noticed before we did.`

	cannedStrategy = `- Launch a win-back campaign for customers lost this month.
- Audit the support backlog and staff up the queue that spiked.
- Tie next quarter's marketing spend to retention, not acquisition.`
)

// NewMockProvider returns a MockProvider with canned responses: a brief for
// Editor prompts and three bullets for everything else.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		GenerateFunc: func(_ context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Senior Data Journalist") {
				return cannedArticle, nil
			}
			return cannedStrategy, nil
		},
	}
}

// NewScriptedProvider returns responses in order, one per call. Calls past the
// end of the script fail with ErrInvalidResponse.
func NewScriptedProvider(responses ...string) *MockProvider {
	m := &MockProvider{Name_: "mock-scripted"}
	m.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		n := m.Calls()
		if n > len(responses) {
			return "", aierr.Empty(m.Name_)
		}
		return responses[n-1], nil
	}
	return m
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		GenerateFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		GenerateFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", aierr.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
