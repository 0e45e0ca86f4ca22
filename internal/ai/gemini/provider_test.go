package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/kiranshivaraju/insightreporter/internal/ai/aierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	gotModel  string
	gotPrompt string
	gotConfig *genai.GenerateContentConfig
	resp      *genai.GenerateContentResponse
	err       error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotConfig = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.gotPrompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(s, genai.RoleModel)},
		},
	}
}

func TestGenerate_ReturnsText(t *testing.T) {
	fake := &fakeModels{resp: textResponse("BREAKING: churn spikes")}
	p := newProvider(fake, "gemini-2.0-flash", 512)

	got, err := p.Generate(context.Background(), "write a brief")
	require.NoError(t, err)

	assert.Equal(t, "BREAKING: churn spikes", got)
	assert.Equal(t, "gemini-2.0-flash", fake.gotModel)
	assert.Equal(t, "write a brief", fake.gotPrompt)
	require.NotNil(t, fake.gotConfig)
	assert.Equal(t, int32(512), fake.gotConfig.MaxOutputTokens)
}

func TestGenerate_NoMaxTokensSendsNilConfig(t *testing.T) {
	fake := &fakeModels{resp: textResponse("ok")}
	p := newProvider(fake, "gemini-2.0-flash", 0)

	_, err := p.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, fake.gotConfig)
}

func TestGenerate_EmptyResponse(t *testing.T) {
	p := newProvider(&fakeModels{resp: &genai.GenerateContentResponse{}}, "m", 0)

	_, err := p.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, aierr.ErrInvalidResponse)
}

func TestGenerate_ErrorsAreClassified(t *testing.T) {
	p := newProvider(&fakeModels{err: errors.New("connection reset")}, "m", 0)
	_, err := p.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, aierr.ErrProviderUnavailable)

	p = newProvider(&fakeModels{err: context.DeadlineExceeded}, "m", 0)
	_, err = p.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, aierr.ErrInferenceTimeout)
}

func TestProviderIdentity(t *testing.T) {
	p := newProvider(&fakeModels{}, "gemini-2.5-pro", 0)
	assert.Equal(t, "gemini", p.Name())
	assert.Equal(t, "gemini-2.5-pro", p.Model())
}
