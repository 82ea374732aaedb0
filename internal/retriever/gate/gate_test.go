package gate

import (
	"context"
	"errors"
	"testing"

	"cloudfuze.com/retriever/internal/llm"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	reply string
	err   error
}

func (f fakeProvider) Chat(_ context.Context, _ []llm.Message, _ string, _ int, _ float64) (llm.Message, error) {
	if f.err != nil {
		return llm.Message{}, f.err
	}
	return llm.Message{Role: "assistant", Content: f.reply}, nil
}

func (f fakeProvider) ChatStream(context.Context, []llm.Message, string, int, float64, llm.StreamHandler) error {
	return nil
}

func TestDecideEmptyContextIsNew(t *testing.T) {
	require.False(t, Decide(context.Background(), fakeProvider{reply: "FOLLOWUP"}, "m", "Hi", ""))
}

func TestDecideFollowup(t *testing.T) {
	require.True(t, Decide(context.Background(), fakeProvider{reply: "FOLLOWUP"}, "m", "What about permissions?", "User: retention\nAssistant: sharepoint"))
}

func TestDecideNew(t *testing.T) {
	require.False(t, Decide(context.Background(), fakeProvider{reply: "NEW"}, "m", "What is the capital of France?", "User: retention\nAssistant: sharepoint"))
}

func TestDecideFailsOpenOnError(t *testing.T) {
	require.True(t, Decide(context.Background(), fakeProvider{err: errors.New("boom")}, "m", "q", "ctx"))
}

func TestDecideFailsOpenOnAmbiguousReply(t *testing.T) {
	require.True(t, Decide(context.Background(), fakeProvider{reply: "I am not sure"}, "m", "q", "ctx"))
}
