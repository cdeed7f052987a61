package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"default ollama", Options{Model: "llama3.2:latest"}},
		{"ollama custom server", Options{Provider: "Ollama", Model: "llama3.2:latest", ServerURL: "http://127.0.0.1:11434"}},
		{"openai", Options{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-test"}},
		{"anthropic", Options{Provider: "anthropic", Model: "claude-3-5-haiku-latest", APIKey: "test-key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.opts.Model, c.Model())
		})
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Options{Provider: "parrot", Model: "x"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestLangchainCompleter_TimeoutSurfaces(t *testing.T) {
	c, err := New(Options{Model: "llama3.2:latest", ServerURL: "http://127.0.0.1:1", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama completion")
}

func TestStaticCompleter(t *testing.T) {
	ctx := context.Background()
	s := NewStaticCompleter("first", "second")

	out, err := s.Complete(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, _ = s.Complete(ctx, "p2")
	assert.Equal(t, "second", out)
	out, _ = s.Complete(ctx, "p3")
	assert.Equal(t, "second", out)

	assert.Equal(t, []string{"p1", "p2", "p3"}, s.Prompts())

	boom := errors.New("backend down")
	_, err = s.WithError(boom).Complete(ctx, "p4")
	assert.ErrorIs(t, err, boom)
}
