// Package llm adapts langchaingo language models to the single-prompt
// completion contract used by the QA chain and the answer stage.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Supported providers.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown llm provider")

// Completer turns a prompt into a single completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Options selects and configures a model backend.
type Options struct {
	Provider  string
	Model     string
	ServerURL string
	APIKey    string
	// Timeout bounds each completion. Zero leaves calls unbounded.
	Timeout time.Duration
}

// New builds a Completer for the configured provider. Ollama is the default.
func New(opts Options) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = ProviderOllama
	}

	var (
		model llms.Model
		err   error
	)
	switch provider {
	case ProviderOllama:
		model, err = newOllama(opts)
	case ProviderOpenAI:
		model, err = newOpenAI(opts)
	case ProviderAnthropic:
		model, err = newAnthropic(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s client: %w", provider, err)
	}

	return &langchainCompleter{
		provider: provider,
		name:     opts.Model,
		model:    model,
		timeout:  opts.Timeout,
	}, nil
}

func newOllama(opts Options) (llms.Model, error) {
	o := []ollama.Option{ollama.WithModel(opts.Model)}
	if opts.ServerURL != "" {
		o = append(o, ollama.WithServerURL(opts.ServerURL))
	}
	return ollama.New(o...)
}

func newOpenAI(opts Options) (llms.Model, error) {
	o := []openai.Option{openai.WithModel(opts.Model)}
	if opts.APIKey != "" {
		o = append(o, openai.WithToken(opts.APIKey))
	}
	if opts.ServerURL != "" {
		o = append(o, openai.WithBaseURL(opts.ServerURL))
	}
	return openai.New(o...)
}

func newAnthropic(opts Options) (llms.Model, error) {
	o := []anthropic.Option{anthropic.WithModel(opts.Model)}
	if opts.APIKey != "" {
		o = append(o, anthropic.WithToken(opts.APIKey))
	}
	if opts.ServerURL != "" {
		o = append(o, anthropic.WithBaseURL(opts.ServerURL))
	}
	return anthropic.New(o...)
}

type langchainCompleter struct {
	provider string
	name     string
	model    llms.Model
	timeout  time.Duration
}

func (c *langchainCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", c.provider, err)
	}
	return out, nil
}

func (c *langchainCompleter) Model() string {
	return c.name
}
