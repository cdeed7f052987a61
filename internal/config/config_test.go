package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"LLM_PROVIDER", "LLM_MODEL", "CHAIN_VERBOSE", "CHAIN_RETURN_DIRECT",
		"CHAIN_VALIDATE_QUERY", "CHAIN_ALLOW_DANGEROUS", "CHAIN_TOP_K",
		"GRAPH_TIMEOUT", "LLM_TIMEOUT", "GRAPHQA_CREDENTIALS_FILE", "ANSWER_PLATFORM",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.2:latest", cfg.LLM.Model)
	assert.True(t, cfg.Chain.Verbose)
	assert.True(t, cfg.Chain.ReturnDirect)
	assert.True(t, cfg.Chain.ValidateQuery)
	assert.True(t, cfg.Chain.AllowDangerousOperations)
	assert.Equal(t, 10, cfg.Chain.TopK)
	assert.Zero(t, cfg.Graph.Timeout)
	assert.Zero(t, cfg.LLM.Timeout)
	assert.Equal(t, "Pinterest", cfg.Answer.Platform)
	assert.IsType(t, EnvSource{}, cfg.CredentialSource())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("CHAIN_RETURN_DIRECT", "false")
	t.Setenv("CHAIN_TOP_K", "3")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("GRAPHQA_CREDENTIALS_FILE", "/tmp/creds.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.False(t, cfg.Chain.ReturnDirect)
	assert.Equal(t, 3, cfg.Chain.TopK)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, FileSource{Path: "/tmp/creds.json"}, cfg.CredentialSource())
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("GRAPH_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRAPH_TIMEOUT")
}

func TestAnswerTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Q: {{.question}}"), 0o600))

	cfg := Config{Answer: AnswerConfig{TemplateFile: path}}
	tmpl, err := cfg.AnswerTemplate()
	require.NoError(t, err)
	assert.Equal(t, "Q: {{.question}}", tmpl)

	tmpl, err = Config{}.AnswerTemplate()
	require.NoError(t, err)
	assert.Empty(t, tmpl)
}
