package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	Graph   GraphConfig
	LLM     LLMConfig
	Chain   ChainConfig
	Answer  AnswerConfig
	Logging LoggingConfig
}

// GraphConfig describes connectivity to the graph database. Credentials are
// resolved separately through a Source.
type GraphConfig struct {
	Database        string
	MaxConnections  int
	Timeout         time.Duration
	CredentialsFile string
}

// LLMConfig selects the language model backend.
type LLMConfig struct {
	Provider  string
	Model     string
	ServerURL string
	APIKey    string
	Timeout   time.Duration
}

// ChainConfig controls the Cypher QA chain.
type ChainConfig struct {
	Verbose                  bool
	ReturnDirect             bool
	ValidateQuery            bool
	AllowDangerousOperations bool
	TopK                     int
}

// AnswerConfig controls the answer prompt.
type AnswerConfig struct {
	Platform     string
	TemplateFile string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultLLMProvider      = "ollama"
	defaultLLMModel         = "llama3.2:latest"
	defaultTopK             = 10
	defaultPlatform         = "Pinterest"
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
)

// Load reads configuration from environment variables, applying defaults.
// Timeouts default to zero, meaning calls wait until the backend answers.
func Load() (Config, error) {
	cfg := Config{
		Graph: GraphConfig{
			Database:        valueOrDefault("NEO4J_DATABASE", ""),
			MaxConnections:  parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
			CredentialsFile: os.Getenv("GRAPHQA_CREDENTIALS_FILE"),
		},
		LLM: LLMConfig{
			Provider:  strings.ToLower(valueOrDefault("LLM_PROVIDER", defaultLLMProvider)),
			Model:     valueOrDefault("LLM_MODEL", defaultLLMModel),
			ServerURL: os.Getenv("LLM_SERVER_URL"),
			APIKey:    os.Getenv("LLM_API_KEY"),
		},
		Chain: ChainConfig{
			Verbose:                  parseBoolWithDefault("CHAIN_VERBOSE", true),
			ReturnDirect:             parseBoolWithDefault("CHAIN_RETURN_DIRECT", true),
			ValidateQuery:            parseBoolWithDefault("CHAIN_VALIDATE_QUERY", true),
			AllowDangerousOperations: parseBoolWithDefault("CHAIN_ALLOW_DANGEROUS", true),
			TopK:                     parseIntWithDefault("CHAIN_TOP_K", defaultTopK),
		},
		Answer: AnswerConfig{
			Platform:     valueOrDefault("ANSWER_PLATFORM", defaultPlatform),
			TemplateFile: os.Getenv("ANSWER_TEMPLATE_FILE"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	var err error
	if cfg.Graph.Timeout, err = parseDuration("GRAPH_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if cfg.LLM.Timeout, err = parseDuration("LLM_TIMEOUT"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// CredentialSource returns the configured credential source: the credentials
// file when one is set, the process environment otherwise.
func (c Config) CredentialSource() Source {
	if c.Graph.CredentialsFile != "" {
		return FileSource{Path: c.Graph.CredentialsFile}
	}
	return EnvSource{}
}

// AnswerTemplate returns the contents of the configured template file, or an
// empty string when none is configured.
func (c Config) AnswerTemplate() (string, error) {
	if c.Answer.TemplateFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Answer.TemplateFile)
	if err != nil {
		return "", fmt.Errorf("read answer template: %w", err)
	}
	return string(data), nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration %s", key, v)
	}
	return d, nil
}
