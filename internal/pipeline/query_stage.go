package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanshika/graphqa/internal/config"
	"github.com/vanshika/graphqa/internal/cypherqa"
	"github.com/vanshika/graphqa/internal/graph"
	"github.com/vanshika/graphqa/internal/llm"
	"github.com/vanshika/graphqa/internal/logging"
)

// QueryResult carries the raw database response and the schema description
// from the query stage to the answer stage.
type QueryResult struct {
	DBResponse string
	Schema     string
}

// QueryChain is the query-generation component.
type QueryChain interface {
	Invoke(ctx context.Context, question string) (cypherqa.Result, error)
	Schema() string
}

// Connector opens a graph connection for validated credentials.
type Connector func(ctx context.Context, creds config.Credentials) (graph.Client, error)

// ModelFactory creates a fresh language model client.
type ModelFactory func() (llm.Completer, error)

// ChainFactory composes a graph client and a model into a QueryChain.
type ChainFactory func(ctx context.Context, client graph.Client, model llm.Completer, opts cypherqa.Options) (QueryChain, error)

// QueryStage turns a question into a raw database response. Every call opens
// and closes its own connection.
type QueryStage struct {
	Credentials config.Source
	Connect     Connector
	NewModel    ModelFactory
	NewChain    ChainFactory
	Options     cypherqa.Options
	Logger      *slog.Logger
}

// NewQueryStage wires the stage to Neo4j and the configured model backend.
func NewQueryStage(cfg config.Config, creds config.Source, logger *slog.Logger) *QueryStage {
	return &QueryStage{
		Credentials: creds,
		Connect:     Neo4jConnector(cfg.Graph),
		NewModel:    ModelFactoryFor(cfg.LLM),
		NewChain:    NewCypherChain,
		Options: cypherqa.Options{
			Verbose:                  cfg.Chain.Verbose,
			ReturnDirect:             cfg.Chain.ReturnDirect,
			ValidateQuery:            cfg.Chain.ValidateQuery,
			AllowDangerousOperations: cfg.Chain.AllowDangerousOperations,
			TopK:                     cfg.Chain.TopK,
			Logger:                   logger,
		},
		Logger: logger,
	}
}

// Neo4jConnector returns a Connector backed by the Neo4j driver.
func Neo4jConnector(cfg config.GraphConfig) Connector {
	return func(ctx context.Context, creds config.Credentials) (graph.Client, error) {
		return graph.NewNeo4jClient(ctx, graph.Options{
			URI:            creds.URI,
			Database:       cfg.Database,
			Username:       creds.Username,
			Password:       creds.Password,
			MaxConnections: cfg.MaxConnections,
			Timeout:        cfg.Timeout,
		})
	}
}

// ModelFactoryFor returns a ModelFactory for the configured provider and model.
func ModelFactoryFor(cfg config.LLMConfig) ModelFactory {
	return func() (llm.Completer, error) {
		return llm.New(llm.Options{
			Provider:  cfg.Provider,
			Model:     cfg.Model,
			ServerURL: cfg.ServerURL,
			APIKey:    cfg.APIKey,
			Timeout:   cfg.Timeout,
		})
	}
}

// NewCypherChain is the default ChainFactory.
func NewCypherChain(ctx context.Context, client graph.Client, model llm.Completer, opts cypherqa.Options) (QueryChain, error) {
	return cypherqa.New(ctx, client, model, opts)
}

// QueryDatabase resolves credentials, connects, and runs the chain. The
// credentials are validated before any connection attempt.
func (s *QueryStage) QueryDatabase(ctx context.Context, question string) (QueryResult, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	creds, err := config.Resolve(s.Credentials)
	if err != nil {
		return QueryResult{}, fmt.Errorf("load credentials: %w", err)
	}

	client, err := s.Connect(ctx, creds)
	if err != nil {
		return QueryResult{}, fmt.Errorf("connect to graph: %w", err)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	model, err := s.NewModel()
	if err != nil {
		return QueryResult{}, fmt.Errorf("create model: %w", err)
	}

	chain, err := s.NewChain(ctx, client, model, s.Options)
	if err != nil {
		return QueryResult{}, fmt.Errorf("create query chain: %w", err)
	}

	res, err := chain.Invoke(ctx, question)
	if err != nil {
		return QueryResult{}, fmt.Errorf("query graph: %w", err)
	}

	return QueryResult{
		DBResponse: res.Response,
		Schema:     chain.Schema(),
	}, nil
}
