// Package cypherqa answers natural-language questions against a graph database
// by having a language model write Cypher, validating and executing it, and
// returning the raw records or a model-phrased summary of them.
package cypherqa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/prompts"

	"github.com/vanshika/graphqa/internal/graph"
	"github.com/vanshika/graphqa/internal/llm"
	"github.com/vanshika/graphqa/internal/logging"
)

var (
	// ErrEmptyQuery indicates the model produced no statement.
	ErrEmptyQuery = errors.New("model returned an empty cypher statement")
	// ErrInvalidQuery indicates the statement failed validation.
	ErrInvalidQuery = errors.New("invalid cypher statement")
	// ErrDangerousQuery indicates a writing statement while dangerous operations are disallowed.
	ErrDangerousQuery = errors.New("cypher statement modifies the database")
)

const defaultTopK = 10

// Options configures the chain.
type Options struct {
	// Verbose logs each step at info level.
	Verbose bool
	// ReturnDirect returns the raw records instead of a model-phrased answer.
	ReturnDirect bool
	// ValidateQuery corrects relationship directions and plans the statement
	// on the server before execution.
	ValidateQuery bool
	// AllowDangerousOperations permits statements that write to the database.
	AllowDangerousOperations bool
	// TopK caps the number of records kept. Zero means 10.
	TopK int

	GenerationTemplate string
	QATemplate         string
	Logger             *slog.Logger
}

// Result is the outcome of one question.
type Result struct {
	Question string
	Query    string
	Records  []graph.Record
	// Response is {"query": question, "result": records} as JSON when
	// ReturnDirect is set, the model's answer otherwise.
	Response string
}

// Chain composes a graph client and a language model.
type Chain struct {
	graph      graph.Client
	model      llm.Completer
	opts       Options
	logger     *slog.Logger
	generation prompts.PromptTemplate
	qa         prompts.PromptTemplate
	schema     graph.Schema
}

// New builds a chain and loads the current database schema.
func New(ctx context.Context, client graph.Client, model llm.Completer, opts Options) (*Chain, error) {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	logger := logging.Discard()
	if opts.Verbose && opts.Logger != nil {
		logger = opts.Logger.With("component", "cypherqa")
	}

	c := &Chain{
		graph:      client,
		model:      model,
		opts:       opts,
		logger:     logger,
		generation: generationPrompt(opts.GenerationTemplate),
		qa:         qaPrompt(opts.QATemplate),
	}
	if err := c.RefreshSchema(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// RefreshSchema reloads the schema from the database.
func (c *Chain) RefreshSchema(ctx context.Context) error {
	s, err := graph.LoadSchema(ctx, c.graph)
	if err != nil {
		return fmt.Errorf("refresh schema: %w", err)
	}
	c.schema = s
	return nil
}

// Schema returns the schema description used for generation.
func (c *Chain) Schema() string {
	return c.schema.String()
}

// Invoke generates, validates and runs a statement answering question.
func (c *Chain) Invoke(ctx context.Context, question string) (Result, error) {
	res := Result{Question: question}

	prompt, err := c.generation.Format(map[string]any{
		"schema":   c.Schema(),
		"question": question,
	})
	if err != nil {
		return res, fmt.Errorf("render generation prompt: %w", err)
	}

	completion, err := c.model.Complete(ctx, prompt)
	if err != nil {
		return res, fmt.Errorf("generate cypher: %w", err)
	}
	query := extractCypher(completion)
	c.logger.Info("generated cypher", "query", query)
	if query == "" {
		return res, ErrEmptyQuery
	}

	queryType := graph.QueryTypeReadOnly
	if c.opts.ValidateQuery {
		corrected, err := correctDirections(query, c.schema)
		if err != nil {
			return res, err
		}
		if corrected != query {
			c.logger.Info("corrected cypher", "query", corrected)
			query = corrected
		}
		queryType, err = c.graph.Explain(ctx, query, nil)
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
	} else if looksLikeWrite(query) {
		queryType = graph.QueryTypeReadWrite
	}
	res.Query = query

	if queryType.Writes() && !c.opts.AllowDangerousOperations {
		return res, fmt.Errorf("%w (type %s)", ErrDangerousQuery, queryType)
	}

	var out graph.Result
	if queryType.Writes() {
		out, err = c.graph.ExecuteWrite(ctx, query, nil)
	} else {
		out, err = c.graph.ExecuteRead(ctx, query, nil)
	}
	if err != nil {
		return res, fmt.Errorf("execute cypher: %w", err)
	}

	records := out.Records
	if len(records) > c.opts.TopK {
		records = records[:c.opts.TopK]
	}
	res.Records = records

	contextJSON, err := renderRecords(records)
	if err != nil {
		return res, err
	}
	c.logger.Info("full context", "records", len(records), "context", contextJSON)

	if c.opts.ReturnDirect {
		if res.Response, err = renderDirect(question, records); err != nil {
			return res, err
		}
		return res, nil
	}

	qaInput, err := c.qa.Format(map[string]any{
		"context":  contextJSON,
		"question": question,
	})
	if err != nil {
		return res, fmt.Errorf("render qa prompt: %w", err)
	}
	answer, err := c.model.Complete(ctx, qaInput)
	if err != nil {
		return res, fmt.Errorf("answer from records: %w", err)
	}
	res.Response = answer
	return res, nil
}
