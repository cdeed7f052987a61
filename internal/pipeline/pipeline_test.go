package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vanshika/graphqa/internal/config"
	"github.com/vanshika/graphqa/internal/cypherqa"
	"github.com/vanshika/graphqa/internal/graph"
	"github.com/vanshika/graphqa/internal/llm"
)

const (
	question   = "Who can see my pin?"
	dbResponse = `{"owner": "alice", "shared_with": ["bob"]}`
	schemaDesc = "(User)-[:SHARES]->(Pin)"
	answer     = "Only you and bob can see your pin."
)

var validCreds = config.StaticSource{
	URI:      "neo4j+s://graph.example.com",
	Username: "neo4j",
	Password: "secret",
}

type stubChain struct {
	response string
	schema   string
	err      error
	asked    []string
}

func (c *stubChain) Invoke(_ context.Context, q string) (cypherqa.Result, error) {
	c.asked = append(c.asked, q)
	if c.err != nil {
		return cypherqa.Result{}, c.err
	}
	return cypherqa.Result{Question: q, Response: c.response}, nil
}

func (c *stubChain) Schema() string { return c.schema }

func stubQueryStage(mem *graph.MemoryClient, chain *stubChain) *QueryStage {
	return &QueryStage{
		Credentials: validCreds,
		Connect: func(context.Context, config.Credentials) (graph.Client, error) {
			return mem, nil
		},
		NewModel: func() (llm.Completer, error) { return llm.NewStaticCompleter(), nil },
		NewChain: func(context.Context, graph.Client, llm.Completer, cypherqa.Options) (QueryChain, error) {
			return chain, nil
		},
	}
}

func staticModels(model *llm.StaticCompleter) ModelFactory {
	return func() (llm.Completer, error) { return model, nil }
}

func TestQueryDatabase_PassesChainOutputThrough(t *testing.T) {
	mem := graph.NewMemoryClient()
	chain := &stubChain{response: dbResponse, schema: schemaDesc}

	qr, err := stubQueryStage(mem, chain).QueryDatabase(context.Background(), question)
	require.NoError(t, err)

	assert.Equal(t, QueryResult{DBResponse: dbResponse, Schema: schemaDesc}, qr)
	assert.Equal(t, []string{question}, chain.asked)
	assert.True(t, mem.Closed())
}

func TestQueryDatabase_RejectsCredentialsBeforeConnecting(t *testing.T) {
	tests := []struct {
		name  string
		creds config.StaticSource
		want  error
	}{
		{
			name:  "plain bolt",
			creds: config.StaticSource{URI: "bolt://localhost:7687", Username: "neo4j", Password: "secret"},
			want:  config.ErrInsecureURI,
		},
		{
			name:  "plain neo4j",
			creds: config.StaticSource{URI: "neo4j://graph.example.com", Username: "neo4j", Password: "secret"},
			want:  config.ErrInsecureURI,
		},
		{
			name:  "missing password",
			creds: config.StaticSource{URI: "neo4j+s://graph.example.com", Username: "neo4j"},
			want:  config.ErrMissingCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connected := false
			stage := stubQueryStage(graph.NewMemoryClient(), &stubChain{})
			stage.Credentials = tt.creds
			stage.Connect = func(context.Context, config.Credentials) (graph.Client, error) {
				connected = true
				return graph.NewMemoryClient(), nil
			}

			_, err := stage.QueryDatabase(context.Background(), question)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, connected)
		})
	}
}

func TestQueryDatabase_ClosesClientOnFailure(t *testing.T) {
	boom := errors.New("syntax error")
	mem := graph.NewMemoryClient()

	_, err := stubQueryStage(mem, &stubChain{err: boom}).QueryDatabase(context.Background(), question)
	assert.ErrorIs(t, err, boom)
	assert.True(t, mem.Closed())
}

func TestQueryDatabase_ConnectFailure(t *testing.T) {
	boom := errors.New("connection refused")
	stage := stubQueryStage(graph.NewMemoryClient(), &stubChain{})
	stage.Connect = func(context.Context, config.Credentials) (graph.Client, error) {
		return nil, boom
	}

	_, err := stage.QueryDatabase(context.Background(), question)
	assert.ErrorIs(t, err, boom)
}

func TestFindAnswer_PromptContainsInputsVerbatim(t *testing.T) {
	model := llm.NewStaticCompleter(answer)
	stage := NewAnswerStage(staticModels(model), "", "Pinterest")

	got, err := stage.FindAnswer(context.Background(), question, QueryResult{DBResponse: dbResponse, Schema: schemaDesc})
	require.NoError(t, err)
	assert.Equal(t, answer, got)

	prompts := model.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], question)
	assert.Contains(t, prompts[0], dbResponse)
	assert.Contains(t, prompts[0], schemaDesc)
	assert.Contains(t, prompts[0], "customer support chatbot for Pinterest")
}

func TestFindAnswer_RefusalPassesThrough(t *testing.T) {
	const refusal = "I can only help with questions about how your content is shared."
	stage := NewAnswerStage(staticModels(llm.NewStaticCompleter(refusal)), "", "Pinterest")

	got, err := stage.FindAnswer(context.Background(), "What is the weather today?", QueryResult{DBResponse: "[]", Schema: schemaDesc})
	require.NoError(t, err)
	assert.Equal(t, refusal, got)
}

func TestFindAnswer_CustomTemplate(t *testing.T) {
	model := llm.NewStaticCompleter("ok")
	stage := NewAnswerStage(staticModels(model), "Q={{.question}} R={{.db_response}}", "Acme")

	_, err := stage.FindAnswer(context.Background(), "who?", QueryResult{DBResponse: "[]"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Q=who? R=[]"}, model.Prompts())
}

func TestFindAnswer_FreshModelPerCall(t *testing.T) {
	created := 0
	stage := NewAnswerStage(func() (llm.Completer, error) {
		created++
		return llm.NewStaticCompleter(answer), nil
	}, "", "Pinterest")

	for i := 0; i < 2; i++ {
		_, err := stage.FindAnswer(context.Background(), question, QueryResult{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, created)
}

func TestFindAnswer_ModelError(t *testing.T) {
	boom := errors.New("model offline")
	stage := NewAnswerStage(staticModels(llm.NewStaticCompleter().WithError(boom)), "", "Pinterest")

	_, err := stage.FindAnswer(context.Background(), question, QueryResult{})
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_WhoCanSeeMyPin(t *testing.T) {
	mem := graph.NewMemoryClient()
	answerModel := llm.NewStaticCompleter(answer)
	p := &Pipeline{
		Query:  stubQueryStage(mem, &stubChain{response: dbResponse, schema: schemaDesc}),
		Answer: NewAnswerStage(staticModels(answerModel), "", "Pinterest"),
	}

	var out bytes.Buffer
	got, err := p.Ask(context.Background(), question, &out)
	require.NoError(t, err)

	assert.Equal(t, answer, got)
	assert.Equal(t, dbResponse+"\n\n"+answer+"\n", out.String())
	require.Len(t, answerModel.Prompts(), 1)
	assert.Contains(t, answerModel.Prompts()[0], dbResponse)
}

func TestPipeline_QueryFailureStopsBeforeAnswer(t *testing.T) {
	answerModel := llm.NewStaticCompleter(answer)
	p := &Pipeline{
		Query:  stubQueryStage(graph.NewMemoryClient(), &stubChain{err: cypherqa.ErrDangerousQuery}),
		Answer: NewAnswerStage(staticModels(answerModel), "", "Pinterest"),
	}

	var out bytes.Buffer
	_, err := p.Ask(context.Background(), question, &out)
	assert.ErrorIs(t, err, cypherqa.ErrDangerousQuery)
	assert.Zero(t, out.Len())
	assert.Empty(t, answerModel.Prompts())
}

func TestPipeline_WithCypherChain(t *testing.T) {
	schema := graph.Schema{
		NodeProps: map[string][]graph.Property{
			"User": {{Name: "name", Type: "STRING"}},
			"Pin":  {{Name: "title", Type: "STRING"}},
		},
		Relationships: []graph.Relationship{{Start: "User", Type: "SHARES", End: "Pin"}},
	}
	mem := graph.NewMemoryClient().HandleReads(graph.SchemaReads(schema, func(string, map[string]any) (graph.Result, error) {
		return graph.Result{Records: []graph.Record{{"owner": "alice", "shared_with": []any{"bob"}}}}, nil
	}))
	queryModel := llm.NewStaticCompleter("```cypher\nMATCH (o:User)-[:SHARES]->(p:Pin) RETURN o.name AS owner\n```")
	answerModel := llm.NewStaticCompleter(answer)

	stage := stubQueryStage(mem, nil)
	stage.NewModel = staticModels(queryModel)
	stage.NewChain = NewCypherChain
	stage.Options = cypherqa.Options{ReturnDirect: true, ValidateQuery: true}

	p := &Pipeline{Query: stage, Answer: NewAnswerStage(staticModels(answerModel), "", "Pinterest")}

	var out bytes.Buffer
	got, err := p.Ask(context.Background(), question, &out)
	require.NoError(t, err)
	assert.Equal(t, answer, got)
	assert.Equal(t, `{"query":"Who can see my pin?","result":[{"owner":"alice","shared_with":["bob"]}]}`+"\n\n"+answer+"\n", out.String())
	assert.Contains(t, answerModel.Prompts()[0], schema.String())
	assert.True(t, mem.Closed())
}

func TestPipeline_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	boom := errors.New("model offline")

	p := &Pipeline{
		Query:  stubQueryStage(graph.NewMemoryClient(), &stubChain{response: dbResponse, schema: schemaDesc}),
		Answer: NewAnswerStage(staticModels(llm.NewStaticCompleter().WithError(boom)), "", "Pinterest"),
		Tracer: tp.Tracer("test"),
	}

	_, err := p.Ask(context.Background(), question, io.Discard)
	require.ErrorIs(t, err, boom)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	status := map[string]codes.Code{}
	for _, s := range spans {
		status[s.Name] = s.Status.Code
	}
	assert.Equal(t, codes.Unset, status["pipeline.QueryDatabase"])
	assert.Equal(t, codes.Error, status["pipeline.FindAnswer"])
	assert.Equal(t, codes.Error, status["pipeline.Ask"])
}
