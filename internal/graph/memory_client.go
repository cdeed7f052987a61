package graph

import (
	"context"
	"strings"
	"sync"
)

// ReadHandler answers a read query in place of the canned result queue.
type ReadHandler func(cypher string, params map[string]any) (Result, error)

// MemoryClient is a simple in-memory implementation of the Client interface used
// for unit testing chain and repository logic without a running graph database.
type MemoryClient struct {
	mu           sync.Mutex
	writeCalls   []ExecutedQuery
	readCalls    []ExecutedQuery
	explainCalls []ExecutedQuery
	readResults  []Result
	writeResults []Result
	readHandler  ReadHandler
	queryType    QueryType
	explainErr   error
	err          error
	connectivity error
	closed       bool
}

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// NewMemoryClient instantiates the in-memory client. Explain reports read-only
// statements unless configured otherwise.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{queryType: QueryTypeReadOnly}
}

// WithError configures the client to return the provided error for subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// WithQueryType sets the statement type reported by Explain.
func (m *MemoryClient) WithQueryType(t QueryType) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryType = t
	return m
}

// WithExplainError makes Explain fail, as the server does for invalid cypher.
func (m *MemoryClient) WithExplainError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.explainErr = err
	return m
}

// HandleReads routes every ExecuteRead call to fn instead of the result queue.
func (m *MemoryClient) HandleReads(fn ReadHandler) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readHandler = fn
	return m
}

// PushReadResult appends a result that will be returned on the next ExecuteRead call.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, res)
}

// PushWriteResult appends a result that will be returned on the next ExecuteWrite call.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults = append(m.writeResults, res)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}

	m.writeCalls = append(m.writeCalls, ExecutedQuery{
		Query:  cypher,
		Params: cloneMap(params),
	})

	if len(m.writeResults) == 0 {
		return Result{}, nil
	}

	res := m.writeResults[0]
	m.writeResults = m.writeResults[1:]
	return res, nil
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}

	m.readCalls = append(m.readCalls, ExecutedQuery{
		Query:  cypher,
		Params: cloneMap(params),
	})

	if m.readHandler != nil {
		return m.readHandler(cypher, params)
	}

	if len(m.readResults) == 0 {
		return Result{}, nil
	}

	res := m.readResults[0]
	m.readResults = m.readResults[1:]
	return res, nil
}

func (m *MemoryClient) Explain(_ context.Context, cypher string, params map[string]any) (QueryType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.explainCalls = append(m.explainCalls, ExecutedQuery{
		Query:  cypher,
		Params: cloneMap(params),
	})

	if m.explainErr != nil {
		return QueryTypeUnknown, m.explainErr
	}
	return m.queryType, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MemoryClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writeCalls...)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.readCalls...)
}

// ExplainCalls returns a snapshot of explained statements.
func (m *MemoryClient) ExplainCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.explainCalls...)
}

// SchemaReads returns a ReadHandler that serves the introspection queries
// issued by LoadSchema from s, and falls through to next for anything else.
func SchemaReads(s Schema, next ReadHandler) ReadHandler {
	return func(cypher string, params map[string]any) (Result, error) {
		switch {
		case strings.Contains(cypher, "db.schema.nodeTypeProperties"):
			return nodePropsResult(s), nil
		case strings.Contains(cypher, "db.schema.relTypeProperties"):
			return relPropsResult(s), nil
		case cypher == relationshipPatternsCypher:
			return relationshipsResult(s), nil
		}
		if next == nil {
			return Result{}, nil
		}
		return next(cypher, params)
	}
}

func nodePropsResult(s Schema) Result {
	var res Result
	for _, label := range s.nodeLabels() {
		props := s.NodeProps[label]
		if len(props) == 0 {
			res.Records = append(res.Records, Record{"nodeLabels": []any{label}, "propertyName": nil, "propertyTypes": nil})
			continue
		}
		for _, p := range props {
			res.Records = append(res.Records, Record{
				"nodeLabels":    []any{label},
				"propertyName":  p.Name,
				"propertyTypes": []any{p.Type},
			})
		}
	}
	return res
}

func relPropsResult(s Schema) Result {
	var res Result
	for _, rel := range s.relTypes() {
		for _, p := range s.RelProps[rel] {
			res.Records = append(res.Records, Record{
				"relType":       ":`" + rel + "`",
				"propertyName":  p.Name,
				"propertyTypes": []any{p.Type},
			})
		}
	}
	return res
}

func relationshipsResult(s Schema) Result {
	var res Result
	for _, r := range s.Relationships {
		res.Records = append(res.Records, Record{"source": r.Start, "type": r.Type, "target": r.End})
	}
	return res
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
