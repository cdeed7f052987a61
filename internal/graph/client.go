package graph

import (
	"context"
	"errors"
	"time"
)

// Client defines the contract the QA chain, the schema loader and the seed
// repository need from the underlying graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	// Explain plans cypher without running it and reports its statement type.
	// Syntax and semantic errors surface here.
	Explain(ctx context.Context, cypher string, params map[string]any) (QueryType, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// QueryType classifies a statement by its effect on the database.
type QueryType int

const (
	QueryTypeUnknown QueryType = iota
	QueryTypeReadOnly
	QueryTypeReadWrite
	QueryTypeWriteOnly
	QueryTypeSchemaWrite
)

// Writes reports whether statements of this type can modify data or schema.
// Unknown statements are treated as writes.
func (t QueryType) Writes() bool {
	return t != QueryTypeReadOnly
}

func (t QueryType) String() string {
	switch t {
	case QueryTypeReadOnly:
		return "r"
	case QueryTypeReadWrite:
		return "rw"
	case QueryTypeWriteOnly:
		return "w"
	case QueryTypeSchemaWrite:
		return "s"
	default:
		return "unknown"
	}
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
	// Timeout bounds each call. Zero leaves calls unbounded.
	Timeout time.Duration
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
