package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_QueuesAndRecords(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryClient()
	mem.PushReadResult(Result{Records: []Record{{"n": 1}}})

	params := map[string]any{"id": "USR-1"}
	res, err := mem.ExecuteRead(ctx, "MATCH (n) RETURN n", params)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"n": 1}}, res.Records)

	params["id"] = "mutated"
	calls := mem.ReadCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "USR-1", calls[0].Params["id"])

	res, err = mem.ExecuteRead(ctx, "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	_, err = mem.ExecuteWrite(ctx, "CREATE (n)", nil)
	require.NoError(t, err)
	assert.Len(t, mem.WriteCalls(), 1)
}

func TestMemoryClient_Explain(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryClient()

	qt, err := mem.Explain(ctx, "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	assert.Equal(t, QueryTypeReadOnly, qt)
	assert.False(t, qt.Writes())

	mem.WithQueryType(QueryTypeWriteOnly)
	qt, err = mem.Explain(ctx, "CREATE (n)", nil)
	require.NoError(t, err)
	assert.True(t, qt.Writes())
	assert.Equal(t, "w", qt.String())

	mem.WithExplainError(errors.New("syntax error"))
	_, err = mem.Explain(ctx, "MATC (n)", nil)
	assert.EqualError(t, err, "syntax error")
	assert.Len(t, mem.ExplainCalls(), 3)
}

func TestMemoryClient_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	mem := NewMemoryClient().WithError(boom).WithConnectivityError(boom)

	_, err := mem.ExecuteRead(ctx, "RETURN 1", nil)
	assert.ErrorIs(t, err, boom)
	_, err = mem.ExecuteWrite(ctx, "RETURN 1", nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, mem.VerifyConnectivity(ctx), boom)

	require.NoError(t, mem.Close(ctx))
	assert.True(t, mem.Closed())
}

func TestQueryType_UnknownWrites(t *testing.T) {
	assert.True(t, QueryTypeUnknown.Writes())
	assert.Equal(t, "unknown", QueryTypeUnknown.String())
}
