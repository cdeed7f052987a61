package cypherqa

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/graphqa/internal/graph"
)

func TestRenderRecords_GraphValues(t *testing.T) {
	alice := dbtype.Node{Labels: []string{"User"}, Props: map[string]any{"name": "alice"}}
	pin := dbtype.Node{Labels: []string{"Pin"}, Props: map[string]any{"title": "Tea"}}
	owns := dbtype.Relationship{Type: "OWNS", Props: map[string]any{"since": dbtype.Date(time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))}}

	got, err := renderRecords([]graph.Record{{
		"path":  dbtype.Path{Nodes: []dbtype.Node{alice, pin}, Relationships: []dbtype.Relationship{owns}},
		"rel":   owns,
		"at":    dbtype.LocalTime(time.Date(0, 1, 1, 9, 15, 0, 0, time.UTC)),
		"where": dbtype.Point2D{X: 1.5, Y: 2, SpatialRefId: 7203},
		"meta":  map[string]any{"seen": time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"path": [{"name": "alice"}, "OWNS", {"title": "Tea"}],
		"rel": {"since": "2023-01-05"},
		"at": "09:15:00",
		"where": "`+dbtype.Point2D{X: 1.5, Y: 2, SpatialRefId: 7203}.String()+`",
		"meta": {"seen": "2024-03-01T12:00:00Z"}
	}]`, got)
}

func TestRenderRecords_Empty(t *testing.T) {
	got, err := renderRecords(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	got, err = renderDirect("anything", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"query":"anything","result":[]}`, got)
}
