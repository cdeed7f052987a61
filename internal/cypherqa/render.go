package cypherqa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/vanshika/graphqa/internal/graph"
)

// directResponse is the shape of a ReturnDirect response.
type directResponse struct {
	Query  string `json:"query"`
	Result []any  `json:"result"`
}

func renderRecords(records []graph.Record) (string, error) {
	return encodeJSON(plainRecords(records))
}

func renderDirect(question string, records []graph.Record) (string, error) {
	return encodeJSON(directResponse{Query: question, Result: plainRecords(records)})
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func plainRecords(records []graph.Record) []any {
	out := make([]any, len(records))
	for i, rec := range records {
		out[i] = plainMap(rec)
	}
	return out
}

func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

// plainValue converts driver values into values encoding/json renders
// faithfully. Nodes and relationships become their properties and paths
// alternate node properties with relationship types. Temporal and spatial
// values use their Cypher text form. Non-finite floats become strings.
func plainValue(v any) any {
	switch x := v.(type) {
	case float64:
		return plainFloat(x)
	case float32:
		return plainFloat(float64(x))
	case dbtype.Node:
		return plainMap(x.Props)
	case dbtype.Relationship:
		return plainMap(x.Props)
	case dbtype.Path:
		out := make([]any, 0, len(x.Nodes)+len(x.Relationships))
		for i, n := range x.Nodes {
			out = append(out, plainMap(n.Props))
			if i < len(x.Relationships) {
				out = append(out, x.Relationships[i].Type)
			}
		}
		return out
	case dbtype.Date:
		return x.String()
	case dbtype.LocalTime:
		return x.String()
	case dbtype.LocalDateTime:
		return x.String()
	case dbtype.Time:
		return x.String()
	case dbtype.Duration:
		return x.String()
	case dbtype.Point2D:
		return x.String()
	case dbtype.Point3D:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plainValue(e)
		}
		return out
	case map[string]any:
		return plainMap(x)
	case graph.Record:
		return plainMap(x)
	default:
		return v
	}
}

func plainFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return f
	}
}
