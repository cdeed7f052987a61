package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const (
	nodePropertiesCypher = `CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName, propertyTypes
RETURN nodeLabels, propertyName, propertyTypes`

	relPropertiesCypher = `CALL db.schema.relTypeProperties()
YIELD relType, propertyName, propertyTypes
RETURN relType, propertyName, propertyTypes`

	relationshipPatternsCypher = `MATCH (a)-[r]->(b)
WITH DISTINCT labels(a) AS sources, type(r) AS type, labels(b) AS targets
UNWIND sources AS source
UNWIND targets AS target
RETURN DISTINCT source, type, target
ORDER BY source, type, target
LIMIT 1000`
)

// Property is a named, typed property of a node label or relationship type.
type Property struct {
	Name string
	Type string
}

// Relationship is a (start)-[type]->(end) pattern present in the database.
type Relationship struct {
	Start string
	Type  string
	End   string
}

func (r Relationship) String() string {
	return fmt.Sprintf("(:%s)-[:%s]->(:%s)", r.Start, r.Type, r.End)
}

// Schema summarises node labels, relationship types and their properties.
type Schema struct {
	NodeProps     map[string][]Property
	RelProps      map[string][]Property
	Relationships []Relationship
}

// LoadSchema introspects the database using built-in schema procedures, so no
// plugin is required on the server.
func LoadSchema(ctx context.Context, client Client) (Schema, error) {
	s := Schema{
		NodeProps: make(map[string][]Property),
		RelProps:  make(map[string][]Property),
	}

	nodes, err := client.ExecuteRead(ctx, nodePropertiesCypher, nil)
	if err != nil {
		return Schema{}, fmt.Errorf("load node properties: %w", err)
	}
	for _, rec := range nodes.Records {
		prop, hasProp := propertyFromRecord(rec)
		for _, label := range toStrings(rec["nodeLabels"]) {
			if _, ok := s.NodeProps[label]; !ok {
				s.NodeProps[label] = nil
			}
			if hasProp {
				s.NodeProps[label] = appendProperty(s.NodeProps[label], prop)
			}
		}
	}

	rels, err := client.ExecuteRead(ctx, relPropertiesCypher, nil)
	if err != nil {
		return Schema{}, fmt.Errorf("load relationship properties: %w", err)
	}
	for _, rec := range rels.Records {
		relType := trimRelType(toString(rec["relType"]))
		if relType == "" {
			continue
		}
		if _, ok := s.RelProps[relType]; !ok {
			s.RelProps[relType] = nil
		}
		if prop, ok := propertyFromRecord(rec); ok {
			s.RelProps[relType] = appendProperty(s.RelProps[relType], prop)
		}
	}

	patterns, err := client.ExecuteRead(ctx, relationshipPatternsCypher, nil)
	if err != nil {
		return Schema{}, fmt.Errorf("load relationship patterns: %w", err)
	}
	for _, rec := range patterns.Records {
		s.Relationships = append(s.Relationships, Relationship{
			Start: toString(rec["source"]),
			Type:  toString(rec["type"]),
			End:   toString(rec["target"]),
		})
	}

	return s, nil
}

// HasRelationship reports whether (start)-[relType]->(end) exists.
func (s Schema) HasRelationship(start, relType, end string) bool {
	for _, r := range s.Relationships {
		if r.Start == start && r.Type == relType && r.End == end {
			return true
		}
	}
	return false
}

// HasLabel reports whether label is a known node label.
func (s Schema) HasLabel(label string) bool {
	if _, ok := s.NodeProps[label]; ok {
		return true
	}
	for _, r := range s.Relationships {
		if r.Start == label || r.End == label {
			return true
		}
	}
	return false
}

// String renders the schema as prompt context.
func (s Schema) String() string {
	var b strings.Builder

	b.WriteString("Node properties:\n")
	for _, label := range s.nodeLabels() {
		if props := s.NodeProps[label]; len(props) > 0 {
			fmt.Fprintf(&b, "%s %s\n", label, formatProps(props))
		}
	}

	b.WriteString("Relationship properties:\n")
	for _, rel := range s.relTypes() {
		if props := s.RelProps[rel]; len(props) > 0 {
			fmt.Fprintf(&b, "%s %s\n", rel, formatProps(props))
		}
	}

	b.WriteString("The relationships:\n")
	for _, r := range s.Relationships {
		b.WriteString(r.String())
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (s Schema) nodeLabels() []string {
	labels := make([]string, 0, len(s.NodeProps))
	for label := range s.NodeProps {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func (s Schema) relTypes() []string {
	types := make([]string, 0, len(s.RelProps))
	for rel := range s.RelProps {
		types = append(types, rel)
	}
	sort.Strings(types)
	return types
}

func formatProps(props []Property) string {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = p.Name + ": " + p.Type
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func propertyFromRecord(rec Record) (Property, bool) {
	name := toString(rec["propertyName"])
	if name == "" {
		return Property{}, false
	}
	typ := "ANY"
	if types := toStrings(rec["propertyTypes"]); len(types) > 0 {
		typ = strings.ToUpper(types[0])
	}
	return Property{Name: name, Type: typ}, true
}

func appendProperty(props []Property, p Property) []Property {
	for _, existing := range props {
		if existing.Name == p.Name {
			return props
		}
	}
	props = append(props, p)
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
	return props
}

// trimRelType turns ":`SHARES`" into "SHARES".
func trimRelType(v string) string {
	v = strings.TrimPrefix(v, ":")
	return strings.Trim(v, "`")
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func toStrings(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
