package cypherqa

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/vanshika/graphqa/internal/graph"
)

var (
	// (left)<-[rel]-(right) or (left)-[rel]->(right); chains are walked one hop at a time.
	relPattern   = regexp.MustCompile(`\(([^()]*)\)\s*(<?)-\s*\[([^\[\]]*)\]\s*-(>?)\s*\(([^()]*)\)`)
	labeledNode  = regexp.MustCompile("\\(\\s*(\\w+)\\s*:\\s*`?(\\w+)`?")
	nodeVarLabel = regexp.MustCompile("^\\s*(\\w*)\\s*(?::\\s*`?(\\w+)`?)?")
	relTypeName  = regexp.MustCompile(":\\s*`?(\\w+)`?")
)

type edit struct {
	start, end  int
	replacement string
}

// correctDirections flips relationship arrows that contradict the schema when
// the reverse direction exists. A typed, directed hop between two known labels
// that exists in neither direction is reported as an error. Hops with unknown
// labels, alternative types or no direction are left untouched.
func correctDirections(cypher string, schema graph.Schema) (string, error) {
	labels := make(map[string]string)
	for _, m := range labeledNode.FindAllStringSubmatch(cypher, -1) {
		if _, ok := labels[m[1]]; !ok {
			labels[m[1]] = m[2]
		}
	}

	var edits []edit
	pos := 0
	for pos < len(cypher) {
		loc := relPattern.FindStringSubmatchIndex(cypher[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		// Resume at the right node so chained hops share it.
		pos = loc[10] - 1

		left := cypher[loc[2]:loc[3]]
		leftArrow := cypher[loc[4]:loc[5]] == "<"
		rel := cypher[loc[6]:loc[7]]
		rightArrow := cypher[loc[8]:loc[9]] == ">"
		right := cypher[loc[10]:loc[11]]

		if leftArrow == rightArrow {
			continue
		}
		relType, ok := singleRelType(rel)
		if !ok {
			continue
		}
		leftLabel := nodeLabel(left, labels)
		rightLabel := nodeLabel(right, labels)
		if leftLabel == "" || rightLabel == "" {
			continue
		}

		start, end := leftLabel, rightLabel
		if leftArrow {
			start, end = rightLabel, leftLabel
		}
		if schema.HasRelationship(start, relType, end) {
			continue
		}
		if !schema.HasRelationship(end, relType, start) {
			return "", fmt.Errorf("%w: no (:%s)-[:%s]-(:%s) relationship in schema", ErrInvalidQuery, start, relType, end)
		}

		replacement := "-[" + rel + "]->"
		if rightArrow {
			replacement = "<-[" + rel + "]-"
		}
		edits = append(edits, edit{start: loc[3] + 1, end: loc[10] - 1, replacement: replacement})
	}

	if len(edits) == 0 {
		return cypher, nil
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := cypher
	for _, e := range edits {
		out = out[:e.start] + e.replacement + out[e.end:]
	}
	return out, nil
}

func nodeLabel(node string, labels map[string]string) string {
	m := nodeVarLabel.FindStringSubmatch(node)
	if m == nil {
		return ""
	}
	if m[2] != "" {
		return m[2]
	}
	return labels[m[1]]
}

func singleRelType(rel string) (string, bool) {
	if i := strings.IndexByte(rel, '{'); i >= 0 {
		rel = rel[:i]
	}
	if strings.Contains(rel, "|") {
		return "", false
	}
	m := relTypeName.FindStringSubmatch(rel)
	if m == nil {
		return "", false
	}
	return m[1], true
}
