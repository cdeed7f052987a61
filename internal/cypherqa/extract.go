package cypherqa

import (
	"regexp"
	"strings"
)

var (
	// The language tag only counts when it ends the opening fence line, so
	// "CYPHER 5 MATCH ..." keeps its version prefix.
	fencedBlock = regexp.MustCompile("(?is)```(?:cypher[ \t]*\r?\n)?(.*?)```")

	literals = regexp.MustCompile("'(?:[^'\\\\]|\\\\.)*'|\"(?:[^\"\\\\]|\\\\.)*\"|`(?:[^`]|``)*`")

	// A clause keyword never follows a dot or sits inside an identifier.
	writeClauses = regexp.MustCompile(`(?i)(?:^|[^.\w$])(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP|FOREACH|LOAD\s+CSV)\b`)
)

// extractCypher pulls the statement out of a model completion. Models often
// wrap it in a fenced block, sometimes tagged with the language name.
func extractCypher(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	return strings.TrimSpace(text)
}

// looksLikeWrite is the keyword fallback used when the server is not asked to
// plan the statement. String literals and quoted identifiers are blanked
// before matching.
func looksLikeWrite(cypher string) bool {
	return writeClauses.MatchString(literals.ReplaceAllString(cypher, " "))
}
