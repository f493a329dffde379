package ddl

import "strings"

// exprKeywords are identifiers inside expressions that never name columns.
var exprKeywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NULL": true, "TRUE": true,
	"FALSE": true, "IS": true, "IN": true, "LIKE": true, "BETWEEN": true,
	"CASE": true, "WHEN": true, "THEN": true, "ELSE": true, "END": true,
	"INTERVAL": true, "DAY": true, "HOUR": true, "MINUTE": true,
	"SECOND": true, "AS": true, "CAST": true, "MOD": true, "DIV": true,
}

// ExtractColumnRefs returns the column names referenced by an expression,
// in first-reference order, deduplicated case-insensitively. The analysis
// is lexical: identifiers that are not keywords, not function names
// (identifier followed by an opening paren), and not qualified-path tails
// are treated as column references. Validators intersect the result with
// the owning table's columns.
func ExtractColumnRefs(expr string) []string {
	lexer := NewLexer(expr)
	var refs []string
	seen := make(map[string]bool)

	prev := Token{Type: TokenEOF}
	cur := lexer.NextToken()
	for cur.Type != TokenEOF {
		next := lexer.NextToken()
		if cur.Type == TokenIdent &&
			!exprKeywords[strings.ToUpper(cur.Literal)] &&
			next.Type != TokenLParen &&
			prev.Type != TokenDot {
			key := strings.ToLower(cur.Literal)
			if !seen[key] {
				seen[key] = true
				refs = append(refs, cur.Literal)
			}
		}
		prev = cur
		cur = next
	}
	return refs
}

// SelectItem is one output column of a simple single-table SELECT.
type SelectItem struct {
	Column string
	Alias  string
}

// Name returns the output column name: the alias when present, otherwise
// the source column name.
func (s SelectItem) Name() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Column
}

// ParseSimpleSelect resolves a view body of the form
// "SELECT col [AS alias], ... FROM table". Anything beyond that shape
// (expressions, joins, stars, subqueries) is out of this front end's reach
// and returns an error, which the updater surfaces as an analysis failure.
func ParseSimpleSelect(body string) ([]SelectItem, string, error) {
	p := NewParser(body)
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, "", err
	}

	var items []SelectItem
	for {
		col, err := p.expectIdent()
		if err != nil {
			return nil, "", err
		}
		if strings.EqualFold(col, "FROM") {
			return nil, "", p.errorf("empty select list")
		}
		item := SelectItem{Column: col}
		if p.acceptKeyword("AS") {
			alias, err := p.expectIdent()
			if err != nil {
				return nil, "", err
			}
			item.Alias = alias
		}
		items = append(items, item)
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, "", err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, "", err
	}
	if !p.curTokenIs(TokenEOF) && !p.curTokenIs(TokenSemicolon) {
		return nil, "", p.errorf("unsupported view body syntax")
	}
	return items, table, nil
}
