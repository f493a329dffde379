package ddl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vellumdb/vellum/pkg/types"
)

// ParseError represents a parsing error with location information.
type ParseError struct {
	Message  string
	Position int
	Token    Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s (got %q)", e.Position, e.Message, e.Token.Literal)
}

// Parser parses DDL statements into the statement sum type.
type Parser struct {
	input     string
	lexer     *Lexer
	curToken  Token
	peekToken Token
}

// NewParser creates a new Parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		input: input,
		lexer: NewLexer(input),
	}
	// Read two tokens to initialize curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the input as a single DDL statement.
func Parse(input string) (Statement, error) {
	p := NewParser(input)
	stmt, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	if p.curTokenIs(TokenSemicolon) {
		p.nextToken()
	}
	if !p.curTokenIs(TokenEOF) {
		return nil, p.errorf("unexpected input after statement")
	}
	return stmt, nil
}

// ParseScript parses a semicolon-separated sequence of DDL statements.
func ParseScript(input string) ([]Statement, error) {
	p := NewParser(input)
	var stmts []Statement
	for {
		for p.curTokenIs(TokenSemicolon) {
			p.nextToken()
		}
		if p.curTokenIs(TokenEOF) {
			return stmts, nil
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if !p.curTokenIs(TokenSemicolon) && !p.curTokenIs(TokenEOF) {
			return nil, p.errorf("expected ; between statements")
		}
	}
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) curKeyword(kw string) bool {
	return p.curToken.Keyword(kw)
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Position: p.curToken.Pos,
		Token:    p.curToken,
	}
}

// expectKeyword consumes the given keyword or fails.
func (p *Parser) expectKeyword(kw string) error {
	if !p.curKeyword(kw) {
		return p.errorf("expected %s", kw)
	}
	p.nextToken()
	return nil
}

// acceptKeyword consumes the given keyword if present.
func (p *Parser) acceptKeyword(kw string) bool {
	if p.curKeyword(kw) {
		p.nextToken()
		return true
	}
	return false
}

// expectIdent consumes an identifier and returns its literal.
func (p *Parser) expectIdent() (string, error) {
	if !p.curTokenIs(TokenIdent) {
		return "", p.errorf("expected identifier")
	}
	name := p.curToken.Literal
	p.nextToken()
	return name, nil
}

// expect consumes a token of the given type or fails.
func (p *Parser) expect(t TokenType) error {
	if !p.curTokenIs(t) {
		return p.errorf("expected %s", t)
	}
	p.nextToken()
	return nil
}

// ParseStatement parses one DDL statement.
func (p *Parser) ParseStatement() (Statement, error) {
	switch {
	case p.curKeyword("CREATE"):
		return p.parseCreate()
	case p.curKeyword("ALTER"):
		return p.parseAlter()
	case p.curKeyword("DROP"):
		return p.parseDrop()
	default:
		return nil, p.errorf("expected CREATE, ALTER, or DROP")
	}
}

func (p *Parser) parseCreate() (Statement, error) {
	p.nextToken() // CREATE
	switch {
	case p.curKeyword("TABLE"):
		return p.parseCreateTable()
	case p.curKeyword("INDEX"), p.curKeyword("UNIQUE"), p.curKeyword("NULL_FILTERED"):
		return p.parseCreateIndex()
	case p.curKeyword("VIEW"), p.curKeyword("OR"):
		return p.parseCreateView()
	case p.curKeyword("CHANGE"):
		return p.parseCreateChangeStream()
	default:
		return nil, p.errorf("expected TABLE, INDEX, VIEW, or CHANGE STREAM")
	}
}

func (p *Parser) parseAlter() (Statement, error) {
	p.nextToken() // ALTER
	switch {
	case p.curKeyword("TABLE"):
		return p.parseAlterTable()
	case p.curKeyword("CHANGE"):
		return p.parseAlterChangeStream()
	default:
		return nil, p.errorf("expected TABLE or CHANGE STREAM")
	}
}

func (p *Parser) parseDrop() (Statement, error) {
	p.nextToken() // DROP
	switch {
	case p.curKeyword("TABLE"):
		p.nextToken()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &DropTable{Name: name}, nil
	case p.curKeyword("INDEX"):
		p.nextToken()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &DropIndex{Name: name}, nil
	case p.curKeyword("VIEW"):
		p.nextToken()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &DropView{Name: name}, nil
	case p.curKeyword("CHANGE"):
		p.nextToken()
		if err := p.expectKeyword("STREAM"); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &DropChangeStream{Name: name}, nil
	default:
		return nil, p.errorf("expected TABLE, INDEX, VIEW, or CHANGE STREAM")
	}
}

func (p *Parser) parseCreateTable() (*CreateTable, error) {
	p.nextToken() // TABLE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stmt := &CreateTable{Name: name}

	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	for !p.curTokenIs(TokenRParen) {
		if p.curKeyword("CONSTRAINT") || p.curKeyword("FOREIGN") || p.curKeyword("CHECK") {
			con, err := p.parseTableConstraint()
			if err != nil {
				return nil, err
			}
			stmt.Constraints = append(stmt.Constraints, con)
		} else {
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
		}
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	if err := p.expectKeyword("PRIMARY"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("KEY"); err != nil {
		return nil, err
	}
	keys, err := p.parseKeyParts()
	if err != nil {
		return nil, err
	}
	stmt.PrimaryKey = keys

	for p.curTokenIs(TokenComma) {
		p.nextToken()
		switch {
		case p.curKeyword("INTERLEAVE"):
			il, err := p.parseInterleave()
			if err != nil {
				return nil, err
			}
			stmt.Interleave = il
		case p.curKeyword("ROW"):
			p.nextToken()
			if err := p.expectKeyword("DELETION"); err != nil {
				return nil, err
			}
			if err := p.expectKeyword("POLICY"); err != nil {
				return nil, err
			}
			expr, err := p.parseParenRaw()
			if err != nil {
				return nil, err
			}
			stmt.RowDeletionPolicy = expr
		default:
			return nil, p.errorf("expected INTERLEAVE or ROW DELETION POLICY")
		}
	}
	return stmt, nil
}

func (p *Parser) parseInterleave() (*Interleave, error) {
	p.nextToken() // INTERLEAVE
	if err := p.expectKeyword("IN"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("PARENT"); err != nil {
		return nil, err
	}
	parent, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	il := &Interleave{Parent: parent}
	if p.acceptKeyword("ON") {
		if err := p.expectKeyword("DELETE"); err != nil {
			return nil, err
		}
		switch {
		case p.acceptKeyword("CASCADE"):
			il.OnDelete = OnDeleteCascade
		case p.curKeyword("NO"):
			p.nextToken()
			if err := p.expectKeyword("ACTION"); err != nil {
				return nil, err
			}
			il.OnDelete = OnDeleteNoAction
		default:
			return nil, p.errorf("expected CASCADE or NO ACTION")
		}
	}
	return il, nil
}

func (p *Parser) parseColumnDef() (ColumnDef, error) {
	var col ColumnDef
	name, err := p.expectIdent()
	if err != nil {
		return col, err
	}
	col.Name = name

	spec, err := p.parseType()
	if err != nil {
		return col, err
	}
	col.Type = spec

	for {
		switch {
		case p.curKeyword("NOT"):
			p.nextToken()
			if err := p.expectKeyword("NULL"); err != nil {
				return col, err
			}
			col.NotNull = true
		case p.curKeyword("AS"):
			p.nextToken()
			inner, err := p.parseParenRaw()
			if err != nil {
				return col, err
			}
			col.GeneratedExpr = "(" + inner + ")"
			if p.acceptKeyword("STORED") {
				col.GeneratedStored = true
			}
		case p.curKeyword("DEFAULT"):
			p.nextToken()
			inner, err := p.parseParenRaw()
			if err != nil {
				return col, err
			}
			col.DefaultExpr = inner
			col.HasDefault = true
		case p.curKeyword("OPTIONS"):
			p.nextToken()
			if err := p.parseColumnOptions(&col); err != nil {
				return col, err
			}
		default:
			return col, nil
		}
	}
}

func (p *Parser) parseColumnOptions(col *ColumnDef) error {
	if err := p.expect(TokenLParen); err != nil {
		return err
	}
	for {
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		if err := p.expect(TokenEq); err != nil {
			return err
		}
		if !strings.EqualFold(name, "allow_commit_timestamp") {
			return p.errorf("unknown column option %q", name)
		}
		switch {
		case p.acceptKeyword("TRUE"):
			col.AllowCommitTimestamp = true
		case p.acceptKeyword("FALSE"), p.acceptKeyword("NULL"):
			col.AllowCommitTimestamp = false
		default:
			return p.errorf("expected true, false, or null")
		}
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	return p.expect(TokenRParen)
}

func (p *Parser) parseType() (TypeSpec, error) {
	var spec TypeSpec
	if !p.curTokenIs(TokenIdent) {
		return spec, p.errorf("expected type name")
	}
	base := strings.ToUpper(p.curToken.Literal)
	p.nextToken()

	switch base {
	case "INT64":
		spec.Type = types.Scalar(types.Int64)
	case "FLOAT64":
		spec.Type = types.Scalar(types.Float64)
	case "BOOL":
		spec.Type = types.Scalar(types.Bool)
	case "TIMESTAMP":
		spec.Type = types.Scalar(types.Timestamp)
	case "DATE":
		spec.Type = types.Scalar(types.Date)
	case "STRING", "BYTES":
		code := types.String
		if base == "BYTES" {
			code = types.Bytes
		}
		spec.Type = types.Scalar(code)
		if err := p.expect(TokenLParen); err != nil {
			return spec, err
		}
		switch {
		case p.acceptKeyword("MAX"):
			// MaxLength stays nil.
		case p.curTokenIs(TokenNumber):
			n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
			if err != nil {
				return spec, p.errorf("invalid length %q", p.curToken.Literal)
			}
			spec.MaxLength = &n
			p.nextToken()
		default:
			return spec, p.errorf("expected length or MAX")
		}
		if err := p.expect(TokenRParen); err != nil {
			return spec, err
		}
	case "ARRAY":
		if err := p.expect(TokenLt); err != nil {
			return spec, err
		}
		elem, err := p.parseType()
		if err != nil {
			return spec, err
		}
		if elem.Type.IsArray() {
			return spec, p.errorf("nested array types are not supported")
		}
		spec.Type = types.ArrayOf(elem.Type)
		spec.MaxLength = elem.MaxLength
		if err := p.expect(TokenGt); err != nil {
			return spec, err
		}
	default:
		return spec, p.errorf("unknown type %q", base)
	}
	return spec, nil
}

func (p *Parser) parseTableConstraint() (TableConstraint, error) {
	var con TableConstraint
	if p.acceptKeyword("CONSTRAINT") {
		name, err := p.expectIdent()
		if err != nil {
			return con, err
		}
		con.Name = name
	}
	switch {
	case p.curKeyword("FOREIGN"):
		fk, err := p.parseForeignKeyDef()
		if err != nil {
			return con, err
		}
		con.ForeignKey = fk
	case p.curKeyword("CHECK"):
		p.nextToken()
		expr, err := p.parseParenRaw()
		if err != nil {
			return con, err
		}
		con.Check = &CheckDef{Expr: expr}
	default:
		return con, p.errorf("expected FOREIGN KEY or CHECK")
	}
	return con, nil
}

func (p *Parser) parseForeignKeyDef() (*ForeignKeyDef, error) {
	p.nextToken() // FOREIGN
	if err := p.expectKeyword("KEY"); err != nil {
		return nil, err
	}
	cols, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("REFERENCES"); err != nil {
		return nil, err
	}
	refTable, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	refCols, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	return &ForeignKeyDef{
		Columns:           cols,
		ReferencedTable:   refTable,
		ReferencedColumns: refCols,
	}, nil
}

func (p *Parser) parseAlterTable() (Statement, error) {
	p.nextToken() // TABLE
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	switch {
	case p.curKeyword("ADD"):
		p.nextToken()
		if p.acceptKeyword("COLUMN") {
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			return &AlterTableAddColumn{Table: table, Column: col}, nil
		}
		con, err := p.parseTableConstraint()
		if err != nil {
			return nil, err
		}
		return &AlterTableAddConstraint{Table: table, Constraint: con}, nil
	case p.curKeyword("DROP"):
		p.nextToken()
		if err := p.expectKeyword("COLUMN"); err != nil {
			return nil, err
		}
		col, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &AlterTableDropColumn{Table: table, Column: col}, nil
	default:
		return nil, p.errorf("expected ADD or DROP")
	}
}

func (p *Parser) parseCreateIndex() (*CreateIndex, error) {
	stmt := &CreateIndex{}
	for {
		switch {
		case p.acceptKeyword("UNIQUE"):
			stmt.Unique = true
			continue
		case p.acceptKeyword("NULL_FILTERED"):
			stmt.NullFiltered = true
			continue
		}
		break
	}
	if err := p.expectKeyword("INDEX"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stmt.Name = name
	if err := p.expectKeyword("ON"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stmt.Table = table
	keys, err := p.parseKeyParts()
	if err != nil {
		return nil, err
	}
	stmt.Keys = keys
	if p.acceptKeyword("STORING") {
		storing, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Storing = storing
	}
	return stmt, nil
}

func (p *Parser) parseCreateView() (*CreateView, error) {
	stmt := &CreateView{}
	if p.acceptKeyword("OR") {
		if err := p.expectKeyword("REPLACE"); err != nil {
			return nil, err
		}
		stmt.OrReplace = true
	}
	if err := p.expectKeyword("VIEW"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	stmt.Name = name
	if err := p.expectKeyword("SQL"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SECURITY"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("INVOKER"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}

	// The view body is everything up to the end of the statement, kept as
	// raw text.
	start := p.curToken.Pos
	end := start
	for !p.curTokenIs(TokenSemicolon) && !p.curTokenIs(TokenEOF) {
		end = p.curToken.End
		p.nextToken()
	}
	body := strings.TrimSpace(p.input[start:end])
	if body == "" {
		return nil, p.errorf("view body cannot be empty")
	}
	stmt.Body = body
	return stmt, nil
}

func (p *Parser) parseCreateChangeStream() (*CreateChangeStream, error) {
	p.nextToken() // CHANGE
	if err := p.expectKeyword("STREAM"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	forClause, err := p.parseForClause()
	if err != nil {
		return nil, err
	}
	return &CreateChangeStream{Name: name, For: forClause}, nil
}

func (p *Parser) parseAlterChangeStream() (*AlterChangeStream, error) {
	p.nextToken() // CHANGE
	if err := p.expectKeyword("STREAM"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	forClause, err := p.parseForClause()
	if err != nil {
		return nil, err
	}
	return &AlterChangeStream{Name: name, For: forClause}, nil
}

func (p *Parser) parseForClause() (ForClause, error) {
	var fc ForClause
	if err := p.expectKeyword("FOR"); err != nil {
		return fc, err
	}
	if p.acceptKeyword("ALL") {
		fc.All = true
		return fc, nil
	}
	for {
		table, err := p.expectIdent()
		if err != nil {
			return fc, err
		}
		tgt := StreamTarget{Table: table}
		if p.curTokenIs(TokenLParen) {
			p.nextToken()
			tgt.HasColumns = true
			if p.curTokenIs(TokenRParen) {
				return fc, p.errorf("change stream column list cannot be empty")
			}
			for {
				col, err := p.expectIdent()
				if err != nil {
					return fc, err
				}
				tgt.Columns = append(tgt.Columns, col)
				if p.curTokenIs(TokenComma) {
					p.nextToken()
					continue
				}
				break
			}
			if err := p.expect(TokenRParen); err != nil {
				return fc, err
			}
		}
		fc.Targets = append(fc.Targets, tgt)
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		return fc, nil
	}
}

// parseKeyParts parses "(col [ASC|DESC], ...)".
func (p *Parser) parseKeyParts() ([]KeyPart, error) {
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var keys []KeyPart
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		part := KeyPart{Column: name}
		if p.acceptKeyword("DESC") {
			part.Desc = true
		} else {
			p.acceptKeyword("ASC")
		}
		keys = append(keys, part)
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return keys, nil
}

// parseIdentList parses "(name, ...)".
func (p *Parser) parseIdentList() ([]string, error) {
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return names, nil
}

// parseParenRaw consumes a balanced parenthesized group and returns the raw
// inner text, preserving the original spelling of the expression.
func (p *Parser) parseParenRaw() (string, error) {
	if !p.curTokenIs(TokenLParen) {
		return "", p.errorf("expected (")
	}
	start := p.curToken.Pos
	depth := 0
	for {
		switch p.curToken.Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				inner := strings.TrimSpace(p.input[start+1 : p.curToken.Pos])
				p.nextToken()
				return inner, nil
			}
		case TokenEOF:
			return "", p.errorf("unbalanced parentheses")
		}
		p.nextToken()
	}
}
