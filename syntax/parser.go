// Package syntax parses the surface syntax of tiny programs into type-checked
// abstract syntax trees.
//
// The grammar of the language, in order of increasing operator precedence:
//
//	program   = { stmt } .
//	stmt      = ident ":" type "=" expr ";"
//	          | ident "=" expr ";"
//	          | "if" "(" expr ")" block [ "else" ( block | ifStmt ) ]
//	          | "while" "(" expr ")" block
//	          | "print" expr ";"
//	          | "skip" ";" .
//	block     = "{" { stmt } "}" .
//	expr      = expr "||" expr
//	          | expr "&&" expr
//	          | expr ( "==" | "!=" ) expr
//	          | expr ( "<" | "<=" | ">" | ">=" ) expr
//	          | expr ( "+" | "-" ) expr
//	          | expr ( "*" | "/" ) expr
//	          | ( "-" | "!" ) expr
//	          | primary "^" expr
//	          | primary .
//	primary   = int | string | "true" | "false" | ident | "(" expr ")" .
//
// Binary operators are left-associative, except for "^" which is
// right-associative.
package syntax

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/mewkiz/pkg/term"
	"github.com/mewspring/tiny/ast"
	"github.com/pkg/errors"
)

// dbg is a logger with the "syntax:" prefix which logs debug messages to
// standard error.
var dbg = log.New(io.Discard, term.YellowBold("syntax:")+" ", 0)

// SetDebugOutput sets the output destination of debug messages.
func SetDebugOutput(w io.Writer) {
	dbg.SetOutput(w)
}

// Parse parses the given source code into a type-checked abstract syntax tree,
// returning the unit holding its nodes and the root code block of the program.
//
// Type errors are reported with the kinds of the ast package, prefixed by the
// source position at which they were detected.
func Parse(src string) (*ast.Unit, ast.BlockID, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, ast.NoBlock, errors.WithStack(err)
	}
	p := &parser{toks: toks, unit: ast.NewUnit()}
	root, err := p.parseProgram()
	if err != nil {
		return nil, ast.NoBlock, errors.WithStack(err)
	}
	return p.unit, root, nil
}

// parser tracks the state of the parser.
type parser struct {
	toks []token
	// Index of the current token.
	cur  int
	unit *ast.Unit
}

// parseProgram parses the statements of a program into its root block.
func (p *parser) parseProgram() (ast.BlockID, error) {
	p.unit.OpenBlock()
	for p.peek().kind != tokEOF {
		if err := p.parseStmtInto(); err != nil {
			return ast.NoBlock, err
		}
	}
	root, err := p.unit.CloseBlock()
	if err != nil {
		return ast.NoBlock, errors.WithStack(err)
	}
	dbg.Printf("parsed program (root block %d)", root)
	return root, nil
}

// parseStmtInto parses a statement and adds it to the innermost code block.
func (p *parser) parseStmtInto() error {
	stmt, err := p.parseStmt()
	if err != nil {
		return err
	}
	if err := p.unit.Add(stmt); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// parseStmt parses a statement.
func (p *parser) parseStmt() (ast.StmtID, error) {
	tok := p.peek()
	switch tok.kind {
	case tokIdent:
		switch p.peekN(1).kind {
		case tokColon:
			return p.parseVarDecl()
		case tokAssign:
			return p.parseVarAssign()
		}
		p.next()
		return 0, p.unexpected(p.peek(), "':' or '=' after identifier")
	case tokIf:
		return p.parseIfStmt()
	case tokWhile:
		return p.parseWhileStmt()
	case tokPrint:
		p.next()
		x, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(tokSemicolon); err != nil {
			return 0, err
		}
		stmt, err := p.unit.NewPrint(x)
		return stmt, p.at(tok.pos, err)
	case tokSkip:
		p.next()
		if _, err := p.expect(tokSemicolon); err != nil {
			return 0, err
		}
		return p.unit.NewSkip(), nil
	}
	return 0, p.unexpected(tok, "statement")
}

// parseVarDecl parses a variable declaration.
//
//	x: Int = 42;
func (p *parser) parseVarDecl() (ast.StmtID, error) {
	name := p.next()
	p.next() // ':'
	typName, err := p.expect(tokIdent)
	if err != nil {
		return 0, err
	}
	typ, ok := ast.ParseDataType(typName.text)
	if !ok {
		return 0, errorf(typName.pos, "unknown type %q", typName.text)
	}
	if _, err := p.expect(tokAssign); err != nil {
		return 0, err
	}
	// The initializer is parsed before the name is bound, so it may not refer
	// to the variable being declared.
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return 0, err
	}
	stmt, err := p.unit.Declare(typ, name.text, value)
	return stmt, p.at(name.pos, err)
}

// parseVarAssign parses an assignment.
//
//	x = x + 1;
func (p *parser) parseVarAssign() (ast.StmtID, error) {
	name := p.next()
	p.next() // '='
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return 0, err
	}
	stmt, err := p.unit.NewVarAssign(name.text, value)
	return stmt, p.at(name.pos, err)
}

// parseIfStmt parses a conditional statement. An "else if" is parsed as an
// else block holding a single conditional statement.
//
//	if (x < 10) { ... } else { ... }
func (p *parser) parseIfStmt() (ast.StmtID, error) {
	tok := p.next()
	cond, err := p.parseCond()
	if err != nil {
		return 0, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return 0, err
	}
	els := ast.NoBlock
	if p.peek().kind == tokElse {
		p.next()
		switch p.peek().kind {
		case tokIf:
			p.unit.OpenBlock()
			if err := p.parseStmtInto(); err != nil {
				return 0, err
			}
			if els, err = p.unit.CloseBlock(); err != nil {
				return 0, errors.WithStack(err)
			}
		default:
			if els, err = p.parseBlock(); err != nil {
				return 0, err
			}
		}
	}
	stmt, err := p.unit.NewIf(cond, then, els)
	return stmt, p.at(tok.pos, err)
}

// parseWhileStmt parses a loop statement.
//
//	while (i < 10) { ... }
func (p *parser) parseWhileStmt() (ast.StmtID, error) {
	tok := p.next()
	cond, err := p.parseCond()
	if err != nil {
		return 0, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return 0, err
	}
	stmt, err := p.unit.NewWhile(cond, body)
	return stmt, p.at(tok.pos, err)
}

// parseCond parses a parenthesized condition.
func (p *parser) parseCond() (ast.ExprID, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return 0, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return 0, err
	}
	return cond, nil
}

// parseBlock parses a code block. Names declared within the block go out of
// scope at its end.
func (p *parser) parseBlock() (ast.BlockID, error) {
	if _, err := p.expect(tokLBrace); err != nil {
		return ast.NoBlock, err
	}
	p.unit.OpenBlock()
	for p.peek().kind != tokRBrace {
		if p.peek().kind == tokEOF {
			return ast.NoBlock, p.unexpected(p.peek(), "'}'")
		}
		if err := p.parseStmtInto(); err != nil {
			return ast.NoBlock, err
		}
	}
	p.next() // '}'
	block, err := p.unit.CloseBlock()
	if err != nil {
		return ast.NoBlock, errors.WithStack(err)
	}
	return block, nil
}

// === [ Expressions ] =========================================================

// level is a precedence level of left-associative binary operators.
type level map[kind]ast.BinaryOp

// levels lists the binary operator precedence levels, from lowest to highest
// precedence.
var levels = []level{
	{tokOrOr: ast.Or},
	{tokAndAnd: ast.And},
	{tokEq: ast.Eq, tokNotEq: ast.Neq},
	{tokLess: ast.Les, tokLessEq: ast.Leq, tokGreater: ast.Gre, tokGreaterEq: ast.Geq},
	{tokPlus: ast.Sum, tokMinus: ast.Sub},
	{tokStar: ast.Mult, tokSlash: ast.Div},
}

// parseExpr parses an expression.
func (p *parser) parseExpr() (ast.ExprID, error) {
	return p.parseBinary(0)
}

// parseBinary parses a left-associative binary expression of the given
// precedence level or higher.
func (p *parser) parseBinary(prec int) (ast.ExprID, error) {
	if prec >= len(levels) {
		return p.parseUnary()
	}
	x, err := p.parseBinary(prec + 1)
	if err != nil {
		return 0, err
	}
	for {
		tok := p.peek()
		op, ok := levels[prec][tok.kind]
		if !ok {
			return x, nil
		}
		p.next()
		y, err := p.parseBinary(prec + 1)
		if err != nil {
			return 0, err
		}
		if x, err = p.unit.NewBinary(x, op, y); err != nil {
			return 0, p.at(tok.pos, err)
		}
	}
}

// parseUnary parses a unary expression.
func (p *parser) parseUnary() (ast.ExprID, error) {
	tok := p.peek()
	var op ast.UnaryOp
	switch tok.kind {
	case tokMinus:
		op = ast.Minus
	case tokNot:
		op = ast.Neg
	default:
		return p.parsePower()
	}
	p.next()
	x, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	e, err := p.unit.NewUnary(op, x)
	return e, p.at(tok.pos, err)
}

// parsePower parses a right-associative exponentiation.
func (p *parser) parsePower() (ast.ExprID, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	tok := p.peek()
	if tok.kind != tokCaret {
		return x, nil
	}
	p.next()
	y, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	e, err := p.unit.NewBinary(x, ast.Pow, y)
	return e, p.at(tok.pos, err)
}

// parsePrimary parses a literal, an identifier or a parenthesized expression.
func (p *parser) parsePrimary() (ast.ExprID, error) {
	tok := p.next()
	switch tok.kind {
	case tokInt:
		val, err := strconv.ParseInt(tok.text, 10, 32)
		if err != nil {
			return 0, errorf(tok.pos, "integer literal %s out of range", tok.text)
		}
		return p.unit.NewInt(int32(val)), nil
	case tokTrue:
		return p.unit.NewBool(true), nil
	case tokFalse:
		return p.unit.NewBool(false), nil
	case tokString:
		val, err := strconv.Unquote(tok.text)
		if err != nil {
			return 0, errorf(tok.pos, "invalid string literal %s", tok.text)
		}
		// Strings are NUL-terminated at run time.
		if strings.IndexByte(val, 0) != -1 {
			return 0, errorf(tok.pos, "NUL byte in string literal %s", tok.text)
		}
		return p.unit.NewString(val), nil
	case tokIdent:
		id, err := p.unit.Lookup(tok.text)
		return id, p.at(tok.pos, err)
	case tokLParen:
		x, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return 0, err
		}
		return x, nil
	}
	return 0, p.unexpected(tok, "expression")
}

// ### [ Helper functions ] ####################################################

// peek returns the current token without consuming it.
func (p *parser) peek() token {
	return p.peekN(0)
}

// peekN returns the token n positions ahead of the current token.
func (p *parser) peekN(n int) token {
	if i := p.cur + n; i < len(p.toks) {
		return p.toks[i]
	}
	// The last token is always EOF.
	return p.toks[len(p.toks)-1]
}

// next consumes and returns the current token.
func (p *parser) next() token {
	tok := p.peek()
	if p.cur < len(p.toks)-1 {
		p.cur++
	}
	return tok
}

// expect consumes the current token if it is of the given kind, and reports
// an error otherwise.
func (p *parser) expect(k kind) (token, error) {
	tok := p.peek()
	if tok.kind != k {
		return token{}, p.unexpected(tok, k.String())
	}
	return p.next(), nil
}

// unexpected returns a syntax error for an unexpected token.
func (p *parser) unexpected(tok token, want string) error {
	got := tok.kind.String()
	if len(tok.text) > 0 && tok.kind != tokString {
		got = fmt.Sprintf("%s %q", got, tok.text)
	}
	err := &Error{
		Pos:        tok.pos,
		Msg:        fmt.Sprintf("expected %s, got %s", want, got),
		Incomplete: tok.kind == tokEOF,
	}
	return errors.WithStack(err)
}

// at annotates the error with the source position at which it occurred. A nil
// error is passed through.
func (p *parser) at(pos Pos, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%v", pos)
}
