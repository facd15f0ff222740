package syntax

import (
	"testing"

	"github.com/nalgeon/be"
)

func kinds(toks []token) []kind {
	var ks []kind
	for _, tok := range toks {
		ks = append(ks, tok.kind)
	}
	return ks
}

func TestLex(t *testing.T) {
	toks, err := lex(`x: Int = 42; // comment
if (x <= 10 && !b) { print "a\"b"; }`)
	be.Err(t, err, nil)
	want := []kind{
		tokIdent, tokColon, tokIdent, tokAssign, tokInt, tokSemicolon,
		tokIf, tokLParen, tokIdent, tokLessEq, tokInt, tokAndAnd, tokNot, tokIdent, tokRParen,
		tokLBrace, tokPrint, tokString, tokSemicolon, tokRBrace,
		tokEOF,
	}
	be.Equal(t, want, kinds(toks))
	be.Equal(t, `"a\"b"`, toks[17].text)
	be.Equal(t, Pos{Line: 2, Col: 1}, toks[6].pos)
	be.Equal(t, Pos{Line: 1, Col: 10}, toks[4].pos)
}

func TestLexOperators(t *testing.T) {
	toks, err := lex("= == ! != < <= > >= + - * / ^ || &&")
	be.Err(t, err, nil)
	want := []kind{
		tokAssign, tokEq, tokNot, tokNotEq, tokLess, tokLessEq, tokGreater, tokGreaterEq,
		tokPlus, tokMinus, tokStar, tokSlash, tokCaret, tokOrOr, tokAndAnd, tokEOF,
	}
	be.Equal(t, want, kinds(toks))
}

func TestLexErrors(t *testing.T) {
	golden := []struct {
		src        string
		pos        Pos
		incomplete bool
	}{
		{src: "x = 1 & 2;", pos: Pos{Line: 1, Col: 7}},
		{src: "x = 1 | 2;", pos: Pos{Line: 1, Col: 7}},
		{src: "\n  x = #;", pos: Pos{Line: 2, Col: 7}},
		{src: "print \"abc\n\";", pos: Pos{Line: 1, Col: 7}},
		{src: "print \"abc", pos: Pos{Line: 1, Col: 7}, incomplete: true},
	}
	for _, g := range golden {
		_, err := lex(g.src)
		var e *Error
		be.True(t, asSyntaxError(err, &e))
		be.Equal(t, g.pos, e.Pos)
		be.Equal(t, g.incomplete, IsIncomplete(err))
	}
}
