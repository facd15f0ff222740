package syntax

import (
	"github.com/pkg/errors"
)

// lexer tokenizes source code.
type lexer struct {
	src string
	// Offset of the next byte.
	off int
	// Position of the next byte.
	pos Pos
}

// lex returns the tokens of the given source code, terminated by an EOF
// token.
func lex(src string) ([]token, error) {
	l := &lexer{src: src, pos: Pos{Line: 1, Col: 1}}
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

// next returns the next token.
func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	start, pos := l.off, l.pos
	if l.off >= len(l.src) {
		return token{kind: tokEOF, pos: pos}, nil
	}
	c := l.src[l.off]
	switch {
	case isLetter(c):
		for l.off < len(l.src) && (isLetter(l.src[l.off]) || isDigit(l.src[l.off])) {
			l.advance()
		}
		text := l.src[start:l.off]
		if k, ok := keywords[text]; ok {
			return token{kind: k, text: text, pos: pos}, nil
		}
		return token{kind: tokIdent, text: text, pos: pos}, nil
	case isDigit(c):
		for l.off < len(l.src) && isDigit(l.src[l.off]) {
			l.advance()
		}
		return token{kind: tokInt, text: l.src[start:l.off], pos: pos}, nil
	case c == '"':
		l.advance()
		for {
			if l.off >= len(l.src) || l.src[l.off] == '\n' {
				err := &Error{Pos: pos, Msg: "unterminated string literal", Incomplete: l.off >= len(l.src)}
				return token{}, errors.WithStack(err)
			}
			switch l.src[l.off] {
			case '\\':
				l.advance()
				if l.off < len(l.src) {
					l.advance()
				}
				continue
			case '"':
				l.advance()
				return token{kind: tokString, text: l.src[start:l.off], pos: pos}, nil
			}
			l.advance()
		}
	}
	// Punctuation.
	l.advance()
	k := tokEOF
	switch c {
	case '(':
		k = tokLParen
	case ')':
		k = tokRParen
	case '{':
		k = tokLBrace
	case '}':
		k = tokRBrace
	case ';':
		k = tokSemicolon
	case ':':
		k = tokColon
	case '+':
		k = tokPlus
	case '-':
		k = tokMinus
	case '*':
		k = tokStar
	case '/':
		k = tokSlash
	case '^':
		k = tokCaret
	case '=':
		k = l.pick('=', tokEq, tokAssign)
	case '<':
		k = l.pick('=', tokLessEq, tokLess)
	case '>':
		k = l.pick('=', tokGreaterEq, tokGreater)
	case '!':
		k = l.pick('=', tokNotEq, tokNot)
	case '&':
		if l.pick('&', tokAndAnd, tokEOF) == tokEOF {
			return token{}, errorf(pos, "unexpected character '&'; did you mean '&&'?")
		}
		k = tokAndAnd
	case '|':
		if l.pick('|', tokOrOr, tokEOF) == tokEOF {
			return token{}, errorf(pos, "unexpected character '|'; did you mean '||'?")
		}
		k = tokOrOr
	default:
		return token{}, errorf(pos, "unexpected character %q", c)
	}
	return token{kind: k, text: l.src[start:l.off], pos: pos}, nil
}

// pick consumes the next byte and returns yes if it is c, and otherwise
// returns no.
func (l *lexer) pick(c byte, yes, no kind) kind {
	if l.off < len(l.src) && l.src[l.off] == c {
		l.advance()
		return yes
	}
	return no
}

// skipSpaceAndComments skips white space and line comments.
func (l *lexer) skipSpaceAndComments() {
	for l.off < len(l.src) {
		switch c := l.src[l.off]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.off+1 < len(l.src) && l.src[l.off+1] == '/':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// advance consumes one byte.
func (l *lexer) advance() {
	if l.src[l.off] == '\n' {
		l.pos.Line++
		l.pos.Col = 1
	} else {
		l.pos.Col++
	}
	l.off++
}

func isLetter(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
