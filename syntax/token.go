package syntax

import "fmt"

// Pos is a position in the source code.
type Pos struct {
	// Line number, starting at 1.
	Line int
	// Column number in bytes, starting at 1.
	Col int
}

// String returns the string representation of the position.
func (pos Pos) String() string {
	return fmt.Sprintf("%d:%d", pos.Line, pos.Col)
}

// kind is the kind of a token.
type kind uint8

// Token kinds.
const (
	tokEOF kind = iota
	tokIdent
	tokInt
	tokString
	// Keywords.
	tokIf
	tokElse
	tokWhile
	tokPrint
	tokSkip
	tokTrue
	tokFalse
	// Punctuation.
	tokLParen    // (
	tokRParen    // )
	tokLBrace    // {
	tokRBrace    // }
	tokSemicolon // ;
	tokColon     // :
	tokAssign    // =
	tokPlus      // +
	tokMinus     // -
	tokStar      // *
	tokSlash     // /
	tokCaret     // ^
	tokLess      // <
	tokLessEq    // <=
	tokGreater   // >
	tokGreaterEq // >=
	tokEq        // ==
	tokNotEq     // !=
	tokAndAnd    // &&
	tokOrOr      // ||
	tokNot       // !
)

// keywords maps from keyword to token kind.
var keywords = map[string]kind{
	"if":    tokIf,
	"else":  tokElse,
	"while": tokWhile,
	"print": tokPrint,
	"skip":  tokSkip,
	"true":  tokTrue,
	"false": tokFalse,
}

// kindNames maps from token kind to its description in error messages.
var kindNames = map[kind]string{
	tokEOF:       "end of input",
	tokIdent:     "identifier",
	tokInt:       "integer literal",
	tokString:    "string literal",
	tokIf:        "'if'",
	tokElse:      "'else'",
	tokWhile:     "'while'",
	tokPrint:     "'print'",
	tokSkip:      "'skip'",
	tokTrue:      "'true'",
	tokFalse:     "'false'",
	tokLParen:    "'('",
	tokRParen:    "')'",
	tokLBrace:    "'{'",
	tokRBrace:    "'}'",
	tokSemicolon: "';'",
	tokColon:     "':'",
	tokAssign:    "'='",
	tokPlus:      "'+'",
	tokMinus:     "'-'",
	tokStar:      "'*'",
	tokSlash:     "'/'",
	tokCaret:     "'^'",
	tokLess:      "'<'",
	tokLessEq:    "'<='",
	tokGreater:   "'>'",
	tokGreaterEq: "'>='",
	tokEq:        "'=='",
	tokNotEq:     "'!='",
	tokAndAnd:    "'&&'",
	tokOrOr:      "'||'",
	tokNot:       "'!'",
}

// String returns the description of the token kind.
func (k kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// token is a lexical token.
type token struct {
	kind kind
	// Source text of the token.
	text string
	pos  Pos
}
