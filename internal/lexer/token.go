// Token kinds for the Lua 5.3 lexer (C2).
package lexer

// Kind enumerates the token kinds. Comment is declared but never produced:
// the lexer skips comments.
type Kind int

const (
	EOF Kind = iota
	Identifier
	Number
	String
	Comment

	// keywords
	KwAnd
	KwBreak
	KwDo
	KwElse
	KwElseif
	KwEnd
	KwFalse
	KwFor
	KwFunction
	KwGoto
	KwIf
	KwIn
	KwLocal
	KwNil
	KwNot
	KwOr
	KwRepeat
	KwReturn
	KwThen
	KwTrue
	KwUntil
	KwWhile

	// operators
	OpAdd      // +
	OpSub      // -
	OpMul      // *
	OpDiv      // /
	OpFloorDiv // //
	OpMod      // %
	OpPow      // ^
	OpLen      // #
	OpBAnd     // &
	OpBOr      // |
	OpBXor     // ~ (binary) / unary bnot
	OpShl      // <<
	OpShr      // >>
	OpEq       // ==
	OpNe       // ~=
	OpLe       // <=
	OpGe       // >=
	OpLt       // <
	OpGt       // >
	OpAssign   // =
	OpConcat   // ..
	OpVararg   // ...

	// delimiters
	SepSemi   // ;
	SepColon  // :
	SepDColon // ::
	SepComma  // ,
	SepDot    // .
	SepLParen
	SepRParen
	SepLBrack
	SepRBrack
	SepLCurly
	SepRCurly
)

var names = map[Kind]string{
	EOF:        "<eof>",
	Identifier: "identifier",
	Number:     "number",
	String:     "string",
	Comment:    "comment",

	KwAnd: "and", KwBreak: "break", KwDo: "do", KwElse: "else",
	KwElseif: "elseif", KwEnd: "end", KwFalse: "false", KwFor: "for",
	KwFunction: "function", KwGoto: "goto", KwIf: "if", KwIn: "in",
	KwLocal: "local", KwNil: "nil", KwNot: "not", KwOr: "or",
	KwRepeat: "repeat", KwReturn: "return", KwThen: "then",
	KwTrue: "true", KwUntil: "until", KwWhile: "while",

	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpFloorDiv: "//",
	OpMod: "%", OpPow: "^", OpLen: "#", OpBAnd: "&", OpBOr: "|",
	OpBXor: "~", OpShl: "<<", OpShr: ">>", OpEq: "==", OpNe: "~=",
	OpLe: "<=", OpGe: ">=", OpLt: "<", OpGt: ">", OpAssign: "=",
	OpConcat: "..", OpVararg: "...",

	SepSemi: ";", SepColon: ":", SepDColon: "::", SepComma: ",",
	SepDot: ".", SepLParen: "(", SepRParen: ")", SepLBrack: "[",
	SepRBrack: "]", SepLCurly: "{", SepRCurly: "}",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "<unknown>"
}

// Keywords maps the reserved words to their token kind.
var Keywords = map[string]Kind{
	"and": KwAnd, "break": KwBreak, "do": KwDo, "else": KwElse,
	"elseif": KwElseif, "end": KwEnd, "false": KwFalse, "for": KwFor,
	"function": KwFunction, "goto": KwGoto, "if": KwIf, "in": KwIn,
	"local": KwLocal, "nil": KwNil, "not": KwNot, "or": KwOr,
	"repeat": KwRepeat, "return": KwReturn, "then": KwThen,
	"true": KwTrue, "until": KwUntil, "while": KwWhile,
}

// Token is one lexical unit with its source position.
type Token struct {
	Kind   Kind
	Text   string // identifier text, raw operator text, or decoded string payload
	Int    int64  // populated when Kind == Number and the literal is an integer
	Float  float64
	IsInt  bool // true if Number token is an integer literal
	Line   int
	Column int
	Offset int
}
