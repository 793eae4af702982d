// Package parser implements the hand-written recursive-descent / Pratt
// parser (C3) described in spec §4.2, grounded on the teacher's
// compiler/parser package layout (parser.go entry point, parse_block.go,
// parse_stat.go, parse_exp.go, parse_prefix_exp.go split by concern) but
// generalized from the teacher's fixed precedence ladder to genuine Pratt
// parsing driven by the binding-power table of spec §4.2, and from the
// teacher's panic-based error reporting to returned *luaerr.ParseError
// values (spec §6: "every entry point either returns a result or a typed
// error").
package parser

import (
	"fmt"

	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/internal/lexer"
	"github.com/lollipopkit/luacore/luaerr"
)

type Parser struct {
	lex       *lexer.Lexer
	chunkName string
}

// parseSignal unwinds the recursive descent to Parse's recover once a
// structured error has been built; it carries the *luaerr.ParseError.
type parseSignal struct{ err *luaerr.ParseError }

// Parse parses a complete chunk (spec §6 `parse(source) -> Chunk | ParseError`).
func Parse(source, chunkName string) (block *ast.Block, err error) {
	p := &Parser{lex: lexer.New(source, chunkName), chunkName: chunkName}
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(parseSignal); ok {
				err = sig.err
				return
			}
			panic(r)
		}
	}()

	b := p.parseBlock()
	p.expect(lexer.EOF)
	return b, nil
}

func (self *Parser) fail(pos luaerr.Position, kind luaerr.ParseErrorKind, got, expected, message string) {
	panic(parseSignal{&luaerr.ParseError{
		Source:   self.chunkName,
		Position: pos,
		Kind:     kind,
		Got:      got,
		Expected: expected,
		Message:  message,
	}})
}

func (self *Parser) peek() lexer.Token {
	tok, err := self.lex.Peek()
	if err != nil {
		self.lexErr(err)
	}
	return tok
}

func (self *Parser) lexErr(err error) {
	le, ok := err.(*luaerr.LexError)
	if !ok {
		panic(parseSignal{&luaerr.ParseError{Source: self.chunkName, Kind: luaerr.InvalidSyntax, Message: err.Error()}})
	}
	panic(parseSignal{&luaerr.ParseError{
		Source:   self.chunkName,
		Position: le.Position,
		Kind:     luaerr.InvalidSyntax,
		Message:  le.Error(),
	}})
}

func (self *Parser) next() lexer.Token {
	tok, err := self.lex.Next()
	if err != nil {
		self.lexErr(err)
	}
	return tok
}

func (self *Parser) at(k lexer.Kind) bool {
	return self.peek().Kind == k
}

// expect consumes and returns a token of the given kind or raises a
// structured UnexpectedToken error.
func (self *Parser) expect(k lexer.Kind) lexer.Token {
	tok := self.peek()
	if tok.Kind != k {
		pos := luaerr.Position{Line: tok.Line, Column: tok.Column, Offset: tok.Offset}
		suggestion := ""
		if k == lexer.KwThen || k == lexer.KwEnd || k == lexer.KwDo {
			suggestion = fmt.Sprintf("insert %q", k.String())
		}
		panic(parseSignal{&luaerr.ParseError{
			Source:     self.chunkName,
			Position:   pos,
			Kind:       luaerr.UnexpectedToken,
			Got:        tokenDisplay(tok),
			Expected:   k.String(),
			Suggestion: suggestion,
		}})
	}
	return self.next()
}

func tokenDisplay(t lexer.Token) string {
	if t.Kind == lexer.EOF {
		return "<eof>"
	}
	if t.Text != "" {
		return t.Text
	}
	return t.Kind.String()
}
