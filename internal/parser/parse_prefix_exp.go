package parser

import (
	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/internal/lexer"
	"github.com/lollipopkit/luacore/luaerr"
)

// prefixexp ::= Name | '(' exp ')'
// suffixedexp ::= prefixexp { '.' Name | '[' exp ']' | ':' Name args | args }
func (self *Parser) parseSuffixedExp() ast.Exp {
	exp := self.parsePrimaryExp()
	for {
		tok := self.peek()
		switch tok.Kind {
		case lexer.SepDot:
			self.next()
			name := self.expect(lexer.Identifier).Text
			exp = &ast.IndexExp{Line: tok.Line, Prefix: exp, Name: name}
		case lexer.SepLBrack:
			self.next()
			key := self.parseExp()
			self.expect(lexer.SepRBrack)
			exp = &ast.IndexExp{Line: tok.Line, Prefix: exp, Key: key}
		case lexer.SepColon:
			self.next()
			method := self.expect(lexer.Identifier).Text
			args, lastLine := self.parseArgs()
			exp = &ast.CallExp{Line: tok.Line, LastLine: lastLine, Prefix: exp, Method: method, Args: args}
		case lexer.SepLParen, lexer.String, lexer.SepLCurly:
			args, lastLine := self.parseArgs()
			exp = &ast.CallExp{Line: tok.Line, LastLine: lastLine, Prefix: exp, Args: args}
		default:
			return exp
		}
	}
}

func (self *Parser) parsePrimaryExp() ast.Exp {
	tok := self.peek()
	switch tok.Kind {
	case lexer.Identifier:
		self.next()
		return &ast.NameExp{Line: tok.Line, Name: tok.Text}
	case lexer.SepLParen:
		self.next()
		inner := self.parseExp()
		self.expect(lexer.SepRParen)
		return &ast.ParenExp{Exp: inner}
	default:
		self.fail2(tok, "unexpected symbol")
		return nil
	}
}

// args ::= '(' [explist] ')' | tableconstructor | LiteralString
func (self *Parser) parseArgs() ([]ast.Exp, int) {
	tok := self.peek()
	switch tok.Kind {
	case lexer.SepLParen:
		self.next()
		var args []ast.Exp
		if !self.at(lexer.SepRParen) {
			args = self.parseExpList()
		}
		last := self.expect(lexer.SepRParen)
		return args, last.Line
	case lexer.SepLCurly:
		t := self.parseTableExp()
		return []ast.Exp{t}, t.LastLine
	case lexer.String:
		self.next()
		return []ast.Exp{&ast.StringExp{Line: tok.Line, Str: tok.Text}}, tok.Line
	default:
		self.fail2(tok, "function arguments expected")
		return nil, tok.Line
	}
}

func (self *Parser) fail2(tok lexer.Token, message string) {
	self.fail(posOf(tok), luaerr.InvalidSyntax, tokenDisplay(tok), "", message)
}

func posOf(tok lexer.Token) luaerr.Position {
	return luaerr.Position{Line: tok.Line, Column: tok.Column, Offset: tok.Offset}
}
