package parser

import (
	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/internal/lexer"
	"github.com/lollipopkit/luacore/luaerr"
)

func (self *Parser) parseStat() ast.Stat {
	switch self.peek().Kind {
	case lexer.SepSemi:
		self.next()
		return nil
	case lexer.KwBreak:
		line := self.next().Line
		return &ast.BreakStat{Meta: ast.Meta{Line: line}}
	case lexer.SepDColon:
		return self.parseLabelStat()
	case lexer.KwGoto:
		return self.parseGotoStat()
	case lexer.KwDo:
		return self.parseDoStat()
	case lexer.KwWhile:
		return self.parseWhileStat()
	case lexer.KwRepeat:
		return self.parseRepeatStat()
	case lexer.KwIf:
		return self.parseIfStat()
	case lexer.KwFor:
		return self.parseForStat()
	case lexer.KwFunction:
		return self.parseFunctionDeclStat()
	case lexer.KwLocal:
		return self.parseLocalStat()
	default:
		return self.parseAssignOrCallStat()
	}
}

func (self *Parser) parseLabelStat() *ast.LabelStat {
	line := self.next().Line // ::
	name := self.expect(lexer.Identifier).Text
	self.expect(lexer.SepDColon)
	return &ast.LabelStat{Meta: ast.Meta{Line: line}, Name: name}
}

func (self *Parser) parseGotoStat() *ast.GotoStat {
	line := self.next().Line // goto
	name := self.expect(lexer.Identifier).Text
	return &ast.GotoStat{Meta: ast.Meta{Line: line}, Label: name}
}

func (self *Parser) parseDoStat() *ast.DoStat {
	line := self.next().Line // do
	body := self.parseBlock()
	self.expect(lexer.KwEnd)
	return &ast.DoStat{Meta: ast.Meta{Line: line}, Body: body}
}

func (self *Parser) parseWhileStat() *ast.WhileStat {
	line := self.next().Line // while
	cond := self.parseExp()
	self.expect(lexer.KwDo)
	body := self.parseBlock()
	self.expect(lexer.KwEnd)
	return &ast.WhileStat{Meta: ast.Meta{Line: line}, Cond: cond, Body: body}
}

func (self *Parser) parseRepeatStat() *ast.RepeatStat {
	line := self.next().Line // repeat
	body := self.parseBlock()
	self.expect(lexer.KwUntil)
	cond := self.parseExp()
	return &ast.RepeatStat{Meta: ast.Meta{Line: line}, Body: body, Cond: cond}
}

func (self *Parser) parseIfStat() *ast.IfStat {
	line := self.next().Line // if
	s := &ast.IfStat{Meta: ast.Meta{Line: line}}
	s.Conds = append(s.Conds, self.parseExp())
	self.expect(lexer.KwThen)
	s.Blocks = append(s.Blocks, self.parseBlock())
	for self.at(lexer.KwElseif) {
		self.next()
		s.Conds = append(s.Conds, self.parseExp())
		self.expect(lexer.KwThen)
		s.Blocks = append(s.Blocks, self.parseBlock())
	}
	if self.at(lexer.KwElse) {
		self.next()
		s.Else = self.parseBlock()
	}
	self.expect(lexer.KwEnd)
	return s
}

// for ::= 'for' (numericfor | genericfor) 'do' block 'end'
func (self *Parser) parseForStat() ast.Stat {
	line := self.next().Line // for
	name := self.expect(lexer.Identifier).Text
	if self.at(lexer.OpAssign) {
		return self.parseNumericFor(line, name)
	}
	return self.parseGenericFor(line, name)
}

func (self *Parser) parseNumericFor(line int, name string) *ast.NumericForStat {
	self.expect(lexer.OpAssign)
	start := self.parseExp()
	self.expect(lexer.SepComma)
	limit := self.parseExp()
	var step ast.Exp
	if self.at(lexer.SepComma) {
		self.next()
		step = self.parseExp()
	}
	self.expect(lexer.KwDo)
	body := self.parseBlock()
	self.expect(lexer.KwEnd)
	return &ast.NumericForStat{Meta: ast.Meta{Line: line}, Name: name, Start: start, Limit: limit, Step: step, Body: body}
}

func (self *Parser) parseGenericFor(line int, first string) *ast.GenericForStat {
	names := []string{first}
	for self.at(lexer.SepComma) {
		self.next()
		names = append(names, self.expect(lexer.Identifier).Text)
	}
	self.expect(lexer.KwIn)
	exps := self.parseExpList()
	self.expect(lexer.KwDo)
	body := self.parseBlock()
	self.expect(lexer.KwEnd)
	return &ast.GenericForStat{Meta: ast.Meta{Line: line}, Names: names, Exps: exps, Body: body}
}

// function funcname funcbody
// funcname ::= Name {'.' Name} [':' Name]
func (self *Parser) parseFunctionDeclStat() *ast.FunctionDeclStat {
	line := self.next().Line // function
	path := []string{self.expect(lexer.Identifier).Text}
	method := ""
	for self.at(lexer.SepDot) {
		self.next()
		path = append(path, self.expect(lexer.Identifier).Text)
	}
	if self.at(lexer.SepColon) {
		self.next()
		method = self.expect(lexer.Identifier).Text
	}
	fn := self.parseFuncBody(line, method != "")
	return &ast.FunctionDeclStat{Meta: ast.Meta{Line: line}, Path: path, Method: method, Fn: fn}
}

// local function Name funcbody | local namelist ['=' explist]
func (self *Parser) parseLocalStat() ast.Stat {
	line := self.next().Line // local
	if self.at(lexer.KwFunction) {
		self.next()
		name := self.expect(lexer.Identifier).Text
		fn := self.parseFuncBody(line, false)
		return &ast.LocalFunctionStat{Meta: ast.Meta{Line: line}, Name: name, Fn: fn}
	}

	names := []string{self.expect(lexer.Identifier).Text}
	self.skipAttrib()
	for self.at(lexer.SepComma) {
		self.next()
		names = append(names, self.expect(lexer.Identifier).Text)
		self.skipAttrib()
	}
	var exps []ast.Exp
	if self.at(lexer.OpAssign) {
		self.next()
		exps = self.parseExpList()
	}
	return &ast.LocalStat{Meta: ast.Meta{Line: line}, Names: names, Exps: exps}
}

// skipAttrib is a no-op: Lua 5.3 (this spec's target) has no `<const>`/
// `<close>` attributes, so no token is consumed here.
func (self *Parser) skipAttrib() {}

// functioncall-as-statement, or an assignment (possibly multi-target).
func (self *Parser) parseAssignOrCallStat() ast.Stat {
	line := self.peek().Line
	first := self.parseSuffixedExp()
	if self.at(lexer.OpAssign) || self.at(lexer.SepComma) {
		targets := []ast.Exp{first}
		for self.at(lexer.SepComma) {
			self.next()
			targets = append(targets, self.parseSuffixedExp())
		}
		self.expect(lexer.OpAssign)
		exps := self.parseExpList()
		return &ast.AssignStat{Meta: ast.Meta{Line: line}, Targets: targets, Exps: exps}
	}
	call, ok := first.(*ast.CallExp)
	if !ok {
		tok := self.peek()
		self.fail(luaerr.Position{Line: tok.Line, Column: tok.Column, Offset: tok.Offset},
			luaerr.InvalidSyntax, tokenDisplay(tok), "", "syntax error: expected a statement")
		return nil
	}
	return &ast.CallStat{Meta: ast.Meta{Line: line}, Call: call}
}
