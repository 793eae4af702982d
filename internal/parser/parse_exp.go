package parser

import (
	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/internal/lexer"
)

// infixBinding is the Pratt (left, right) binding-power pair for a binary
// operator, exactly the precedence table of spec §4.2.
type infixBinding struct {
	left, right int
	op          ast.Kind
}

var infixTable = map[lexer.Kind]infixBinding{
	lexer.KwOr:      {1, 2, ast.OpOr},
	lexer.KwAnd:     {3, 4, ast.OpAnd},
	lexer.OpLt:      {5, 6, ast.OpLt},
	lexer.OpGt:      {5, 6, ast.OpGt},
	lexer.OpLe:      {5, 6, ast.OpLe},
	lexer.OpGe:      {5, 6, ast.OpGe},
	lexer.OpNe:      {5, 6, ast.OpNe},
	lexer.OpEq:      {5, 6, ast.OpEq},
	lexer.OpBOr:     {7, 8, ast.OpBOr},
	lexer.OpBXor:    {9, 10, ast.OpBXor},
	lexer.OpBAnd:    {11, 12, ast.OpBAnd},
	lexer.OpShl:     {13, 14, ast.OpShl},
	lexer.OpShr:     {13, 14, ast.OpShr},
	lexer.OpConcat:  {15, 14, ast.OpConcat}, // right-associative
	lexer.OpAdd:     {17, 18, ast.OpAdd},
	lexer.OpSub:     {17, 18, ast.OpSub},
	lexer.OpMul:     {19, 20, ast.OpMul},
	lexer.OpDiv:     {19, 20, ast.OpDiv},
	lexer.OpFloorDiv: {19, 20, ast.OpFloorDiv},
	lexer.OpMod:     {19, 20, ast.OpMod},
	lexer.OpPow:     {24, 23, ast.OpPow}, // right-associative, binds tighter than unary
}

const unaryOperandBP = 21

// parseExp parses a full expression at the loosest binding power.
func (self *Parser) parseExp() ast.Exp {
	return self.parseExpBP(0)
}

func (self *Parser) parseExpBP(minBP int) ast.Exp {
	left := self.parseUnaryOrAtom()
	for {
		tok := self.peek()
		bind, ok := infixTable[tok.Kind]
		if !ok || bind.left < minBP {
			return left
		}
		line := self.next().Line
		right := self.parseExpBP(bind.right)
		left = &ast.BinopExp{Line: line, Op: bind.op, Left: left, Right: right}
	}
}

func (self *Parser) parseUnaryOrAtom() ast.Exp {
	tok := self.peek()
	var op ast.Kind
	switch tok.Kind {
	case lexer.KwNot:
		op = ast.OpNot
	case lexer.OpSub:
		op = ast.OpUnm
	case lexer.OpLen:
		op = ast.OpLen
	case lexer.OpBXor:
		op = ast.OpBNot
	default:
		return self.parseAtom()
	}
	line := self.next().Line
	operand := self.parseExpBP(unaryOperandBP)
	return &ast.UnopExp{Line: line, Op: op, Exp: operand}
}

func (self *Parser) parseAtom() ast.Exp {
	tok := self.peek()
	switch tok.Kind {
	case lexer.KwNil:
		self.next()
		return &ast.NilExp{Line: tok.Line}
	case lexer.KwTrue:
		self.next()
		return &ast.TrueExp{Line: tok.Line}
	case lexer.KwFalse:
		self.next()
		return &ast.FalseExp{Line: tok.Line}
	case lexer.OpVararg:
		self.next()
		return &ast.VarargExp{Line: tok.Line}
	case lexer.Number:
		self.next()
		if tok.IsInt {
			return &ast.IntegerExp{Line: tok.Line, Int: tok.Int}
		}
		return &ast.FloatExp{Line: tok.Line, Float: tok.Float}
	case lexer.String:
		self.next()
		return &ast.StringExp{Line: tok.Line, Str: tok.Text}
	case lexer.KwFunction:
		self.next()
		return self.parseFuncBody(tok.Line, false)
	case lexer.SepLCurly:
		return self.parseTableExp()
	default:
		return self.parseSuffixedExp()
	}
}

// funcbody ::= '(' [parlist] ')' block 'end'
func (self *Parser) parseFuncBody(line int, isMethod bool) *ast.FunctionExp {
	self.expect(lexer.SepLParen)
	var params []string
	if isMethod {
		params = append(params, "self")
	}
	isVararg := false
	if !self.at(lexer.SepRParen) {
		for {
			if self.at(lexer.OpVararg) {
				self.next()
				isVararg = true
				break
			}
			params = append(params, self.expect(lexer.Identifier).Text)
			if !self.at(lexer.SepComma) {
				break
			}
			self.next()
		}
	}
	self.expect(lexer.SepRParen)
	body := self.parseBlock()
	lastLine := self.expect(lexer.KwEnd).Line
	return &ast.FunctionExp{Line: line, LastLine: lastLine, Params: params, IsVararg: isVararg, Body: body}
}

// tableconstructor ::= '{' [fieldlist] '}'
// field ::= '[' exp ']' '=' exp | Name '=' exp | exp
func (self *Parser) parseTableExp() *ast.TableExp {
	line := self.expect(lexer.SepLCurly).Line
	t := &ast.TableExp{Line: line}
	for !self.at(lexer.SepRCurly) {
		switch {
		case self.at(lexer.SepLBrack):
			self.next()
			key := self.parseExp()
			self.expect(lexer.SepRBrack)
			self.expect(lexer.OpAssign)
			val := self.parseExp()
			t.Keys = append(t.Keys, key)
			t.Vals = append(t.Vals, val)
		case self.at(lexer.Identifier) && self.lookaheadIsAssign():
			name := self.next().Text
			self.next() // =
			val := self.parseExp()
			t.Keys = append(t.Keys, &ast.StringExp{Str: name})
			t.Vals = append(t.Vals, val)
		default:
			val := self.parseExp()
			t.Keys = append(t.Keys, nil)
			t.Vals = append(t.Vals, val)
		}
		if self.at(lexer.SepComma) || self.at(lexer.SepSemi) {
			self.next()
		} else {
			break
		}
	}
	t.LastLine = self.expect(lexer.SepRCurly).Line
	return t
}

// lookaheadIsAssign peeks two tokens ahead to disambiguate `name = exp`
// from a positional expression starting with a bare name.
func (self *Parser) lookaheadIsAssign() bool {
	save := *self.lex
	tok, err := self.lex.Next()
	if err != nil || tok.Kind != lexer.Identifier {
		*self.lex = save
		return false
	}
	nextTok, err := self.lex.Peek()
	*self.lex = save
	return err == nil && nextTok.Kind == lexer.OpAssign
}

func (self *Parser) parseExpList() []ast.Exp {
	exps := []ast.Exp{self.parseExp()}
	for self.at(lexer.SepComma) {
		self.next()
		exps = append(exps, self.parseExp())
	}
	return exps
}

