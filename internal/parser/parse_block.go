package parser

import (
	"github.com/lollipopkit/luacore/internal/ast"
	"github.com/lollipopkit/luacore/internal/lexer"
)

// block ::= {stat} [retstat]
func (self *Parser) parseBlock() *ast.Block {
	b := &ast.Block{}
	for !self.blockFollow() {
		if self.at(lexer.KwReturn) {
			b.Return = self.parseReturnStat()
			break
		}
		if stat := self.parseStat(); stat != nil {
			b.Stats = append(b.Stats, stat)
		}
	}
	return b
}

func (self *Parser) blockFollow() bool {
	switch self.peek().Kind {
	case lexer.EOF, lexer.KwEnd, lexer.KwElse, lexer.KwElseif, lexer.KwUntil:
		return true
	}
	return false
}

// retstat ::= return [explist] [';']
func (self *Parser) parseReturnStat() *ast.ReturnStat {
	line := self.next().Line // consume 'return'
	r := &ast.ReturnStat{Meta: ast.Meta{Line: line}}
	if !self.blockFollow() && !self.at(lexer.SepSemi) {
		r.Exps = self.parseExpList()
	}
	if self.at(lexer.SepSemi) {
		self.next()
	}
	return r
}
