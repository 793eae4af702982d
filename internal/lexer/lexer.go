package lexer

import (
	"strconv"
	"strings"

	"github.com/lollipopkit/luacore/luaerr"
)

// Lexer turns a byte string into a token stream with source positions
// (spec §4.1). It is hand-rolled byte-at-a-time scanning, the way the
// teacher's lexer walks `self.chunk` directly — here widened from the
// teacher's regexp-driven scan to cover Lua's long-bracket strings/comments
// and hex float literals, which have no convenient single-regexp form.
type Lexer struct {
	source     string
	chunkName  string
	pos        int // byte offset
	line       int
	col        int
	peeked     *Token
	peekedErr  error
}

func New(source, chunkName string) *Lexer {
	source = stripShebang(source)
	return &Lexer{source: source, chunkName: chunkName, pos: 0, line: 1, col: 1}
}

func stripShebang(s string) string {
	if strings.HasPrefix(s, "#!") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			return s[idx:]
		}
		return ""
	}
	return s
}

func (self *Lexer) position() luaerr.Position {
	return luaerr.Position{Line: self.line, Column: self.col, Offset: self.pos}
}

func (self *Lexer) errAt(pos luaerr.Position, kind luaerr.LexErrorKind, detail string) error {
	return &luaerr.LexError{Kind: kind, Source: self.chunkName, Position: pos, Detail: detail}
}

func (self *Lexer) eof() bool { return self.pos >= len(self.source) }

func (self *Lexer) byteAt(off int) byte {
	if self.pos+off >= len(self.source) {
		return 0
	}
	return self.source[self.pos+off]
}

func (self *Lexer) cur() byte { return self.byteAt(0) }

func (self *Lexer) advance() byte {
	c := self.source[self.pos]
	self.pos++
	if c == '\n' {
		self.line++
		self.col = 1
	} else {
		self.col++
	}
	return c
}

func (self *Lexer) startsWith(s string) bool {
	return strings.HasPrefix(self.source[self.pos:], s)
}

// Peek returns the next token without consuming it (used by the parser's
// one-token lookahead, spec §4.2).
func (self *Lexer) Peek() (Token, error) {
	if self.peeked == nil {
		tok, err := self.scan()
		self.peeked = &tok
		self.peekedErr = err
	}
	return *self.peeked, self.peekedErr
}

// Next consumes and returns the next token.
func (self *Lexer) Next() (Token, error) {
	if self.peeked != nil {
		tok, err := *self.peeked, self.peekedErr
		self.peeked = nil
		self.peekedErr = nil
		return tok, err
	}
	return self.scan()
}

func (self *Lexer) scan() (Token, error) {
	if err := self.skipTrivia(); err != nil {
		return Token{}, err
	}
	startPos := self.position()
	if self.eof() {
		return Token{Kind: EOF, Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}, nil
	}

	c := self.cur()
	switch {
	case isDigit(c) || (c == '.' && isDigit(self.byteAt(1))):
		return self.scanNumber(startPos)
	case c == '_' || isLetter(c):
		return self.scanIdentifier(startPos), nil
	case c == '\'' || c == '"':
		return self.scanShortString(startPos)
	case c == '[' && (self.byteAt(1) == '[' || self.byteAt(1) == '='):
		if level, ok := self.longBracketLevel(0); ok {
			return self.scanLongString(startPos, level)
		}
	}

	return self.scanOperator(startPos)
}

func (self *Lexer) skipTrivia() error {
	for !self.eof() {
		c := self.cur()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f':
			self.advance()
		case self.startsWith("--"):
			self.advance()
			self.advance()
			if self.cur() == '[' {
				if level, ok := self.longBracketLevel(0); ok {
					startPos := self.position()
					if _, err := self.scanLongBracketBody(level); err != nil {
						return self.errAt(startPos, luaerr.UnclosedComment, err.Error())
					}
					continue
				}
			}
			for !self.eof() && self.cur() != '\n' {
				self.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

// longBracketLevel checks whether the source at pos+offset begins a long
// bracket `[`, `=`*n, `[` and returns n; ok is false otherwise. It does not
// consume input.
func (self *Lexer) longBracketLevel(offset int) (int, bool) {
	if self.byteAt(offset) != '[' {
		return 0, false
	}
	n := 0
	for self.byteAt(offset+1+n) == '=' {
		n++
	}
	if self.byteAt(offset+1+n) == '[' {
		return n, true
	}
	return 0, false
}

// scanLongBracketBody consumes the opening `[=*[`, the body, and the
// closing `]=*]`, returning the raw body text.
func (self *Lexer) scanLongBracketBody(level int) (string, error) {
	// consume opening
	self.advance() // [
	for i := 0; i < level; i++ {
		self.advance() // =
	}
	self.advance() // [

	// a newline immediately after the opening bracket is not part of the body
	if self.cur() == '\r' || self.cur() == '\n' {
		first := self.advance()
		if (first == '\r' && self.cur() == '\n') || (first == '\n' && self.cur() == '\r') {
			self.advance()
		}
	}

	closer := "]" + strings.Repeat("=", level) + "]"
	start := self.pos
	for {
		if self.eof() {
			return "", errUnclosed
		}
		if self.startsWith(closer) {
			body := self.source[start:self.pos]
			for i := 0; i < len(closer); i++ {
				self.advance()
			}
			return body, nil
		}
		self.advance()
	}
}

var errUnclosed = &simpleErr{"unclosed long bracket"}

type simpleErr struct{ s string }

func (e *simpleErr) Error() string { return e.s }

func (self *Lexer) scanLongString(startPos luaerr.Position, level int) (Token, error) {
	body, err := self.scanLongBracketBody(level)
	if err != nil {
		return Token{}, self.errAt(startPos, luaerr.UnclosedLongString, err.Error())
	}
	return Token{Kind: String, Text: body, Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}, nil
}

func (self *Lexer) scanIdentifier(startPos luaerr.Position) Token {
	start := self.pos
	for !self.eof() && (isLetter(self.cur()) || isDigit(self.cur()) || self.cur() == '_') {
		self.advance()
	}
	text := self.source[start:self.pos]
	kind := Identifier
	if kw, ok := Keywords[text]; ok {
		kind = kw
	}
	return Token{Kind: kind, Text: text, Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}
}

func (self *Lexer) scanShortString(startPos luaerr.Position) (Token, error) {
	quote := self.advance()
	var b strings.Builder
	for {
		if self.eof() {
			return Token{}, self.errAt(startPos, luaerr.UnclosedString, "")
		}
		c := self.cur()
		if c == quote {
			self.advance()
			break
		}
		if c == '\n' {
			return Token{}, self.errAt(startPos, luaerr.UnclosedString, "")
		}
		if c == '\\' {
			self.advance()
			if err := self.scanEscape(&b, startPos); err != nil {
				return Token{}, err
			}
			continue
		}
		b.WriteByte(c)
		self.advance()
	}
	return Token{Kind: String, Text: b.String(), Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}, nil
}

func (self *Lexer) scanEscape(b *strings.Builder, startPos luaerr.Position) error {
	if self.eof() {
		return self.errAt(startPos, luaerr.UnclosedString, "")
	}
	c := self.advance()
	switch c {
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'v':
		b.WriteByte('\v')
	case '\\':
		b.WriteByte('\\')
	case '"':
		b.WriteByte('"')
	case '\'':
		b.WriteByte('\'')
	case '\n':
		b.WriteByte('\n')
	case 'z':
		for !self.eof() && isSpace(self.cur()) {
			self.advance()
		}
	case 'x':
		hex := make([]byte, 0, 2)
		for i := 0; i < 2 && isHexDigit(self.cur()); i++ {
			hex = append(hex, self.advance())
		}
		if len(hex) != 2 {
			return self.errAt(startPos, luaerr.UnclosedString, "invalid \\x escape")
		}
		n, _ := strconv.ParseInt(string(hex), 16, 32)
		b.WriteByte(byte(n))
	default:
		if isDigit(c) {
			digits := []byte{c}
			for i := 0; i < 2 && isDigit(self.cur()); i++ {
				digits = append(digits, self.advance())
			}
			n, _ := strconv.ParseInt(string(digits), 10, 32)
			if n > 255 {
				return self.errAt(startPos, luaerr.UnclosedString, "decimal escape too large")
			}
			b.WriteByte(byte(n))
		} else {
			return self.errAt(startPos, luaerr.UnclosedString, "invalid escape sequence")
		}
	}
	return nil
}

func (self *Lexer) scanNumber(startPos luaerr.Position) (Token, error) {
	start := self.pos
	isHex := false
	if self.cur() == '0' && (self.byteAt(1) == 'x' || self.byteAt(1) == 'X') {
		isHex = true
		self.advance()
		self.advance()
		for isHexDigit(self.cur()) {
			self.advance()
		}
		isFloat := false
		if self.cur() == '.' {
			isFloat = true
			self.advance()
			for isHexDigit(self.cur()) {
				self.advance()
			}
		}
		if self.cur() == 'p' || self.cur() == 'P' {
			isFloat = true
			self.advance()
			if self.cur() == '+' || self.cur() == '-' {
				self.advance()
			}
			if !isDigit(self.cur()) {
				return Token{}, self.errAt(startPos, luaerr.InvalidHexNumber, self.source[start:self.pos])
			}
			for isDigit(self.cur()) {
				self.advance()
			}
		}
		text := self.source[start:self.pos]
		if isFloat {
			f, ok := parseHexFloat(text)
			if !ok {
				return Token{}, self.errAt(startPos, luaerr.InvalidHexNumber, text)
			}
			return Token{Kind: Number, Text: text, Float: f, IsInt: false, Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}, nil
		}
		n, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return Token{}, self.errAt(startPos, luaerr.InvalidHexNumber, text)
		}
		return Token{Kind: Number, Text: text, Int: int64(n), IsInt: true, Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}, nil
	}

	for isDigit(self.cur()) {
		self.advance()
	}
	isFloat := false
	if self.cur() == '.' {
		isFloat = true
		self.advance()
		for isDigit(self.cur()) {
			self.advance()
		}
	}
	if self.cur() == 'e' || self.cur() == 'E' {
		isFloat = true
		self.advance()
		if self.cur() == '+' || self.cur() == '-' {
			self.advance()
		}
		if !isDigit(self.cur()) {
			return Token{}, self.errAt(startPos, luaerr.InvalidNumber, self.source[start:self.pos])
		}
		for isDigit(self.cur()) {
			self.advance()
		}
	}
	_ = isHex
	text := self.source[start:self.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, self.errAt(startPos, luaerr.InvalidNumber, text)
		}
		return Token{Kind: Number, Text: text, Float: f, IsInt: false, Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		// overflow: Lua treats an out-of-range integer literal as a float
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return Token{}, self.errAt(startPos, luaerr.InvalidNumber, text)
		}
		return Token{Kind: Number, Text: text, Float: f, IsInt: false, Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}, nil
	}
	return Token{Kind: Number, Text: text, Int: n, IsInt: true, Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}, nil
}

func (self *Lexer) scanOperator(startPos luaerr.Position) (Token, error) {
	mk := func(k Kind, n int) (Token, error) {
		text := self.source[self.pos : self.pos+n]
		for i := 0; i < n; i++ {
			self.advance()
		}
		return Token{Kind: k, Text: text, Line: startPos.Line, Column: startPos.Column, Offset: startPos.Offset}, nil
	}

	switch {
	case self.startsWith("..."):
		return mk(OpVararg, 3)
	case self.startsWith(".."):
		return mk(OpConcat, 2)
	case self.startsWith("=="):
		return mk(OpEq, 2)
	case self.startsWith("~="):
		return mk(OpNe, 2)
	case self.startsWith("<="):
		return mk(OpLe, 2)
	case self.startsWith(">="):
		return mk(OpGe, 2)
	case self.startsWith("<<"):
		return mk(OpShl, 2)
	case self.startsWith(">>"):
		return mk(OpShr, 2)
	case self.startsWith("//"):
		return mk(OpFloorDiv, 2)
	case self.startsWith("::"):
		return mk(SepDColon, 2)
	}

	c := self.cur()
	single := map[byte]Kind{
		'+': OpAdd, '-': OpSub, '*': OpMul, '/': OpDiv, '%': OpMod,
		'^': OpPow, '#': OpLen, '&': OpBAnd, '|': OpBOr, '~': OpBXor,
		'<': OpLt, '>': OpGt, '=': OpAssign,
		';': SepSemi, ':': SepColon, ',': SepComma, '.': SepDot,
		'(': SepLParen, ')': SepRParen, '[': SepLBrack, ']': SepRBrack,
		'{': SepLCurly, '}': SepRCurly,
	}
	if k, ok := single[c]; ok {
		return mk(k, 1)
	}
	return Token{}, self.errAt(startPos, luaerr.UnexpectedCharacter, string(c))
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isLetter(c byte) bool   { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isHexDigit(c byte) bool { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// parseHexFloat handles Lua's 0x1.8p3-style hex floats, which
// strconv.ParseFloat also accepts in Go's %x float syntax provided it has
// an explicit binary exponent; Lua allows the exponent to be omitted
// (defaulting to p0).
func parseHexFloat(text string) (float64, bool) {
	if !strings.ContainsAny(text, "pP") {
		text += "p0"
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
