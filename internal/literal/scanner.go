package literal

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tEOF tokenType = iota
	tIllegal
	tInt
	tFloat
	tRational
	tImag
	tString
	tSymbol
	tRegexp
	tIdent
	tLBracket
	tRBracket
	tLBrace
	tRBrace
	tComma
	tHashRocket
	tDotDot
	tDotDotDot
	tPlus
	tMinus
)

type token struct {
	typ    tokenType
	lexeme string
	line   int
	column int
}

type scanner struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

func newScanner(input string) *scanner {
	s := &scanner{input: input, line: 1, column: 0}
	s.readChar()
	return s
}

func (s *scanner) readChar() {
	if s.ch == '\n' {
		s.line++
		s.column = 0
	}
	if s.readPosition >= len(s.input) {
		s.ch = 0
		s.position = s.readPosition
		s.readPosition++
		s.column++
		return
	}
	r, w := utf8.DecodeRuneInString(s.input[s.readPosition:])
	s.ch = r
	s.position = s.readPosition
	s.readPosition += w
	s.column++
}

func (s *scanner) peekChar() rune {
	if s.readPosition >= len(s.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.input[s.readPosition:])
	return r
}

func (s *scanner) skipWhitespace() {
	for s.ch == ' ' || s.ch == '\t' || s.ch == '\n' || s.ch == '\r' {
		s.readChar()
	}
}

func (s *scanner) next() token {
	s.skipWhitespace()

	line, column := s.line, s.column
	mk := func(typ tokenType, lexeme string) token {
		return token{typ: typ, lexeme: lexeme, line: line, column: column}
	}

	switch {
	case s.ch == 0:
		return mk(tEOF, "")
	case s.ch == '[':
		s.readChar()
		return mk(tLBracket, "[")
	case s.ch == ']':
		s.readChar()
		return mk(tRBracket, "]")
	case s.ch == '{':
		s.readChar()
		return mk(tLBrace, "{")
	case s.ch == '}':
		s.readChar()
		return mk(tRBrace, "}")
	case s.ch == ',':
		s.readChar()
		return mk(tComma, ",")
	case s.ch == '+':
		s.readChar()
		return mk(tPlus, "+")
	case s.ch == '-':
		s.readChar()
		return mk(tMinus, "-")
	case s.ch == '=':
		if s.peekChar() == '>' {
			s.readChar()
			s.readChar()
			return mk(tHashRocket, "=>")
		}
		s.readChar()
		return mk(tIllegal, "=")
	case s.ch == '.':
		if s.peekChar() == '.' {
			s.readChar()
			s.readChar()
			if s.ch == '.' {
				s.readChar()
				return mk(tDotDotDot, "...")
			}
			return mk(tDotDot, "..")
		}
		s.readChar()
		return mk(tIllegal, ".")
	case s.ch == '"':
		return s.scanString(mk)
	case s.ch == ':':
		return s.scanSymbol(mk)
	case s.ch == '/':
		return s.scanRegexp(mk)
	case unicode.IsDigit(s.ch):
		return s.scanNumber(mk)
	case isIdentStart(s.ch):
		return s.scanIdent(mk)
	default:
		ch := s.ch
		s.readChar()
		return mk(tIllegal, string(ch))
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return ch == '_' || ch == '?' || ch == '!' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func (s *scanner) scanIdent(mk func(tokenType, string) token) token {
	var b strings.Builder
	for isIdentPart(s.ch) {
		b.WriteRune(s.ch)
		s.readChar()
	}
	return mk(tIdent, b.String())
}

// scanNumber handles integers of any width, floats, the rational suffixes
// "3r" and "3/4r", and the imaginary suffix "2i" / "2.5i".
func (s *scanner) scanNumber(mk func(tokenType, string) token) token {
	var b strings.Builder
	for unicode.IsDigit(s.ch) {
		b.WriteRune(s.ch)
		s.readChar()
	}

	isFloat := false
	if s.ch == '.' && unicode.IsDigit(s.peekChar()) {
		isFloat = true
		b.WriteRune('.')
		s.readChar()
		for unicode.IsDigit(s.ch) {
			b.WriteRune(s.ch)
			s.readChar()
		}
	}

	switch s.ch {
	case 'r':
		s.readChar()
		if isFloat {
			return mk(tIllegal, b.String()+"r")
		}
		return mk(tRational, b.String())
	case 'i':
		s.readChar()
		return mk(tImag, b.String())
	case '/':
		// A fraction rational like 3/4r, but only when the whole suffix is
		// present; otherwise the slash is not ours to consume.
		if !isFloat && unicode.IsDigit(s.peekChar()) {
			save := *s
			s.readChar()
			var den strings.Builder
			for unicode.IsDigit(s.ch) {
				den.WriteRune(s.ch)
				s.readChar()
			}
			if s.ch == 'r' {
				s.readChar()
				return mk(tRational, b.String()+"/"+den.String())
			}
			*s = save
		}
	}

	if isFloat {
		return mk(tFloat, b.String())
	}
	return mk(tInt, b.String())
}

func (s *scanner) scanString(mk func(tokenType, string) token) token {
	s.readChar() // opening quote
	var b strings.Builder
	for s.ch != '"' {
		if s.ch == 0 {
			return mk(tIllegal, "unterminated string")
		}
		if s.ch == '\\' {
			s.readChar()
			switch s.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 0:
				return mk(tIllegal, "unterminated string")
			default:
				return mk(tIllegal, fmt.Sprintf("unknown escape \\%c", s.ch))
			}
			s.readChar()
			continue
		}
		b.WriteRune(s.ch)
		s.readChar()
	}
	s.readChar() // closing quote
	return mk(tString, b.String())
}

func (s *scanner) scanSymbol(mk func(tokenType, string) token) token {
	s.readChar() // colon
	if !isIdentStart(s.ch) {
		return mk(tIllegal, ":")
	}
	var b strings.Builder
	for isIdentPart(s.ch) {
		b.WriteRune(s.ch)
		s.readChar()
	}
	return mk(tSymbol, b.String())
}

func (s *scanner) scanRegexp(mk func(tokenType, string) token) token {
	s.readChar() // opening slash
	var b strings.Builder
	for s.ch != '/' {
		if s.ch == 0 || s.ch == '\n' {
			return mk(tIllegal, "unterminated regexp")
		}
		if s.ch == '\\' && s.peekChar() == '/' {
			b.WriteByte('/')
			s.readChar()
			s.readChar()
			continue
		}
		b.WriteRune(s.ch)
		s.readChar()
	}
	s.readChar() // closing slash
	return mk(tRegexp, b.String())
}
