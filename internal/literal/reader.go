// Package literal reads source-literal text into heap values. It backs the
// REPL and the inspection service; it is a reader for single literals, not
// an expression language.
package literal

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/funvibe/tagval/internal/heap"
)

type reader struct {
	h   *heap.Heap
	sc  *scanner
	cur token
}

// Read parses exactly one literal and returns its handle. Trailing input
// after the literal is an error.
func Read(h *heap.Heap, src string) (heap.Handle, error) {
	r := &reader{h: h, sc: newScanner(src)}
	r.advance()
	v, err := r.parseValue()
	if err != nil {
		return heap.NilHandle, err
	}
	if r.cur.typ != tEOF {
		return heap.NilHandle, r.errorf("unexpected %q after literal", r.cur.lexeme)
	}
	return v, nil
}

func (r *reader) advance() {
	r.cur = r.sc.next()
}

func (r *reader) errorf(format string, args ...any) error {
	pos := fmt.Sprintf("%d:%d: ", r.cur.line, r.cur.column)
	return fmt.Errorf(pos+format, args...)
}

// parseValue parses a primary literal and then checks for a range suffix,
// so "1..5" and `"a".."z"` read as ranges of their endpoint values.
func (r *reader) parseValue() (heap.Handle, error) {
	begin, err := r.parsePrimary()
	if err != nil {
		return heap.NilHandle, err
	}
	if r.cur.typ == tDotDot || r.cur.typ == tDotDotDot {
		exclusive := r.cur.typ == tDotDotDot
		r.advance()
		end, err := r.parsePrimary()
		if err != nil {
			return heap.NilHandle, err
		}
		return r.h.NewRange(begin, end, exclusive), nil
	}
	return begin, nil
}

func (r *reader) parsePrimary() (heap.Handle, error) {
	switch r.cur.typ {
	case tMinus, tPlus:
		neg := r.cur.typ == tMinus
		r.advance()
		switch r.cur.typ {
		case tInt, tFloat, tRational, tImag:
			return r.parseNumber(neg)
		}
		return heap.NilHandle, r.errorf("expected number after sign")
	case tInt, tFloat, tRational, tImag:
		return r.parseNumber(false)
	case tString:
		v := r.h.NewString(r.cur.lexeme)
		r.advance()
		return v, nil
	case tSymbol:
		v := r.h.NewSymbol(r.cur.lexeme)
		r.advance()
		return v, nil
	case tRegexp:
		v, err := r.h.NewRegexp(r.cur.lexeme)
		if err != nil {
			return heap.NilHandle, r.errorf("%v", err)
		}
		r.advance()
		return v, nil
	case tLBracket:
		return r.parseArray()
	case tLBrace:
		return r.parseHash()
	case tIdent:
		switch r.cur.lexeme {
		case "nil":
			r.advance()
			return r.h.Nil(), nil
		case "true":
			r.advance()
			return r.h.True(), nil
		case "false":
			r.advance()
			return r.h.False(), nil
		case "undef":
			r.advance()
			return r.h.Undef(), nil
		}
		return heap.NilHandle, r.errorf("unknown constant %q", r.cur.lexeme)
	case tIllegal:
		return heap.NilHandle, r.errorf("bad token %q", r.cur.lexeme)
	case tEOF:
		return heap.NilHandle, r.errorf("unexpected end of input")
	default:
		return heap.NilHandle, r.errorf("unexpected %q", r.cur.lexeme)
	}
}

// parseNumber handles ints (of any width), floats, rationals, pure
// imaginaries, and the two-part complex form 1+2i.
func (r *reader) parseNumber(neg bool) (heap.Handle, error) {
	tok := r.cur
	r.advance()

	switch tok.typ {
	case tRational:
		return r.makeRational(tok, neg)
	case tImag:
		im, err := strconv.ParseFloat(tok.lexeme, 64)
		if err != nil {
			return heap.NilHandle, r.errorf("bad imaginary %q", tok.lexeme)
		}
		if neg {
			im = -im
		}
		return r.h.NewComplex(0, im), nil
	}

	// tInt or tFloat; a following +NNi / -NNi makes it the real part of a
	// complex literal.
	if r.cur.typ == tPlus || r.cur.typ == tMinus {
		imNeg := r.cur.typ == tMinus
		r.advance()
		if r.cur.typ != tImag {
			return heap.NilHandle, r.errorf("expected imaginary part after sign")
		}
		re, err := strconv.ParseFloat(tok.lexeme, 64)
		if err != nil {
			return heap.NilHandle, r.errorf("bad number %q", tok.lexeme)
		}
		im, err := strconv.ParseFloat(r.cur.lexeme, 64)
		if err != nil {
			return heap.NilHandle, r.errorf("bad imaginary %q", r.cur.lexeme)
		}
		r.advance()
		if neg {
			re = -re
		}
		if imNeg {
			im = -im
		}
		return r.h.NewComplex(re, im), nil
	}

	if tok.typ == tFloat {
		f, err := strconv.ParseFloat(tok.lexeme, 64)
		if err != nil {
			return heap.NilHandle, r.errorf("bad float %q", tok.lexeme)
		}
		if neg {
			f = -f
		}
		return r.h.NewFloat(f), nil
	}

	if v, err := strconv.ParseInt(tok.lexeme, 10, 64); err == nil {
		if neg {
			v = -v
		}
		return r.h.NewInteger(v), nil
	}
	b, ok := new(big.Int).SetString(tok.lexeme, 10)
	if !ok {
		return heap.NilHandle, r.errorf("bad integer %q", tok.lexeme)
	}
	if neg {
		b.Neg(b)
	}
	return r.h.NewBigInt(b), nil
}

func (r *reader) makeRational(tok token, neg bool) (heap.Handle, error) {
	num := tok.lexeme
	den := "1"
	for i := 0; i < len(tok.lexeme); i++ {
		if tok.lexeme[i] == '/' {
			num, den = tok.lexeme[:i], tok.lexeme[i+1:]
			break
		}
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return heap.NilHandle, r.errorf("bad rational numerator %q", num)
	}
	d, err := strconv.ParseInt(den, 10, 64)
	if err != nil {
		return heap.NilHandle, r.errorf("bad rational denominator %q", den)
	}
	if neg {
		n = -n
	}
	v, err := r.h.NewRational(n, d)
	if err != nil {
		return heap.NilHandle, r.errorf("%v", err)
	}
	return v, nil
}

func (r *reader) parseArray() (heap.Handle, error) {
	r.advance() // [
	var elems []heap.Handle
	for r.cur.typ != tRBracket {
		if r.cur.typ == tEOF {
			return heap.NilHandle, r.errorf("unterminated array")
		}
		v, err := r.parseValue()
		if err != nil {
			return heap.NilHandle, err
		}
		elems = append(elems, v)
		if r.cur.typ == tComma {
			r.advance()
			continue
		}
		if r.cur.typ != tRBracket {
			return heap.NilHandle, r.errorf("expected ',' or ']' in array")
		}
	}
	r.advance() // ]
	return r.h.NewArray(elems), nil
}

func (r *reader) parseHash() (heap.Handle, error) {
	r.advance() // {
	var keys, values []heap.Handle
	for r.cur.typ != tRBrace {
		if r.cur.typ == tEOF {
			return heap.NilHandle, r.errorf("unterminated hash")
		}
		k, err := r.parseValue()
		if err != nil {
			return heap.NilHandle, err
		}
		if r.cur.typ != tHashRocket {
			return heap.NilHandle, r.errorf("expected '=>' in hash")
		}
		r.advance()
		v, err := r.parseValue()
		if err != nil {
			return heap.NilHandle, err
		}
		keys = append(keys, k)
		values = append(values, v)
		if r.cur.typ == tComma {
			r.advance()
			continue
		}
		if r.cur.typ != tRBrace {
			return heap.NilHandle, r.errorf("expected ',' or '}' in hash")
		}
	}
	r.advance() // }
	return r.h.NewHash(keys, values), nil
}
