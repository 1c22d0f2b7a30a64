// Package tsk parses Thruk recurring-downtime definition files.
//
// A .tsk file holds a single Perl hash literal:
//
//	{
//	    'backends' => ['site1'],
//	    'duration' => 120,
//	    'host' => ['web01', 'web02'],
//	    'schedule' => [{ 'type' => 'week', 'week_day' => '1,3', ... }],
//	}
//
// Thruk writes these itself, so the grammar is closed and small: hashes,
// arrays, single- or double-quoted strings, numbers and undef. The content
// is never evaluated; this is a plain recursive-descent parser over that
// grammar. Hashes become map[string]any, arrays []any, numbers int64 or
// float64, undef nil.
package tsk

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SyntaxError reports the position of the first offending byte.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

// Parse evaluates the single expression in input and returns its value.
// Trailing whitespace and an optional terminating semicolon are allowed;
// anything else after the expression is an error.
func Parse(input string) (any, error) {
	p := &parser{input: input, line: 1, col: 1}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == ';' {
		p.next()
		p.skipSpace()
	}
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected %q after value", p.peek())
	}
	return v, nil
}

type parser struct {
	input string
	pos   int
	line  int
	col   int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Col: p.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) next() byte {
	c := p.input[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return c
}

// skipSpace consumes whitespace and # comments.
func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.peek() {
		case ' ', '\t', '\r', '\n':
			p.next()
		case '#':
			for p.pos < len(p.input) && p.peek() != '\n' {
				p.next()
			}
		default:
			return
		}
	}
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		if p.pos >= len(p.input) {
			return p.errorf("unexpected end of input, expected %q", c)
		}
		return p.errorf("unexpected %q, expected %q", p.peek(), c)
	}
	p.next()
	return nil
}

func (p *parser) parseValue() (any, error) {
	if p.pos >= len(p.input) {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.peek(); {
	case c == '{':
		return p.parseHash()
	case c == '[':
		return p.parseArray()
	case c == '\'' || c == '"':
		return p.parseString()
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		word := p.peekWord()
		if word == "undef" {
			p.advance(len(word))
			return nil, nil
		}
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *parser) parseHash() (map[string]any, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	out := make(map[string]any)
	p.skipSpace()
	for p.peek() != '}' {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out[key] = val
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
			p.skipSpace()
			continue
		}
		break
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return out, nil
}

// parseKey accepts a quoted string or a bareword hash key.
func (p *parser) parseKey() (string, error) {
	if c := p.peek(); c == '\'' || c == '"' {
		return p.parseString()
	}
	word := p.peekWord()
	if word == "" {
		return "", p.errorf("expected hash key, got %q", p.peek())
	}
	p.advance(len(word))
	return word, nil
}

func (p *parser) parseArray() ([]any, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	out := []any{}
	p.skipSpace()
	for p.peek() != ']' {
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, val)
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
			p.skipSpace()
			continue
		}
		break
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) parseString() (string, error) {
	quote := p.next()
	var b strings.Builder
	for {
		if p.pos >= len(p.input) {
			return "", p.errorf("unterminated string")
		}
		c := p.next()
		if c == quote {
			return b.String(), nil
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if p.pos >= len(p.input) {
			return "", p.errorf("unterminated string")
		}
		esc := p.next()
		if quote == '\'' {
			// Single quotes only escape the quote and the backslash.
			if esc != '\'' && esc != '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(esc)
			continue
		}
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case 'x':
			r, err := p.parseHexEscape()
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		default:
			b.WriteByte(esc)
		}
	}
}

// parseHexEscape handles \xNN and \x{NNNN}.
func (p *parser) parseHexEscape() (rune, error) {
	var digits string
	if p.peek() == '{' {
		p.next()
		for p.pos < len(p.input) && p.peek() != '}' {
			digits += string(p.next())
		}
		if err := p.expect('}'); err != nil {
			return 0, err
		}
	} else {
		for i := 0; i < 2 && isHexDigit(p.peek()); i++ {
			digits += string(p.next())
		}
	}
	n, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || n > utf8.MaxRune {
		return 0, p.errorf("invalid hex escape %q", digits)
	}
	return rune(n), nil
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.next()
	}
	isFloat := false
	for p.pos < len(p.input) {
		c := p.peek()
		switch {
		case c >= '0' && c <= '9':
			p.next()
		case c == '.' || c == 'e' || c == 'E':
			isFloat = true
			p.next()
			if c := p.peek(); c == '-' || c == '+' {
				p.next()
			}
		default:
			goto done
		}
	}
done:
	text := p.input[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", text)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return n, nil
}

// peekWord returns the bareword starting at the cursor without consuming it.
func (p *parser) peekWord() string {
	end := p.pos
	for end < len(p.input) && isWordByte(p.input[end]) {
		end++
	}
	return p.input[p.pos:end]
}

func (p *parser) advance(n int) {
	for i := 0; i < n; i++ {
		p.next()
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
