package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// ParseError identifies the downtime file that failed to parse.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SerializationError wraps a record that could not be rendered as JSON.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize downtime collection: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Encode renders the record collection as an indented JSON array with every
// non-ASCII character escaped, terminated by a newline. An empty collection
// encodes to "[]\n".
func Encode(records []any) ([]byte, error) {
	if records == nil {
		records = []any{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return append(escapeNonASCII(data), '\n'), nil
}

// escapeNonASCII rewrites every rune above 0x7F as a \uXXXX escape. The
// input is valid JSON, so non-ASCII bytes only occur inside strings and can
// be replaced without tracking quoting state.
func escapeNonASCII(data []byte) []byte {
	if isASCII(data) {
		return data
	}
	var b bytes.Buffer
	b.Grow(len(data))
	for i := 0; i < len(data); {
		if data[i] < utf8.RuneSelf {
			b.WriteByte(data[i])
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		i += size
		if r > 0xFFFF {
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, r1, r2)
		} else {
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.Bytes()
}

func isASCII(data []byte) bool {
	for _, c := range data {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
