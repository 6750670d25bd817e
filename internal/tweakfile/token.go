// Package tweakfile reads and writes the .tweaks rule language.
package tweakfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
)

// TokenKind distinguishes punctuation from literals.
type TokenKind int

const (
	Punct TokenKind = iota
	Literal
)

const punctuation = "(){}=,;"

// Token is one lexical unit with the 1-based position of its first rune.
type Token struct {
	Kind TokenKind
	// Punct is the punctuation rune for Punct tokens.
	Punct rune
	// Value is the decoded text of a Literal token.
	Value string
	// Quoted is true if the literal was written as a quoted string.
	Quoted bool
	Line   int
	Column int
}

// Is reports whether the token is the given punctuation.
func (t Token) Is(p rune) bool {
	return t.Kind == Punct && t.Punct == p
}

// IsKeyword reports whether the token is the unquoted keyword kw.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == Literal && !t.Quoted && t.Value == kw
}

func (t Token) String() string {
	if t.Kind == Punct {
		return string(t.Punct)
	}
	if needsQuoting(t.Value) {
		return quote(t.Value)
	}
	return t.Value
}

// Position formats the token position as line:column.
func (t Token) Position() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}

func isPunct(r rune) bool {
	return r < 0x80 && strings.ContainsRune(punctuation, r)
}

// Tokenizer scans a tweaks file one rune at a time.
type Tokenizer struct {
	r        *bufio.Reader
	peeked   rune
	hasPeek  bool
	nextLine bool
	line     int
	column   int
}

const eof = -1

// NewTokenizer creates a tokenizer over r.
func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{r: bufio.NewReader(r), line: 1}
}

// Tokenize reads all remaining tokens.
func (t *Tokenizer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, ok, err := t.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token. ok is false at end of input.
func (t *Tokenizer) Next() (tok Token, ok bool, err error) {
	for {
		c, err := t.next()
		if err != nil {
			return Token{}, false, err
		}
		if c == eof {
			return Token{}, false, nil
		}
		if isPunct(c) {
			return Token{Kind: Punct, Punct: c, Line: t.line, Column: t.column}, true, nil
		}
		if c == '/' {
			if err := t.skipComment(); err != nil {
				return Token{}, false, err
			}
			continue
		}
		if unicode.IsSpace(c) {
			continue
		}
		line, column := t.line, t.column
		if c == '"' {
			s, err := t.readString()
			if err != nil {
				return Token{}, false, err
			}
			return Token{Kind: Literal, Value: s, Quoted: true, Line: line, Column: column}, true, nil
		}
		s, err := t.readLiteral(c)
		if err != nil {
			return Token{}, false, err
		}
		return Token{Kind: Literal, Value: s, Line: line, Column: column}, true, nil
	}
}

func (t *Tokenizer) skipComment() error {
	start, err := t.next()
	if err != nil {
		return err
	}
	switch start {
	case '/':
		for {
			c, err := t.next()
			if err != nil {
				return err
			}
			if c == eof || c == '\n' {
				return nil
			}
		}
	case '*':
		for {
			c, err := t.next()
			if err != nil {
				return err
			}
			if c == eof {
				return t.errorf("Unterminated block comment")
			}
			if c != '*' {
				continue
			}
			// A run of stars may precede the closing slash.
			for c == '*' {
				if c, err = t.peek(); err != nil {
					return err
				}
				if c == '*' {
					_, _ = t.next()
				}
			}
			if c == '/' {
				_, _ = t.next()
				return nil
			}
		}
	case eof:
		return t.errorf("Expected / or * to start a comment, found EOF")
	default:
		return t.errorf("Expected / or * to start a comment, found %s", stringify(start))
	}
}

func (t *Tokenizer) readString() (string, error) {
	var b strings.Builder
	for {
		c, err := t.next()
		if err != nil {
			return "", err
		}
		switch {
		case c == eof:
			return "", t.errorf("EOF in string literal")
		case c < ' ':
			return "", t.errorf("Invalid character in string literal: %s", stringify(c))
		case c == '"':
			return b.String(), nil
		case c == '\\':
			r, err := t.readEscape()
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		default:
			b.WriteRune(c)
		}
	}
}

func (t *Tokenizer) readEscape() (rune, error) {
	c, err := t.next()
	if err != nil {
		return 0, err
	}
	switch c {
	case '"', '\\', '/':
		return c, nil
	case 'b':
		return '\b', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case 't':
		return '\t', nil
	case 'u':
		r, err := t.readHex4()
		if err != nil {
			return 0, err
		}
		if r < 0xd800 || r > 0xdbff {
			if utf16.IsSurrogate(r) {
				return unicode.ReplacementChar, nil
			}
			return r, nil
		}
		// Pair a high surrogate with an immediately following \uXXXX low surrogate.
		if p, err := t.peek(); err != nil || p != '\\' {
			return unicode.ReplacementChar, err
		}
		_, _ = t.next()
		if c, err := t.next(); err != nil {
			return 0, err
		} else if c != 'u' {
			return 0, t.errorf("Expected low surrogate escape, found \\%s", stringify(c))
		}
		low, err := t.readHex4()
		if err != nil {
			return 0, err
		}
		return utf16.DecodeRune(r, low), nil
	case eof:
		return 0, t.errorf("EOF in string literal")
	default:
		return 0, t.errorf("Invalid escape sequence: %s", stringify(c))
	}
}

func (t *Tokenizer) readHex4() (rune, error) {
	var value rune
	for i := 0; i < 4; i++ {
		c, err := t.next()
		if err != nil {
			return 0, err
		}
		value *= 16
		switch {
		case c >= '0' && c <= '9':
			value += c - '0'
		case c >= 'a' && c <= 'f':
			value += c - 'a' + 10
		case c >= 'A' && c <= 'F':
			value += c - 'A' + 10
		case c == eof:
			return 0, t.errorf("Invalid unicode escape, hexadecimal char expected, found EOF")
		default:
			return 0, t.errorf("Invalid unicode escape, hexadecimal char expected, found %s", stringify(c))
		}
	}
	return value, nil
}

func (t *Tokenizer) readLiteral(first rune) (string, error) {
	var b strings.Builder
	b.WriteRune(first)
	for {
		c, err := t.peek()
		if err != nil {
			return "", err
		}
		if c == eof || isPunct(c) || c == '/' || c == '"' || unicode.IsSpace(c) {
			return b.String(), nil
		}
		_, _ = t.next()
		b.WriteRune(c)
	}
}

func (t *Tokenizer) read() (rune, error) {
	c, _, err := t.r.ReadRune()
	if err == io.EOF {
		return eof, nil
	}
	if err != nil {
		return 0, errors.Wrap(errors.IO, "reading tweaks", err)
	}
	if c == 0 {
		return 0, errors.Newf(errors.Lexical, "Null character in tweaks near %d:%d", t.line, t.column).At(t.line, t.column)
	}
	return c, nil
}

func (t *Tokenizer) peek() (rune, error) {
	if t.hasPeek {
		return t.peeked, nil
	}
	c, err := t.read()
	if err != nil {
		return 0, err
	}
	t.peeked, t.hasPeek = c, true
	return c, nil
}

func (t *Tokenizer) next() (rune, error) {
	var c rune
	if t.hasPeek {
		c, t.hasPeek = t.peeked, false
	} else {
		var err error
		if c, err = t.read(); err != nil {
			return 0, err
		}
	}
	if c == eof {
		return eof, nil
	}
	if t.nextLine {
		t.line++
		t.column = 1
		t.nextLine = false
	} else {
		t.column++
	}
	if c == '\n' {
		t.nextLine = true
	}
	return c, nil
}

func (t *Tokenizer) errorf(format string, args ...interface{}) *errors.Error {
	msg := fmt.Sprintf(format, args...)
	return errors.Newf(errors.Lexical, "%s at %d:%d", msg, t.line, t.column).At(t.line, t.column)
}

func stringify(c rune) string {
	q := quote(string(c))
	return q[1 : len(q)-1]
}
