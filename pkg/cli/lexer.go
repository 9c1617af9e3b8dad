package cli

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokError tokenKind = iota
	tokEOF
	tokIdentifier
	tokString
)

type token struct {
	kind  tokenKind
	value string
	line  int
}

// lexer splits a command definition into identifiers and strings. Lines
// starting with # are comments. Strings are quoted once for a single line
// or triple-quoted for reflowed multi-line text.
type lexer struct {
	input string
	pos   int
	line  int
}

func newLexer(input string) *lexer {
	return &lexer{
		input: input,
		line:  1,
	}
}

func (l *lexer) nextToken() token {
	l.skipSpace()

	if l.pos >= len(l.input) {
		return token{kind: tokEOF, line: l.line}
	}

	switch b := l.input[l.pos]; {
	case b == '"':
		return l.lexString()
	case isLetter(b):
		return l.lexIdentifier()
	default:
		l.pos++
		return token{kind: tokError, value: fmt.Sprintf("unexpected character: %c", b), line: l.line}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\n':
			l.line++
			l.pos++
		case ' ', '\t', '\r', '\f', '\v':
			l.pos++
		case '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) lexIdentifier() token {
	start := l.pos
	for l.pos < len(l.input) && isWordByte(l.input[l.pos]) {
		l.pos++
	}
	return token{kind: tokIdentifier, value: l.input[start:l.pos], line: l.line}
}

func (l *lexer) lexString() token {
	l.pos++
	if strings.HasPrefix(l.input[l.pos:], `""`) {
		l.pos += 2
		return l.lexBlockString()
	}
	start := l.pos
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '"':
			val := l.input[start:l.pos]
			l.pos++
			return token{kind: tokString, value: val, line: l.line}
		case '\n':
			l.line++
		}
		l.pos++
	}
	return token{kind: tokError, value: "unterminated string", line: l.line}
}

func (l *lexer) lexBlockString() token {
	start := l.pos
	for l.pos+2 < len(l.input) {
		if l.input[l.pos:l.pos+3] == `"""` {
			val := reflowBlock(l.input[start:l.pos])
			l.pos += 3
			return token{kind: tokString, value: val, line: l.line}
		}
		if l.input[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
	return token{kind: tokError, value: "unterminated multiline string", line: l.line}
}

// reflowBlock trims blank lines off both ends of a triple-quoted block and
// strips each line's indentation, keeping interior blank lines as paragraph
// breaks.
func reflowBlock(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	kept := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		if t := strings.TrimLeft(line, " \t"); t != "" {
			kept = append(kept, " "+t)
		} else {
			kept = append(kept, "")
		}
	}
	return strings.Join(kept, "\n")
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isWordByte(b byte) bool {
	return isLetter(b) || (b >= '0' && b <= '9') || b == '_' || b == '-'
}
