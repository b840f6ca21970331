package binstream

import "strings"

// TypeTag is the lexical class of a token.
type TypeTag uint8

const (
	TypeError TypeTag = iota
	TypeHexNumber
	TypeDecimalNumber
	TypeOctalNumber
	TypeBinaryNumber
	TypeString
	TypeDirective
)

var typeNames = map[TypeTag]string{
	TypeError:         "error",
	TypeHexNumber:     "hex-number",
	TypeDecimalNumber: "decimal-number",
	TypeOctalNumber:   "octal-number",
	TypeBinaryNumber:  "binary-number",
	TypeString:        "string",
	TypeDirective:     "directive",
}

func (t TypeTag) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsNumber reports whether t is one of the numeric tags.
func (t TypeTag) IsNumber() bool {
	switch t {
	case TypeHexNumber, TypeDecimalNumber, TypeOctalNumber, TypeBinaryNumber:
		return true
	}
	return false
}

// Token is one whitespace-delimited unit of description text.
type Token struct {
	Text   string
	Offset int
	Line   int
}

// Tokenize splits text on whitespace. Quoted spans stay in one token and
// '#' at the start of a token comments out the rest of the line.
func Tokenize(text string) []Token {
	var tokens []Token
	line := 1
	i := 0

	for i < len(text) {
		ch := text[i]
		if isSpace(ch) {
			if ch == '\n' {
				line++
			}
			i++
			continue
		}

		if ch == '#' {
			for i < len(text) && text[i] != '\n' {
				i++
			}
			continue
		}

		start, startLine := i, line
		var quote byte
		for i < len(text) {
			c := text[i]
			if quote != 0 {
				switch c {
				case '\\':
					i++
					if i < len(text) && text[i] == '\n' {
						line++
					}
				case quote:
					quote = 0
				case '\n':
					line++
				}
				i++
				continue
			}
			if isSpace(c) {
				break
			}
			if isQuote(c) {
				quote = c
			}
			i++
		}
		if i > len(text) {
			i = len(text)
		}

		tokens = append(tokens, Token{Text: text[start:i], Offset: start, Line: startLine})
	}

	return tokens
}

// Classify maps a token's raw text to its TypeTag from its shape alone.
// Charset problems inside a recognized shape are left to Validate.
func Classify(text string) TypeTag {
	if text == "" {
		return TypeError
	}

	switch {
	case isQuote(text[0]):
		return TypeString
	case text[0] == '.':
		return TypeDirective
	case hasPrefixFold(text, "0x"):
		return TypeHexNumber
	case hasPrefixFold(text, "0b"):
		return TypeBinaryNumber
	case len(text) > 1 && text[0] == '0' && allOctal(text[1:]):
		return TypeOctalNumber
	case allDigits(strings.TrimPrefix(text, "-")):
		return TypeDecimalNumber
	}

	return TypeError
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allOctal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return s != ""
}
