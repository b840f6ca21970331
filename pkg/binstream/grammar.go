package binstream

import (
	"errors"
	"fmt"
	"strconv"
)

// Validate checks a classified token against its grammar and, for numbers,
// that the literal fits the width selected by m.
func Validate(text string, tag TypeTag, m Mode) error {
	switch tag {
	case TypeString:
		return checkString(text)
	case TypeDirective:
		if !isKnownDirective(text) {
			return fmt.Errorf("%w: unknown directive %q", ErrGrammar, text)
		}
		return nil
	case TypeHexNumber, TypeDecimalNumber, TypeOctalNumber, TypeBinaryNumber:
		mag, neg, err := scanLiteral(text, tag)
		if err != nil {
			return err
		}
		return checkFit(mag, neg, tag, m.Kind)
	}
	return fmt.Errorf("%w: %q", ErrUnknownToken, text)
}

// CheckGrammar is the boolean form of Validate.
func CheckGrammar(text string, tag TypeTag, m Mode) bool {
	return Validate(text, tag, m) == nil
}

// scanLiteral checks the digit charset of a numeric token and returns its
// magnitude and sign. Literals wider than 64 bits report ErrWidthOverflow.
func scanLiteral(text string, tag TypeTag) (uint64, bool, error) {
	var digits string
	var base int
	neg := false

	switch tag {
	case TypeHexNumber:
		digits, base = text[2:], 16
	case TypeBinaryNumber:
		digits, base = text[2:], 2
	case TypeOctalNumber:
		digits, base = text[1:], 8
	case TypeDecimalNumber:
		digits, base = text, 10
		if len(text) > 0 && text[0] == '-' {
			digits, neg = text[1:], true
		}
	default:
		return 0, false, fmt.Errorf("%w: %q is not a number", ErrGrammar, text)
	}

	if digits == "" {
		return 0, false, fmt.Errorf("%w: %s literal %q has no digits", ErrGrammar, tag, text)
	}
	for i := 0; i < len(digits); i++ {
		if digitValue(digits[i]) >= base {
			return 0, false, fmt.Errorf("%w: invalid digit %q in %s literal %q", ErrGrammar, digits[i], tag, text)
		}
	}

	mag, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, false, fmt.Errorf("%w: %q exceeds 64 bits", ErrWidthOverflow, text)
		}
		return 0, false, fmt.Errorf("%w: %v", ErrGrammar, err)
	}
	return mag, neg, nil
}

// checkFit applies the magnitude rule: decimal literals must lie in the
// kind's numeric range, other bases are bit patterns that must fit its width.
func checkFit(mag uint64, neg bool, tag TypeTag, k Kind) error {
	limit := k.mask()
	if tag == TypeDecimalNumber && k.Signed() {
		limit = k.mask() >> 1
		if neg {
			limit++
		}
	}
	if neg && !k.Signed() && mag != 0 {
		return fmt.Errorf("%w: negative value under unsigned %s", ErrWidthOverflow, k)
	}
	if mag > limit {
		return fmt.Errorf("%w: magnitude %d exceeds %s", ErrWidthOverflow, mag, k)
	}
	return nil
}

func checkString(text string) error {
	if len(text) < 2 || !isQuote(text[0]) {
		return fmt.Errorf("%w: unterminated string %s", ErrGrammar, text)
	}
	quote := text[0]
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case quote:
			if i != len(text)-1 {
				return fmt.Errorf("%w: trailing characters after string %s", ErrGrammar, text)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: unterminated string %s", ErrGrammar, text)
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 99
}
