package binstream

import (
	"errors"
	"fmt"
)

var (
	ErrGrammar         = errors.New("grammar error")
	ErrWidthOverflow   = errors.New("value does not fit width")
	ErrUnknownToken    = errors.New("unknown token")
	ErrNotReady        = errors.New("not ready")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// TokenError reports the token that stopped (or was skipped by) a parse pass
// together with the classification it was attempted as.
type TokenError struct {
	Token Token
	Tag   TypeTag
	Err   error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid %s token %q on line %d: %v", e.Tag, e.Token.Text, e.Token.Line, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}
