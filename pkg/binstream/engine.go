// Package binstream compiles a textual description of binary data into raw
// bytes.
//
// A description is a flat sequence of whitespace-separated tokens:
//
//	0x1F 0b1010 017 -42     numbers in hex, binary, octal and decimal
//	"AB\n" 'raw'            strings, emitted without quotes or terminator
//	.u16 .i32 .be .le       directives selecting width, signedness and byte order
//	# comment               ignored to end of line
//
// Numbers are encoded at the current width (default .u8) in the current byte
// order (default .le). Directives apply to the tokens that follow them.
package binstream

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// FailPolicy decides what Parse does with an invalid token.
type FailPolicy uint8

const (
	// FailFast stops the pass at the first invalid token.
	FailFast FailPolicy = iota
	// SkipInvalid drops invalid tokens and keeps going.
	SkipInvalid
)

func (p FailPolicy) String() string {
	if p == SkipInvalid {
		return "skip"
	}
	return "fail-fast"
}

// Engine owns one compilation session: the pending input text, the mode
// state and the output buffer. An Engine is not safe for concurrent use;
// Clone it to branch an independent session.
type Engine struct {
	input  strings.Builder
	output []byte
	mode   Mode

	inputReady  bool
	outputReady bool

	policy FailPolicy
	logger *zap.Logger
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.SetLogger(logger)
	}
}

func WithFailPolicy(p FailPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		mode:   DefaultMode(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile runs text through a fresh fail-fast engine. On a token error the
// bytes produced before it are returned along with the error.
func Compile(text string) ([]byte, error) {
	e := New()
	e.Append(text)
	if err := e.Parse(); err != nil {
		out, _ := e.Output()
		return out, err
	}
	return e.Output()
}

// Clone returns an engine with copies of e's input, output and mode.
func (e *Engine) Clone() *Engine {
	c := &Engine{
		output:      append([]byte(nil), e.output...),
		mode:        e.mode,
		inputReady:  e.inputReady,
		outputReady: e.outputReady,
		policy:      e.policy,
		logger:      e.logger,
	}
	c.input.WriteString(e.input.String())
	return c
}

// SetLogger enables per-token debug logging. A nil logger silences it.
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.logger = logger
}

func (e *Engine) Reset() {
	e.ResetInput()
	e.ResetOutput()
	e.ResetModes()
}

func (e *Engine) ResetModes() {
	e.mode = DefaultMode()
}

func (e *Engine) ResetInput() {
	e.input.Reset()
	e.inputReady = false
}

func (e *Engine) ResetOutput() {
	e.output = e.output[:0]
	e.outputReady = false
}

func (e *Engine) InputReady() bool {
	return e.inputReady
}

func (e *Engine) OutputReady() bool {
	return e.outputReady
}

// Mode returns the current mode state.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Append adds description text to the pending input. Text made only of
// whitespace is kept but does not make the input ready.
func (e *Engine) Append(text string) {
	if text == "" {
		return
	}
	if e.input.Len() > 0 {
		e.input.WriteByte('\n')
	}
	e.input.WriteString(text)
	if strings.TrimSpace(text) != "" {
		e.inputReady = true
	}
}

// Write implements io.Writer over the pending input. Unlike Append it does
// not separate successive writes, so text may be streamed in chunks.
func (e *Engine) Write(p []byte) (int, error) {
	e.input.Write(p)
	if strings.TrimSpace(string(p)) != "" {
		e.inputReady = true
	}
	return len(p), nil
}

// Parse compiles the pending input, appending its bytes to the output
// buffer. The input is consumed whether or not the pass succeeds. Under
// FailFast the returned error is the *TokenError of the first invalid token;
// under SkipInvalid it joins every skipped token's error.
func (e *Engine) Parse() error {
	if !e.inputReady {
		return fmt.Errorf("%w: no input to parse", ErrNotReady)
	}

	text := e.input.String()
	e.ResetInput()
	defer func() {
		e.outputReady = true
	}()

	var errs []error
	for _, tok := range Tokenize(text) {
		if err := e.proceed(tok); err != nil {
			if e.policy == FailFast {
				e.logger.Debug("parse stopped", zap.Error(err))
				return err
			}
			e.logger.Debug("token skipped", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// proceed runs one token through classify, validate and emit.
func (e *Engine) proceed(tok Token) error {
	tag := Classify(tok.Text)
	if err := Validate(tok.Text, tag, e.mode); err != nil {
		return &TokenError{Token: tok, Tag: tag, Err: err}
	}

	before := len(e.output)
	switch {
	case tag == TypeDirective:
		mode, err := ApplyDirective(tok.Text, e.mode)
		if err != nil {
			return &TokenError{Token: tok, Tag: tag, Err: err}
		}
		e.mode = mode
	case tag == TypeString:
		e.output = append(e.output, stringBytes(tok.Text)...)
	case tag.IsNumber():
		v, err := ParseNumber(tok.Text, tag, e.mode)
		if err != nil {
			return &TokenError{Token: tok, Tag: tag, Err: err}
		}
		e.output = v.AppendBytes(e.output, e.mode.Order)
	}

	if ce := e.logger.Check(zap.DebugLevel, "token"); ce != nil {
		ce.Write(
			zap.String("text", tok.Text),
			zap.Stringer("type", tag),
			zap.Stringer("mode", e.mode),
			zap.Binary("bytes", e.output[before:]),
		)
	}
	return nil
}

// Output returns a copy of the output buffer.
func (e *Engine) Output() ([]byte, error) {
	return e.AppendOutput(nil)
}

// AppendOutput appends the output buffer to dst without consuming it.
func (e *Engine) AppendOutput(dst []byte) ([]byte, error) {
	if !e.outputReady {
		return dst, fmt.Errorf("%w: output has not been produced", ErrNotReady)
	}
	return append(dst, e.output...), nil
}

// Size returns the number of bytes in the output buffer.
func (e *Engine) Size() int {
	return len(e.output)
}

// At returns the output byte at index i.
func (e *Engine) At(i int) (byte, error) {
	if i < 0 || i >= len(e.output) {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(e.output))
	}
	return e.output[i], nil
}
