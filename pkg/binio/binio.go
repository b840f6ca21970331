// Package binio connects a binstream engine to files and streams. It only
// uses the engine's public append, parse and output operations.
package binio

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Loader accepts description text.
type Loader interface {
	Append(text string)
}

// Parser compiles the text a Loader accumulated.
type Parser interface {
	Loader
	Parse() error
}

// Producer exposes compiled bytes.
type Producer interface {
	Output() ([]byte, error)
}

func LoadString(l Loader, s string) {
	l.Append(s)
}

func LoadReader(l Loader, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read description: %w", err)
	}
	l.Append(string(data))
	return nil
}

func LoadFile(l Loader, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read description file %q: %w", path, err)
	}
	l.Append(string(data))
	return nil
}

// Compile loads everything from r and runs a parse pass.
func Compile(p Parser, r io.Reader) error {
	if err := LoadReader(p, r); err != nil {
		return err
	}
	return p.Parse()
}

// WriteTo copies the compiled bytes to w.
func WriteTo(p Producer, w io.Writer) (int, error) {
	out, err := p.Output()
	if err != nil {
		return 0, err
	}
	return w.Write(out)
}

// WriteFile writes the compiled bytes to path, creating parent directories.
func WriteFile(p Producer, path string) error {
	out, err := p.Output()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file %q: %w", path, err)
	}
	return nil
}

// Dump writes a canonical hex+ASCII listing of the compiled bytes.
func Dump(p Producer, w io.Writer) error {
	out, err := p.Output()
	if err != nil {
		return err
	}
	d := hex.Dumper(w)
	if _, err := d.Write(out); err != nil {
		return err
	}
	return d.Close()
}

// WriteHex writes the compiled bytes as one line of lowercase hex.
func WriteHex(p Producer, w io.Writer) error {
	out, err := p.Output()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hex.EncodeToString(out))
	return err
}
