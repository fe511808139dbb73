package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Sink is a destination reports are appended to
type Sink interface {
	// Name identifies the sink in diagnostics
	Name() string
	// Write appends r. Nothing is written when formatting fails.
	Write(r *Report) error
}

// FileSink appends reports to <Dir>/complexity_<Label>.log
type FileSink struct {
	Dir       string
	Label     string
	Formatter Formatter
}

// NewFileSink creates a file sink using the text layout
func NewFileSink(dir, label string) *FileSink {
	return &FileSink{Dir: dir, Label: label, Formatter: TextFormatter{}}
}

// FileName returns the log file name for label
func FileName(label string) string {
	return "complexity_" + label + ".log"
}

// ValidateLabel checks that label can be embedded in a file name
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("report label must not be empty")
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("report label %q must not contain path separators", label)
	}
	if strings.ContainsRune(label, 0) {
		return fmt.Errorf("report label must not contain NUL bytes")
	}
	return nil
}

// Path returns the file the sink appends to
func (s *FileSink) Path() (string, error) {
	if err := ValidateLabel(s.Label); err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, FileName(s.Label)), nil
}

// Name returns "file:<path>"
func (s *FileSink) Name() string {
	path, err := s.Path()
	if err != nil {
		return "file:" + s.Label
	}
	return "file:" + path
}

// Write renders r and appends it to the log file
func (s *FileSink) Write(r *Report) error {
	path, err := s.Path()
	if err != nil {
		return err
	}

	var b bytes.Buffer
	if err := formatterOrDefault(s.Formatter).Format(&b, r); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}
	if _, err := f.Write(b.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	return nil
}

// WriterSink writes reports to an io.Writer. Writes are serialized.
type WriterSink struct {
	Label     string
	W         io.Writer
	Formatter Formatter

	mu sync.Mutex
}

// NewWriterSink creates a writer sink using the text layout
func NewWriterSink(label string, w io.Writer) *WriterSink {
	return &WriterSink{Label: label, W: w, Formatter: TextFormatter{}}
}

// Name returns "writer:<label>"
func (s *WriterSink) Name() string {
	return "writer:" + s.Label
}

// Write renders r and writes it in one call
func (s *WriterSink) Write(r *Report) error {
	if s.W == nil {
		return fmt.Errorf("writer sink %q has no writer", s.Label)
	}

	var b bytes.Buffer
	if err := formatterOrDefault(s.Formatter).Format(&b, r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.W.Write(b.Bytes())
	return err
}

func formatterOrDefault(f Formatter) Formatter {
	if f == nil {
		return TextFormatter{}
	}
	return f
}
