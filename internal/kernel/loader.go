package kernel

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// MaxCells caps N×N so that a hostile first line cannot force a huge allocation.
const MaxCells = 1 << 20

const maxLineLength = 1 << 20

var (
	numberPattern = `[+-]?(?:\d+(?:\.\d*)?|\.\d+)`
	rowGrammar    = regexp.MustCompile(`^` + numberPattern + `(?:,` + numberPattern + `)*$`)
)

type loader struct {
	permissive bool
}

// LoadOption configures Load.
type LoadOption func(*loader)

// Permissive makes a field that matches the row grammar but does not convert
// to a finite number load as 0 instead of rejecting the kernel.
func Permissive() LoadOption {
	return func(l *loader) {
		l.permissive = true
	}
}

// Load reads a kernel description: N lines of N comma separated numbers, where
// N is taken from the field count of the first line. Lines after the N-th are
// ignored. Any failure yields a nil kernel and an error wrapping ErrFormat,
// ErrSize or ErrAllocation.
func Load(r io.Reader, opts ...LoadOption) (*Kernel, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: failed to read first line: %w", ErrFormat, err)
		}
		return nil, fmt.Errorf("%w: kernel description is empty", ErrFormat)
	}

	first := scanner.Text()
	if !rowGrammar.MatchString(first) {
		return nil, fmt.Errorf("%w: line 1: %q is not a comma separated list of numbers", ErrFormat, abbreviate(first))
	}

	size := strings.Count(first, ",") + 1
	if size <= 0 {
		return nil, fmt.Errorf("%w: derived size %d", ErrSize, size)
	}
	if size > MaxCells/size {
		return nil, fmt.Errorf("%w: %dx%d kernel exceeds %d cells", ErrAllocation, size, size, MaxCells)
	}

	weights := make([]float64, size*size)
	line := first
	for r := 0; r < size; r++ {
		if r > 0 {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return nil, fmt.Errorf("%w: failed to read line %d: %w", ErrFormat, r+1, err)
				}
				return nil, fmt.Errorf("%w: expected %d rows, found %d", ErrFormat, size, r)
			}
			line = scanner.Text()
		}
		if err := l.parseRow(weights[r*size:(r+1)*size], line, r+1); err != nil {
			return nil, err
		}
	}

	return &Kernel{size: size, weights: weights}, nil
}

// Parse loads a kernel from its textual description.
func Parse(text string, opts ...LoadOption) (*Kernel, error) {
	return Load(strings.NewReader(text), opts...)
}

// LoadFile loads a kernel description from a file.
func LoadFile(path string, opts ...LoadOption) (*Kernel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	defer func() {
		_ = f.Close()
	}()

	k, err := Load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return k, nil
}

func (l *loader) parseRow(row []float64, line string, lineNo int) error {
	if !rowGrammar.MatchString(line) {
		return fmt.Errorf("%w: line %d: %q is not a comma separated list of numbers", ErrFormat, lineNo, abbreviate(line))
	}

	fields := strings.Split(line, ",")
	if len(fields) != len(row) {
		return fmt.Errorf("%w: line %d has %d fields, expected %d", ErrSize, lineNo, len(fields), len(row))
	}

	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsInf(v, 0) {
			if !l.permissive {
				return fmt.Errorf("%w: line %d, field %d: %q is not a finite number", ErrFormat, lineNo, i+1, abbreviate(field))
			}
			v = 0
		}
		row[i] = v
	}
	return nil
}

func abbreviate(s string) string {
	const limit = 40
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
