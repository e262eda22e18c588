package fileiter

import (
	"bufio"
	"io"
)

// DefaultBufferSize is the longest line the scanner accepts by default.
const DefaultBufferSize = 1024 * 1024

// Iterator yields lines without their trailing newline. Next returns a nil
// line and nil error at the end of input.
type Iterator interface {
	Next() ([]byte, error)
}

type scannerIterator struct {
	scanner *bufio.Scanner
}

func NewWithScanner(r io.Reader) Iterator {
	return NewWithScannerSize(r, DefaultBufferSize)
}

func NewWithScannerSize(r io.Reader, bufSz int) Iterator {
	if bufSz <= 0 {
		bufSz = DefaultBufferSize
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, min(bufSz, 64*1024)), bufSz)
	return &scannerIterator{scanner: scanner}
}

func (s *scannerIterator) Next() ([]byte, error) {
	if s.scanner.Scan() {
		line := s.scanner.Bytes()
		if line == nil {
			// empty line, keep it distinct from end of input
			line = []byte{}
		}
		return line, nil
	} else {
		return nil, s.scanner.Err()
	}
}

type sliceIterator struct {
	lines [][]byte
}

// NewWithLines iterates over lines already in memory.
func NewWithLines(lines [][]byte) Iterator {
	return &sliceIterator{lines: lines}
}

func (s *sliceIterator) Next() ([]byte, error) {
	if len(s.lines) == 0 {
		return nil, nil
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == nil {
		line = []byte{}
	}
	return line, nil
}
