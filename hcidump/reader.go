package hcidump

import (
	"bufio"
	"io"

	"github.com/ruuvi/ble"
)

// maxLineSize bounds a single hcidump line. Real lines are around 60 bytes.
const maxLineSize = 64 * 1024

type lineReader struct {
	s *bufio.Scanner
}

// NewLineReader returns a LineSource reading newline separated lines from r.
func NewLineReader(r io.Reader) ble.LineSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &lineReader{s: s}
}

func (lr *lineReader) ReadLine() (string, error) {
	if lr.s.Scan() {
		return lr.s.Text(), nil
	}
	if err := lr.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type sliceSource struct {
	lines []string
}

// Lines returns a LineSource yielding lines in order, then io.EOF.
func Lines(lines ...string) ble.LineSource {
	return &sliceSource{lines: lines}
}

func (s *sliceSource) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	l := s.lines[0]
	s.lines = s.lines[1:]
	return l, nil
}
