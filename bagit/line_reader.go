package bagit

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pwinckles/bagr/constants"
)

// LineReader yields one logical line per call to ReadLine. Lines may be
// terminated by CR, LF, or CRLF; the terminator is stripped. A trailing
// unterminated line is yielded if it is non-empty.
type LineReader struct {
	reader io.Reader
	buf    []byte
	pos    int
	n      int
	eof    bool
	done   bool
	skipLF bool
}

// NewLineReader creates a LineReader over the raw byte stream.
func NewLineReader(reader io.Reader) *LineReader {
	return &LineReader{
		reader: reader,
		buf:    make([]byte, constants.BufferSize),
	}
}

// ReadLine returns the next line, or io.EOF after the last line. Any
// other error is either a read failure from the underlying reader or an
// InvalidStringError for bytes that are not valid UTF-8.
func (lr *LineReader) ReadLine() (string, error) {
	if lr.done {
		return "", io.EOF
	}

	var line []byte

	for {
		if lr.pos >= lr.n && !lr.eof {
			n, err := lr.reader.Read(lr.buf)
			lr.pos, lr.n = 0, n
			if err != nil {
				if err != io.EOF {
					return "", err
				}
				lr.eof = true
			}
		}

		if lr.pos >= lr.n {
			if !lr.eof {
				// Empty read without an error; try again.
				continue
			}
			lr.done = true
			if len(line) == 0 {
				return "", io.EOF
			}
			return lineToString(line)
		}

		b := lr.buf[lr.pos]
		lr.pos++

		if lr.skipLF {
			lr.skipLF = false
			if b == '\n' {
				continue
			}
		}

		switch b {
		case '\n':
			return lineToString(line)
		case '\r':
			// A following LF belongs to this terminator, even when it
			// lands in the next buffer fill.
			lr.skipLF = true
			return lineToString(line)
		default:
			line = append(line, b)
		}
	}
}

func lineToString(line []byte) (string, error) {
	if !utf8.Valid(line) {
		return "", &InvalidStringError{Details: "invalid UTF-8 sequence"}
	}
	return string(line), nil
}

// TagLineReader folds RFC 8493 continuation lines into their parent tag
// line. A physical line beginning with a space or tab continues the
// previous logical line: the leading whitespace run is stripped and the
// remainder is appended, joined by a single space.
type TagLineReader struct {
	lines   *LineReader
	pending string
	hasNext bool
}

// NewTagLineReader creates a TagLineReader over the raw byte stream.
func NewTagLineReader(reader io.Reader) *TagLineReader {
	return &TagLineReader{lines: NewLineReader(reader)}
}

// ReadTagLine returns the next logical tag line, or io.EOF after the
// last. EOF flushes any buffered line.
func (tr *TagLineReader) ReadTagLine() (string, error) {
	var current string
	haveCurrent := false

	if tr.hasNext {
		current = tr.pending
		haveCurrent = true
		tr.hasNext = false
	}

	for {
		line, err := tr.lines.ReadLine()
		if err == io.EOF {
			if haveCurrent {
				return current, nil
			}
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}

		switch {
		case haveCurrent && startsWithSpaceOrTab(line):
			current += " " + strings.TrimLeft(line, " \t")
		case haveCurrent:
			tr.pending = line
			tr.hasNext = true
			return current, nil
		default:
			current = line
			haveCurrent = true
		}
	}
}

func startsWithSpaceOrTab(s string) bool {
	return len(s) > 0 && (s[0] == ' ' || s[0] == '\t')
}
