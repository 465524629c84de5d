package textio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultTerminator ends every FASTA record in the concatenated text.
const DefaultTerminator = 0x01

// ErrFASTA reports malformed FASTA input.
var ErrFASTA = errors.New("malformed FASTA")

// FASTA is a collection of sequences concatenated into one text, each
// followed by the terminator.
type FASTA struct {
	Text       []byte
	Records    int
	Terminator byte
}

// Symbols returns the length of the concatenated text.
func (f *FASTA) Symbols() int {
	return len(f.Text)
}

// LoadFASTA reads every record of r. Header lines start with '>' and
// sequence lines are concatenated with surrounding whitespace removed.
func LoadFASTA(r io.Reader, terminator byte) (*FASTA, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	f := &FASTA{Terminator: terminator}
	inRecord := false
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 || b[0] == ';' {
			continue
		}
		if b[0] == '>' {
			if inRecord {
				f.Text = append(f.Text, terminator)
			}
			inRecord = true
			f.Records++
			continue
		}
		if !inRecord {
			return nil, fmt.Errorf("%w: line %d: sequence before first header", ErrFASTA, line)
		}
		if i := bytes.IndexByte(b, terminator); i >= 0 {
			return nil, fmt.Errorf("%w: line %d column %d holds the terminator 0x%02x", ErrAlphabet, line, i+1, terminator)
		}
		f.Text = append(f.Text, b...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read FASTA: %w", err)
	}
	if inRecord {
		f.Text = append(f.Text, terminator)
	}
	return f, nil
}
