// Package cadio reads CAM input files and writes generated programs.
package cadio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnreadableFile is returned when an input path is missing or cannot
// be read.
var ErrUnreadableFile = errors.New("unreadable file")

// Decoder wraps r so that a leading byte order mark is honored and
// stripped. Files without a BOM are read as UTF-8.
func Decoder(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// LineReader reads text one line at a time. Unlike bufio.Scanner it has
// no line length limit. The trailing "\n" or "\r\n" is dropped.
type LineReader struct {
	r    *bufio.Reader
	line string
	err  error
	done bool
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// Next advances to the next line and reports whether there is one.
func (l *LineReader) Next() bool {
	if l.done {
		return false
	}
	line, err := l.r.ReadString('\n')
	if err != nil {
		l.done = true
		if err != io.EOF {
			l.err = err
		}
		if line == "" {
			return false
		}
	}
	line = strings.TrimSuffix(line, "\n")
	l.line = strings.TrimSuffix(line, "\r")
	return true
}

func (l *LineReader) Text() string {
	return l.line
}

// Err returns the first read error other than io.EOF.
func (l *LineReader) Err() error {
	return l.err
}

// ReadText reads the whole file at path as text.
func ReadText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnreadableFile, err)
	}
	defer f.Close()

	data, err := io.ReadAll(Decoder(f))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrUnreadableFile, path, err)
	}
	return string(data), nil
}

// WriteText writes text to path, replacing any existing file.
func WriteText(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
