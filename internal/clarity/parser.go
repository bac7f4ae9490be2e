package clarity

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrParse marks a document that could not be read or is not well-formed XML.
var ErrParse = errors.New("failed to read XML file")

// ParseFile loads and parses the detail report at path.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer file.Close()

	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse reads a whole detail report from r.
//
// The decoder is strict: unclosed tags, bad entities and content after the
// root element all fail the parse. Documents may be UTF-8 (with or without a
// byte order mark), UTF-16 with a byte order mark, or any encoding named in
// the XML declaration that the IANA index knows.
func Parse(r io.Reader) (*Document, error) {
	input, fromBOM := decodeByteOrderMark(bufio.NewReader(r))

	decoder := xml.NewDecoder(input)
	decoder.Strict = true
	decoder.CharsetReader = charsetReader(fromBOM)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: document is empty", ErrParse)
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := expectEnd(decoder); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &doc, nil
}

// expectEnd consumes the rest of the stream and rejects anything but
// whitespace, comments and processing instructions after the root element.
func expectEnd(decoder *xml.Decoder) error {
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				line, _ := decoder.InputPos()
				return fmt.Errorf("junk after document element on line %d", line)
			}
		case xml.Comment, xml.ProcInst:
		default:
			line, _ := decoder.InputPos()
			return fmt.Errorf("junk after document element on line %d", line)
		}
	}
}

// =============================================================================
// CHARACTER SETS
// =============================================================================

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16BEBOM = []byte{0xFE, 0xFF}
	utf16LEBOM = []byte{0xFF, 0xFE}
)

// decodeByteOrderMark strips a UTF-8 byte order mark and transcodes UTF-16
// input to UTF-8. The flag reports whether a UTF-16 mark was consumed, in
// which case a declared "UTF-16" encoding must not be decoded a second time.
func decodeByteOrderMark(r *bufio.Reader) (io.Reader, bool) {
	head, _ := r.Peek(3)
	switch {
	case bytes.HasPrefix(head, utf8BOM):
		_, _ = r.Discard(len(utf8BOM))
		return r, false
	case bytes.HasPrefix(head, utf16BEBOM), bytes.HasPrefix(head, utf16LEBOM):
		decoder := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		return transform.NewReader(r, decoder), true
	default:
		return r, false
	}
}

func charsetReader(fromBOM bool) func(string, io.Reader) (io.Reader, error) {
	return func(label string, input io.Reader) (io.Reader, error) {
		if fromBOM && strings.HasPrefix(strings.ToLower(label), "utf-16") {
			return input, nil
		}
		enc, err := ianaindex.IANA.Encoding(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("unsupported encoding %q", label)
		}
		return transform.NewReader(input, enc.NewDecoder()), nil
	}
}
