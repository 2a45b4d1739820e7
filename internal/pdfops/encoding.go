package pdfops

import (
	"fmt"
	"strings"

	"github.com/sammcj/mcp-pdftools/internal/errs"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is used when a caller names no output encoding.
const DefaultEncoding = "utf-8"

// textEncoder restricts extracted text to what a named character encoding can represent.
type textEncoder struct {
	name string
	enc  encoding.Encoding
}

func newTextEncoder(name string) (*textEncoder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported encoding %q", errs.ErrValidation, name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	return &textEncoder{name: canonical, enc: enc}, nil
}

// normalise returns text with every rune the encoding cannot represent replaced by the
// encoding's substitute character.
func (t *textEncoder) normalise(text string) (string, error) {
	if t.name == DefaultEncoding {
		return text, nil
	}
	encoded, err := encoding.ReplaceUnsupported(t.enc.NewEncoder()).String(text)
	if err != nil {
		return "", fmt.Errorf("failed to encode text as %s: %w", t.name, err)
	}
	decoded, err := t.enc.NewDecoder().String(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode text from %s: %w", t.name, err)
	}
	return decoded, nil
}
