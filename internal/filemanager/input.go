package filemanager

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/sammcj/mcp-pdftools/internal/errs"
)

// Input is a file reference supplied by a caller. Exactly one concrete type describes it, and
// Store.Resolve turns any of them into a file on disk.
type Input interface {
	isInput()
}

// PathInput is a filesystem path, or the bare name of a file already in the temp directory.
type PathInput string

// BytesInput is the raw file content.
type BytesInput []byte

// Base64Input is standard base64 encoded file content.
type Base64Input struct {
	Data     string
	Filename string
}

// URLInput is a remote file fetched over HTTP(S).
type URLInput struct {
	URL      string
	Filename string
}

// ReaderInput streams file content from an in-process reader such as stdin.
type ReaderInput struct {
	Reader io.Reader
	Name   string
}

// ContentInput is an object carrying file content in one of its fields.
type ContentInput struct {
	Data []byte
	Name string
}

func (PathInput) isInput()    {}
func (BytesInput) isInput()   {}
func (Base64Input) isInput()  {}
func (URLInput) isInput()     {}
func (ReaderInput) isInput()  {}
func (ContentInput) isInput() {}

// ContentKeys are the object fields that may carry file content, in the order they are tried.
var ContentKeys = []string{"data", "content", "bytes", "raw_bytes"}

// AcceptedShapes describes the inputs DecodeInput understands, for error messages and help.
const AcceptedShapes = "a full path, a known temp filename, a byte array, " +
	`{"base64": ..., "filename": ...}, {"url": ..., "filename": ...}, ` +
	`or an object with one of "data", "content", "bytes" or "raw_bytes"`

// DecodeInput maps a decoded JSON tool argument onto an Input. Objects are examined in a fixed
// order: "base64", then "url", then the content fields.
func DecodeInput(raw any) (Input, error) {
	switch v := raw.(type) {
	case Input:
		return v, nil
	case string:
		return PathInput(v), nil
	case []byte:
		return BytesInput(v), nil
	case []any:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		return BytesInput(b), nil
	case io.Reader:
		return ReaderInput{Reader: v}, nil
	case map[string]any:
		return decodeObject(v)
	default:
		return nil, unsupported()
	}
}

func decodeObject(obj map[string]any) (Input, error) {
	filename := stringField(obj, "filename")

	if raw, ok := obj["base64"]; ok {
		data, isString := raw.(string)
		if !isString {
			return nil, fmt.Errorf("%w: invalid base64 content: expected a string", errs.ErrDecode)
		}
		return Base64Input{Data: data, Filename: filename}, nil
	}

	if raw, ok := obj["url"]; ok {
		u, isString := raw.(string)
		if !isString || u == "" {
			return nil, fmt.Errorf("%w: url must be a non-empty string", errs.ErrValidation)
		}
		return URLInput{URL: u, Filename: filename}, nil
	}

	name := stringField(obj, "name")
	if name == "" {
		name = filename
	}
	for _, key := range ContentKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			return ContentInput{Data: []byte(v), Name: name}, nil
		case []byte:
			return ContentInput{Data: v, Name: name}, nil
		case []any:
			b, err := toBytes(v)
			if err != nil {
				return nil, err
			}
			return ContentInput{Data: b, Name: name}, nil
		}
	}

	return nil, unsupported()
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}

// toBytes converts a JSON array of integers 0..255 to bytes.
func toBytes(items []any) ([]byte, error) {
	out := make([]byte, len(items))
	for i, item := range items {
		var f float64
		switch n := item.(type) {
		case float64:
			f = n
		case int:
			f = float64(n)
		case json.Number:
			parsed, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("%w: byte %d is not a number", errs.ErrValidation, i)
			}
			f = parsed
		default:
			return nil, fmt.Errorf("%w: byte %d is not a number", errs.ErrValidation, i)
		}
		if f < 0 || f > 255 || f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: byte %d out of range 0..255: %v", errs.ErrValidation, i, item)
		}
		out[i] = byte(f)
	}
	return out, nil
}

func unsupported() error {
	return fmt.Errorf("%w: provide %s, or upload the file first", errs.ErrUnsupportedInput, AcceptedShapes)
}
