// Package errs defines the error kinds shared by the file manager, the document services
// and the tools. Callers wrap a kind with fmt.Errorf("%w: ...") and test with errors.Is.
package errs

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation")
	ErrDependencyMissing = errors.New("dependency missing")
	ErrExternal          = errors.New("external call failed")
	ErrAccessDenied      = errors.New("access denied")
	ErrDecode            = errors.New("decode failed")
	ErrUnsupportedInput  = errors.New("unsupported file input")
)
