// Package errs defines the failure kinds a report run can end with.
// Callers wrap a kind with fmt.Errorf("%w: ...") and name the offending path.
package errs

import "errors"

var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrInvalidInputPath  = errors.New("invalid input path")
	ErrDatasetLoad       = errors.New("dataset load failed")
	ErrRender            = errors.New("render failed")
	ErrOutputNotWritable = errors.New("output not writable")
)

// ExitCode maps err to the process exit status. Unknown errors map to 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrTemplateNotFound):
		return 2
	case errors.Is(err, ErrInvalidInputPath):
		return 3
	case errors.Is(err, ErrDatasetLoad):
		return 4
	case errors.Is(err, ErrRender):
		return 5
	case errors.Is(err, ErrOutputNotWritable):
		return 6
	default:
		return 1
	}
}
