package builder

import (
	"fmt"

	"github.com/go-errors/errors"

	"crashes/common/format/report"
)

const maxErrorDepth = 32

// ErrorDetailsFromError walks err and its causes into a chain of error details.
// A go-errors wrapper only contributes its stack: class name and cause come from the error it wraps.
func ErrorDetailsFromError(err error) report.ErrorDetail {
	if err == nil {
		return report.ErrorDetail{ClassName: "<nil>", StackTrace: []report.Frame{}}
	}
	return *errorDetail(err, 0)
}

func errorDetail(err error, depth int) *report.ErrorDetail {
	if err == nil || depth >= maxErrorDepth {
		return nil
	}

	cause := err
	frames := []report.Frame{}
	if stacked, ok := err.(*errors.Error); ok {
		frames = stackFrames(stacked)
		if stacked.Err != nil {
			cause = stacked.Err
		}
	}

	return &report.ErrorDetail{
		ClassName:  fmt.Sprintf("%T", cause),
		Message:    err.Error(),
		StackTrace: frames,
		InnerError: errorDetail(unwrap(cause), depth+1),
	}
}

func stackFrames(err *errors.Error) []report.Frame {
	stack := err.StackFrames()
	frames := make([]report.Frame, 0, len(stack))
	for _, f := range stack {
		name := f.Name
		if f.Package != "" {
			name = f.Package + "." + f.Name
		}
		frames = append(frames, report.Frame{
			MethodName: name,
			FileName:   f.File,
			LineNumber: f.LineNumber,
		})
	}
	return frames
}

func unwrap(err error) error {
	switch e := err.(type) {
	case interface{ Unwrap() error }:
		return e.Unwrap()
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if inner != nil {
				return inner
			}
		}
	}
	return nil
}
