package errors

import (
	"context"
	stderrors "errors"
	"io/fs"
	"net/http"
)

// Classifier is implemented by errors that know their own taxonomy code,
// such as transport errors carrying an HTTP status.
type Classifier interface {
	AppError() *AppError
}

// Classify maps any error onto the failure taxonomy. It never returns nil for
// a non-nil err, so callers can always surface a reason and detail.
//
// Resolution order: an AppError anywhere in the chain, a Classifier anywhere in
// the chain, context cancellation and deadline, filesystem path errors, and
// finally UPSTREAM_ERROR for anything else (transport failures).
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	var c Classifier
	if stderrors.As(err, &c) {
		if appErr := c.AppError(); appErr != nil {
			return appErr
		}
	}
	switch {
	case stderrors.Is(err, context.Canceled):
		return Cancelled().WithCause(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return Timeout("request").WithCause(err)
	}
	var pathErr *fs.PathError
	if stderrors.As(err, &pathErr) {
		return IO(pathErr.Op, pathErr.Path, err)
	}
	return New(ErrCodeUpstream, err.Error(), http.StatusBadGateway).WithCause(err)
}
