package openai

import (
	stderrors "errors"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/fxgurv/ALONE/errors"
)

// classify maps go-openai errors onto the failure taxonomy. Anything it does
// not recognize is left for errors.Classify.
func classify(name string, err error) error {
	var apiErr *goopenai.APIError
	if stderrors.As(err, &apiErr) {
		return statusError(name, apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *goopenai.RequestError
	if stderrors.As(err, &reqErr) {
		detail := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			detail = reqErr.Err.Error()
		}
		return statusError(name, reqErr.HTTPStatusCode, detail, err)
	}
	return err
}

func statusError(name string, status int, detail string, cause error) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return errors.Auth(name, detail).WithCause(cause)
	}
	return errors.Upstream(name, status, detail).WithCause(cause)
}
