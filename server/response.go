package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fxgurv/ALONE/errors"
)

// RespondWithError classifies err onto the error taxonomy and writes its
// status and structured body.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Classify(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, appErr.ToResponse())
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
