package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harborview-partners/panel/src/logging"
)

// respondErr maps the error taxonomy to HTTP status codes at the handler
// boundary. Engines return wrapped sentinels; nothing below this layer
// knows about HTTP.
func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, logging.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, logging.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, logging.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, logging.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, logging.ErrPermissionDenied):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"err": err.Error()})
}
