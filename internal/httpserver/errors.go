package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pos-storefront/internal/domain"
)

// writeError maps service errors to status codes. Unexpected errors are
// logged and reported without detail.
func writeError(c *gin.Context, log logrus.FieldLogger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownProduct), errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	entry := log.WithFields(logrus.Fields{
		"req_id":  c.GetString(requestIDKey),
		"message": err,
	})
	if status == http.StatusInternalServerError {
		entry.Error("ERROR")
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	entry.Debug("request rejected")
	c.JSON(status, gin.H{"error": err.Error()})
}
