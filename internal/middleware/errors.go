package middleware

import (
	"errors"
	"net/http"

	"github.com/alimgiray/persons/internal/models"
	"github.com/alimgiray/persons/pkg/logger"
	"github.com/gin-gonic/gin"
)

// ErrorMapper turns errors attached with c.Error into responses once the handler returns.
// A PersonNotFoundError becomes a 404 with an ErrorResponse body; anything else becomes
// a bare 500. Responses that were already written are left alone.
func ErrorMapper() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var notFound *models.PersonNotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(http.StatusNotFound, notFound.Error()))
			return
		}

		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled request error")
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// Recovery logs a recovered panic and answers with a bare 500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithField("panic", recovered).WithField("path", c.Request.URL.Path).Error("Recovered from panic")
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
