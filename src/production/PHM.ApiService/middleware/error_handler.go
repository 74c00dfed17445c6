package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/apierrors"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
)

// ErrorHandler renders the last error attached with c.Error as
// {"error": message}. Internal causes are logged and never sent.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, message := apierrors.Resolve(err)
		if status >= http.StatusInternalServerError {
			log.Logger.Error().
				Err(err).
				Str("request_id", RequestIDFromContext(c)).
				Str("method", c.Request.Method).
				Str("path", c.FullPath()).
				Msg("request failed")
		}

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, gin.H{"error": message})
	}
}

// Recovery turns a panic into a logged 500
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Logger.Error().
			Interface("panic", recovered).
			Str("request_id", RequestIDFromContext(c)).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": apierrors.InternalMessage})
	})
}
