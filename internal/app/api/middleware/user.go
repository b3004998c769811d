package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/membership/pkg/logctx"
	"github.com/fatflowers/membership/pkg/response"
)

// UserIDHeader carries the authenticated user id set by the fronting auth layer.
const UserIDHeader = "X-User-ID"

// GinUserIDKey is the gin.Context key holding the user id.
const GinUserIDKey = "userID"

// UserMiddleware requires UserIDHeader and adds user_id to the request logger.
func UserMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing "+UserIDHeader))
			return
		}
		c.Set(GinUserIDKey, userID)

		reqLogger := logctx.FromGin(c, base).With("user_id", userID)
		c.Set(logctx.GinLoggerKey, reqLogger)
		ctx := logctx.WithUserID(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(logctx.WithLogger(ctx, reqLogger))
		c.Next()
	}
}
