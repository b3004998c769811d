package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fatflowers/membership/internal/app/service/subscription"
)

// LookupCacheMiddleware scopes a fresh subscription lookup cache to each
// request, so repeated lookups within one request hit storage once.
func LookupCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := subscription.WithLookupCache(c.Request.Context(), subscription.NewLookupCache())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
