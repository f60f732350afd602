package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// viewerCtxKey is the Gin context key used to store the authenticated viewer name.
const viewerCtxKey = "viewer"

// APIKeyMiddleware gates the dashboard pages by mapping X-API-Key (or ?key=) → viewer.
// An empty key map leaves the pages public.
func APIKeyMiddleware(keys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		apiKey := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if apiKey == "" {
			apiKey = strings.TrimSpace(c.Query("key"))
		}
		viewer, ok := keys[apiKey]
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(viewerCtxKey, viewer)
		c.Next()
	}
}

// Viewer returns the authenticated viewer name, "" when the gate is off.
func Viewer(c *gin.Context) string {
	v, _ := c.Get(viewerCtxKey)
	s, _ := v.(string)
	return s
}
