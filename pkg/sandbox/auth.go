package sandbox

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/idanalyzer/idanalyzer-go/pkg/client"
)

// APIKey rejects requests whose X-Api-Key header is not one of keys.
func APIKey(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(client.HeaderAPIKey)
		if key == "" {
			apiError(c, http.StatusUnauthorized, "API key is missing")
			return
		}
		for _, k := range keys {
			if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
				return
			}
		}
		apiError(c, http.StatusUnauthorized, "Invalid API key")
	}
}
