package middleware

import (
	"net/http"

	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	"github.com/foyerhq/foyer-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

const apiTokenHeader = "X-Api-Token"

// APITokenAuthMiddleware authenticates payment-provider webhooks against the
// bcrypt-hashed API tokens in the store. On success the provider name is
// established as the acting identity.
func APITokenAuthMiddleware(tokenRepo portsrepo.APITokenRepositoryFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		presented := c.GetHeader(apiTokenHeader)
		if presented == "" {
			logger.Warn("API token header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API token required"})
			return
		}

		tokens, err := tokenRepo.ListActiveTokens(c.Request.Context())
		if err != nil {
			logger.Error("Failed to load API tokens", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		for _, token := range tokens {
			if utils.CheckAPIToken(presented, token.TokenHash) {
				c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), "provider:"+token.Name))
				c.Next()
				return
			}
		}

		logger.Warn("API token rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API token"})
	}
}
