package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/arxchive-be/types"
	"github.com/tieubaoca/arxchive-be/utils"
)

const UserContextKey = "user"

// AuthMiddleware validates the Bearer token and stores the claims in
// the request context. The token subject is the session key.
func AuthMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
			Status:  false,
			Message: "Authorization header is required",
		})
		return
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
			Status:  false,
			Message: "Authorization header format must be Bearer {token}",
		})
		return
	}

	claims, err := utils.ParseUserToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
			Status:  false,
			Message: "Invalid token",
		})
		return
	}

	c.Set(UserContextKey, claims)
	c.Next()
}

// SessionID returns the session key of the authenticated user.
func SessionID(c *gin.Context) string {
	v, ok := c.Get(UserContextKey)
	if !ok {
		return ""
	}
	claims, ok := v.(*utils.UserClaims)
	if !ok {
		return ""
	}
	return claims.Subject
}
