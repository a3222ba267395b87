// Package middleware provides the gin middleware chain: the bearer-token
// identity gate, request logging, and CORS.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akash-tk/contactflix/internal/sdk/models"
	"github.com/akash-tk/contactflix/internal/sdk/sqldb"
	"github.com/akash-tk/contactflix/internal/services/jwt"
)

const (
	bearerPrefix = "Bearer "
	userKey      = "auth_user"
)

var ErrNoUser = errors.New("no authenticated user in context")

// Authenticate resolves the caller's identity from the Authorization
// header. A missing or non-Bearer header is rejected outright; a present
// token must verify and its subject must still exist. On success the
// resolved user (digest stripped) is attached for CurrentUser. The gate
// performs the lookup and nothing else.
func Authenticate(tokens *jwt.TokenService, db sqldb.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := tokens.ParseToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized!"})
			return
		}

		user, err := db.GetUserByID(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, sqldb.ErrDBNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		user.Password = nil
		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity resolved by Authenticate. Handlers
// thread the returned value into every store call; nothing downstream
// reads the gin context for identity.
func CurrentUser(c *gin.Context) (models.User, error) {
	val, exists := c.Get(userKey)
	if !exists {
		return models.User{}, ErrNoUser
	}

	user, ok := val.(models.User)
	if !ok {
		return models.User{}, ErrNoUser
	}

	return user, nil
}
