package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/maktabhq/maktab-api/internal/models"
	appErrors "github.com/maktabhq/maktab-api/pkg/errors"
	"github.com/maktabhq/maktab-api/pkg/response"
)

// ContextActorKey is the gin context key storing the validated actor claims.
const ContextActorKey = "currentActor"

// Actor requires a valid access token and stores the caller identity for the
// mutating endpoints. Token issuance lives in the surrounding application;
// this service only verifies.
func Actor(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := parseClaims(parts[1], secret)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextActorKey, claims)
		c.Next()
	}
}

// CurrentActor returns the identity stored by the Actor middleware.
func CurrentActor(c *gin.Context) models.Actor {
	if v, ok := c.Get(ContextActorKey); ok {
		if claims, ok := v.(*models.ActorClaims); ok {
			return claims.Actor()
		}
	}
	return models.Actor{}
}

func parseClaims(tokenString, secret string) (*models.ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.ActorClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}
