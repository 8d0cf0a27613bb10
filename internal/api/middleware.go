package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"strideworks/plan-engine/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys under which AuthMiddleware stores the caller's identity.
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

// jwtClaims is the token payload issued by the auth service.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token on every protected route and
// stores the caller's id (hex) and role on the request context. Expiry and
// signature checks happen inside ParseWithClaims.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			abortWithError(c, http.StatusUnauthorized, "token has expired")
			return
		case err != nil:
			abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
			return
		case !token.Valid, claims.UserID == "", claims.Role == "":
			abortWithError(c, http.StatusUnauthorized, "invalid token or missing claims")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

// bearerToken extracts the raw token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header is missing")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("authorization header format must be Bearer {token}")
	}
	return parts[1], nil
}

// RoleMiddleware gates a route group to the given roles. It relies on
// AuthMiddleware having run first; a missing role on the context is a wiring
// bug, not a client error.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("access denied for role %q", role))
	}
}

func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

func getUserIDFromContext(c *gin.Context) (string, error) {
	id, ok := c.Value(ContextUserIDKey).(string)
	if !ok || id == "" {
		return "", errors.New("no authenticated user id on request context")
	}
	return id, nil
}

func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	role, ok := c.Value(ContextUserRoleKey).(domain.Role)
	if !ok || role == "" {
		return "", errors.New("no authenticated role on request context")
	}
	return role, nil
}
