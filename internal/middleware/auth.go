package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/neko-san1432/citizenlink-insights-go/pkg/response"
)

// Roles allowed to use the insights endpoints
const (
	RoleAdmin                = "admin"
	RoleLGUAdmin             = "lgu-admin"
	RoleComplaintCoordinator = "complaint-coordinator"
)

// ContextKeyRole is the gin context key holding the caller's role
const ContextKeyRole = "role"

// Claims are the bearer token claims the service reads
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var errMissingToken = errors.New("missing bearer token")

func parseToken(header string, secret []byte) (*Claims, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, errMissingToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireRole rejects requests without a valid HS256 bearer token whose role
// claim is one of roles
func RequireRole(secret string, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		claims, err := parseToken(c.GetHeader("Authorization"), []byte(secret))
		if err != nil {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		if !allowed[claims.Role] {
			response.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}

		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// SignToken issues an HS256 token carrying role
func SignToken(secret, role string, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: role, RegisteredClaims: claims})
	return token.SignedString([]byte(secret))
}
