package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/apierrors"
	jwt "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/implementation/jwt"
	rbac "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/implementation/rbac"
	api_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/api"
	auth_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/auth"
)

// Key types for request context
type contextKey string

const (
	ClaimsContextKey    contextKey = "claims"
	AccountIDContextKey contextKey = "account_id"
	RoleContextKey      contextKey = "role"
)

// AuthMiddleware validates bearer tokens and gates routes by role
type AuthMiddleware struct {
	jwtService  *jwt.Service
	rbacService *rbac.Service
	config      Config
}

// Config holds middleware configuration
type Config struct {
	AccessTokenHeader string
}

// DefaultConfig returns a default middleware configuration
func DefaultConfig() Config {
	return Config{
		AccessTokenHeader: "Authorization",
	}
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *jwt.Service, rbacService *rbac.Service, config Config) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		rbacService: rbacService,
		config:      config,
	}
}

// extractBearerToken returns the second space-separated part of the
// header. The scheme word is not checked, so "Token abc" yields "abc".
func extractBearerToken(r *http.Request, headerName string) string {
	parts := strings.Split(r.Header.Get(headerName), " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Authenticate rejects requests without a valid access token and stores
// the decoded claims on the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := extractBearerToken(c.Request, m.config.AccessTokenHeader)
		if accessToken == "" {
			abort(c, apierrors.ErrTokenRequired)
			return
		}

		claims, err := m.jwtService.ValidateAccessToken(accessToken)
		if err != nil || !m.rbacService.IsValidRole(claims.Role) {
			abort(c, apierrors.ErrInvalidToken)
			return
		}

		c.Set(string(ClaimsContextKey), claims)
		c.Set(string(AccountIDContextKey), claims.AccountID)
		c.Set(string(RoleContextKey), claims.Role)

		c.Next()
	}
}

// RequireAgronomist lets only agronomists through. It must follow Authenticate.
func (m *AuthMiddleware) RequireAgronomist() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleFromContext(c)
		if role == "" {
			abort(c, apierrors.ErrTokenRequired)
			return
		}
		if !m.rbacService.CanWrite(role.String()) {
			abort(c, apierrors.ErrAgronomistRequired)
			return
		}
		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by Authenticate
func ClaimsFromContext(c *gin.Context) (*api_models.AccessClaims, bool) {
	val, exists := c.Get(string(ClaimsContextKey))
	if !exists {
		return nil, false
	}
	claims, ok := val.(*api_models.AccessClaims)
	return claims, ok
}

// RoleFromContext returns the caller's role, empty when unauthenticated
func RoleFromContext(c *gin.Context) auth_models.Role {
	return auth_models.Role(c.GetString(string(RoleContextKey)))
}
