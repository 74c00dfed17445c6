package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auth "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/implementation/auth"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
	api_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/api"
)

// AuthController handles login
type AuthController struct {
	authService *auth.AuthService
	logger      *logger.Logger
}

func NewAuthController(authService *auth.AuthService, logger *logger.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth routes
func (c *AuthController) RegisterRoutes(router gin.IRouter) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", c.Login)
	}
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req api_models.LoginRequest
	// A malformed body is reported the same as missing credentials
	_ = bindOptionalJSON(ctx, &req)

	resp, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		fail(ctx, err)
		return
	}

	c.logger.WithField("username", resp.User.Username).WithField("role", resp.User.Role).Debug("login succeeded")
	ctx.JSON(http.StatusOK, resp)
}
