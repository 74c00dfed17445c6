// Package server assembles the API's gin engine from its dependencies.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/controllers"
	authService "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/implementation/auth"
	jwt "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/implementation/jwt"
	rbac "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/implementation/rbac"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/middleware"
	config "gitlab.com/maplesense1/phm.server/src/production/PHM.Config"
	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
	api_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/api"
	implementation "gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Implementation"
)

// APIPrefix is the common prefix of every resource route
const APIPrefix = "/api"

// Dependencies are the long-lived handles the router is built from
type Dependencies struct {
	Config  *config.Config
	Logger  *logger.Logger
	Gateway *database.Gateway
}

// JWTService builds the token service described by the auth config
func JWTService(cfg config.AuthConfig) *jwt.Service {
	return jwt.NewService(api_models.Config{
		SecretKey:           cfg.JWTSecretKey,
		AccessTokenDuration: cfg.AccessTokenDuration,
		Issuer:              cfg.JWTIssuer,
	})
}

// NewRouter wires repositories, services and controllers onto a gin engine
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger.WithComponent("http")

	// Create repositories
	accountRepo := implementation.NewSQLAccountRepository(deps.Gateway)
	plantRepo := implementation.NewSQLPlantRepository(deps.Gateway)
	healthLogRepo := implementation.NewSQLHealthLogRepository(deps.Gateway)
	recommendationRepo := implementation.NewSQLRecommendationRepository(deps.Gateway)
	alertRepo := implementation.NewSQLAlertRepository(deps.Gateway)

	// Auth
	jwtService := JWTService(cfg.Auth)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, rbac.NewService(), middleware.DefaultConfig())
	authServiceInstance := authService.NewAuthService(accountRepo, jwtService)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Recovery(log))
	router.Use(cors.New(corsConfig(cfg.CORS)))
	router.Use(middleware.ErrorHandler(log))

	controllers.NewHealthController(database.NewHealthChecker(deps.Gateway)).RegisterRoutes(router)

	api := router.Group(APIPrefix)
	controllers.NewAuthController(authServiceInstance, log).RegisterRoutes(api)
	controllers.NewPlantController(plantRepo, log, authMiddleware).RegisterRoutes(api)
	controllers.NewHealthLogController(healthLogRepo, plantRepo, log, authMiddleware).RegisterRoutes(api)
	controllers.NewRecommendationController(recommendationRepo, plantRepo, accountRepo, log, authMiddleware).RegisterRoutes(api)
	controllers.NewAlertController(alertRepo, plantRepo, log, authMiddleware).RegisterRoutes(api)

	return router
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.AllowedOrigins
	if len(c.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	}
	return c
}
