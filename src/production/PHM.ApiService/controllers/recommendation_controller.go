package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/apierrors"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/middleware"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
	interfaces "gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Interfaces"
)

// RecommendationController handles recommendation requests
type RecommendationController struct {
	recommendationRepo interfaces.RecommendationRepository
	plantRepo          interfaces.PlantRepository
	accountRepo        interfaces.AccountRepository
	logger             *logger.Logger
	authMiddleware     *middleware.AuthMiddleware
}

func NewRecommendationController(
	recommendationRepo interfaces.RecommendationRepository,
	plantRepo interfaces.PlantRepository,
	accountRepo interfaces.AccountRepository,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *RecommendationController {
	return &RecommendationController{
		recommendationRepo: recommendationRepo,
		plantRepo:          plantRepo,
		accountRepo:        accountRepo,
		logger:             logger,
		authMiddleware:     authMiddleware,
	}
}

// RegisterRoutes registers the recommendation routes
func (c *RecommendationController) RegisterRoutes(router gin.IRouter) {
	recs := router.Group("/recommendations", c.authMiddleware.Authenticate())
	{
		recs.GET("/:plant_id", c.ListRecommendations)
		recs.POST("", c.authMiddleware.RequireAgronomist(), c.CreateRecommendation)
	}
}

func (c *RecommendationController) ListRecommendations(ctx *gin.Context) {
	plantID, ok := pathID(ctx, "plant_id")
	if !ok {
		ctx.JSON(http.StatusOK, []*phmmodels.Recommendation{})
		return
	}

	recs, err := c.recommendationRepo.ListByPlant(ctx.Request.Context(), plantID)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}

	ctx.JSON(http.StatusOK, recs)
}

// CreateRecommendation stores advice authored by the calling agronomist
func (c *RecommendationController) CreateRecommendation(ctx *gin.Context) {
	var in phmmodels.RecommendationInput
	if err := ctx.ShouldBindJSON(&in); err != nil || !in.PlantID.Present || in.AdviceText == "" {
		fail(ctx, apierrors.ErrMissingAdvice)
		return
	}

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		fail(ctx, apierrors.ErrTokenRequired)
		return
	}

	reqCtx := ctx.Request.Context()
	plant, err := c.plantRepo.GetByID(reqCtx, in.PlantID.ID)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}
	if plant == nil {
		fail(ctx, apierrors.ErrPlantNotFound)
		return
	}

	author, err := c.accountRepo.GetByID(reqCtx, claims.AccountID)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}
	if author == nil {
		fail(ctx, apierrors.ErrAgronomistNotFound)
		return
	}

	rec, err := c.recommendationRepo.Create(reqCtx, plant.PlantID, author.AgronomistID, in.AdviceText)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}

	ctx.JSON(http.StatusCreated, rec)
}
