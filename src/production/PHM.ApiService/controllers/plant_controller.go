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

// PlantController handles plant requests
type PlantController struct {
	plantRepo      interfaces.PlantRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

func NewPlantController(plantRepo interfaces.PlantRepository, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *PlantController {
	return &PlantController{
		plantRepo:      plantRepo,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the plant routes
func (c *PlantController) RegisterRoutes(router gin.IRouter) {
	plants := router.Group("/plants", c.authMiddleware.Authenticate())
	{
		plants.GET("", c.ListPlants)
		plants.GET("/:id", c.GetPlant)

		// Agronomist only
		plants.POST("", c.authMiddleware.RequireAgronomist(), c.CreatePlant)
		plants.PUT("/:id", c.authMiddleware.RequireAgronomist(), c.UpdatePlant)
	}
}

func (c *PlantController) ListPlants(ctx *gin.Context) {
	filter := phmmodels.PlantFilter{
		Search:   ctx.Query("search"),
		Species:  ctx.Query("species"),
		Location: ctx.Query("location"),
	}

	plants, err := c.plantRepo.List(ctx.Request.Context(), filter)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}

	ctx.JSON(http.StatusOK, plants)
}

func (c *PlantController) GetPlant(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		fail(ctx, apierrors.ErrPlantNotFound)
		return
	}

	plant, err := c.plantRepo.GetByID(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}
	if plant == nil {
		fail(ctx, apierrors.ErrPlantNotFound)
		return
	}

	ctx.JSON(http.StatusOK, plant)
}

func (c *PlantController) CreatePlant(ctx *gin.Context) {
	var in phmmodels.PlantInput
	if err := ctx.ShouldBindJSON(&in); err != nil || !in.Complete() {
		fail(ctx, apierrors.ErrMissingPlantFields)
		return
	}

	plant, err := c.plantRepo.Create(ctx.Request.Context(), in)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}

	c.logger.WithField("plant_id", plant.PlantID).Info("plant created")
	ctx.JSON(http.StatusCreated, plant)
}

// UpdatePlant replaces every field of an existing plant. Existence is
// checked before the body is validated.
func (c *PlantController) UpdatePlant(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		fail(ctx, apierrors.ErrPlantNotFound)
		return
	}

	existing, err := c.plantRepo.GetByID(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}
	if existing == nil {
		fail(ctx, apierrors.ErrPlantNotFound)
		return
	}

	var in phmmodels.PlantInput
	if err := ctx.ShouldBindJSON(&in); err != nil || !in.Complete() {
		fail(ctx, apierrors.ErrMissingPlantFields)
		return
	}

	plant, err := c.plantRepo.Update(ctx.Request.Context(), id, in)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}
	if plant == nil {
		fail(ctx, apierrors.ErrPlantNotFound)
		return
	}

	ctx.JSON(http.StatusOK, plant)
}
