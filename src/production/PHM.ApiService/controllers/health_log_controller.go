package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/apierrors"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/middleware"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
	interfaces "gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Interfaces"
)

// HealthLogController handles health log requests
type HealthLogController struct {
	healthLogRepo  interfaces.HealthLogRepository
	plantRepo      interfaces.PlantRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
	now            func() time.Time
}

func NewHealthLogController(healthLogRepo interfaces.HealthLogRepository, plantRepo interfaces.PlantRepository, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *HealthLogController {
	return &HealthLogController{
		healthLogRepo:  healthLogRepo,
		plantRepo:      plantRepo,
		logger:         logger,
		authMiddleware: authMiddleware,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes registers the health log routes
func (c *HealthLogController) RegisterRoutes(router gin.IRouter) {
	logs := router.Group("/healthlogs", c.authMiddleware.Authenticate())
	{
		logs.GET("/:plant_id", c.ListHealthLogs)
		logs.POST("/:plant_id", c.authMiddleware.RequireAgronomist(), c.CreateHealthLog)
	}
}

// ListHealthLogs returns a plant's logs newest first. ?days=N keeps logs
// dated within the last N days.
func (c *HealthLogController) ListHealthLogs(ctx *gin.Context) {
	var since *phmmodels.Date
	if raw, present := ctx.GetQuery("days"); present && raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			fail(ctx, apierrors.NewValidation("days must be a non-negative integer"))
			return
		}
		cutoff := phmmodels.NewDate(c.now().AddDate(0, 0, -days))
		since = &cutoff
	}

	plantID, ok := pathID(ctx, "plant_id")
	if !ok {
		ctx.JSON(http.StatusOK, []*phmmodels.HealthLog{})
		return
	}

	logs, err := c.healthLogRepo.ListByPlant(ctx.Request.Context(), plantID, since)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}

	ctx.JSON(http.StatusOK, logs)
}

func (c *HealthLogController) CreateHealthLog(ctx *gin.Context) {
	plantID, ok := pathID(ctx, "plant_id")
	if !ok {
		fail(ctx, apierrors.ErrPlantNotFound)
		return
	}

	plant, err := c.plantRepo.GetByID(ctx.Request.Context(), plantID)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}
	if plant == nil {
		fail(ctx, apierrors.ErrPlantNotFound)
		return
	}

	var in phmmodels.HealthLogInput
	if err := bindOptionalJSON(ctx, &in); err != nil {
		fail(ctx, apierrors.NewValidation("Invalid health log fields"))
		return
	}

	entry, err := in.ToHealthLog(plantID, c.now())
	if err != nil {
		fail(ctx, apierrors.NewValidation("log_date must be YYYY-MM-DD"))
		return
	}

	created, err := c.healthLogRepo.Create(ctx.Request.Context(), entry)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}
