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

// AlertController handles alert requests
type AlertController struct {
	alertRepo      interfaces.AlertRepository
	plantRepo      interfaces.PlantRepository
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

func NewAlertController(alertRepo interfaces.AlertRepository, plantRepo interfaces.PlantRepository, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *AlertController {
	return &AlertController{
		alertRepo:      alertRepo,
		plantRepo:      plantRepo,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the alert routes
func (c *AlertController) RegisterRoutes(router gin.IRouter) {
	alerts := router.Group("/alerts", c.authMiddleware.Authenticate())
	{
		alerts.GET("/:plant_id", c.ListAlerts)
		alerts.POST("", c.authMiddleware.RequireAgronomist(), c.CreateAlert)
	}
}

func (c *AlertController) ListAlerts(ctx *gin.Context) {
	plantID, ok := pathID(ctx, "plant_id")
	if !ok {
		ctx.JSON(http.StatusOK, []*phmmodels.Alert{})
		return
	}

	alerts, err := c.alertRepo.ListByPlant(ctx.Request.Context(), plantID, ctx.Query("status"))
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}

	ctx.JSON(http.StatusOK, alerts)
}

func (c *AlertController) CreateAlert(ctx *gin.Context) {
	var in phmmodels.AlertInput
	if err := ctx.ShouldBindJSON(&in); err != nil || !in.PlantID.Present || in.Message == "" {
		fail(ctx, apierrors.ErrMissingAlertFields)
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

	alert, err := c.alertRepo.Create(reqCtx, plant.PlantID, in.Message, in.Status)
	if err != nil {
		fail(ctx, apierrors.NewInternal(err))
		return
	}

	c.logger.WithFields(map[string]interface{}{
		"alert_id": alert.AlertID,
		"plant_id": alert.PlantID,
		"status":   alert.Status,
	}).Info("alert raised")
	ctx.JSON(http.StatusCreated, alert)
}
