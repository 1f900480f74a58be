package handlers

import (
	"tricy/internal/models"
	"tricy/internal/services"
	"tricy/internal/utils"

	"github.com/gin-gonic/gin"
)

type DriverHandler struct {
	driverService services.DriverService
}

func NewDriverHandler(driverService services.DriverService) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
	}
}

func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var request models.CreateDriverRequest
	if !bindJSON(c, &request) {
		return
	}

	driver, err := h.driverService.Create(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Driver registered successfully", driver)
}

func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver retrieved successfully", driver)
}
