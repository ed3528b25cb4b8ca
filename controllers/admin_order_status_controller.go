package controllers

import (
	"strings"

	"github.com/Govind-619/JewelSphere/middleware"
	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/gin-gonic/gin"
)

// PATCH /admin/orders/:id/status
func (ctl *Controller) AdminUpdateOrderStatus(c *gin.Context) {
	utils.LogInfo("AdminUpdateOrderStatus called")
	identity := middleware.IdentityFrom(c)
	orderID := c.Param("id")

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid status in request: %v", err)
		utils.BadRequest(c, "Status is required", nil)
		return
	}

	status := models.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	utils.LogDebug("Requested status update of order %s to: %s", orderID, status)

	view, err := ctl.payments.UpdateOrderStatus(c.Request.Context(), identity, orderID, status)
	if err != nil {
		utils.LogError("Failed to update order %s to %s: %v", orderID, status, err)
		respondError(c, err)
		return
	}

	utils.Success(c, "Order status updated successfully", view)
}
