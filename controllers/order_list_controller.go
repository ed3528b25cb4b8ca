package controllers

import (
	"github.com/Govind-619/JewelSphere/middleware"
	"github.com/Govind-619/JewelSphere/repository"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/gin-gonic/gin"
)

// GET /orders
func (ctl *Controller) ListOrders(c *gin.Context) {
	utils.LogInfo("ListOrders called")
	ctl.listOrders(c, "")
}

// GET /orders/user/:userId
func (ctl *Controller) ListUserOrders(c *gin.Context) {
	utils.LogInfo("ListUserOrders called")
	userID := c.Param("userId")
	if userID == "" {
		utils.BadRequest(c, "User ID is required", nil)
		return
	}
	ctl.listOrders(c, userID)
}

func (ctl *Controller) listOrders(c *gin.Context, userID string) {
	identity := middleware.IdentityFrom(c)
	pagination := utils.NewPagination(c)
	utils.LogDebug("Pagination parameters - Page: %d, Limit: %d, User: %q", pagination.Page, pagination.Limit, userID)

	orders, total, err := ctl.payments.ListOrders(c.Request.Context(), identity, repository.OrderFilter{
		UserID: userID,
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	})
	if err != nil {
		utils.LogError("Failed to list orders for %q: %v", userID, err)
		respondError(c, err)
		return
	}
	pagination.SetTotal(total)

	utils.LogInfo("Listed %d of %d orders", len(orders), total)
	utils.SuccessWithPagination(c, "Orders retrieved successfully", orders, pagination)
}
