package controllers

import (
	"github.com/Govind-619/JewelSphere/middleware"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/gin-gonic/gin"
)

// GET /orders/:id
func (ctl *Controller) GetOrder(c *gin.Context) {
	utils.LogInfo("GetOrder called")
	orderID := c.Param("id")

	view, err := ctl.payments.GetOrder(c.Request.Context(), middleware.IdentityFrom(c), orderID)
	if err != nil {
		utils.LogError("Failed to load order %s: %v", orderID, err)
		respondError(c, err)
		return
	}

	utils.LogDebug("Order %s payment status %s", orderID, view.PaymentStatus)
	utils.Success(c, "Order details retrieved successfully", view)
}

// GET /orders/:id/payments/chain
func (ctl *Controller) GetPaymentChain(c *gin.Context) {
	utils.LogInfo("GetPaymentChain called")
	orderID := c.Param("id")

	chain, err := ctl.payments.GetChain(c.Request.Context(), middleware.IdentityFrom(c), orderID)
	if err != nil {
		utils.LogError("Failed to load payment chain of order %s: %v", orderID, err)
		respondError(c, err)
		return
	}

	utils.Success(c, "Payment chain retrieved successfully", chain)
}
