package controllers

import (
	"errors"

	"github.com/Govind-619/JewelSphere/gateway"
	"github.com/Govind-619/JewelSphere/middleware"
	"github.com/Govind-619/JewelSphere/payments"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/gin-gonic/gin"
)

// POST /payments/retry/:orderId
func (ctl *Controller) RetryPayment(c *gin.Context) {
	utils.LogInfo("RetryPayment called")
	orderID := c.Param("orderId")
	identity := middleware.IdentityFrom(c)

	result, err := ctl.payments.RetryPayment(c.Request.Context(), identity, orderID)
	if err != nil {
		utils.LogError("Retry of order %s failed: %v", orderID, err)
		respondError(c, err)
		return
	}

	utils.LogInfo("Retry payment %s opened for order %s", result.RetryPaymentID, orderID)
	utils.Success(c, result.Message, result)
}

// POST /payments/callback/:provider
func (ctl *Controller) PaymentCallback(c *gin.Context) {
	utils.LogInfo("PaymentCallback called")
	provider := c.Param("provider")

	body, err := c.GetRawData()
	if err != nil {
		utils.LogError("Failed to read %s callback body: %v", provider, err)
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	n, err := ctl.payments.ParseNotification(provider, c.Request.Header, body)
	if errors.Is(err, gateway.ErrUnsupportedEvent) {
		utils.LogInfo("Ignoring %s callback: %v", provider, err)
		utils.Success(c, "Notification ignored", &payments.Resolution{Outcome: payments.OutcomeIgnored})
		return
	}
	if err != nil {
		utils.LogError("Rejected %s callback: %v", provider, err)
		respondError(c, err)
		return
	}

	res, err := ctl.payments.ResolvePayment(c.Request.Context(), n)
	if err != nil {
		utils.LogError("Failed to apply %s callback for tx_ref %s: %v", provider, n.TxRef, err)
		respondError(c, err)
		return
	}

	utils.LogInfo("Callback for tx_ref %s: %s", n.TxRef, res.Outcome)
	utils.Success(c, "Notification processed", res)
}

// GET /payments/simulate/:txRef?outcome=success|failure
func (ctl *Controller) SimulatePayment(c *gin.Context) {
	utils.LogInfo("SimulatePayment called")
	txRef := c.Param("txRef")
	outcome := c.DefaultQuery("outcome", "success")

	res, err := ctl.payments.SimulateOutcome(c.Request.Context(), txRef, outcome)
	if err != nil {
		utils.LogError("Simulated %s for tx_ref %s failed: %v", outcome, txRef, err)
		respondError(c, err)
		return
	}

	utils.Success(c, "Simulated payment processed", res)
}
