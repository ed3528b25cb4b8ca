package controllers

import (
	"github.com/Govind-619/JewelSphere/middleware"
	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/payments"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CheckoutItemRequest struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type CheckoutRequest struct {
	Customer      models.CustomerInfo   `json:"customer"`
	Items         []CheckoutItemRequest `json:"items"`
	Currency      string                `json:"currency"`
	PaymentMethod string                `json:"payment_method"`
}

// POST /orders/checkout
func (ctl *Controller) Checkout(c *gin.Context) {
	utils.LogInfo("Checkout called")
	identity := middleware.IdentityFrom(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid checkout request: %v", err)
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	in := payments.CheckoutInput{
		Customer:      req.Customer,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, payments.CheckoutItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	result, err := ctl.payments.Checkout(c.Request.Context(), identity, in)
	if err != nil {
		appErr := toAppError(err)
		if result != nil && result.Order != nil {
			utils.LogError("Checkout of order %s could not open a payment: %v", result.Order.ID, err)
			appErr.With("order_id", result.Order.ID)
		} else {
			utils.LogError("Checkout failed: %v", err)
		}
		utils.RespondError(c, appErr)
		return
	}

	utils.LogInfo("Checkout created order %s", result.Order.ID)
	utils.Created(c, "Order placed successfully", gin.H{
		"order":       payments.NewOrderView(result.Order),
		"paymentLink": result.PaymentLink,
	})
}
