package routes

import (
	"github.com/Govind-619/JewelSphere/controllers"
	"github.com/Govind-619/JewelSphere/middleware"
	"github.com/gin-gonic/gin"
)

// initOrderRoutes initializes the checkout, order and retry routes.
// Guests may check out and follow their own orders by id.
func initOrderRoutes(router *gin.RouterGroup, ctl *controllers.Controller) {
	orders := router.Group("/orders")
	{
		orders.POST("/checkout", ctl.Checkout)
		orders.GET("", middleware.AdminMiddleware(), ctl.ListOrders)
		orders.GET("/user/:userId", middleware.AuthMiddleware(), ctl.ListUserOrders)
		orders.GET("/:id", ctl.GetOrder)
		orders.GET("/:id/payments/chain", ctl.GetPaymentChain)
	}

	router.POST("/payments/retry/:orderId", ctl.RetryPayment)
}
