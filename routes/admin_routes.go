package routes

import (
	"github.com/Govind-619/JewelSphere/controllers"
	"github.com/Govind-619/JewelSphere/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup, ctl *controllers.Controller) {
	admin := router.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.PATCH("/orders/:id/status", ctl.AdminUpdateOrderStatus)
	}
}
