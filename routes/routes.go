package routes

import (
	"github.com/Govind-619/JewelSphere/controllers"
	"github.com/Govind-619/JewelSphere/gateway"
	"github.com/Govind-619/JewelSphere/middleware"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(svc controllers.PaymentService, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	ctl := controllers.NewController(svc)

	// gateway callbacks carry no bearer token
	callbacks := router.Group("/payments")
	{
		callbacks.POST("/callback/:provider", ctl.PaymentCallback)
		// the simulate link marks attempts paid on request
		if svc.GatewayName() == gateway.SimulatorName {
			callbacks.GET("/simulate/:txRef", ctl.SimulatePayment)
		}
	}

	api := router.Group("/")
	api.Use(middleware.IdentityMiddleware(jwtSecret))
	initOrderRoutes(api, ctl)
	initAdminRoutes(api, ctl)

	return router
}
