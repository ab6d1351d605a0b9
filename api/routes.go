package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/api/health", handlers.GetHealth)
	router.GET("/api/traces", handlers.GetTraces)
	router.GET("/api/alerts", handlers.GetAlerts)

	v1 := router.Group("/api/v1")
	v1.GET("/ip/:ip", handlers.LookupIP)
	v1.POST("/report", handlers.CreateReport)
}
