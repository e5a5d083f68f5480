package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the health, dashboard and report endpoints.
func RegisterRoutes(router gin.IRouter, health *HealthHandler, dashboards *DashboardHandler, reports *ReportHandler) {
	router.GET("/health", health.Health)
	router.GET("/health/ready", health.Ready)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", health.Info)

		d := v1.Group("/dashboards")
		{
			d.GET("/harvests", dashboards.Harvests)
			d.GET("/land", dashboards.Land)
			d.GET("/compliance", dashboards.Compliance)
			d.GET("/programs", dashboards.Programs)
			d.GET("/overview", dashboards.Overview)
			d.GET("/cache", dashboards.CacheStats)
			d.DELETE("/cache", dashboards.InvalidateCache)
		}

		r := v1.Group("/reports")
		{
			r.GET("/snapshots", reports.List)
			r.POST("/snapshots", reports.Capture)
		}
	}
}
