package approuters

import (
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/configuration"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/handler"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/hub"

	"github.com/gin-gonic/gin"
)

// MonitorRouters sets up monitoring API routes
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorService := hub.NewMonitorService(container.Hub, container.Registry, container.Rooms)
	monitorHandler := handler.NewMonitorHandler(monitorService)

	monitorGroup := router.Group("/monitor/api")
	{
		monitorGroup.GET("/stats", monitorHandler.GetHubStats)
	}
}
