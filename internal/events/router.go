package events

import "github.com/gin-gonic/gin"

func SetupEventRoutes(router *gin.RouterGroup, controller Controller) {
	// Public, read-only
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents)    // GET /api/v1/events
		publicEvents.GET("/:slug", controller.GetEvent) // GET /api/v1/events/:slug
	}
}
