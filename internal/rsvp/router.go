package rsvp

import "github.com/gin-gonic/gin"

func SetupRSVPRoutes(rg *gin.RouterGroup, controller *Controller) {
	rsvp := rg.Group("/rsvp")
	{
		rsvp.POST("", controller.SubmitRSVP) // POST /api/v1/rsvp
	}
}
