package events

import (
	"errors"
	"net/http"

	"weddingrsvp/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetAllEvents(c *gin.Context)
	GetEvent(c *gin.Context)
}

type controller struct {
	repo Repository
}

func NewController(repo Repository) Controller {
	return &controller{repo: repo}
}

// GetAllEvents godoc
// @Summary  List wedding events
// @Tags     events
// @Produce  json
// @Success  200 {object} response.APIResponse
// @Router   /events [get]
func (ctrl *controller) GetAllEvents(c *gin.Context) {
	response.RespondJSON(c, http.StatusOK, true, "Events retrieved successfully", ctrl.repo.FindAll())
}

// GetEvent godoc
// @Summary  Get one wedding event
// @Tags     events
// @Produce  json
// @Param    slug path string true "Event slug"
// @Success  200 {object} response.APIResponse
// @Failure  404 {object} response.APIResponse
// @Router   /events/{slug} [get]
func (ctrl *controller) GetEvent(c *gin.Context) {
	event, err := ctrl.repo.FindBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.RespondJSON(c, http.StatusNotFound, false, "Event not found", nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, false, "Failed to load event", nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, true, "Event retrieved successfully", event)
}
