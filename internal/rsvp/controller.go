package rsvp

import (
	"errors"
	"net/http"

	"weddingrsvp/internal/shared/utils/response"
	"weddingrsvp/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Controller{service: service, log: log}
}

// SubmitRSVP godoc
// @Summary      Submit an RSVP
// @Description  Validates one guest's response for one event and appends it to the RSVP sheet.
// @Description  A confirmation email is sent in the background when an email address is given.
// @Tags         rsvp
// @Accept       json
// @Produce      json
// @Param        request body SubmitRSVPRequest true "RSVP submission"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /rsvp [post]
func (ctrl *Controller) SubmitRSVP(c *gin.Context) {
	var req SubmitRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		code := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		ctrl.log.LogHTTPError(c, err, code)
		response.RespondJSON(c, code, false, MsgMalformedRequest, nil)
		return
	}

	result := ctrl.service.Submit(c.Request.Context(), &req)
	response.RespondJSON(c, result.HTTPStatus, result.Success, result.Message, nil)
}
