package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/wms/backend/internal/application/catalog"
)

// StatusHandler serves the status lookup table
type StatusHandler struct {
	BaseHandler
	statuses *catalogapp.StatusService
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(statuses *catalogapp.StatusService) *StatusHandler {
	return &StatusHandler{statuses: statuses}
}

// List returns every status code with its name and scope
//
//	@ID			listStatuses
//	@Summary	List status codes with their names and scopes
//	@Tags		statuses
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=[]catalogapp.StatusResponse}
//	@Failure	401	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/statuses [get]
func (h *StatusHandler) List(c *gin.Context) {
	statuses, err := h.statuses.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statuses)
}
