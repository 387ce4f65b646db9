package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/wms/backend/internal/application/partner"
)

// CarrierHandler handles carrier and carrier service endpoints
type CarrierHandler struct {
	BaseHandler
	carriers *partnerapp.CarrierService
}

// NewCarrierHandler creates a new CarrierHandler
func NewCarrierHandler(carriers *partnerapp.CarrierService) *CarrierHandler {
	return &CarrierHandler{carriers: carriers}
}

// List returns active carriers with their active services
//
//	@ID			listCarriers
//	@Summary	List active carriers with their active services
//	@Tags		carriers
//	@Produce	json
//	@Param		page		query		int		false	"Page number, starts at 1"		default(1)
//	@Param		page_size	query		int		false	"Items per page, at most 100"	default(20)
//	@Param		order_by	query		string	false	"Sort field"
//	@Param		order_dir	query		string	false	"asc or desc"
//	@Param		search		query		string	false	"Free-text search"
//	@Success	200			{object}	dto.Response{data=[]partnerapp.CarrierResponse}
//	@Failure	400			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/carriers [get]
func (h *CarrierHandler) List(c *gin.Context) {
	filter, ok := h.bindList(c)
	if !ok {
		return
	}

	carriers, total, err := h.carriers.ListActive(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, carriers, total, filter)
}

// GetByID returns one carrier
//
//	@ID			getCarrier
//	@Summary	Get a carrier
//	@Tags		carriers
//	@Produce	json
//	@Param		id	path		string	true	"Carrier ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=partnerapp.CarrierResponse}
//	@Failure	401	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/carriers/{id} [get]
func (h *CarrierHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	carrier, err := h.carriers.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, carrier)
}

// Create adds a carrier
//
//	@ID			createCarrier
//	@Summary	Create a carrier
//	@Tags		carriers
//	@Accept		json
//	@Produce	json
//	@Param		request	body		partnerapp.CarrierInput	true	"Carrier"
//	@Success	201		{object}	dto.Response{data=partnerapp.CarrierResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	403		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/carriers [post]
func (h *CarrierHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req partnerapp.CarrierInput
	if !h.bindJSON(c, &req) {
		return
	}

	carrier, err := h.carriers.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, carrier)
}

// Update replaces a carrier's fields
//
//	@ID			updateCarrier
//	@Summary	Replace a carrier's fields
//	@Tags		carriers
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Carrier ID"	format(uuid)
//	@Param		request	body		partnerapp.CarrierInput	true	"Carrier"
//	@Success	200		{object}	dto.Response{data=partnerapp.CarrierResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	403		{object}	dto.Response
//	@Failure	404		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/carriers/{id} [put]
func (h *CarrierHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.CarrierInput
	if !h.bindJSON(c, &req) {
		return
	}

	carrier, err := h.carriers.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, carrier)
}

// Delete deactivates a carrier
//
//	@ID			deactivateCarrier
//	@Summary	Deactivate a carrier
//	@Tags		carriers
//	@Produce	json
//	@Param		id	path		string	true	"Carrier ID"	format(uuid)
//	@Success	200	{object}	dto.Response
//	@Failure	401	{object}	dto.Response
//	@Failure	403	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/carriers/{id} [delete]
func (h *CarrierHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.carriers.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Carrier deactivated"})
}

// CreateService adds a service level to a carrier
//
//	@ID			createCarrierService
//	@Summary	Add a service level to a carrier
//	@Tags		carriers
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Carrier ID"	format(uuid)
//	@Param		request	body		partnerapp.CarrierServiceInput	true	"Carrier service"
//	@Success	201		{object}	dto.Response{data=partnerapp.CarrierServiceResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	403		{object}	dto.Response
//	@Failure	404		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/carriers/{id}/services [post]
func (h *CarrierHandler) CreateService(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.CarrierServiceInput
	if !h.bindJSON(c, &req) {
		return
	}

	service, err := h.carriers.CreateService(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, service)
}

// UpdateService renames a carrier service
//
//	@ID			updateCarrierService
//	@Summary	Rename a carrier service
//	@Tags		carriers
//	@Accept		json
//	@Produce	json
//	@Param		id			path		string							true	"Carrier ID"			format(uuid)
//	@Param		serviceId	path		string							true	"Carrier service ID"	format(uuid)
//	@Param		request		body		partnerapp.CarrierServiceInput	true	"Carrier service"
//	@Success	200			{object}	dto.Response{data=partnerapp.CarrierServiceResponse}
//	@Failure	400			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	403			{object}	dto.Response
//	@Failure	404			{object}	dto.Response
//	@Failure	409			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/carriers/{id}/services/{serviceId} [put]
func (h *CarrierHandler) UpdateService(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	serviceID, ok := h.paramUUID(c, "serviceId")
	if !ok {
		return
	}
	var req partnerapp.CarrierServiceInput
	if !h.bindJSON(c, &req) {
		return
	}

	service, err := h.carriers.UpdateService(c.Request.Context(), p, id, serviceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, service)
}

// DeleteService deactivates a carrier service
//
//	@ID			deactivateCarrierService
//	@Summary	Deactivate a carrier service
//	@Tags		carriers
//	@Produce	json
//	@Param		id			path		string	true	"Carrier ID"			format(uuid)
//	@Param		serviceId	path		string	true	"Carrier service ID"	format(uuid)
//	@Success	200			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	403			{object}	dto.Response
//	@Failure	404			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/carriers/{id}/services/{serviceId} [delete]
func (h *CarrierHandler) DeleteService(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	serviceID, ok := h.paramUUID(c, "serviceId")
	if !ok {
		return
	}

	if err := h.carriers.DeleteService(c.Request.Context(), p, id, serviceID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Carrier service deactivated"})
}
