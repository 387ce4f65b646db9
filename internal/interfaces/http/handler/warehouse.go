package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/wms/backend/internal/application/partner"
)

// WarehouseHandler handles warehouse endpoints
type WarehouseHandler struct {
	BaseHandler
	warehouses *partnerapp.WarehouseService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouses *partnerapp.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouses: warehouses}
}

// List returns warehouses; clients only see those assigned to their customer
//
//	@ID			listWarehouses
//	@Summary	List warehouses; clients only see those assigned to their customer
//	@Tags		warehouses
//	@Produce	json
//	@Param		page		query		int		false	"Page number, starts at 1"		default(1)
//	@Param		page_size	query		int		false	"Items per page, at most 100"	default(20)
//	@Param		order_by	query		string	false	"Sort field"
//	@Param		order_dir	query		string	false	"asc or desc"
//	@Param		search		query		string	false	"Free-text search"
//	@Param		customer_id	query		string	false	"Customer ID"
//	@Success	200			{object}	dto.Response{data=[]partnerapp.WarehouseResponse}
//	@Failure	400			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	403			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/warehouses [get]
func (h *WarehouseHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := h.bindList(c)
	if !ok {
		return
	}
	customerID, ok := h.queryUUID(c, "customer_id")
	if !ok {
		return
	}

	warehouses, total, err := h.warehouses.List(c.Request.Context(), p, customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, warehouses, total, filter)
}

// GetByID returns one warehouse with its assigned customers
//
//	@ID			getWarehouse
//	@Summary	Get a warehouse with its assigned customers
//	@Tags		warehouses
//	@Produce	json
//	@Param		id	path		string	true	"Warehouse ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=partnerapp.WarehouseResponse}
//	@Failure	401	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/warehouses/{id} [get]
func (h *WarehouseHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	warehouse, err := h.warehouses.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouse)
}

// Create adds a warehouse
//
//	@ID			createWarehouse
//	@Summary	Create a warehouse, optionally assigned to customers
//	@Tags		warehouses
//	@Accept		json
//	@Produce	json
//	@Param		request	body		partnerapp.WarehouseInput	true	"Warehouse"
//	@Success	201		{object}	dto.Response{data=partnerapp.WarehouseResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	403		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/warehouses [post]
func (h *WarehouseHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req partnerapp.WarehouseInput
	if !h.bindJSON(c, &req) {
		return
	}

	warehouse, err := h.warehouses.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, warehouse)
}

// Update replaces a warehouse's fields
//
//	@ID				updateWarehouse
//	@Summary		Replace a warehouse's fields
//	@Description	Omitting customer_ids leaves the assignments unchanged
//	@Tags			warehouses
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Warehouse ID"	format(uuid)
//	@Param			request	body		partnerapp.WarehouseInput	true	"Warehouse"
//	@Success		200		{object}	dto.Response{data=partnerapp.WarehouseResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		403		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/warehouses/{id} [put]
func (h *WarehouseHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.WarehouseInput
	if !h.bindJSON(c, &req) {
		return
	}

	warehouse, err := h.warehouses.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouse)
}

// ReplaceCustomers godoc
//
//	@ID			replaceWarehouseCustomers
//	@Summary	Replace the set of customers allowed to ship from the warehouse
//	@Tags		warehouses
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Warehouse ID"	format(uuid)
//	@Param		request	body		partnerapp.WarehouseAssignmentInput	true	"Customer IDs"
//	@Success	200		{object}	dto.Response{data=partnerapp.WarehouseResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	403		{object}	dto.Response
//	@Failure	404		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/warehouses/{id}/customers [put]
func (h *WarehouseHandler) ReplaceCustomers(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.WarehouseAssignmentInput
	if !h.bindJSON(c, &req) {
		return
	}

	warehouse, err := h.warehouses.ReplaceAssignments(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouse)
}

// Delete godoc
//
//	@ID			deleteWarehouse
//	@Summary	Delete a warehouse; one still referenced by orders is deactivated instead
//	@Tags		warehouses
//	@Produce	json
//	@Param		id	path		string	true	"Warehouse ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=partnerapp.WarehouseDeleteResult}
//	@Failure	401	{object}	dto.Response
//	@Failure	403	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/warehouses/{id} [delete]
func (h *WarehouseHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.warehouses.Delete(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
