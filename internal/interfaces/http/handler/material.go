package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/wms/backend/internal/application/catalog"
)

// MaterialHandler handles material endpoints
type MaterialHandler struct {
	BaseHandler
	materials *catalogapp.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materials *catalogapp.MaterialService) *MaterialHandler {
	return &MaterialHandler{materials: materials}
}

// List godoc
//
//	@ID			listMaterials
//	@Summary	List materials, filtered by customer_id, project_id, status_code and search
//	@Tags		materials
//	@Produce	json
//	@Param		page		query		int		false	"Page number, starts at 1"		default(1)
//	@Param		page_size	query		int		false	"Items per page, at most 100"	default(20)
//	@Param		order_by	query		string	false	"Sort field"
//	@Param		order_dir	query		string	false	"asc or desc"
//	@Param		search		query		string	false	"Free-text search"
//	@Param		customer_id	query		string	false	"Customer ID"
//	@Param		project_id	query		string	false	"Project ID"
//	@Param		status_code	query		int		false	"Filter by status code"
//	@Success	200			{object}	dto.Response{data=[]catalogapp.MaterialResponse}
//	@Failure	400			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	403			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := h.bindList(c)
	if !ok {
		return
	}
	var lf catalogapp.MaterialListFilter
	if lf.CustomerID, ok = h.queryUUID(c, "customer_id"); !ok {
		return
	}
	if lf.ProjectID, ok = h.queryUUID(c, "project_id"); !ok {
		return
	}
	if lf.StatusCode, ok = h.queryInt(c, "status_code"); !ok {
		return
	}

	materials, total, err := h.materials.List(c.Request.Context(), p, lf, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, materials, total, filter)
}

// GetByID returns one material
//
//	@ID			getMaterial
//	@Summary	Get a material
//	@Tags		materials
//	@Produce	json
//	@Param		id	path		string	true	"Material ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=catalogapp.MaterialResponse}
//	@Failure	401	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	material, err := h.materials.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// Create adds a material to a customer's catalog
//
//	@ID				createMaterial
//	@Summary		Add a material to a customer's catalog
//	@Description	Admin only. Without project_id the material joins the default project
//	@Tags			materials
//	@Accept			json
//	@Produce		json
//	@Param			request	body		catalogapp.CreateMaterialRequest	true	"Material"
//	@Success		201		{object}	dto.Response{data=catalogapp.MaterialResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		403		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/materials [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req catalogapp.CreateMaterialRequest
	if !h.bindJSON(c, &req) {
		return
	}

	material, err := h.materials.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, material)
}

// Update replaces a material's fields
//
//	@ID			updateMaterial
//	@Summary	Replace a material's fields
//	@Tags		materials
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Material ID"	format(uuid)
//	@Param		request	body		catalogapp.UpdateMaterialRequest	true	"Material"
//	@Success	200		{object}	dto.Response{data=catalogapp.MaterialResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	403		{object}	dto.Response
//	@Failure	404		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/materials/{id} [put]
func (h *MaterialHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateMaterialRequest
	if !h.bindJSON(c, &req) {
		return
	}

	material, err := h.materials.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// Delete deactivates a material
//
//	@ID			deactivateMaterial
//	@Summary	Deactivate a material
//	@Tags		materials
//	@Produce	json
//	@Param		id	path		string	true	"Material ID"	format(uuid)
//	@Success	200	{object}	dto.Response
//	@Failure	401	{object}	dto.Response
//	@Failure	403	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.materials.Deactivate(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Material deactivated"})
}
