package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/wms/backend/internal/application/trade"
)

const dateLayout = "2006-01-02"

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orders *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List godoc
//
//	@ID			listOrders
//	@Summary	List orders, filtered by status, customer_id, warehouse_id, from and to
//	@Tags		orders
//	@Produce	json
//	@Param		page			query		int		false	"Page number, starts at 1"		default(1)
//	@Param		page_size		query		int		false	"Items per page, at most 100"	default(20)
//	@Param		order_by		query		string	false	"Sort field"
//	@Param		order_dir		query		string	false	"asc or desc"
//	@Param		search			query		string	false	"Free-text search"
//	@Param		status			query		int		false	"Filter by status code"
//	@Param		customer_id		query		string	false	"Customer ID"
//	@Param		warehouse_id	query		string	false	"Warehouse ID"
//	@Param		from			query		string	false	"Created on or after (YYYY-MM-DD or RFC3339)"
//	@Param		to				query		string	false	"Created on or before (YYYY-MM-DD) or before (RFC3339)"
//	@Success	200				{object}	dto.Response{data=[]tradeapp.OrderResponse}
//	@Failure	400				{object}	dto.Response
//	@Failure	401				{object}	dto.Response
//	@Failure	403				{object}	dto.Response
//	@Failure	500				{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := h.bindList(c)
	if !ok {
		return
	}

	var lf tradeapp.OrderListFilter
	if lf.CustomerID, ok = h.queryUUID(c, "customer_id"); !ok {
		return
	}
	if lf.WarehouseID, ok = h.queryUUID(c, "warehouse_id"); !ok {
		return
	}
	statusParam := "status"
	if c.Query(statusParam) == "" {
		statusParam = "status_code"
	}
	if lf.StatusCode, ok = h.queryInt(c, statusParam); !ok {
		return
	}
	if lf.From, ok = h.queryTime(c, "from", false); !ok {
		return
	}
	if lf.To, ok = h.queryTime(c, "to", true); !ok {
		return
	}

	orders, total, err := h.orders.List(c.Request.Context(), p, lf, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter)
}

// queryTime accepts a date or an RFC3339 timestamp. A date used as an upper
// bound covers the whole day.
func (h *OrderHandler) queryTime(c *gin.Context, name string, upper bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": expected YYYY-MM-DD or RFC3339")
		return nil, false
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return &t, true
}

// GetByID returns an order with its items
//
//	@ID			getOrder
//	@Summary	Get an order with its items
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=tradeapp.OrderResponse}
//	@Failure	401	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Create godoc
//
//	@ID				createOrder
//	@Summary		Create an order; clients always order for their own customer
//	@Description	Assigns the next YYYYMMDD-NNNN order number. Warehouse, carrier, accounts and materials must belong to the customer
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tradeapp.CreateOrderRequest	true	"Order"
//	@Success		201		{object}	dto.Response{data=tradeapp.OrderResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		403		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req tradeapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Update replaces the header and lines of a New order
//
//	@ID			updateOrder
//	@Summary	Replace the header and lines of a New order
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Order ID"	format(uuid)
//	@Param		request	body		tradeapp.UpdateOrderRequest	true	"Order"
//	@Success	200		{object}	dto.Response{data=tradeapp.OrderResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	404		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ChangeStatus moves the order along its lifecycle
//
//	@ID				changeOrderStatus
//	@Summary		Move the order along its lifecycle
//	@Description	Admin only. New, Processing, Shipped, Delivered; Cancelled from New or Processing
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Order ID"	format(uuid)
//	@Param			request	body		tradeapp.ChangeStatusRequest	true	"Target status"
//	@Success		200		{object}	dto.Response{data=tradeapp.OrderResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		403		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.ChangeStatus(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels a New or Processing order
//
//	@ID			cancelOrder
//	@Summary	Cancel a New or Processing order
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Order ID"	format(uuid)
//	@Param		request	body		tradeapp.CancelOrderRequest	false	"Cancel reason"
//	@Success	200		{object}	dto.Response{data=tradeapp.OrderResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	404		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelOrderRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// PackingSlip godoc
//
//	@ID			getPackingSlip
//	@Summary	Render the packing slip; streams the PDF or returns an archived download link
//	@Tags		orders
//	@Produce	pdf,json
//	@Param		id	path		string	true	"Order ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=tradeapp.PackingSlipResult}
//	@Failure	401	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	409	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/orders/{id}/packing-slip [get]
func (h *OrderHandler) PackingSlip(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	slip, err := h.orders.PackingSlip(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if slip.URL != "" {
		h.Success(c, gin.H{"file_name": slip.FileName, "url": slip.URL, "expires_at": slip.ExpiresAt})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+slip.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", slip.PDF)
}
