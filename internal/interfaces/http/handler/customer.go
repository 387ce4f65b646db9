package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/wms/backend/internal/application/partner"
)

// CustomerHandler serves customers and their nested resources
type CustomerHandler struct {
	BaseHandler
	customers  *partnerapp.CustomerService
	accounts   *partnerapp.AccountService
	warehouses *partnerapp.WarehouseService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(
	customers *partnerapp.CustomerService,
	accounts *partnerapp.AccountService,
	warehouses *partnerapp.WarehouseService,
) *CustomerHandler {
	return &CustomerHandler{customers: customers, accounts: accounts, warehouses: warehouses}
}

// List godoc
//
//	@ID			listCustomers
//	@Summary	List customers; clients only see their own
//	@Tags		customers
//	@Produce	json
//	@Param		page		query		int		false	"Page number, starts at 1"		default(1)
//	@Param		page_size	query		int		false	"Items per page, at most 100"	default(20)
//	@Param		order_by	query		string	false	"Sort field"
//	@Param		order_dir	query		string	false	"asc or desc"
//	@Param		search		query		string	false	"Free-text search"
//	@Success	200			{object}	dto.Response{data=[]partnerapp.CustomerResponse}
//	@Failure	400			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	filter, ok := h.bindList(c)
	if !ok {
		return
	}

	customers, total, err := h.customers.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, customers, total, filter)
}

// GetByID returns a customer with its projects
//
//	@ID			getCustomer
//	@Summary	Get a customer with its projects
//	@Tags		customers
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=partnerapp.CustomerResponse}
//	@Failure	401	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customers.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Create godoc
//
//	@ID				createCustomer
//	@Summary		Create a customer with its projects and users in one transaction
//	@Description	Admin only. Exactly one project ends up as the default; client users are created for the customer
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		partnerapp.CustomerWizardInput	true	"Customer wizard"
//	@Success		201		{object}	dto.Response{data=partnerapp.CustomerWizardResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		403		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req partnerapp.CustomerWizardInput
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// Update runs the customer wizard against an existing customer
//
//	@ID				updateCustomer
//	@Summary		Run the customer wizard against an existing customer
//	@Description	Admin only. Projects missing from the request are deactivated; users missing from it are left untouched
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Customer ID"	format(uuid)
//	@Param			request	body		partnerapp.CustomerWizardInput	true	"Customer wizard"
//	@Success		200		{object}	dto.Response{data=partnerapp.CustomerWizardResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		403		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.CustomerWizardInput
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete deactivates a customer
//
//	@ID			deactivateCustomer
//	@Summary	Deactivate a customer and its users
//	@Tags		customers
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"	format(uuid)
//	@Success	200	{object}	dto.Response
//	@Failure	401	{object}	dto.Response
//	@Failure	403	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.customers.Deactivate(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Customer deactivated"})
}

// ListProjects returns the customer's projects
//
//	@ID			listCustomerProjects
//	@Summary	List the customer's projects
//	@Tags		customers
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=[]partnerapp.ProjectResponse}
//	@Failure	401	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers/{id}/projects [get]
func (h *CustomerHandler) ListProjects(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	projects, err := h.customers.ListProjects(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, projects)
}

// ListUsers returns the customer's users
//
//	@ID			listCustomerUsers
//	@Summary	List the customer's users
//	@Tags		customers
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"	format(uuid)
//	@Success	200	{object}	dto.Response{data=[]partnerapp.CustomerUserResponse}
//	@Failure	401	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Failure	500	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers/{id}/users [get]
func (h *CustomerHandler) ListUsers(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}

	users, err := h.customers.ListUsers(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}

// ListWarehouses returns the warehouses assigned to the customer
//
//	@ID			listCustomerWarehouses
//	@Summary	List the warehouses assigned to the customer
//	@Tags		customers
//	@Produce	json
//	@Param		id			path		string	true	"Customer ID"					format(uuid)
//	@Param		page		query		int		false	"Page number, starts at 1"		default(1)
//	@Param		page_size	query		int		false	"Items per page, at most 100"	default(20)
//	@Param		order_by	query		string	false	"Sort field"
//	@Param		order_dir	query		string	false	"asc or desc"
//	@Param		search		query		string	false	"Free-text search"
//	@Success	200			{object}	dto.Response{data=[]partnerapp.WarehouseResponse}
//	@Failure	400			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	404			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers/{id}/warehouses [get]
func (h *CustomerHandler) ListWarehouses(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.bindList(c)
	if !ok {
		return
	}

	warehouses, total, err := h.warehouses.ListForCustomer(c.Request.Context(), p, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, warehouses, total, filter)
}

// ListAccounts returns the customer's ship-to and bill-to accounts
//
//	@ID			listAccounts
//	@Summary	List the customer's ship-to and bill-to accounts
//	@Tags		accounts
//	@Produce	json
//	@Param		id			path		string	true	"Customer ID"					format(uuid)
//	@Param		page		query		int		false	"Page number, starts at 1"		default(1)
//	@Param		page_size	query		int		false	"Items per page, at most 100"	default(20)
//	@Param		order_by	query		string	false	"Sort field"
//	@Param		order_dir	query		string	false	"asc or desc"
//	@Param		search		query		string	false	"Free-text search"
//	@Success	200			{object}	dto.Response{data=[]partnerapp.AccountResponse}
//	@Failure	400			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	404			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers/{id}/accounts [get]
func (h *CustomerHandler) ListAccounts(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.bindList(c)
	if !ok {
		return
	}

	accounts, total, err := h.accounts.List(c.Request.Context(), p, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, accounts, total, filter)
}

// CreateAccount adds an account to the customer
//
//	@ID			createAccount
//	@Summary	Add an account to the customer
//	@Tags		accounts
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Customer ID"	format(uuid)
//	@Param		request	body		partnerapp.AccountInput	true	"Account"
//	@Success	201		{object}	dto.Response{data=partnerapp.AccountResponse}
//	@Failure	400		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Failure	404		{object}	dto.Response
//	@Failure	500		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers/{id}/accounts [post]
func (h *CustomerHandler) CreateAccount(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.AccountInput
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// UpdateAccount replaces an account's fields
//
//	@ID			updateAccount
//	@Summary	Replace an account's fields
//	@Tags		accounts
//	@Accept		json
//	@Produce	json
//	@Param		id			path		string					true	"Customer ID"	format(uuid)
//	@Param		accountId	path		string					true	"Account ID"	format(uuid)
//	@Param		request		body		partnerapp.AccountInput	true	"Account"
//	@Success	200			{object}	dto.Response{data=partnerapp.AccountResponse}
//	@Failure	400			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	404			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers/{id}/accounts/{accountId} [put]
func (h *CustomerHandler) UpdateAccount(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	accountID, ok := h.paramUUID(c, "accountId")
	if !ok {
		return
	}
	var req partnerapp.AccountInput
	if !h.bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), p, id, accountID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// DeleteAccount deactivates an account
//
//	@ID			deleteAccount
//	@Summary	Delete an account
//	@Tags		accounts
//	@Produce	json
//	@Param		id			path		string	true	"Customer ID"	format(uuid)
//	@Param		accountId	path		string	true	"Account ID"	format(uuid)
//	@Success	200			{object}	dto.Response
//	@Failure	401			{object}	dto.Response
//	@Failure	404			{object}	dto.Response
//	@Failure	409			{object}	dto.Response
//	@Failure	500			{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/customers/{id}/accounts/{accountId} [delete]
func (h *CustomerHandler) DeleteAccount(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.paramUUID(c, "id")
	if !ok {
		return
	}
	accountID, ok := h.paramUUID(c, "accountId")
	if !ok {
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), p, id, accountID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Account deleted"})
}
