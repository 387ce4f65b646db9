package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

const (
	defaultNumberRetries = 5
	packingSlipPrefix    = "packing-slips/"
)

// SlipPrinter renders a packing slip to PDF
type SlipPrinter interface {
	PDF(ctx context.Context, slip *printing.PackingSlip) ([]byte, error)
}

// SlipStore archives rendered documents and hands out download links
type SlipStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
}

// OrderRepositories groups the repositories an order reads and writes
type OrderRepositories struct {
	Orders     trade.OrderRepository
	Customers  partner.CustomerRepository
	Projects   partner.ProjectRepository
	Warehouses partner.WarehouseRepository
	Carriers   partner.CarrierRepository
	Accounts   partner.AccountRepository
	Materials  catalog.MaterialRepository
}

// OrderService handles order-related business operations
type OrderService struct {
	repos          OrderRepositories
	numbers        trade.OrderNumberGenerator
	retries        int
	eventPublisher shared.EventPublisher
	slips          SlipPrinter
	store          SlipStore
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(repos OrderRepositories, numbers trade.OrderNumberGenerator, cfg config.OrderConfig, logger *zap.Logger) *OrderService {
	retries := cfg.NumberRetries
	if retries <= 0 {
		retries = defaultNumberRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repos:   repos,
		numbers: numbers,
		retries: retries,
		logger:  logger.Named("orders"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetEventPublisher sets the event publisher for cross-context communication
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetSlipPrinter enables packing-slip rendering
func (s *OrderService) SetSlipPrinter(printer SlipPrinter) {
	s.slips = printer
}

// SetSlipStore archives rendered slips and returns presigned links instead of bytes
func (s *OrderService) SetSlipStore(store SlipStore) {
	s.store = store
}

// Create validates the references of a new order, allocates its number and saves it
func (s *OrderService) Create(ctx context.Context, principal identity.Principal, req CreateOrderRequest) (*OrderResponse, error) {
	customerID, err := s.resolveCustomer(principal, req.CustomerID)
	if err != nil {
		return nil, err
	}
	header, lines, err := s.buildOrder(ctx, customerID, req.OrderFields)
	if err != nil {
		return nil, err
	}

	now := s.now()
	number, err := s.numbers.Next(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("allocate order number: %w", err)
	}
	order, err := trade.NewOrder(number, customerID, header, lines)
	if err != nil {
		return nil, err
	}
	order.SetCreator(principal.ActorID())

	if err := s.insertWithRetry(ctx, order, now); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", customerID.String()),
		zap.Int("items", len(order.Items)),
	)
	s.publish(ctx, order)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// insertWithRetry saves the order, drawing a fresh number each time the
// current one turns out to be taken by a concurrent insert.
func (s *OrderService) insertWithRetry(ctx context.Context, order *trade.Order, at time.Time) error {
	for attempt := 1; ; attempt++ {
		err := s.repos.Orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		if attempt >= s.retries {
			s.logger.Error("order number allocation exhausted",
				zap.String("last_number", order.OrderNumber),
				zap.Int("attempts", attempt),
			)
			return shared.NewCatalogError("ORDER_NUMBER_EXHAUSTED")
		}

		s.logger.Warn("order number taken, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt),
		)
		number, err := s.numbers.Next(ctx, at)
		if err != nil {
			return fmt.Errorf("allocate order number: %w", err)
		}
		if err := order.AssignOrderNumber(number); err != nil {
			return err
		}
	}
}

// Update replaces header and items of a New order
func (s *OrderService) Update(ctx context.Context, principal identity.Principal, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if !order.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify order in %s status", order.StatusCode))
	}

	header, lines, err := s.buildOrder(ctx, order.CustomerID, req.OrderFields)
	if err != nil {
		return nil, err
	}
	if err := order.Update(header, lines); err != nil {
		return nil, err
	}
	order.Touch(principal.ActorID())

	if err := s.repos.Orders.Update(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ChangeStatus moves an order to another lifecycle status
func (s *OrderService) ChangeStatus(ctx context.Context, principal identity.Principal, id uuid.UUID, req ChangeStatusRequest) (*OrderResponse, error) {
	order, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	from := order.StatusCode
	if err := order.TransitionTo(shared.StatusCode(req.StatusCode), req.TrackingNumber); err != nil {
		return nil, err
	}
	order.Touch(principal.ActorID())

	if err := s.repos.Orders.Update(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.Stringer("from", from),
		zap.Stringer("to", order.StatusCode),
	)
	s.publish(ctx, order)

	return s.respond(ctx, order), nil
}

// Cancel cancels a New or Processing order
func (s *OrderService) Cancel(ctx context.Context, principal identity.Principal, id uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	order.Touch(principal.ActorID())

	if err := s.repos.Orders.Update(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("order cancelled", zap.String("order_number", order.OrderNumber))
	s.publish(ctx, order)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetByID returns an order visible to the caller
func (s *OrderService) GetByID(ctx context.Context, principal identity.Principal, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, order), nil
}

// List returns orders visible to the caller
func (s *OrderService) List(ctx context.Context, principal identity.Principal, lf OrderListFilter, filter shared.Filter) ([]OrderResponse, int64, error) {
	filter.Normalize()
	customerID, err := principal.ResolveCustomerFilter(lf.CustomerID)
	if err != nil {
		return nil, 0, err
	}
	if customerID != nil {
		filter.Filters["customer_id"] = *customerID
	}
	if lf.WarehouseID != nil {
		filter.Filters["warehouse_id"] = *lf.WarehouseID
	}
	if lf.StatusCode != nil {
		filter.Filters["status_code"] = shared.StatusCode(*lf.StatusCode)
	}
	if lf.From != nil {
		filter.Filters["from"] = *lf.From
	}
	if lf.To != nil {
		filter.Filters["to"] = *lf.To
	}

	orders, total, err := s.repos.Orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	return items, total, nil
}

// PackingSlip renders the packing slip of an order. With a store configured the
// PDF is archived and a presigned link is returned instead of the bytes.
func (s *OrderService) PackingSlip(ctx context.Context, principal identity.Principal, id uuid.UUID) (*PackingSlipResult, error) {
	if s.slips == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Packing slip printing is disabled")
	}
	order, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	slip, err := s.assembleSlip(ctx, order)
	if err != nil {
		return nil, err
	}
	pdf, err := s.slips.PDF(ctx, slip)
	if err != nil {
		return nil, err
	}

	result := &PackingSlipResult{FileName: "packing-slip-" + order.OrderNumber + ".pdf"}
	if s.store == nil {
		result.PDF = pdf
		return result, nil
	}

	key := packingSlipPrefix + order.OrderNumber + ".pdf"
	if err := s.store.Put(ctx, key, pdf, "application/pdf"); err != nil {
		return nil, err
	}
	url, expiresAt, err := s.store.PresignGet(ctx, key)
	if err != nil {
		return nil, err
	}
	result.URL = url
	result.ExpiresAt = &expiresAt
	s.logger.Info("packing slip archived", zap.String("order_number", order.OrderNumber), zap.String("key", key))
	return result, nil
}

func (s *OrderService) load(ctx context.Context, principal identity.Principal, id uuid.UUID) (*trade.Order, error) {
	order, err := s.repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccessCustomer(order.CustomerID) {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

// respond adds the carrier tracking link when the order has a tracking number
func (s *OrderService) respond(ctx context.Context, order *trade.Order) *OrderResponse {
	resp := ToOrderResponse(order)
	if order.TrackingNumber == "" {
		return &resp
	}
	carrier, err := s.repos.Carriers.FindByID(ctx, order.CarrierID)
	if err != nil {
		s.logger.Debug("tracking link unavailable", zap.String("carrier_id", order.CarrierID.String()), zap.Error(err))
		return &resp
	}
	resp.TrackingURL = carrier.TrackingLink(order.TrackingNumber)
	return &resp
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, order); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

// resolveCustomer decides whom a new order is for
func (s *OrderService) resolveCustomer(principal identity.Principal, requested *uuid.UUID) (uuid.UUID, error) {
	customerID, err := principal.ResolveCustomerFilter(requested)
	if err != nil {
		return uuid.Nil, err
	}
	if customerID == nil || *customerID == uuid.Nil {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "customer_id is required")
	}
	return *customerID, nil
}

// buildOrder checks every reference of an order against the customer and
// snapshots the material SKU and name onto the lines.
func (s *OrderService) buildOrder(ctx context.Context, customerID uuid.UUID, f OrderFields) (trade.OrderHeader, []trade.OrderLine, error) {
	var header trade.OrderHeader

	customer, err := s.repos.Customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return header, nil, shared.NewDomainError("INVALID_REFERENCE", "Customer does not exist")
		}
		return header, nil, err
	}
	if !customer.IsActive() {
		return header, nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is inactive")
	}

	projectID, err := s.checkProject(ctx, customer, f.ProjectID)
	if err != nil {
		return header, nil, err
	}
	if err := s.checkWarehouse(ctx, customerID, f.WarehouseID); err != nil {
		return header, nil, err
	}
	if err := s.checkCarrier(ctx, f.CarrierID, f.CarrierServiceID); err != nil {
		return header, nil, err
	}
	if err := s.checkAccount(ctx, customerID, f.ShipToAccountID, partner.AccountTypeShipTo); err != nil {
		return header, nil, err
	}
	if f.BillToAccountID != nil {
		if err := s.checkAccount(ctx, customerID, *f.BillToAccountID, partner.AccountTypeBillTo); err != nil {
			return header, nil, err
		}
	}
	shipDate, err := parseRequestedDate(f.RequestedShipDate)
	if err != nil {
		return header, nil, err
	}
	lines, err := s.buildLines(ctx, customerID, f.Items)
	if err != nil {
		return header, nil, err
	}

	header = trade.OrderHeader{
		ProjectID:         projectID,
		WarehouseID:       f.WarehouseID,
		CarrierID:         f.CarrierID,
		CarrierServiceID:  f.CarrierServiceID,
		ShipToAccountID:   f.ShipToAccountID,
		BillToAccountID:   f.BillToAccountID,
		Reference:         f.Reference,
		RequestedShipDate: shipDate,
		Notes:             f.Notes,
	}
	return header, lines, nil
}

func (s *OrderService) checkProject(ctx context.Context, customer *partner.Customer, projectID *uuid.UUID) (uuid.UUID, error) {
	if projectID == nil {
		def := customer.DefaultProject()
		if def == nil {
			return uuid.Nil, shared.NewDomainError("INVALID_PROJECT", "Customer has no default project")
		}
		return def.ID, nil
	}
	project, err := s.repos.Projects.FindByID(ctx, *projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, shared.NewDomainError("INVALID_PROJECT", "Project does not exist")
		}
		return uuid.Nil, err
	}
	if project.CustomerID != customer.ID || !project.IsActive() {
		return uuid.Nil, shared.NewDomainError("INVALID_PROJECT", "Project does not belong to the customer")
	}
	return project.ID, nil
}

func (s *OrderService) checkWarehouse(ctx context.Context, customerID, warehouseID uuid.UUID) error {
	warehouse, err := s.repos.Warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse does not exist")
		}
		return err
	}
	if !warehouse.IsActive() {
		return shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse is inactive")
	}
	assigned, err := s.repos.Warehouses.IsAssigned(ctx, customerID, warehouseID)
	if err != nil {
		return err
	}
	if !assigned {
		return shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse is not assigned to the customer")
	}
	return nil
}

func (s *OrderService) checkCarrier(ctx context.Context, carrierID uuid.UUID, serviceID *uuid.UUID) error {
	carrier, err := s.repos.Carriers.FindByID(ctx, carrierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CARRIER", "Carrier does not exist")
		}
		return err
	}
	if !carrier.IsActive() {
		return shared.NewDomainError("INVALID_CARRIER", "Carrier is inactive")
	}
	if serviceID == nil {
		return nil
	}
	service := carrier.FindService(*serviceID)
	if service == nil || !service.IsActive() {
		return shared.NewDomainError("INVALID_CARRIER_SERVICE", "Service is not an active service of the carrier")
	}
	return nil
}

func (s *OrderService) checkAccount(ctx context.Context, customerID, accountID uuid.UUID, want partner.AccountType) error {
	account, err := s.repos.Accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_ACCOUNT", "Account does not exist")
		}
		return err
	}
	if account.CustomerID != customerID || !account.IsActive() {
		return shared.NewDomainError("INVALID_ACCOUNT", "Account does not belong to the customer")
	}
	if account.Type != want {
		return shared.NewDomainError("INVALID_ACCOUNT", fmt.Sprintf("Account %s is not a %s account", account.Name, want))
	}
	return nil
}

func (s *OrderService) buildLines(ctx context.Context, customerID uuid.UUID, items []OrderItemInput) ([]trade.OrderLine, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "An order needs at least one item")
	}
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.MaterialID
	}
	materials, err := s.repos.Materials.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Material, len(materials))
	for i := range materials {
		byID[materials[i].ID] = &materials[i]
	}

	lines := make([]trade.OrderLine, len(items))
	for i, item := range items {
		m, ok := byID[item.MaterialID]
		if !ok || m.CustomerID != customerID || !m.IsActive() {
			return nil, shared.NewDomainError("INVALID_MATERIAL",
				fmt.Sprintf("Material %s is unknown or not available to the customer", item.MaterialID))
		}
		lines[i] = trade.OrderLine{
			MaterialID:   m.ID,
			MaterialSKU:  m.SKU,
			MaterialName: m.Name,
			Quantity:     item.Quantity,
			Notes:        item.Notes,
		}
	}
	return lines, nil
}

// assembleSlip gathers the records printed on a packing slip
func (s *OrderService) assembleSlip(ctx context.Context, order *trade.Order) (*printing.PackingSlip, error) {
	customer, err := s.repos.Customers.FindByID(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	warehouse, err := s.repos.Warehouses.FindByID(ctx, order.WarehouseID)
	if err != nil {
		return nil, err
	}
	carrier, err := s.repos.Carriers.FindByID(ctx, order.CarrierID)
	if err != nil {
		return nil, err
	}
	shipTo, err := s.repos.Accounts.FindByID(ctx, order.ShipToAccountID)
	if err != nil {
		return nil, err
	}

	slip := &printing.PackingSlip{
		OrderNumber:       order.OrderNumber,
		Reference:         order.Reference,
		Status:            order.StatusCode.String(),
		OrderedAt:         order.CreatedAt,
		RequestedShipDate: order.RequestedShipDate,
		CustomerCode:      customer.Code,
		CustomerName:      customer.Name,
		Warehouse:         printing.Party{Name: warehouse.Name, Lines: warehouse.Address.Lines()},
		ShipTo:            accountParty(shipTo),
		CarrierName:       carrier.Name,
		TrackingNumber:    order.TrackingNumber,
		Notes:             order.Notes,
		Lines:             make([]printing.SlipLine, len(order.Items)),
	}
	for _, p := range customer.Projects {
		if p.ID == order.ProjectID {
			slip.ProjectName = p.Name
		}
	}
	if order.CarrierServiceID != nil {
		if svc := carrier.FindService(*order.CarrierServiceID); svc != nil {
			slip.ServiceName = svc.Name
		}
	}
	if order.BillToAccountID != nil {
		billTo, err := s.repos.Accounts.FindByID(ctx, *order.BillToAccountID)
		if err != nil {
			return nil, err
		}
		party := accountParty(billTo)
		slip.BillTo = &party
	}
	for i, item := range order.Items {
		slip.Lines[i] = printing.SlipLine{
			SKU:      item.MaterialSKU,
			Name:     item.MaterialName,
			Quantity: item.Quantity,
			Notes:    item.Notes,
		}
	}
	return slip, nil
}

func accountParty(a *partner.Account) printing.Party {
	lines := a.Address.Lines()
	if a.ContactName != "" {
		lines = append([]string{"Attn: " + a.ContactName}, lines...)
	}
	return printing.Party{Name: a.Name, Lines: lines}
}
