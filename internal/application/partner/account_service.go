package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
)

// AccountService manages the ship-to and bill-to accounts of a customer
type AccountService struct {
	accountRepo  partner.AccountRepository
	customerRepo partner.CustomerRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo partner.AccountRepository, customerRepo partner.CustomerRepository) *AccountService {
	return &AccountService{
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
	}
}

// List returns the accounts of a customer
func (s *AccountService) List(ctx context.Context, principal identity.Principal, customerID uuid.UUID, filter shared.Filter) ([]AccountResponse, int64, error) {
	if err := s.ensureCustomer(ctx, principal, customerID); err != nil {
		return nil, 0, err
	}
	filter.Normalize()
	accounts, total, err := s.accountRepo.ListByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]AccountResponse, len(accounts))
	for i := range accounts {
		items[i] = ToAccountResponse(&accounts[i])
	}
	return items, total, nil
}

// Create adds an account to a customer
func (s *AccountService) Create(ctx context.Context, principal identity.Principal, customerID uuid.UUID, input AccountInput) (*AccountResponse, error) {
	if err := s.ensureCustomer(ctx, principal, customerID); err != nil {
		return nil, err
	}
	account, err := partner.NewAccount(customerID, input.Name, partner.AccountType(input.Type))
	if err != nil {
		return nil, err
	}
	if err := applyAccountInput(account, input); err != nil {
		return nil, err
	}
	account.SetCreator(principal.ActorID())

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// Update replaces the fields of an account
func (s *AccountService) Update(ctx context.Context, principal identity.Principal, customerID, accountID uuid.UUID, input AccountInput) (*AccountResponse, error) {
	account, err := s.load(ctx, principal, customerID, accountID)
	if err != nil {
		return nil, err
	}
	if err := applyAccountInput(account, input); err != nil {
		return nil, err
	}
	account.Touch(principal.ActorID())

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// Delete deactivates an account. Orders keep referencing it.
func (s *AccountService) Delete(ctx context.Context, principal identity.Principal, customerID, accountID uuid.UUID) error {
	account, err := s.load(ctx, principal, customerID, accountID)
	if err != nil {
		return err
	}
	account.Deactivate()
	account.Touch(principal.ActorID())
	return s.accountRepo.Update(ctx, account)
}

func (s *AccountService) ensureCustomer(ctx context.Context, principal identity.Principal, customerID uuid.UUID) error {
	if !principal.CanAccessCustomer(customerID) {
		return shared.ErrNotFound
	}
	_, err := s.customerRepo.FindByID(ctx, customerID)
	return err
}

func (s *AccountService) load(ctx context.Context, principal identity.Principal, customerID, accountID uuid.UUID) (*partner.Account, error) {
	if !principal.CanAccessCustomer(customerID) {
		return nil, shared.ErrNotFound
	}
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.CustomerID != customerID {
		return nil, shared.ErrNotFound
	}
	return account, nil
}

func applyAccountInput(account *partner.Account, in AccountInput) error {
	return account.Update(in.Name, partner.AccountType(in.Type), in.ContactName, in.Phone, in.Email, in.Address.toDomain())
}
