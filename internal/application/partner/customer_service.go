package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customers together with their projects and users
type CustomerService struct {
	customerRepo partner.CustomerRepository
	projectRepo  partner.ProjectRepository
	userRepo     identity.UserRepository
	txScope      TransactionScope
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	projectRepo partner.ProjectRepository,
	userRepo identity.UserRepository,
	txScope TransactionScope,
	events shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		txScope:      txScope,
		events:       events,
		logger:       logger,
	}
}

// Create runs the customer wizard: the customer, its projects and its CLIENT users
// are written in one transaction.
func (s *CustomerService) Create(ctx context.Context, principal identity.Principal, input CustomerWizardInput) (*CustomerWizardResponse, error) {
	actor := principal.ActorID()

	exists, err := s.customerRepo.ExistsByCode(ctx, input.Customer.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	}

	customer, err := partner.NewCustomer(input.Customer.Code, input.Customer.Name)
	if err != nil {
		return nil, err
	}
	if err := applyCustomerInput(customer, input.Customer); err != nil {
		return nil, err
	}
	customer.SetCreator(actor)

	if len(input.Projects) == 0 {
		return nil, shared.NewDomainError("DEFAULT_PROJECT", "A customer needs at least one project")
	}
	projects := make([]*partner.Project, 0, len(input.Projects))
	for _, in := range input.Projects {
		project, err := partner.NewProject(customer.ID, in.Name, in.Description, in.IsDefault)
		if err != nil {
			return nil, err
		}
		project.SetCreator(actor)
		projects = append(projects, project)
	}
	if err := partner.NormalizeDefaultProject(projects); err != nil {
		return nil, err
	}

	if err := checkUsernamesUnique(input.Users); err != nil {
		return nil, err
	}
	users := make([]*identity.User, 0, len(input.Users))
	for _, in := range input.Users {
		user, err := s.newClientUser(ctx, customer.ID, in, actor)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.CustomerRepo().Create(ctx, customer); err != nil {
			return err
		}
		for _, p := range projects {
			if err := repos.ProjectRepo().Create(ctx, p); err != nil {
				return err
			}
		}
		for _, u := range users {
			if err := repos.UserRepo().Create(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("code", customer.Code),
		zap.Int("projects", len(projects)),
		zap.Int("users", len(users)),
	)
	s.publish(ctx, customer, users)

	return buildWizardResponse(customer, projects, users), nil
}

// Update runs the customer wizard against an existing customer.
// Projects and users carrying an ID are updated, the rest are created.
// Existing projects missing from the request are deactivated.
func (s *CustomerService) Update(ctx context.Context, principal identity.Principal, id uuid.UUID, input CustomerWizardInput) (*CustomerWizardResponse, error) {
	actor := principal.ActorID()

	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.customerRepo.ExistsByCode(ctx, input.Customer.Code, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Customer with this code already exists")
	}
	if err := customer.UpdateCode(input.Customer.Code); err != nil {
		return nil, err
	}
	if err := applyCustomerInput(customer, input.Customer); err != nil {
		return nil, err
	}
	customer.Touch(actor)

	existingProjects, err := s.projectRepo.FindByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, created, err := mergeProjects(customer.ID, existingProjects, input.Projects, actor)
	if err != nil {
		return nil, err
	}
	if err := partner.NormalizeDefaultProject(projects); err != nil {
		return nil, err
	}

	if err := checkUsernamesUnique(input.Users); err != nil {
		return nil, err
	}
	existingUsers, err := s.userRepo.FindByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[uuid.UUID]*identity.User, len(existingUsers))
	for i := range existingUsers {
		usersByID[existingUsers[i].ID] = &existingUsers[i]
	}

	var updatedUsers, newUsers []*identity.User
	for _, in := range input.Users {
		if in.ID == nil {
			user, err := s.newClientUser(ctx, customer.ID, in, actor)
			if err != nil {
				return nil, err
			}
			newUsers = append(newUsers, user)
			continue
		}
		user, ok := usersByID[*in.ID]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "User does not belong to this customer")
		}
		if err := s.applyUserInput(ctx, user, in, actor); err != nil {
			return nil, err
		}
		updatedUsers = append(updatedUsers, user)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.CustomerRepo().Update(ctx, customer); err != nil {
			return err
		}
		for _, p := range projects {
			var err error
			if created[p.ID] {
				err = repos.ProjectRepo().Create(ctx, p)
			} else {
				err = repos.ProjectRepo().Update(ctx, p)
			}
			if err != nil {
				return err
			}
		}
		for _, u := range updatedUsers {
			if err := repos.UserRepo().Update(ctx, u); err != nil {
				return err
			}
		}
		for _, u := range newUsers {
			if err := repos.UserRepo().Create(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer updated",
		zap.String("customer_id", customer.ID.String()),
		zap.Int("projects", len(projects)),
		zap.Int("new_users", len(newUsers)),
	)
	users := append(updatedUsers, newUsers...)
	s.publish(ctx, customer, users)

	return buildWizardResponse(customer, projects, users), nil
}

// GetByID returns a customer with its projects. Clients only see their own customer.
func (s *CustomerService) GetByID(ctx context.Context, principal identity.Principal, id uuid.UUID) (*CustomerResponse, error) {
	if !principal.CanAccessCustomer(id) {
		return nil, shared.ErrNotFound
	}
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List returns customers visible to the caller
func (s *CustomerService) List(ctx context.Context, principal identity.Principal, filter shared.Filter) ([]CustomerResponse, int64, error) {
	filter.Normalize()
	if scope := principal.ScopeCustomerID(); scope != nil {
		filter.Filters["id"] = *scope
	}
	customers, total, err := s.customerRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	return items, total, nil
}

// Deactivate marks the customer inactive and locks out its users
func (s *CustomerService) Deactivate(ctx context.Context, principal identity.Principal, id uuid.UUID) error {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	users, err := s.userRepo.FindByCustomer(ctx, id)
	if err != nil {
		return err
	}

	customer.Deactivate()
	customer.Touch(principal.ActorID())

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.CustomerRepo().Update(ctx, customer); err != nil {
			return err
		}
		for i := range users {
			if !users[i].CanLogin() {
				continue
			}
			users[i].Deactivate()
			users[i].Touch(principal.ActorID())
			if err := repos.UserRepo().Update(ctx, &users[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("customer deactivated", zap.String("customer_id", id.String()))
	return nil
}

// ListProjects returns every project of a customer, inactive ones included
func (s *CustomerService) ListProjects(ctx context.Context, principal identity.Principal, customerID uuid.UUID) ([]ProjectResponse, error) {
	if err := s.ensureVisible(ctx, principal, customerID); err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	items := make([]ProjectResponse, len(projects))
	for i := range projects {
		items[i] = ToProjectResponse(&projects[i])
	}
	return items, nil
}

// ListUsers returns the users bound to a customer
func (s *CustomerService) ListUsers(ctx context.Context, principal identity.Principal, customerID uuid.UUID) ([]CustomerUserResponse, error) {
	if err := s.ensureVisible(ctx, principal, customerID); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	items := make([]CustomerUserResponse, len(users))
	for i := range users {
		items[i] = ToCustomerUserResponse(&users[i])
	}
	return items, nil
}

// ensureVisible answers NOT_FOUND both for foreign and for missing customers
func (s *CustomerService) ensureVisible(ctx context.Context, principal identity.Principal, customerID uuid.UUID) error {
	if !principal.CanAccessCustomer(customerID) {
		return shared.ErrNotFound
	}
	_, err := s.customerRepo.FindByID(ctx, customerID)
	return err
}

func (s *CustomerService) newClientUser(ctx context.Context, customerID uuid.UUID, in UserInput, actor *uuid.UUID) (*identity.User, error) {
	if in.Password == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password is required for new users")
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, in.Username, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username '"+in.Username+"' is already taken")
	}

	user, err := identity.NewUser(in.Username, in.Password, identity.RoleClient, &customerID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(in.Email, in.FirstName, in.LastName); err != nil {
		return nil, err
	}
	if in.StatusCode != nil && shared.StatusCode(*in.StatusCode) == shared.StatusInactive {
		user.Deactivate()
	}
	user.SetCreator(actor)
	return user, nil
}

func (s *CustomerService) applyUserInput(ctx context.Context, user *identity.User, in UserInput, actor *uuid.UUID) error {
	if !strings.EqualFold(strings.TrimSpace(in.Username), user.Username) {
		exists, err := s.userRepo.ExistsByUsername(ctx, in.Username, &user.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Username '"+in.Username+"' is already taken")
		}
		if err := user.Rename(in.Username); err != nil {
			return err
		}
	}
	if in.Password != "" {
		if err := user.SetPassword(in.Password); err != nil {
			return err
		}
	}
	if err := user.UpdateProfile(in.Email, in.FirstName, in.LastName); err != nil {
		return err
	}
	if in.StatusCode != nil {
		switch shared.StatusCode(*in.StatusCode) {
		case shared.StatusActive:
			user.Activate()
		case shared.StatusInactive:
			user.Deactivate()
		}
	}
	user.Touch(actor)
	return nil
}

func (s *CustomerService) publish(ctx context.Context, customer *partner.Customer, users []*identity.User) {
	publishEvents(ctx, s.events, s.logger, customer)
	for _, u := range users {
		publishEvents(ctx, s.events, s.logger, u)
	}
}

func applyCustomerInput(customer *partner.Customer, in CustomerInput) error {
	if err := customer.Update(in.Name, in.Email, in.Phone, in.Address.toDomain()); err != nil {
		return err
	}
	if in.StatusCode != nil {
		if err := customer.SetStatus(shared.StatusCode(*in.StatusCode)); err != nil {
			return err
		}
	}
	return nil
}

// mergeProjects applies the requested projects over the stored ones. The returned
// map flags the projects that still need an insert.
func mergeProjects(customerID uuid.UUID, existing []partner.Project, inputs []ProjectInput, actor *uuid.UUID) ([]*partner.Project, map[uuid.UUID]bool, error) {
	byID := make(map[uuid.UUID]*partner.Project, len(existing))
	projects := make([]*partner.Project, 0, len(existing)+len(inputs))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
		projects = append(projects, &existing[i])
	}

	created := make(map[uuid.UUID]bool)
	kept := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if in.ID == nil {
			p, err := partner.NewProject(customerID, in.Name, in.Description, in.IsDefault)
			if err != nil {
				return nil, nil, err
			}
			p.SetCreator(actor)
			projects = append(projects, p)
			created[p.ID] = true
			continue
		}
		p, ok := byID[*in.ID]
		if !ok {
			return nil, nil, shared.NewDomainError("NOT_FOUND", "Project does not belong to this customer")
		}
		if err := p.Update(in.Name, in.Description, in.IsDefault); err != nil {
			return nil, nil, err
		}
		p.Activate()
		p.Touch(actor)
		kept[p.ID] = true
	}

	for id, p := range byID {
		if !kept[id] && p.IsActive() {
			p.Deactivate()
			p.Touch(actor)
		}
	}
	return projects, created, nil
}

func checkUsernamesUnique(users []UserInput) error {
	seen := make(map[string]struct{}, len(users))
	for _, u := range users {
		key := strings.ToLower(strings.TrimSpace(u.Username))
		if _, dup := seen[key]; dup {
			return shared.NewDomainError("ALREADY_EXISTS", "Username '"+u.Username+"' appears more than once")
		}
		seen[key] = struct{}{}
	}
	return nil
}

func buildWizardResponse(customer *partner.Customer, projects []*partner.Project, users []*identity.User) *CustomerWizardResponse {
	customer.Projects = make([]partner.Project, len(projects))
	for i, p := range projects {
		customer.Projects[i] = *p
	}
	resp := &CustomerWizardResponse{
		CustomerResponse: ToCustomerResponse(customer),
		Users:            make([]CustomerUserResponse, len(users)),
	}
	for i, u := range users {
		resp.Users[i] = ToCustomerUserResponse(u)
	}
	return resp
}
