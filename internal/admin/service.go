package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/fooddiscount-backend/internal/access"
	"github.com/angelmondragon/fooddiscount-backend/internal/accounts"
	"github.com/angelmondragon/fooddiscount-backend/internal/stores"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pagination"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Statistics is the back-office dashboard summary.
type Statistics struct {
	TotalCustomers   int64 `json:"total_customers"`
	TotalStores      int64 `json:"total_stores"`
	TotalProducts    int64 `json:"total_products"`
	PickedUpProducts int64 `json:"picked_up_products"`
}

// StoreList is one page of the back-office store listing.
type StoreList struct {
	Stores     []stores.StoreDTO `json:"stores"`
	Count      int               `json:"count"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// CustomerList is one page of customer accounts.
type CustomerList struct {
	Customers  []accounts.AccountDTO `json:"customers"`
	Count      int                   `json:"count"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// Service exposes admin-only marketplace management.
type Service interface {
	Statistics(ctx context.Context, actor access.Actor) (*Statistics, error)
	ListStores(ctx context.Context, actor access.Actor, params pagination.Params) (*StoreList, error)
	ListCustomers(ctx context.Context, actor access.Actor, params pagination.Params) (*CustomerList, error)
	UpdateStore(ctx context.Context, actor access.Actor, storeID uuid.UUID, input stores.UpsertInput) (*stores.StoreDTO, error)
	DeleteStore(ctx context.Context, actor access.Actor, storeID uuid.UUID) error
	ToggleStatus(ctx context.Context, actor access.Actor, accountID uuid.UUID) (*accounts.AccountDTO, error)
}

type accountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListByRole(ctx context.Context, role enums.AccountRole, params pagination.Params) ([]models.Account, error)
	CountByRole(ctx context.Context, role enums.AccountRole) (int64, error)
}

type storeRepository interface {
	ListWithOwners(ctx context.Context, params pagination.Params) ([]models.Store, error)
	Count(ctx context.Context) (int64, error)
}

type productCounter interface {
	CountAvailable(ctx context.Context) (int64, error)
	CountPickedUp(ctx context.Context) (int64, error)
}

type storeManager interface {
	UpdateByID(ctx context.Context, actor access.Actor, storeID uuid.UUID, input stores.UpsertInput) (*stores.StoreDTO, error)
	DeleteByID(ctx context.Context, actor access.Actor, storeID uuid.UUID) error
}

// ServiceParams bundles the admin service dependencies.
type ServiceParams struct {
	Accounts accountRepository
	Stores   storeRepository
	Products productCounter
	Manager  storeManager
}

type service struct {
	accounts accountRepository
	stores   storeRepository
	products productCounter
	manager  storeManager
}

// NewService constructs the admin service.
func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("account repository required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product counter required")
	}
	if params.Manager == nil {
		return nil, fmt.Errorf("store manager required")
	}
	return &service{
		accounts: params.Accounts,
		stores:   params.Stores,
		products: params.Products,
		manager:  params.Manager,
	}, nil
}

func (s *service) Statistics(ctx context.Context, actor access.Actor) (*Statistics, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var stats Statistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalCustomers, err = s.accounts.CountByRole(gctx, enums.AccountRoleCustomer)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalStores, err = s.stores.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalProducts, err = s.products.CountAvailable(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PickedUpProducts, err = s.products.CountPickedUp(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load statistics")
	}
	return &stats, nil
}

func (s *service) ListStores(ctx context.Context, actor access.Actor, params pagination.Params) (*StoreList, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.stores.ListWithOwners(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	page, next := pagination.Page(rows, params.Limit, func(st models.Store) pagination.Cursor {
		return pagination.Cursor{CreatedAt: st.CreatedAt, ID: st.ID}
	})
	items := stores.FromModels(page)
	return &StoreList{Stores: items, Count: len(items), NextCursor: next}, nil
}

func (s *service) ListCustomers(ctx context.Context, actor access.Actor, params pagination.Params) (*CustomerList, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.accounts.ListByRole(ctx, enums.AccountRoleCustomer, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	page, next := pagination.Page(rows, params.Limit, func(a models.Account) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	})
	items := accounts.FromModels(page)
	return &CustomerList{Customers: items, Count: len(items), NextCursor: next}, nil
}

func (s *service) UpdateStore(ctx context.Context, actor access.Actor, storeID uuid.UUID, input stores.UpsertInput) (*stores.StoreDTO, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.manager.UpdateByID(ctx, actor, storeID, input)
}

func (s *service) DeleteStore(ctx context.Context, actor access.Actor, storeID uuid.UUID) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	return s.manager.DeleteByID(ctx, actor, storeID)
}

// ToggleStatus flips the target's is_active flag. Admin accounts are refused.
func (s *service) ToggleStatus(ctx context.Context, actor access.Actor, accountID uuid.UUID) (*accounts.AccountDTO, error) {
	target, err := s.accounts.FindByID(ctx, accountID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if err := access.CanToggleActive(actor, target); err != nil {
		return nil, err
	}

	next := !target.IsActive
	if err := s.accounts.SetActive(ctx, target.ID, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user status")
	}
	target.IsActive = next
	return accounts.FromModel(target), nil
}
