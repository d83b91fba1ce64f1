package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/fooddiscount-backend/internal/access"
	"github.com/angelmondragon/fooddiscount-backend/internal/accounts"
	"github.com/angelmondragon/fooddiscount-backend/internal/products"
	"github.com/angelmondragon/fooddiscount-backend/internal/stores"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubManager struct {
	updated []uuid.UUID
	deleted []uuid.UUID
}

func (s *stubManager) UpdateByID(ctx context.Context, actor access.Actor, storeID uuid.UUID, input stores.UpsertInput) (*stores.StoreDTO, error) {
	s.updated = append(s.updated, storeID)
	return &stores.StoreDTO{ID: storeID, Name: input.Name}, nil
}

func (s *stubManager) DeleteByID(ctx context.Context, actor access.Actor, storeID uuid.UUID) error {
	s.deleted = append(s.deleted, storeID)
	return nil
}

type failingCounter struct{}

func (failingCounter) CountAvailable(context.Context) (int64, error) { return 0, nil }

func (failingCounter) CountPickedUp(context.Context) (int64, error) {
	return 0, errors.New("connection reset")
}

var adminActor = access.Actor{AccountID: uuid.New(), Role: enums.AccountRoleAdmin}

func newTestService(t *testing.T, conn *gorm.DB, manager *stubManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Accounts: accounts.NewRepository(conn),
		Stores:   stores.NewRepository(conn),
		Products: products.NewRepository(conn),
		Manager:  manager,
	})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn, &stubManager{})
	ctx := context.Background()

	dbtest.SeedAccount(t, conn, enums.AccountRoleCustomer)
	dbtest.SeedAccount(t, conn, enums.AccountRoleCustomer)
	dbtest.SeedAccount(t, conn, enums.AccountRoleAdmin)
	owner := dbtest.SeedAccount(t, conn, enums.AccountRoleStore)
	store := dbtest.SeedStore(t, conn, owner.ID, "Shop", 1, 1)
	dbtest.SeedProduct(t, conn, store.ID, "a")
	dbtest.SeedProduct(t, conn, store.ID, "b")
	picked := dbtest.SeedProduct(t, conn, store.ID, "c")
	at := time.Now().UTC()
	dbtest.MarkUnavailable(t, conn, picked.ID, &at)
	withdrawn := dbtest.SeedProduct(t, conn, store.ID, "d")
	dbtest.MarkUnavailable(t, conn, withdrawn.ID, nil)

	stats, err := svc.Statistics(ctx, adminActor)
	require.NoError(t, err)
	assert.Equal(t, Statistics{TotalCustomers: 2, TotalStores: 1, TotalProducts: 2, PickedUpProducts: 1}, *stats)

	_, err = svc.Statistics(ctx, access.Actor{AccountID: owner.ID, Role: enums.AccountRoleStore})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestStatisticsDependencyFailure(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Accounts: accounts.NewRepository(conn),
		Stores:   stores.NewRepository(conn),
		Products: failingCounter{},
		Manager:  &stubManager{},
	})
	require.NoError(t, err)

	_, err = svc.Statistics(context.Background(), adminActor)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestListStoresAndCustomers(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn, &stubManager{})
	ctx := context.Background()

	owner := dbtest.SeedAccount(t, conn, enums.AccountRoleStore)
	store := dbtest.SeedStore(t, conn, owner.ID, "Shop", 1, 1)
	dbtest.SeedProduct(t, conn, store.ID, "bread")
	for i := 0; i < 3; i++ {
		dbtest.SeedAccount(t, conn, enums.AccountRoleCustomer)
	}

	storeList, err := svc.ListStores(ctx, adminActor, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, 1, storeList.Count)
	require.NotNil(t, storeList.Stores[0].Owner)
	assert.Equal(t, owner.Email, storeList.Stores[0].Owner.Email)
	assert.Len(t, storeList.Stores[0].Products, 1)

	customers, err := svc.ListCustomers(ctx, adminActor, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, customers.Count)
	assert.NotEmpty(t, customers.NextCursor)
	for _, c := range customers.Customers {
		assert.Equal(t, enums.AccountRoleCustomer, c.Role)
	}

	_, err = svc.ListCustomers(ctx, adminActor, pagination.Params{Cursor: "not-a-cursor"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestToggleStatus(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn, &stubManager{})
	ctx := context.Background()

	customer := dbtest.SeedAccount(t, conn, enums.AccountRoleCustomer)
	admin := dbtest.SeedAccount(t, conn, enums.AccountRoleAdmin)

	dto, err := svc.ToggleStatus(ctx, adminActor, customer.ID)
	require.NoError(t, err)
	assert.False(t, dto.IsActive)

	dto, err = svc.ToggleStatus(ctx, adminActor, customer.ID)
	require.NoError(t, err)
	assert.True(t, dto.IsActive)

	_, err = svc.ToggleStatus(ctx, adminActor, admin.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.ToggleStatus(ctx, adminActor, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.ToggleStatus(ctx, access.Actor{AccountID: customer.ID, Role: enums.AccountRoleCustomer}, customer.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestStoreManagementDelegates(t *testing.T) {
	conn := dbtest.Open(t)
	manager := &stubManager{}
	svc := newTestService(t, conn, manager)
	ctx := context.Background()
	id := uuid.New()

	dto, err := svc.UpdateStore(ctx, adminActor, id, stores.UpsertInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", dto.Name)
	require.NoError(t, svc.DeleteStore(ctx, adminActor, id))
	assert.Equal(t, []uuid.UUID{id}, manager.updated)
	assert.Equal(t, []uuid.UUID{id}, manager.deleted)

	err = svc.DeleteStore(ctx, access.Actor{AccountID: uuid.New(), Role: enums.AccountRoleStore}, id)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.Len(t, manager.deleted, 1)
}
