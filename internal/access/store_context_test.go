package access

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubFinder struct {
	stores []models.Store
	err    error
}

func (s stubFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.stores {
		if s.stores[i].ID == id {
			return &s.stores[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s stubFinder) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.stores {
		if s.stores[i].OwnerID == ownerID {
			return &s.stores[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func TestActingStore(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	store := models.Store{ID: uuid.New(), OwnerID: owner}
	finder := stubFinder{stores: []models.Store{store}}

	got, err := ActingStore(ctx, Actor{AccountID: owner, Role: enums.AccountRoleStore}, finder)
	if err != nil || got.ID != store.ID {
		t.Fatalf("expected owner store, got %v err=%v", got, err)
	}

	if _, err := ActingStore(ctx, Actor{AccountID: uuid.New(), Role: enums.AccountRoleStore}, finder); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for owner without store, got %v", err)
	}

	entered := store.ID
	got, err = ActingStore(ctx, Actor{AccountID: uuid.New(), Role: enums.AccountRoleAdmin, StoreID: &entered}, finder)
	if err != nil || got.ID != store.ID {
		t.Fatalf("expected admin to act as entered store, got %v err=%v", got, err)
	}

	if _, err := ActingStore(ctx, Actor{AccountID: uuid.New(), Role: enums.AccountRoleAdmin}, finder); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for admin without store context, got %v", err)
	}

	gone := uuid.New()
	if _, err := ActingStore(ctx, Actor{Role: enums.AccountRoleAdmin, StoreID: &gone}, finder); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for deleted entered store, got %v", err)
	}

	if _, err := ActingStore(ctx, Actor{AccountID: owner, Role: enums.AccountRoleCustomer}, finder); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for customer, got %v", err)
	}

	if _, err := ActingStore(ctx, Actor{AccountID: owner, Role: enums.AccountRoleStore}, stubFinder{err: errors.New("down")}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
