package access

import (
	"context"
	"errors"

	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreFinder loads stores for store context resolution.
type StoreFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
}

// ActingStore resolves the store the actor is managing and authorizes it.
// Owners act on the store they own. Admins act on the store they entered.
func ActingStore(ctx context.Context, actor Actor, finder StoreFinder) (*models.Store, error) {
	var (
		store *models.Store
		err   error
	)
	switch {
	case actor.IsAdmin():
		if actor.StoreID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "enter a store before managing it")
		}
		store, err = finder.FindByID(ctx, *actor.StoreID)
	case actor.IsStoreOwner():
		store, err = finder.FindByOwner(ctx, actor.AccountID)
	default:
		return nil, errCustomer
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "you have no store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if err := Authorize(actor, store.ID, OwnerOf(store)); err != nil {
		return nil, err
	}
	return store, nil
}
