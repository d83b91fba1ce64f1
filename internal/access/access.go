// Package access decides whether an authenticated account may manage a store
// and the products that belong to it.
package access

import (
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/google/uuid"
)

// Actor is the caller identity taken from the access token.
type Actor struct {
	AccountID uuid.UUID
	Role      enums.AccountRole
	// StoreID is the store context carried by the token. For an admin it is
	// the store they entered.
	StoreID *uuid.UUID
}

func (a Actor) IsAdmin() bool { return a.Role == enums.AccountRoleAdmin }

func (a Actor) IsStoreOwner() bool { return a.Role == enums.AccountRoleStore }

// OwnerLookup reports the owner of a store. found is false when no such store exists.
type OwnerLookup func(storeID uuid.UUID) (ownerID uuid.UUID, found bool, err error)

var (
	errCustomer     = pkgerrors.New(pkgerrors.CodeForbidden, "customers cannot manage stores")
	errForeignStore = pkgerrors.New(pkgerrors.CodeForbidden, "you do not own this store")
	errNoStore      = pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	errAdminTarget  = pkgerrors.New(pkgerrors.CodeForbidden, "cannot change admin status")
	errNotAdmin     = pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
)

// Authorize checks that actor may mutate storeID and the products under it.
//
// Customers are always refused. Store owners pass only for the store they own;
// admins pass for any store that exists. An absent store is NOT_FOUND, a
// foreign one FORBIDDEN.
func Authorize(actor Actor, storeID uuid.UUID, lookup OwnerLookup) error {
	switch actor.Role {
	case enums.AccountRoleAdmin, enums.AccountRoleStore:
	default:
		return errCustomer
	}

	ownerID, found, err := lookup(storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store owner")
	}
	if !found {
		return errNoStore
	}
	if actor.IsAdmin() {
		return nil
	}
	if ownerID != actor.AccountID {
		return errForeignStore
	}
	return nil
}

// OwnerOf adapts an already loaded store to an OwnerLookup.
func OwnerOf(store *models.Store) OwnerLookup {
	return func(storeID uuid.UUID) (uuid.UUID, bool, error) {
		if store == nil || store.ID != storeID {
			return uuid.Nil, false, nil
		}
		return store.OwnerID, true, nil
	}
}

// RequireAdmin refuses every role except admin.
func RequireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return errNotAdmin
	}
	return nil
}

// CanToggleActive reports whether actor may flip target's active flag. Admin
// accounts are never toggled, whoever asks.
func CanToggleActive(actor Actor, target *models.Account) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if target == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if target.Role == enums.AccountRoleAdmin {
		return errAdminTarget
	}
	return nil
}
