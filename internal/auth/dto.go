package auth

import (
	"github.com/angelmondragon/fooddiscount-backend/internal/accounts"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/google/uuid"
)

// RegisterRequest is the sign up payload.
type RegisterRequest struct {
	Email       string
	Password    string
	Role        enums.AccountRole
	PhoneNumber *string
}

// LoginRequest carries the credentials submitted by the client.
type LoginRequest struct {
	Email    string
	Password string
}

// RefreshRequest identifies the session being rotated. The fields come from
// the presented access token, which may already be expired.
type RefreshRequest struct {
	AccountID    uuid.UUID
	AccessID     string
	StoreID      *uuid.UUID
	RefreshToken string
}

// StoreSummary is the store context returned alongside a session.
type StoreSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	IsActive bool      `json:"is_active"`
}

// SessionResponse is returned by register, login and enter-store.
type SessionResponse struct {
	Token        string               `json:"token"`
	RefreshToken string               `json:"refresh_token"`
	User         *accounts.AccountDTO `json:"user"`
	Store        *StoreSummary        `json:"store,omitempty"`
}

// TokenPair is the result of a refresh.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// MeResponse describes the authenticated account.
type MeResponse struct {
	User  *accounts.AccountDTO `json:"user"`
	Store *StoreSummary        `json:"store,omitempty"`
}

func summarize(store *models.Store) *StoreSummary {
	if store == nil {
		return nil
	}
	return &StoreSummary{
		ID:       store.ID,
		Name:     store.Name,
		Slug:     store.Slug,
		IsActive: store.IsActive,
	}
}
