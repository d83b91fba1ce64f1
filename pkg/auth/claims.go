package auth

import (
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID uuid.UUID
	Role      enums.AccountRole
	// StoreID is the store whose management context the token acts in: the
	// owner's own store, or the store an admin entered.
	StoreID *uuid.UUID
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	AccountID uuid.UUID         `json:"account_id"`
	Role      enums.AccountRole `json:"role"`
	StoreID   *uuid.UUID        `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}
