package stores

import (
	"strings"
	"time"

	"github.com/angelmondragon/fooddiscount-backend/internal/accounts"
	"github.com/angelmondragon/fooddiscount-backend/internal/products"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/angelmondragon/fooddiscount-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreDTO is the API representation of a store.
type StoreDTO struct {
	ID                    uuid.UUID              `json:"id"`
	OwnerID               uuid.UUID              `json:"owner_id"`
	Name                  string                 `json:"name"`
	Slug                  string                 `json:"slug"`
	Description           *string                `json:"description,omitempty"`
	Address               string                 `json:"address"`
	Latitude              decimal.Decimal        `json:"latitude"`
	Longitude             decimal.Decimal        `json:"longitude"`
	Photo                 *string                `json:"photo,omitempty"`
	WorkingHours          types.WorkingHours     `json:"working_hours"`
	IsActive              bool                   `json:"is_active"`
	SubscriptionTier      enums.SubscriptionTier `json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time             `json:"subscription_expires_at,omitempty"`
	Owner                 *accounts.AccountDTO   `json:"owner,omitempty"`
	Products              []products.ProductDTO  `json:"products,omitempty"`
	Distance              *float64               `json:"distance,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// Outcome tags whether an upsert inserted or modified the store.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// UpsertResult is the tagged result of saving the acting store.
type UpsertResult struct {
	Outcome Outcome   `json:"outcome"`
	Store   *StoreDTO `json:"store"`
}

// Created reports whether the upsert inserted a new store.
func (r UpsertResult) Created() bool {
	return r.Outcome == OutcomeCreated
}

// UpsertInput is the store profile submitted by an owner or admin.
// Latitude and longitude are geocoded from the address when omitted.
type UpsertInput struct {
	Name         string
	Description  *string
	Address      string
	Latitude     *float64
	Longitude    *float64
	Photo        types.NullableString
	WorkingHours types.WorkingHours
}

// FromModel maps a store row, including any loaded owner and products.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	dto := &StoreDTO{
		ID:                    m.ID,
		OwnerID:               m.OwnerID,
		Name:                  m.Name,
		Slug:                  m.Slug,
		Description:           m.Description,
		Address:               m.Address,
		Latitude:              m.Latitude,
		Longitude:             m.Longitude,
		Photo:                 m.Photo,
		WorkingHours:          m.WorkingHours,
		IsActive:              m.IsActive,
		SubscriptionTier:      m.SubscriptionTier,
		SubscriptionExpiresAt: m.SubscriptionExpiresAt,
		Owner:                 accounts.FromModel(m.Owner),
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
	if m.Products != nil {
		dto.Products = products.FromModels(m.Products)
	}
	return dto
}

// FromModels maps a list of store rows.
func FromModels(list []models.Store) []StoreDTO {
	out := make([]StoreDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
