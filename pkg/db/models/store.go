package models

import (
	"time"

	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/angelmondragon/fooddiscount-backend/pkg/geo"
	"github.com/angelmondragon/fooddiscount-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is a seller profile owned by exactly one store account.
type Store struct {
	ID                    uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID               uuid.UUID              `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:stores_owner_id_key"`
	Owner                 *Account               `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Name                  string                 `gorm:"column:name;not null"`
	Slug                  string                 `gorm:"column:slug;not null;uniqueIndex:stores_slug_key"`
	Description           *string                `gorm:"column:description"`
	Address               string                 `gorm:"column:address;not null"`
	Latitude              decimal.Decimal        `gorm:"column:latitude;type:numeric(10,8);not null"`
	Longitude             decimal.Decimal        `gorm:"column:longitude;type:numeric(11,8);not null"`
	Photo                 *string                `gorm:"column:photo"`
	WorkingHours          types.WorkingHours     `gorm:"column:working_hours;type:jsonb;not null"`
	IsActive              bool                   `gorm:"column:is_active;not null;default:true"`
	SubscriptionTier      enums.SubscriptionTier `gorm:"column:subscription_tier;type:text;not null;default:'free'"`
	SubscriptionExpiresAt *time.Time             `gorm:"column:subscription_expires_at"`
	Products              []Product              `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.WorkingHours == nil {
		s.WorkingHours = types.DefaultWorkingHours()
	}
	if s.SubscriptionTier == "" {
		s.SubscriptionTier = enums.SubscriptionTierFree
	}
	return nil
}

// Location returns the store coordinates for distance ranking.
func (s Store) Location() geo.Point {
	lat, _ := s.Latitude.Float64()
	lng, _ := s.Longitude.Float64()
	return geo.Point{Lat: lat, Lng: lng}
}
