package models

import (
	"time"

	"github.com/angelmondragon/fooddiscount-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a discounted near-expiry listing belonging to a store.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	StoreID       uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	Store         *Store          `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
	Name          string          `gorm:"column:name;not null"`
	Photo         *string         `gorm:"column:photo"`
	OriginalPrice decimal.Decimal `gorm:"column:original_price;type:numeric(10,2);not null"`
	DiscountPrice decimal.Decimal `gorm:"column:discount_price;type:numeric(10,2);not null"`
	Quantity      int             `gorm:"column:quantity;not null"`
	ExpiryDate    types.Date      `gorm:"column:expiry_date;type:date;not null"`
	IsAvailable   bool            `gorm:"column:is_available;not null;default:true"`
	PickedUpAt    *time.Time      `gorm:"column:picked_up_at"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
