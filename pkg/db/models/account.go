package models

import (
	"time"

	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the identity behind customers, store owners and admins.
type Account struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex:accounts_email_key"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Role         enums.AccountRole `gorm:"column:role;type:text;not null;default:'customer'"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	PhoneNumber  *string           `gorm:"column:phone_number"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
