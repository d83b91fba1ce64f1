package accounts

import (
	"strings"
	"time"

	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/google/uuid"
)

// AccountDTO is the transport shape that omits the password hash.
type AccountDTO struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	Role        enums.AccountRole `json:"role"`
	IsActive    bool              `json:"is_active"`
	PhoneNumber *string           `json:"phone_number,omitempty"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CreateAccountDTO holds the data required by the repo to persist a new account.
type CreateAccountDTO struct {
	Email        string
	PasswordHash string
	Role         enums.AccountRole
	PhoneNumber  *string
}

func FromModel(a *models.Account) *AccountDTO {
	if a == nil {
		return nil
	}
	return &AccountDTO{
		ID:          a.ID,
		Email:       a.Email,
		Role:        a.Role,
		IsActive:    a.IsActive,
		PhoneNumber: a.PhoneNumber,
		LastLoginAt: a.LastLoginAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromModels(list []models.Account) []AccountDTO {
	out := make([]AccountDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

func (c CreateAccountDTO) ToModel() *models.Account {
	role := c.Role
	if role == "" {
		role = enums.AccountRoleCustomer
	}
	return &models.Account{
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		Role:         role,
		IsActive:     true,
		PhoneNumber:  c.PhoneNumber,
	}
}

// NormalizeEmail trims and lowercases an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
