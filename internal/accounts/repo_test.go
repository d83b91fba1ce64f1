package accounts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/fooddiscount-backend/pkg/db"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	phone := "+7 900 000 00 00"

	created, err := repo.Create(ctx, CreateAccountDTO{Email: "  Owner@Example.COM ", PasswordHash: "hash", Role: enums.AccountRoleStore, PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", created.Email)
	assert.True(t, created.IsActive)

	found, err := repo.FindByEmail(ctx, "OWNER@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, enums.AccountRoleStore, found.Role)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, phone, *byID.PhoneNumber)

	_, err = repo.Create(ctx, CreateAccountDTO{Email: "owner@example.com", PasswordHash: "x"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, EmailConstraint))
}

func TestRepositorySetActiveAndLastLogin(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	account, err := repo.Create(ctx, CreateAccountDTO{Email: "c@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, enums.AccountRoleCustomer, account.Role)

	require.NoError(t, repo.SetActive(ctx, account.ID, false))
	reloaded, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, account.ID, at))
	reloaded, err = repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, reloaded.LastLoginAt.Equal(at))

	assert.ErrorIs(t, repo.SetActive(ctx, uuid.New(), true), gorm.ErrRecordNotFound)
}

func TestRepositoryListByRole(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		account, err := repo.Create(ctx, CreateAccountDTO{Email: fmt.Sprintf("c%d@example.com", i), PasswordHash: "h"})
		require.NoError(t, err)
		require.NoError(t, conn.Model(account).UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
	_, err := repo.Create(ctx, CreateAccountDTO{Email: "s@example.com", PasswordHash: "h", Role: enums.AccountRoleStore})
	require.NoError(t, err)

	first, err := repo.ListByRole(ctx, enums.AccountRoleCustomer, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 3, "one extra row signals a next page")
	assert.Equal(t, "c4@example.com", first[0].Email)

	page, next := pagination.Page(first, 2, func(a models.Account) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	})
	require.Len(t, page, 2)
	require.NotEmpty(t, next)

	second, err := repo.ListByRole(ctx, enums.AccountRoleCustomer, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.NotEmpty(t, second)
	assert.Equal(t, "c2@example.com", second[0].Email)

	count, err := repo.CountByRole(ctx, enums.AccountRoleCustomer)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}
