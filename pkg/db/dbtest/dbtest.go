// Package dbtest opens isolated in-memory databases for repository and
// service tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	"github.com/angelmondragon/fooddiscount-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a sqlite database named after the running test with the
// marketplace tables migrated. It is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_db?mode=memory&cache=shared&_foreign_keys=on", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(&models.Account{}, &models.Store{}, &models.Product{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return conn
}

// SeedAccount inserts an active account with role.
func SeedAccount(t testing.TB, conn *gorm.DB, role enums.AccountRole) *models.Account {
	t.Helper()
	account := &models.Account{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		PasswordHash: "hash",
		Role:         role,
		IsActive:     true,
	}
	if err := conn.Create(account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

// StoreOption adjusts a seeded store before insert.
type StoreOption func(*models.Store)

// WithCreatedAt pins the store creation time.
func WithCreatedAt(at time.Time) StoreOption {
	return func(s *models.Store) { s.CreatedAt = at }
}

// SeedStore inserts an active store owned by ownerID at (lat, lng).
func SeedStore(t testing.TB, conn *gorm.DB, ownerID uuid.UUID, name string, lat, lng float64, opts ...StoreOption) *models.Store {
	t.Helper()
	store := &models.Store{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Name:         name,
		Slug:         strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + uuid.NewString()[:6],
		Address:      "1 Market Street",
		Latitude:     decimal.NewFromFloat(lat),
		Longitude:    decimal.NewFromFloat(lng),
		WorkingHours: types.DefaultWorkingHours(),
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(store)
	}
	if err := conn.Create(store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

// ProductOption adjusts a seeded product before insert.
type ProductOption func(*models.Product)

// ProductCreatedAt pins the product creation time.
func ProductCreatedAt(at time.Time) ProductOption {
	return func(p *models.Product) { p.CreatedAt = at }
}

// ProductQuantity overrides the seeded quantity.
func ProductQuantity(qty int) ProductOption {
	return func(p *models.Product) { p.Quantity = qty }
}

// SeedProduct inserts an available product priced 100 / 60 for storeID.
func SeedProduct(t testing.TB, conn *gorm.DB, storeID uuid.UUID, name string, opts ...ProductOption) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		StoreID:       storeID,
		Name:          name,
		OriginalPrice: decimal.NewFromInt(100),
		DiscountPrice: decimal.NewFromInt(60),
		Quantity:      3,
		ExpiryDate:    types.NewDate(time.Now().AddDate(0, 0, 3)),
		IsAvailable:   true,
	}
	for _, opt := range opts {
		opt(product)
	}
	if err := conn.Omit("Store").Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

// Deactivate flips is_active off for a seeded row. Rows inserted with a false
// bool would pick up the column default instead.
func Deactivate(t testing.TB, conn *gorm.DB, model any, id uuid.UUID) {
	t.Helper()
	if err := conn.Model(model).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
}

// MarkUnavailable flips is_available off for a seeded product.
func MarkUnavailable(t testing.TB, conn *gorm.DB, productID uuid.UUID, pickedUpAt *time.Time) {
	t.Helper()
	err := conn.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]any{"is_available": false, "picked_up_at": pickedUpAt}).Error
	if err != nil {
		t.Fatalf("mark unavailable: %v", err)
	}
}
