package products

import (
	"context"
	"time"

	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles product persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository for the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// FindByID loads a product with its store.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Store").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindForStore loads a product only when it belongs to storeID.
func (r *Repository) FindForStore(ctx context.Context, id, storeID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update writes cols onto the store scoped product.
func (r *Repository) Update(ctx context.Context, id, storeID uuid.UUID, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkPickedUp stamps picked_up_at once and withdraws the listing. It reports
// false when the product was already picked up.
func (r *Repository) MarkPickedUp(ctx context.Context, id, storeID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store_id = ? AND picked_up_at IS NULL", id, storeID).
		Updates(map[string]any{
			"is_available": false,
			"picked_up_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the store scoped product.
func (r *Repository) Delete(ctx context.Context, id, storeID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) feedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN stores ON stores.id = products.store_id AND stores.is_active = ?", true).
		Where("products.is_available = ? AND products.quantity > 0", true).
		Preload("Store")
}

// ListFeed returns a page of public listings, newest first, fetching one
// extra row for next-page detection.
func (r *Repository) ListFeed(ctx context.Context, params pagination.Params) ([]models.Product, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := r.feedQuery(ctx)
	if cursor != nil {
		q = q.Where("(products.created_at < ?) OR (products.created_at = ? AND products.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var list []models.Product
	err = q.Order("products.created_at DESC").Order("products.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&list).Error
	return list, err
}

// ListFeedCandidates returns every public listing for distance ranking.
func (r *Repository) ListFeedCandidates(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	err := r.feedQuery(ctx).
		Order("products.created_at DESC").Order("products.id DESC").
		Find(&list).Error
	return list, err
}

// ListByStore returns the store's products, newest first. availableOnly keeps
// listings a customer can still pick up.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, availableOnly bool) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if availableOnly {
		q = q.Where("is_available = ? AND quantity > 0", true)
	}
	var list []models.Product
	err := q.Order("created_at DESC").Order("id DESC").Find(&list).Error
	return list, err
}

// CountAvailable counts listings still marked available.
func (r *Repository) CountAvailable(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_available = ?", true).Count(&count).Error
	return count, err
}

// CountPickedUp counts listings withdrawn through pickup.
func (r *Repository) CountPickedUp(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_available = ? AND picked_up_at IS NOT NULL", false).
		Count(&count).Error
	return count, err
}
