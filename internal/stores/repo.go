package stores

import (
	"context"

	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// SlugConstraint is the unique index backing store slugs.
	SlugConstraint = "stores_slug_key"
	// OwnerConstraint enforces one store per owner account.
	OwnerConstraint = "stores_owner_id_key"
)

// Repository handles store persistence.
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

// Create inserts a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(store).Error
}

// Update persists the editable profile columns.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).
		Model(store).
		Select("name", "slug", "description", "address", "latitude", "longitude", "photo", "working_hours", "updated_at").
		Updates(store).Error
}

// FindByID loads a store by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner loads the store owned by ownerID.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "owner_id = ?", ownerID).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindBySlug loads an active store with its available products.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Preload("Products", availableProducts).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// FindWithProducts loads a store with every product it lists.
func (r *Repository) FindWithProducts(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("id DESC")
		}).
		First(&store, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// SlugExists reports whether another store already uses slug.
func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Delete removes the store together with its products.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("store_id = ?", id).Delete(&models.Product{}).Error; err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Store{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func availableProducts(db *gorm.DB) *gorm.DB {
	return db.Where("is_available = ? AND quantity > 0", true).
		Order("created_at DESC").Order("id DESC")
}

func (r *Repository) publicQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("stores.is_active = ?", true).
		Where("EXISTS (SELECT 1 FROM products p WHERE p.store_id = stores.id AND p.is_available = ? AND p.quantity > 0)", true).
		Preload("Products", availableProducts)
}

// ListPublic returns a page of active stores with something to sell, newest
// first, fetching one extra row for next-page detection.
func (r *Repository) ListPublic(ctx context.Context, params pagination.Params) ([]models.Store, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.publicQuery(ctx)
	if cursor != nil {
		q = q.Where("(stores.created_at < ?) OR (stores.created_at = ? AND stores.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var list []models.Store
	err = q.Order("stores.created_at DESC").Order("stores.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&list).Error
	return list, err
}

// ListPublicCandidates returns every public store for distance ranking.
func (r *Repository) ListPublicCandidates(ctx context.Context) ([]models.Store, error) {
	var list []models.Store
	err := r.publicQuery(ctx).
		Order("stores.created_at DESC").Order("stores.id DESC").
		Find(&list).Error
	return list, err
}

// ListWithOwners returns stores of any status with owner and products loaded,
// newest first, fetching one extra row for next-page detection.
func (r *Repository) ListWithOwners(ctx context.Context, params pagination.Params) ([]models.Store, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("id DESC")
		})
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var list []models.Store
	err = q.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&list).Error
	return list, err
}

// Count returns the number of stores regardless of status.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Store{}).Count(&count).Error
	return count, err
}
