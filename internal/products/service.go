package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/fooddiscount-backend/internal/access"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/geo"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pagination"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes listing management and the public feed.
type Service interface {
	Create(ctx context.Context, actor access.Actor, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, actor access.Actor, productID uuid.UUID, input UpdateInput) (*ProductDTO, error)
	MarkPickedUp(ctx context.Context, actor access.Actor, productID uuid.UUID) (*ProductDTO, error)
	Delete(ctx context.Context, actor access.Actor, productID uuid.UUID) error
	Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	Feed(ctx context.Context, query FeedQuery) (*FeedResult, error)
}

// FeedQuery filters the public feed. Origin switches to distance ranking.
type FeedQuery struct {
	Origin   *geo.Point
	RadiusKm *float64
	Limit    int
	Cursor   string
}

// FeedResult is one page of the public feed.
type FeedResult struct {
	Products   []ProductDTO `json:"products"`
	Count      int          `json:"count"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo          *Repository
	tx            txRunner
	stores        access.StoreFinder
	defaultRadius float64
	now           func() time.Time
}

// NewService constructs the products service.
func NewService(repo *Repository, tx txRunner, stores access.StoreFinder, defaultRadiusKm float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store finder required")
	}
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = geo.DefaultRadiusKm
	}
	return &service{
		repo:          repo,
		tx:            tx,
		stores:        stores,
		defaultRadius: defaultRadiusKm,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, actor access.Actor, input CreateInput) (*ProductDTO, error) {
	store, err := access.ActingStore(ctx, actor, s.stores)
	if err != nil {
		return nil, err
	}

	product := input.toModel(store.ID)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, product)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	product.Store = store
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, actor access.Actor, productID uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	store, err := access.ActingStore(ctx, actor, s.stores)
	if err != nil {
		return nil, err
	}

	var updated *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindForStore(ctx, productID, store.ID)
		if err != nil {
			return mapRepoError(err, "product not found")
		}

		cols := applyUpdate(product, input)
		if err := validateProduct(product); err != nil {
			return err
		}
		if err := repo.Update(ctx, product.ID, store.ID, cols); err != nil {
			return mapRepoError(err, "product not found")
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "update product")
	}

	updated.Store = store
	return FromModel(updated), nil
}

func (s *service) MarkPickedUp(ctx context.Context, actor access.Actor, productID uuid.UUID) (*ProductDTO, error) {
	store, err := access.ActingStore(ctx, actor, s.stores)
	if err != nil {
		return nil, err
	}

	var product *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		marked, err := repo.MarkPickedUp(ctx, productID, store.ID, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark product picked up")
		}
		current, err := repo.FindForStore(ctx, productID, store.ID)
		if err != nil {
			return mapRepoError(err, "product not found")
		}
		if !marked {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "product already picked up")
		}
		product = current
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "mark product picked up")
	}

	product.Store = store
	return FromModel(product), nil
}

func (s *service) Delete(ctx context.Context, actor access.Actor, productID uuid.UUID) error {
	store, err := access.ActingStore(ctx, actor, s.stores)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID, store.ID); err != nil {
		return mapRepoError(err, "product not found")
	}
	return nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapRepoError(err, "product not found")
	}
	return FromModel(product), nil
}

func (s *service) Feed(ctx context.Context, query FeedQuery) (*FeedResult, error) {
	if query.Origin != nil {
		return s.nearbyFeed(ctx, query)
	}

	if _, err := pagination.ParseCursor(query.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListFeed(ctx, pagination.Params{Limit: query.Limit, Cursor: query.Cursor})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	page, next := pagination.Page(rows, query.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	items := FromModels(page)
	return &FeedResult{Products: items, Count: len(items), NextCursor: next}, nil
}

func (s *service) nearbyFeed(ctx context.Context, query FeedQuery) (*FeedResult, error) {
	if err := query.Origin.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	radius := s.defaultRadius
	if query.RadiusKm != nil {
		radius = *query.RadiusKm
	}

	candidates, err := s.repo.ListFeedCandidates(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	ranked := geo.FilterByRadius(candidates, storeLocation, *query.Origin, radius)

	limit := pagination.NormalizeLimit(query.Limit)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	items := make([]ProductDTO, 0, len(ranked))
	for i := range ranked {
		dto := FromModel(&ranked[i].Item)
		dist := ranked[i].DistanceKm
		dto.Distance = &dist
		items = append(items, *dto)
	}
	return &FeedResult{Products: items, Count: len(items)}, nil
}

func storeLocation(p models.Product) (geo.Point, bool) {
	if p.Store == nil {
		return geo.Point{}, false
	}
	return p.Store.Location(), true
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if p.OriginalPrice.LessThan(decimal.Zero) || p.DiscountPrice.LessThan(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
	}
	if p.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if p.ExpiryDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry_date is required")
	}
	return DiscountError(pricing.ValidateDiscount(p.OriginalPrice, p.DiscountPrice))
}

// DiscountError converts a pricing rejection into a validation error that
// carries the rejected rule as details.reason.
func DiscountError(err error) error {
	if err == nil {
		return nil
	}
	var rule *pricing.RuleError
	if errors.As(err, &rule) {
		return pkgerrors.New(pkgerrors.CodeValidation, rule.Message()).
			WithDetails(map[string]any{"reason": rule.Reason})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
}

func mapRepoError(err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "product storage")
}

func asTyped(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
