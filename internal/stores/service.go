package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/fooddiscount-backend/internal/access"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db"
	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/geo"
	"github.com/angelmondragon/fooddiscount-backend/pkg/logger"
	"github.com/angelmondragon/fooddiscount-backend/pkg/maps"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pagination"
	"github.com/angelmondragon/fooddiscount-backend/pkg/slug"
	"github.com/angelmondragon/fooddiscount-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxSlugAttempts bounds retries after a concurrent writer claimed the slug.
const maxSlugAttempts = 5

// Service exposes store profile management and public discovery.
type Service interface {
	Upsert(ctx context.Context, actor access.Actor, input UpsertInput) (*UpsertResult, error)
	UpdateByID(ctx context.Context, actor access.Actor, storeID uuid.UUID, input UpsertInput) (*StoreDTO, error)
	GetBySlug(ctx context.Context, slug string) (*StoreDTO, error)
	MyStore(ctx context.Context, actor access.Actor) (*StoreDTO, error)
	Delete(ctx context.Context, actor access.Actor) error
	DeleteByID(ctx context.Context, actor access.Actor, storeID uuid.UUID) error
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	Autocomplete(ctx context.Context, input string) ([]maps.Suggestion, error)
}

// ListQuery filters the public store directory. Origin switches to distance
// ranking.
type ListQuery struct {
	Origin   *geo.Point
	RadiusKm *float64
	Limit    int
	Cursor   string
}

// ListResult is one page of stores.
type ListResult struct {
	Stores     []StoreDTO `json:"stores"`
	Count      int        `json:"count"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// Geocoder resolves addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*maps.Place, error)
	Autocomplete(ctx context.Context, input string) ([]maps.Suggestion, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo          *Repository
	tx            txRunner
	geocoder      Geocoder
	logg          *logger.Logger
	defaultRadius float64
}

// NewService constructs the stores service. geocoder may be nil when no maps
// key is configured; coordinates must then be supplied by the client.
func NewService(repo *Repository, tx txRunner, geocoder Geocoder, logg *logger.Logger, defaultRadiusKm float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = geo.DefaultRadiusKm
	}
	return &service{
		repo:          repo,
		tx:            tx,
		geocoder:      geocoder,
		logg:          logg,
		defaultRadius: defaultRadiusKm,
	}, nil
}

func (s *service) Upsert(ctx context.Context, actor access.Actor, input UpsertInput) (*UpsertResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := access.ActingStore(ctx, actor, s.repo)
	switch {
	case err == nil:
		store, err := s.save(ctx, existing, input, false)
		if err != nil {
			return nil, err
		}
		return &UpsertResult{Outcome: OutcomeUpdated, Store: FromModel(store)}, nil
	case actor.IsStoreOwner() && pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		store := &models.Store{
			ID:      uuid.New(),
			OwnerID: actor.AccountID,
		}
		store, err := s.save(ctx, store, input, true)
		if err != nil {
			return nil, err
		}
		s.logg.Info(s.logg.WithStoreID(ctx, store.ID.String()), "store created")
		return &UpsertResult{Outcome: OutcomeCreated, Store: FromModel(store)}, nil
	default:
		return nil, err
	}
}

func (s *service) UpdateByID(ctx context.Context, actor access.Actor, storeID uuid.UUID, input UpsertInput) (*StoreDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	store, err := s.authorizedStore(ctx, actor, storeID)
	if err != nil {
		return nil, err
	}
	saved, err := s.save(ctx, store, input, false)
	if err != nil {
		return nil, err
	}
	return FromModel(saved), nil
}

// save applies input to store and persists it, regenerating the slug for new
// stores and renamed ones.
func (s *service) save(ctx context.Context, store *models.Store, input UpsertInput, creating bool) (*models.Store, error) {
	name := strings.TrimSpace(input.Name)
	address := strings.TrimSpace(input.Address)
	regenerate := creating || name != store.Name
	addressChanged := creating || address != store.Address

	store.Name = name
	store.Address = address
	store.Description = trimmedOrNil(input.Description)
	input.Photo.Apply(&store.Photo)
	if input.WorkingHours != nil {
		store.WorkingHours = input.WorkingHours.Clean()
	} else if creating {
		store.WorkingHours = types.DefaultWorkingHours()
	}

	if err := s.resolveLocation(ctx, store, input, creating, addressChanged); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if regenerate {
				next, err := slug.Unique(ctx, slug.Generate(store.Name), func(ctx context.Context, candidate string) (bool, error) {
					return repo.SlugExists(ctx, candidate, store.ID)
				})
				if err != nil {
					return err
				}
				store.Slug = next
			}
			if creating {
				return repo.Create(ctx, store)
			}
			return repo.Update(ctx, store)
		})
		switch {
		case err == nil:
			return store, nil
		case db.IsUniqueViolation(err, OwnerConstraint):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store already exists for this account")
		case db.IsUniqueViolation(err, SlugConstraint) && regenerate:
			s.logg.Warn(ctx, fmt.Sprintf("slug %q taken concurrently, retrying", store.Slug))
			continue
		case db.IsUniqueViolation(err, SlugConstraint):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store slug already in use")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save store")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique store slug")
}

// resolveLocation fills coordinates from the input, or geocodes the address
// when they are omitted and the address is new.
func (s *service) resolveLocation(ctx context.Context, store *models.Store, input UpsertInput, creating, addressChanged bool) error {
	if input.Latitude != nil && input.Longitude != nil {
		store.Latitude = decimal.NewFromFloat(*input.Latitude)
		store.Longitude = decimal.NewFromFloat(*input.Longitude)
		return nil
	}
	if !addressChanged {
		return nil
	}
	if s.geocoder == nil {
		if creating {
			return pkgerrors.New(pkgerrors.CodeValidation, "latitude and longitude are required")
		}
		return nil
	}

	place, err := s.geocoder.Geocode(ctx, store.Address)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "geocode address")
	}
	store.Latitude = decimal.NewFromFloat(place.Location.Lat)
	store.Longitude = decimal.NewFromFloat(place.Location.Lng)
	return nil
}

func (s *service) GetBySlug(ctx context.Context, slugValue string) (*StoreDTO, error) {
	slugValue = strings.TrimSpace(slugValue)
	if slugValue == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	store, err := s.repo.FindBySlug(ctx, slugValue)
	if err != nil {
		return nil, mapRepoError(err, "store not found")
	}
	return FromModel(store), nil
}

func (s *service) MyStore(ctx context.Context, actor access.Actor) (*StoreDTO, error) {
	acting, err := access.ActingStore(ctx, actor, s.repo)
	if err != nil {
		return nil, err
	}
	store, err := s.repo.FindWithProducts(ctx, acting.ID)
	if err != nil {
		return nil, mapRepoError(err, "store not found")
	}
	return FromModel(store), nil
}

func (s *service) Delete(ctx context.Context, actor access.Actor) error {
	store, err := access.ActingStore(ctx, actor, s.repo)
	if err != nil {
		return err
	}
	return s.delete(ctx, store.ID)
}

func (s *service) DeleteByID(ctx context.Context, actor access.Actor, storeID uuid.UUID) error {
	store, err := s.authorizedStore(ctx, actor, storeID)
	if err != nil {
		return err
	}
	return s.delete(ctx, store.ID)
}

func (s *service) delete(ctx context.Context, storeID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, storeID)
	})
	if err != nil {
		return mapRepoError(err, "store not found")
	}
	s.logg.Info(s.logg.WithStoreID(ctx, storeID.String()), "store deleted")
	return nil
}

func (s *service) authorizedStore(ctx context.Context, actor access.Actor, storeID uuid.UUID) (*models.Store, error) {
	var store *models.Store
	lookup := func(id uuid.UUID) (uuid.UUID, bool, error) {
		found, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, false, nil
			}
			return uuid.Nil, false, err
		}
		store = found
		return found.OwnerID, true, nil
	}
	if err := access.Authorize(actor, storeID, lookup); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	if query.Origin != nil {
		return s.nearby(ctx, query)
	}

	if _, err := pagination.ParseCursor(query.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListPublic(ctx, pagination.Params{Limit: query.Limit, Cursor: query.Cursor})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	page, next := pagination.Page(rows, query.Limit, func(s models.Store) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	})
	items := FromModels(page)
	return &ListResult{Stores: items, Count: len(items), NextCursor: next}, nil
}

func (s *service) nearby(ctx context.Context, query ListQuery) (*ListResult, error) {
	if err := query.Origin.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	radius := s.defaultRadius
	if query.RadiusKm != nil {
		radius = *query.RadiusKm
	}

	candidates, err := s.repo.ListPublicCandidates(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	ranked := geo.FilterByRadius(candidates, location, *query.Origin, radius)

	limit := pagination.NormalizeLimit(query.Limit)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	items := make([]StoreDTO, 0, len(ranked))
	for i := range ranked {
		dto := FromModel(&ranked[i].Item)
		dist := ranked[i].DistanceKm
		dto.Distance = &dist
		items = append(items, *dto)
	}
	return &ListResult{Stores: items, Count: len(items)}, nil
}

func location(s models.Store) (geo.Point, bool) {
	return s.Location(), true
}

func (s *service) Autocomplete(ctx context.Context, input string) ([]maps.Suggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}
	if s.geocoder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address lookup is not configured")
	}
	suggestions, err := s.geocoder.Autocomplete(ctx, input)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "address autocomplete")
	}
	return suggestions, nil
}

func validateInput(input UpsertInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "latitude and longitude must be provided together")
	}
	if input.Latitude != nil {
		pt := geo.Point{Lat: *input.Latitude, Lng: *input.Longitude}
		if err := pt.Validate(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
	}
	if input.WorkingHours != nil {
		if err := input.WorkingHours.Validate(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid working hours").
				WithDetails(map[string]any{"working_hours": err.Error()})
		}
	}
	return nil
}

func mapRepoError(err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store storage")
}
