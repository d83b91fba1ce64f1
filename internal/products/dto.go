package products

import (
	"strings"
	"time"

	"github.com/angelmondragon/fooddiscount-backend/pkg/db/models"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pricing"
	"github.com/angelmondragon/fooddiscount-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the API representation of a listing.
type ProductDTO struct {
	ID                 uuid.UUID       `json:"id"`
	StoreID            uuid.UUID       `json:"store_id"`
	Name               string          `json:"name"`
	Photo              *string         `json:"photo,omitempty"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountPrice      decimal.Decimal `json:"discount_price"`
	DiscountPercentage int             `json:"discount_percentage"`
	Quantity           int             `json:"quantity"`
	ExpiryDate         types.Date      `json:"expiry_date"`
	IsAvailable        bool            `json:"is_available"`
	PickedUpAt         *time.Time      `json:"picked_up_at,omitempty"`
	Store              *StoreSummary   `json:"store,omitempty"`
	Distance           *float64        `json:"distance,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// StoreSummary is the slice of store data embedded in feed entries.
type StoreSummary struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Address   string          `json:"address"`
	Latitude  decimal.Decimal `json:"latitude"`
	Longitude decimal.Decimal `json:"longitude"`
	Photo     *string         `json:"photo,omitempty"`
}

// CreateInput holds the payload to list a new product.
type CreateInput struct {
	Name          string
	Photo         *string
	OriginalPrice decimal.Decimal
	DiscountPrice decimal.Decimal
	Quantity      *int
	ExpiryDate    types.Date
}

// UpdateInput holds optional product mutations. Nil fields are left untouched.
type UpdateInput struct {
	Name          *string
	Photo         types.NullableString
	OriginalPrice *decimal.Decimal
	DiscountPrice *decimal.Decimal
	Quantity      *int
	ExpiryDate    *types.Date
	IsAvailable   *bool
}

// DefaultQuantity applies when a listing omits quantity.
const DefaultQuantity = 1

// FromModel maps a product row to its DTO. The discount percentage is derived
// from the stored prices.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:                 p.ID,
		StoreID:            p.StoreID,
		Name:               p.Name,
		Photo:              p.Photo,
		OriginalPrice:      p.OriginalPrice,
		DiscountPrice:      p.DiscountPrice,
		DiscountPercentage: pricing.DiscountPercentage(p.OriginalPrice, p.DiscountPrice),
		Quantity:           p.Quantity,
		ExpiryDate:         p.ExpiryDate,
		IsAvailable:        p.IsAvailable,
		PickedUpAt:         p.PickedUpAt,
		Store:              SummaryFromStore(p.Store),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// FromModels maps a list of product rows.
func FromModels(list []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

func SummaryFromStore(s *models.Store) *StoreSummary {
	if s == nil {
		return nil
	}
	return &StoreSummary{
		ID:        s.ID,
		Name:      s.Name,
		Slug:      s.Slug,
		Address:   s.Address,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Photo:     s.Photo,
	}
}

func (in CreateInput) toModel(storeID uuid.UUID) *models.Product {
	qty := DefaultQuantity
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	return &models.Product{
		StoreID:       storeID,
		Name:          strings.TrimSpace(in.Name),
		Photo:         trimmedOrNil(in.Photo),
		OriginalPrice: in.OriginalPrice,
		DiscountPrice: in.DiscountPrice,
		Quantity:      qty,
		ExpiryDate:    in.ExpiryDate,
		IsAvailable:   true,
	}
}

// applyUpdate copies the patch onto product and returns the column set to
// persist.
func applyUpdate(product *models.Product, in UpdateInput) map[string]any {
	cols := map[string]any{}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
		cols["name"] = product.Name
	}
	if in.Photo.Set {
		in.Photo.Apply(&product.Photo)
		cols["photo"] = product.Photo
	}
	if in.OriginalPrice != nil {
		product.OriginalPrice = *in.OriginalPrice
		cols["original_price"] = product.OriginalPrice
	}
	if in.DiscountPrice != nil {
		product.DiscountPrice = *in.DiscountPrice
		cols["discount_price"] = product.DiscountPrice
	}
	if in.Quantity != nil {
		product.Quantity = *in.Quantity
		cols["quantity"] = product.Quantity
	}
	if in.ExpiryDate != nil {
		product.ExpiryDate = *in.ExpiryDate
		cols["expiry_date"] = product.ExpiryDate
	}
	if in.IsAvailable != nil {
		product.IsAvailable = *in.IsAvailable
		cols["is_available"] = product.IsAvailable
	}
	return cols
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
