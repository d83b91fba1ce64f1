package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddiscount-backend/internal/access"
	"github.com/angelmondragon/fooddiscount-backend/internal/products"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
)

type stubProductService struct {
	products.Service
	createInput products.CreateInput
	updateInput products.UpdateInput
	feedQuery   products.FeedQuery
	productID   uuid.UUID
	err         error
}

func (s *stubProductService) Create(ctx context.Context, actor access.Actor, input products.CreateInput) (*products.ProductDTO, error) {
	s.createInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &products.ProductDTO{Name: input.Name}, nil
}

func (s *stubProductService) Update(ctx context.Context, actor access.Actor, productID uuid.UUID, input products.UpdateInput) (*products.ProductDTO, error) {
	s.productID = productID
	s.updateInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &products.ProductDTO{ID: productID}, nil
}

func (s *stubProductService) MarkPickedUp(ctx context.Context, actor access.Actor, productID uuid.UUID) (*products.ProductDTO, error) {
	s.productID = productID
	if s.err != nil {
		return nil, s.err
	}
	return &products.ProductDTO{ID: productID}, nil
}

func (s *stubProductService) Delete(ctx context.Context, actor access.Actor, productID uuid.UUID) error {
	s.productID = productID
	return s.err
}

func (s *stubProductService) Feed(ctx context.Context, query products.FeedQuery) (*products.FeedResult, error) {
	s.feedQuery = query
	return &products.FeedResult{Products: []products.ProductDTO{}}, s.err
}

func TestProductCreate(t *testing.T) {
	svc := &stubProductService{}
	body := `{"name":"Sourdough","original_price":"200","discount_price":140,"quantity":3,"expiry_date":"2026-10-20"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)), storeOwner())
	rec := httptest.NewRecorder()
	ProductCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	in := svc.createInput
	if in.OriginalPrice.String() != "200" || in.DiscountPrice.String() != "140" {
		t.Fatalf("unexpected prices %s/%s", in.OriginalPrice, in.DiscountPrice)
	}
	if in.Quantity == nil || *in.Quantity != 3 || in.ExpiryDate.String() != "2026-10-20" {
		t.Fatalf("unexpected input %+v", in)
	}
}

func TestProductCreateRequiresPricesAndExpiry(t *testing.T) {
	svc := &stubProductService{}
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":"Milk"}`)), storeOwner())
	rec := httptest.NewRecorder()
	ProductCreate(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	for _, field := range []string{"original_price", "discount_price", "expiry_date"} {
		if !strings.Contains(rec.Body.String(), field) {
			t.Fatalf("expected %s in details: %s", field, rec.Body.String())
		}
	}
}

func TestProductCreateSurfacesDiscountRejection(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeValidation, "discount must be at least 30%").
		WithDetails(map[string]any{"reason": "discount_too_small"})}
	body := `{"name":"Milk","original_price":100,"discount_price":90,"expiry_date":"2026-10-20"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)), storeOwner())
	rec := httptest.NewRecorder()
	ProductCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "discount_too_small") {
		t.Fatalf("expected reason in body: %s", rec.Body.String())
	}
}

func TestProductUpdatePartial(t *testing.T) {
	svc := &stubProductService{}
	id := uuid.New()
	req := withActor(httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), strings.NewReader(`{"discount_price":50,"photo":null}`)), storeOwner())
	req = withURLParam(req, "id", id.String())
	rec := httptest.NewRecorder()
	ProductUpdate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	in := svc.updateInput
	if in.DiscountPrice == nil || in.DiscountPrice.String() != "50" {
		t.Fatalf("expected discount price, got %v", in.DiscountPrice)
	}
	if in.Name != nil || in.OriginalPrice != nil || !in.Photo.Set || in.Photo.Value != nil {
		t.Fatalf("unexpected patch %+v", in)
	}
	if svc.productID != id {
		t.Fatalf("expected product %s got %s", id, svc.productID)
	}
}

func TestProductPickedUpConflict(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "product already picked up")}
	id := uuid.New()
	req := withURLParam(withActor(httptest.NewRequest(http.MethodPatch, "/", nil), storeOwner()), "id", id.String())
	rec := httptest.NewRecorder()
	ProductPickedUp(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestProductDeleteInvalidID(t *testing.T) {
	svc := &stubProductService{}
	req := withURLParam(withActor(httptest.NewRequest(http.MethodDelete, "/", nil), storeOwner()), "id", "not-a-uuid")
	rec := httptest.NewRecorder()
	ProductDelete(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.productID != uuid.Nil {
		t.Fatal("service should not be reached")
	}
}

func TestProductFeedDefaults(t *testing.T) {
	svc := &stubProductService{}
	rec := httptest.NewRecorder()
	ProductFeed(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.feedQuery.Origin != nil || svc.feedQuery.RadiusKm != nil || svc.feedQuery.Limit != 20 {
		t.Fatalf("unexpected feed query %+v", svc.feedQuery)
	}
}
