package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddiscount-backend/internal/access"
	"github.com/angelmondragon/fooddiscount-backend/internal/stores"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/maps"
)

type stubStoreService struct {
	stores.Service
	listQuery   stores.ListQuery
	upsertInput stores.UpsertInput
	outcome     stores.Outcome
	slug        string
	autoInput   string
	deleted     bool
	err         error
}

func (s *stubStoreService) List(ctx context.Context, query stores.ListQuery) (*stores.ListResult, error) {
	s.listQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return &stores.ListResult{Stores: []stores.StoreDTO{}}, nil
}

func (s *stubStoreService) GetBySlug(ctx context.Context, slug string) (*stores.StoreDTO, error) {
	s.slug = slug
	if s.err != nil {
		return nil, s.err
	}
	return &stores.StoreDTO{Slug: slug}, nil
}

func (s *stubStoreService) Upsert(ctx context.Context, actor access.Actor, input stores.UpsertInput) (*stores.UpsertResult, error) {
	s.upsertInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &stores.UpsertResult{Outcome: s.outcome, Store: &stores.StoreDTO{Name: input.Name}}, nil
}

func (s *stubStoreService) Delete(ctx context.Context, actor access.Actor) error {
	s.deleted = true
	return s.err
}

func (s *stubStoreService) Autocomplete(ctx context.Context, input string) ([]maps.Suggestion, error) {
	s.autoInput = input
	return []maps.Suggestion{}, s.err
}

func storeOwner() access.Actor {
	storeID := uuid.New()
	return access.Actor{AccountID: uuid.New(), Role: enums.AccountRoleStore, StoreID: &storeID}
}

func TestStoreListParsesProximity(t *testing.T) {
	svc := &stubStoreService{}
	req := httptest.NewRequest(http.MethodGet, "/api/stores?latitude=46.7&longitude=38.3&radius=5&limit=10", nil)
	rec := httptest.NewRecorder()
	StoreList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	q := svc.listQuery
	if q.Origin == nil || q.Origin.Lat != 46.7 || q.Origin.Lng != 38.3 {
		t.Fatalf("unexpected origin %+v", q.Origin)
	}
	if q.RadiusKm == nil || *q.RadiusKm != 5 || q.Limit != 10 {
		t.Fatalf("unexpected query %+v", q)
	}
}

func TestStoreListRejectsPartialCoordinates(t *testing.T) {
	svc := &stubStoreService{}
	rec := httptest.NewRecorder()
	StoreList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stores?latitude=46.7", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestStoreUpsertStatus(t *testing.T) {
	cases := []struct {
		outcome stores.Outcome
		want    int
	}{
		{outcome: stores.OutcomeCreated, want: http.StatusCreated},
		{outcome: stores.OutcomeUpdated, want: http.StatusOK},
	}
	for _, tc := range cases {
		svc := &stubStoreService{outcome: tc.outcome}
		body := `{"name":"Corner Bakery","address":"Main st 1","latitude":46.71,"longitude":38.27,"photo":null,"working_hours":{"monday":"08:00-20:00"}}`
		req := withActor(httptest.NewRequest(http.MethodPost, "/api/stores", strings.NewReader(body)), storeOwner())
		rec := httptest.NewRecorder()
		StoreUpsert(svc, nil).ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d got %d: %s", tc.outcome, tc.want, rec.Code, rec.Body.String())
		}
		in := svc.upsertInput
		if in.Latitude == nil || *in.Latitude != 46.71 || !in.Photo.Set || in.Photo.Value != nil {
			t.Fatalf("unexpected input %+v", in)
		}
		if in.WorkingHours["monday"] != "08:00-20:00" {
			t.Fatalf("unexpected hours %v", in.WorkingHours)
		}
	}
}

func TestStoreUpsertValidatesBody(t *testing.T) {
	svc := &stubStoreService{}
	req := withActor(httptest.NewRequest(http.MethodPut, "/api/stores", strings.NewReader(`{"name":"","address":"x","latitude":120}`)), storeOwner())
	rec := httptest.NewRecorder()
	StoreUpsert(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestStoreBySlugMapsNotFound(t *testing.T) {
	svc := &stubStoreService{err: pkgerrors.New(pkgerrors.CodeNotFound, "store not found")}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/stores/corner-bakery", nil), "slug", "corner-bakery")
	rec := httptest.NewRecorder()
	StoreBySlug(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if svc.slug != "corner-bakery" {
		t.Fatalf("unexpected slug %q", svc.slug)
	}
}

func TestStoreDeleteReturnsNoContent(t *testing.T) {
	svc := &stubStoreService{}
	rec := httptest.NewRecorder()
	StoreDelete(svc, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodDelete, "/api/stores", nil), storeOwner()))
	if rec.Code != http.StatusNoContent || !svc.deleted {
		t.Fatalf("expected 204 and delete, got %d deleted=%v", rec.Code, svc.deleted)
	}
}

func TestStoreAddressAutocompleteSanitizes(t *testing.T) {
	svc := &stubStoreService{}
	req := httptest.NewRequest(http.MethodGet, "/api/stores/address/autocomplete?q=%20%20Lenina%2010%20%20", nil)
	rec := httptest.NewRecorder()
	StoreAddressAutocomplete(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.autoInput != "Lenina 10" {
		t.Fatalf("unexpected input %q", svc.autoInput)
	}
}
