package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/fooddiscount-backend/internal/access"
	"github.com/angelmondragon/fooddiscount-backend/internal/accounts"
	"github.com/angelmondragon/fooddiscount-backend/internal/admin"
	"github.com/angelmondragon/fooddiscount-backend/internal/stores"
	"github.com/angelmondragon/fooddiscount-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/pagination"
)

type stubAdminService struct {
	admin.Service
	params    pagination.Params
	storeID   uuid.UUID
	accountID uuid.UUID
	input     stores.UpsertInput
	err       error
}

func (s *stubAdminService) Statistics(ctx context.Context, actor access.Actor) (*admin.Statistics, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &admin.Statistics{TotalCustomers: 4, TotalStores: 2, TotalProducts: 9, PickedUpProducts: 3}, nil
}

func (s *stubAdminService) ListStores(ctx context.Context, actor access.Actor, params pagination.Params) (*admin.StoreList, error) {
	s.params = params
	return &admin.StoreList{Stores: []stores.StoreDTO{}}, s.err
}

func (s *stubAdminService) UpdateStore(ctx context.Context, actor access.Actor, storeID uuid.UUID, input stores.UpsertInput) (*stores.StoreDTO, error) {
	s.storeID = storeID
	s.input = input
	return &stores.StoreDTO{ID: storeID, Name: input.Name}, s.err
}

func (s *stubAdminService) ToggleStatus(ctx context.Context, actor access.Actor, accountID uuid.UUID) (*accounts.AccountDTO, error) {
	s.accountID = accountID
	if s.err != nil {
		return nil, s.err
	}
	return &accounts.AccountDTO{ID: accountID, IsActive: false}, nil
}

func adminActor() access.Actor {
	return access.Actor{AccountID: uuid.New(), Role: enums.AccountRoleAdmin}
}

func TestAdminStatistics(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminStatistics(&stubAdminService{}, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodGet, "/api/admin/statistics", nil), adminActor()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var stats admin.Statistics
	decodeData(t, rec, &stats)
	if stats.TotalProducts != 9 || stats.PickedUpProducts != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestAdminListStoresPagination(t *testing.T) {
	svc := &stubAdminService{}
	req := withActor(httptest.NewRequest(http.MethodGet, "/api/admin/stores?limit=5&cursor=abc", nil), adminActor())
	rec := httptest.NewRecorder()
	AdminListStores(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.params.Limit != 5 || svc.params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", svc.params)
	}

	rec = httptest.NewRecorder()
	AdminListStores(svc, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodGet, "/api/admin/stores?limit=0", nil), adminActor()))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit=0, got %d", rec.Code)
	}
}

func TestAdminUpdateStore(t *testing.T) {
	svc := &stubAdminService{}
	id := uuid.New()
	req := withActor(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"name":"Renamed","address":"Main st 2"}`)), adminActor())
	req = withURLParam(req, "id", id.String())
	rec := httptest.NewRecorder()
	AdminUpdateStore(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.storeID != id || svc.input.Name != "Renamed" {
		t.Fatalf("unexpected update %s %+v", svc.storeID, svc.input)
	}
}

func TestAdminToggleStatusForbidden(t *testing.T) {
	svc := &stubAdminService{err: pkgerrors.New(pkgerrors.CodeForbidden, "cannot change admin status")}
	id := uuid.New()
	req := withURLParam(withActor(httptest.NewRequest(http.MethodPatch, "/", nil), adminActor()), "id", id.String())
	rec := httptest.NewRecorder()
	AdminToggleStatus(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cannot change admin status") {
		t.Fatalf("expected message in body: %s", rec.Body.String())
	}
	if svc.accountID != id {
		t.Fatalf("expected account %s got %s", id, svc.accountID)
	}
}
