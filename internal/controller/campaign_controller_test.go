package controller_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkandie/concierge-backend/internal/controller"
	"github.com/mkandie/concierge-backend/internal/dispatch"
	appErrors "github.com/mkandie/concierge-backend/internal/errors"
	"github.com/mkandie/concierge-backend/internal/guard"
	"github.com/mkandie/concierge-backend/internal/model"
	"github.com/mkandie/concierge-backend/internal/repository"
	"github.com/mkandie/concierge-backend/internal/scheduler"
	"github.com/mkandie/concierge-backend/internal/service"
)

// mockStore is a minimal in-memory CampaignStoreInterface for handler tests.
type mockStore struct {
	order []string
	items map[string]*model.Campaign
}

func newMockStore() *mockStore {
	return &mockStore{items: make(map[string]*model.Campaign)}
}

func (m *mockStore) Upsert(ctx context.Context, p model.CampaignPayload) (bool, *model.Campaign, error) {
	if p.ID != nil {
		if c, ok := m.items[*p.ID]; ok {
			repository.MergePayload(c, p)
			c.Version++
			cp := *c
			return false, &cp, nil
		}
	}
	c := &model.Campaign{
		ID:        fmt.Sprintf("c-%d", len(m.order)+1),
		Status:    model.StatusDraft,
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
	repository.MergePayload(c, p)
	m.items[c.ID] = c
	m.order = append(m.order, c.ID)
	cp := *c
	return true, &cp, nil
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) List(ctx context.Context) ([]*model.Campaign, error) {
	out := make([]*model.Campaign, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		cp := *m.items[m.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockStore) Save(ctx context.Context, c *model.Campaign) error {
	existing, ok := m.items[c.ID]
	if !ok {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	if existing.Version != c.Version {
		return appErrors.NewConflict(c.ID)
	}
	cp := *c
	cp.Version++
	m.items[c.ID] = &cp
	c.Version++
	return nil
}

var _ repository.CampaignStoreInterface = (*mockStore)(nil)

type okSender struct{}

func (okSender) Send(ctx context.Context, message, audience json.RawMessage) (model.DeliveryOutcome, error) {
	return model.DeliveryOutcome{Delivered: true, RecipientCount: 3}, nil
}

func newTestRouter(store *mockStore) *chi.Mux {
	svc := service.NewCampaignService(
		store,
		guard.NewLocalGuard(30*time.Second),
		dispatch.New(store, okSender{}),
		scheduler.NewEvaluator(nil),
	)
	c := &controller.CampaignController{CampaignService: svc}

	r := chi.NewRouter()
	r.Post("/campaigns", c.UpsertCampaign)
	r.Get("/campaigns", c.ListCampaigns)
	r.Get("/campaigns/{id}", c.GetCampaign)
	r.Post("/campaigns/run", c.RunDueCampaigns)
	r.Post("/campaigns/{id}/deliver", c.DeliverCampaign)
	return r
}

func TestUpsertCampaignHandler(t *testing.T) {
	r := newTestRouter(newMockStore())

	body := `{"status":"active","message":{"title":"launch"}}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		Created bool            `json:"created"`
		Item    *model.Campaign `json:"item"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Created {
		t.Error("expected created=true")
	}
	if res.Item == nil || res.Item.Status != model.StatusActive {
		t.Errorf("item = %+v, want active campaign", res.Item)
	}
}

func TestUpsertCampaignHandlerRejectsBadStatus(t *testing.T) {
	r := newTestRouter(newMockStore())

	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(`{"status":"launched"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpsertCampaignHandlerRejectsBadJSON(t *testing.T) {
	r := newTestRouter(newMockStore())

	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpsertCampaignHandlerDeliverNow(t *testing.T) {
	r := newTestRouter(newMockStore())

	body := `{"status":"active","message":{"title":"launch"},"deliver_now":true}`
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		Delivery *model.RunSummary `json:"delivery"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Delivery == nil || res.Delivery.Delivered != 1 {
		t.Errorf("delivery = %+v, want delivered=1", res.Delivery)
	}
}

func TestGetCampaignHandlerNotFound(t *testing.T) {
	r := newTestRouter(newMockStore())

	req := httptest.NewRequest(http.MethodGet, "/campaigns/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeliverCampaignHandlerNotFound(t *testing.T) {
	r := newTestRouter(newMockStore())

	req := httptest.NewRequest(http.MethodPost, "/campaigns/missing/deliver", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListCampaignsHandler(t *testing.T) {
	store := newMockStore()
	r := newTestRouter(store)

	active := model.StatusActive
	store.Upsert(context.Background(), model.CampaignPayload{Status: &active})

	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var res struct {
		Data []*model.Campaign `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Data) != 1 {
		t.Errorf("len(data) = %d, want 1", len(res.Data))
	}
}

func TestRunDueCampaignsHandler(t *testing.T) {
	store := newMockStore()
	r := newTestRouter(store)

	active := model.StatusActive
	store.Upsert(context.Background(), model.CampaignPayload{Status: &active})

	req := httptest.NewRequest(http.MethodPost, "/campaigns/run", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var summary model.RunSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Checked != 1 || summary.Delivered != 1 {
		t.Errorf("summary = %+v, want checked=1 delivered=1", summary)
	}
}

func TestDeliverCampaignHandlerForce(t *testing.T) {
	store := newMockStore()
	r := newTestRouter(store)

	active := model.StatusActive
	_, c, _ := store.Upsert(context.Background(), model.CampaignPayload{Status: &active})

	// Deliver once, completing the single-shot.
	req := httptest.NewRequest(http.MethodPost, "/campaigns/"+c.ID+"/deliver", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/campaigns/"+c.ID+"/deliver", strings.NewReader(`{"force":true}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var summary model.RunSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Delivered != 1 {
		t.Errorf("forced delivery summary = %+v, want delivered=1", summary)
	}
}
