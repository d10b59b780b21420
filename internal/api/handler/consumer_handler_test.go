package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

type stubConsumerService struct {
	created   *domain.Consumer
	listInput ports.ListConsumersInput
	listRes   *ports.ListConsumersResult
	patch     domain.ConsumerPatch
}

func (s *stubConsumerService) Create(_ context.Context, c *domain.Consumer) (*domain.Consumer, error) {
	s.created = c
	out := *c
	out.ID = "65f1c2a9e4b0a1b2c3d4e5f6"
	return &out, nil
}

func (s *stubConsumerService) Get(_ context.Context, id string) (*domain.Consumer, error) {
	return nil, domain.ErrConsumerNotFound
}

func (s *stubConsumerService) List(_ context.Context, in ports.ListConsumersInput) (*ports.ListConsumersResult, error) {
	s.listInput = in
	return s.listRes, nil
}

func (s *stubConsumerService) Update(_ context.Context, id string, p domain.ConsumerPatch) (*domain.Consumer, error) {
	s.patch = p
	return &domain.Consumer{ID: id}, nil
}

func (s *stubConsumerService) Delete(_ context.Context, id string) error { return nil }

const consumerBody = `{
	"householdId": "HH-0001",
	"householdHead": "65f1c2a9e4b0a1b2c3d4e5f1",
	"address": {"gewog": "65f1c2a9e4b0a1b2c3d4e5f2", "village": "Jangsa", "houseNumber": "12"},
	"familySize": 4,
	"connectionType": "domestic",
	"meterNumber": "MTR-001",
	"connectionDate": "2024-01-15T00:00:00Z",
	"status": "active",
	"tariffCategory": "lifeline"
}`

func TestConsumerHandler_Create(t *testing.T) {
	e := newTestEcho()
	svc := &stubConsumerService{}
	h := NewConsumerHandler(svc)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/consumer", consumerBody), rec)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	got := svc.created
	if got.HouseholdHeadID != "65f1c2a9e4b0a1b2c3d4e5f1" || got.Address.GewogID != "65f1c2a9e4b0a1b2c3d4e5f2" {
		t.Fatalf("references not mapped: %+v", got)
	}
	if !got.ConnectionDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected connection date: %v", got.ConnectionDate)
	}
	if got.TariffCategory != domain.TariffLifeline || got.FamilySize != 4 {
		t.Fatalf("unexpected consumer: %+v", got)
	}
}

func TestConsumerHandler_Create_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad status":      `{"householdId":"H","householdHead":"65f1c2a9e4b0a1b2c3d4e5f1","address":{"gewog":"65f1c2a9e4b0a1b2c3d4e5f2","village":"V","houseNumber":"1"},"familySize":1,"connectionType":"domestic","meterNumber":"M","connectionDate":"2024-01-15T00:00:00Z","status":"pending","tariffCategory":"lifeline"}`,
		"missing village": `{"householdId":"H","householdHead":"65f1c2a9e4b0a1b2c3d4e5f1","address":{"gewog":"65f1c2a9e4b0a1b2c3d4e5f2","houseNumber":"1"},"familySize":1,"connectionType":"domestic","meterNumber":"M","connectionDate":"2024-01-15T00:00:00Z","status":"active","tariffCategory":"lifeline"}`,
		"bad gewog id":    `{"householdId":"H","householdHead":"65f1c2a9e4b0a1b2c3d4e5f1","address":{"gewog":"thimphu","village":"V","houseNumber":"1"},"familySize":1,"connectionType":"domestic","meterNumber":"M","connectionDate":"2024-01-15T00:00:00Z","status":"active","tariffCategory":"lifeline"}`,
		"zero family":     `{"householdId":"H","householdHead":"65f1c2a9e4b0a1b2c3d4e5f1","address":{"gewog":"65f1c2a9e4b0a1b2c3d4e5f2","village":"V","houseNumber":"1"},"familySize":0,"connectionType":"domestic","meterNumber":"M","connectionDate":"2024-01-15T00:00:00Z","status":"active","tariffCategory":"lifeline"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			svc := &stubConsumerService{}
			e := newTestEcho()
			c := e.NewContext(jsonRequest(http.MethodPost, "/", body), httptest.NewRecorder())
			if got := httpStatus(NewConsumerHandler(svc).Create(c)); got != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", got)
			}
			if svc.created != nil {
				t.Fatalf("service must not be called")
			}
		})
	}
}

func TestConsumerHandler_List(t *testing.T) {
	e := newTestEcho()
	svc := &stubConsumerService{listRes: &ports.ListConsumersResult{
		Items:      []*domain.Consumer{{ID: "c1"}, {ID: "c2"}},
		Total:      12,
		Page:       2,
		Limit:      5,
		TotalPages: 3,
	}}
	h := NewConsumerHandler(svc)

	target := "/api/v1/consumer?page=2&limit=5&search=pema&status=active&sortBy=meterNumber&order=asc"
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	in := svc.listInput
	if in.Page != 2 || in.Limit != 5 || in.Search != "pema" || in.Status != "active" || in.SortBy != "meterNumber" || in.Order != "asc" {
		t.Fatalf("query not forwarded: %+v", in)
	}

	var resp listConsumersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 2 || resp.Meta != (pageMeta{Total: 12, Page: 2, Limit: 5, TotalPages: 3}) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestConsumerHandler_List_BadQuery(t *testing.T) {
	e := newTestEcho()
	h := NewConsumerHandler(&stubConsumerService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?page=two", nil), httptest.NewRecorder())
	if got := httpStatus(h.List(c)); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?order=sideways", nil), httptest.NewRecorder())
	if got := httpStatus(h.List(c)); got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", got)
	}
}

func TestConsumerHandler_UpdateMapsNestedAddress(t *testing.T) {
	e := newTestEcho()
	svc := &stubConsumerService{}
	h := NewConsumerHandler(svc)

	c := e.NewContext(jsonRequest(http.MethodPatch, "/", `{"address":{"village":"Dechencholing"},"status":"suspended"}`), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("65f1c2a9e4b0a1b2c3d4e5f6")
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if svc.patch.Village == nil || *svc.patch.Village != "Dechencholing" || svc.patch.GewogID != nil {
		t.Fatalf("address not mapped: %+v", svc.patch)
	}
	if svc.patch.Status == nil || *svc.patch.Status != domain.ConsumerSuspended {
		t.Fatalf("status not mapped: %+v", svc.patch)
	}
}

func TestPathID_RejectsMalformedIDs(t *testing.T) {
	e := newTestEcho()
	h := NewConsumerHandler(&stubConsumerService{})

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("123")
	if got := httpStatus(h.Delete(c)); got != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got)
	}
}
