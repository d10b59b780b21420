package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

type consumerFixture struct {
	svc       *ConsumerService
	consumers *stubConsumerRepo
	audit     *stubAudit
	gewogID   string
	headID    string
}

func newConsumerFixture(t *testing.T) consumerFixture {
	t.Helper()
	users := newStubUserRepo()
	users.put(&domain.Identity{ID: "head-1", Name: "Chimi", Phone: "+97517000009", CID: "10000000009", Role: domain.RoleConsumer})
	gewogs := newStubGewogRepo()
	g, _ := gewogs.Create(context.Background(), &domain.Gewog{Name: "Lango", DzongkhagID: "dz-1"})

	consumers := newStubConsumerRepo()
	audit := &stubAudit{}
	return consumerFixture{
		svc:       NewConsumerService(consumers, users, gewogs, audit, zerolog.Nop()),
		consumers: consumers,
		audit:     audit,
		gewogID:   g.ID,
		headID:    "head-1",
	}
}

func (f consumerFixture) validConsumer() *domain.Consumer {
	return &domain.Consumer{
		HouseholdID:     "HH-0001",
		HouseholdHeadID: f.headID,
		Address: domain.ConsumerAddress{
			GewogID:     f.gewogID,
			Village:     "Jangsa",
			HouseNumber: "12",
		},
		FamilySize:     4,
		ConnectionType: domain.ConnectionDomestic,
		MeterNumber:    "MTR-001",
		ConnectionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:         domain.ConsumerActive,
		TariffCategory: domain.TariffLifeline,
	}
}

func TestConsumerService_Create(t *testing.T) {
	f := newConsumerFixture(t)

	c, err := f.svc.Create(context.Background(), f.validConsumer())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Fatalf("expected stored consumer with timestamps, got %+v", c)
	}
	if f.audit.last().Entity != entityConsumer || f.audit.last().Action != domain.AuditCreate {
		t.Fatalf("unexpected audit entry: %+v", f.audit.last())
	}
}

func TestConsumerService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *domain.Consumer)
	}{
		{"missing household id", func(c *domain.Consumer) { c.HouseholdID = " " }},
		{"missing village", func(c *domain.Consumer) { c.Address.Village = "" }},
		{"zero family size", func(c *domain.Consumer) { c.FamilySize = 0 }},
		{"missing connection date", func(c *domain.Consumer) { c.ConnectionDate = time.Time{} }},
		{"bad connection type", func(c *domain.Consumer) { c.ConnectionType = "residential" }},
		{"bad status", func(c *domain.Consumer) { c.Status = "pending" }},
		{"bad tariff", func(c *domain.Consumer) { c.TariffCategory = "premium" }},
		{"unknown household head", func(c *domain.Consumer) { c.HouseholdHeadID = "ghost" }},
		{"unknown gewog", func(c *domain.Consumer) { c.Address.GewogID = "gw-404" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newConsumerFixture(t)
			c := f.validConsumer()
			tc.mutate(c)
			if _, err := f.svc.Create(context.Background(), c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(f.consumers.items) != 0 {
				t.Fatalf("expected nothing stored")
			}
		})
	}
}

func TestConsumerService_List_Normalisation(t *testing.T) {
	tests := []struct {
		name      string
		in        ports.ListConsumersInput
		total     int64
		wantPage  int
		wantLimit int
		wantSort  string
		wantAsc   bool
		wantPages int
	}{
		{"defaults", ports.ListConsumersInput{}, 0, 1, 10, "createdAt", false, 0},
		{"explicit page", ports.ListConsumersInput{Page: 3, Limit: 20, SortBy: "meterNumber", Order: "asc"}, 45, 3, 20, "meterNumber", true, 3},
		{"limit capped", ports.ListConsumersInput{Limit: 1000}, 250, 1, 100, "createdAt", false, 3},
		{"negative page", ports.ListConsumersInput{Page: -2, Limit: 10}, 10, 1, 10, "createdAt", false, 1},
		{"unknown sort field", ports.ListConsumersInput{SortBy: "password", Order: "ASC"}, 11, 1, 10, "createdAt", true, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newConsumerFixture(t)
			f.consumers.total = tc.total

			res, err := f.svc.List(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			got := f.consumers.lastFilter
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit || got.SortBy != tc.wantSort || got.Ascending != tc.wantAsc {
				t.Fatalf("unexpected filter: %+v", got)
			}
			if res.Page != tc.wantPage || res.Limit != tc.wantLimit || res.Total != tc.total || res.TotalPages != tc.wantPages {
				t.Fatalf("unexpected meta: %+v", res)
			}
		})
	}
}

func TestConsumerService_List_Filters(t *testing.T) {
	f := newConsumerFixture(t)

	if _, err := f.svc.List(context.Background(), ports.ListConsumersInput{Status: "gone"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad status filter, got %v", err)
	}
	if _, err := f.svc.List(context.Background(), ports.ListConsumersInput{TariffCategory: "vip"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad tariff filter, got %v", err)
	}

	_, err := f.svc.List(context.Background(), ports.ListConsumersInput{
		GewogID: f.gewogID, Status: "active", TariffCategory: "lifeline", Search: "  chimi ",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := f.consumers.lastFilter
	if got.GewogID != f.gewogID || got.Status != "active" || got.TariffCategory != "lifeline" || got.Search != "chimi" {
		t.Fatalf("filters not forwarded: %+v", got)
	}
}

func TestConsumerService_UpdateAndDelete(t *testing.T) {
	f := newConsumerFixture(t)
	ctx := context.Background()
	c, _ := f.svc.Create(ctx, f.validConsumer())

	status := domain.ConsumerSuspended
	updated, err := f.svc.Update(ctx, c.ID, domain.ConsumerPatch{Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != domain.ConsumerSuspended {
		t.Fatalf("expected suspended, got %s", updated.Status)
	}

	zero := 0
	if _, err := f.svc.Update(ctx, c.ID, domain.ConsumerPatch{FamilySize: &zero}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Update(ctx, c.ID, domain.ConsumerPatch{GewogID: strPtr("gw-404")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown gewog, got %v", err)
	}

	if err := f.svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if f.audit.count() != 3 {
		t.Fatalf("expected create, update and delete audit entries, got %d", f.audit.count())
	}
}
