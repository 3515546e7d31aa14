package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

type serviceFixture struct {
	store     *mockStore
	publisher *mockPublisher
	svc       *app.ContractService

	property domain.Property
	tenant   domain.Party
	landlord domain.Party
}

func newServiceFixture() *serviceFixture {
	store := newMockStore()
	pub := &mockPublisher{}
	svc := app.NewContractService(store, store, store, app.NewContractWindowQuery(store), pub, tableValidator{})

	portfolio := domain.NewPortfolio(domain.NewPortfolioID(), "North")
	property := domain.NewProperty(domain.NewPropertyID(), portfolio.ID, "Elm 4", domain.PropertyApartment, "Elm Street 4")
	tenant := domain.NewParty(domain.NewPartyID(), domain.PartyTenant, "Ada", "ada@example.com")
	landlord := domain.NewParty(domain.NewPartyID(), domain.PartyLandlord, "Bob", "bob@example.com")
	store.portfolios[portfolio.ID] = portfolio
	store.properties[property.ID] = property
	store.parties[tenant.ID] = tenant
	store.parties[landlord.ID] = landlord

	return &serviceFixture{store: store, publisher: pub, svc: svc, property: property, tenant: tenant, landlord: landlord}
}

func (f *serviceFixture) input() app.CreateContractInput {
	return app.CreateContractInput{
		PropertyID: f.property.ID,
		TenantID:   f.tenant.ID,
		LandlordID: f.landlord.ID,
		Validity:   domain.Validity{From: months(-1), To: at(months(11))},
	}
}

func TestCreate(t *testing.T) {
	f := newServiceFixture()

	c, err := f.svc.Create(context.Background(), f.input())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.PortfolioID != f.property.PortfolioID {
		t.Errorf("portfolio = %q, want %q", c.PortfolioID, f.property.PortfolioID)
	}
	if c.Status() != domain.StatusCurrent {
		t.Errorf("status = %q, want %q", c.Status(), domain.StatusCurrent)
	}
	if _, ok := f.store.contracts[c.ID]; !ok {
		t.Error("contract not persisted")
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].event != domain.EventCreated {
		t.Errorf("published events = %+v, want one %q", f.publisher.events, domain.EventCreated)
	}
}

func TestCreate_OpenEnded(t *testing.T) {
	f := newServiceFixture()
	in := f.input()
	in.Validity.To = nil

	c, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ValidTo != nil {
		t.Errorf("ValidTo = %v, want nil", c.ValidTo)
	}
}

func TestCreate_InvalidValidity(t *testing.T) {
	f := newServiceFixture()
	in := f.input()
	in.Validity = domain.Validity{From: months(2), To: at(months(1))}

	_, err := f.svc.Create(context.Background(), in)
	var vErr *domain.ValidityError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidityError, got %v", err)
	}
	if len(f.store.contracts) != 0 {
		t.Error("contract should not be persisted")
	}
}

func TestCreate_PartyKindMismatch(t *testing.T) {
	f := newServiceFixture()
	in := f.input()
	in.TenantID, in.LandlordID = f.landlord.ID, f.tenant.ID

	_, err := f.svc.Create(context.Background(), in)
	var kErr *domain.PartyKindError
	if !errors.As(err, &kErr) {
		t.Fatalf("expected PartyKindError, got %v", err)
	}
	if kErr.Want != domain.PartyTenant {
		t.Errorf("Want = %q, want %q", kErr.Want, domain.PartyTenant)
	}
}

func TestCreate_PropertyNotFound(t *testing.T) {
	f := newServiceFixture()
	in := f.input()
	in.PropertyID = domain.NewPropertyID()

	_, err := f.svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Errorf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestCreate_PartyNotFound(t *testing.T) {
	f := newServiceFixture()
	in := f.input()
	in.LandlordID = domain.NewPartyID()

	_, err := f.svc.Create(context.Background(), in)
	if !errors.Is(err, domain.ErrPartyNotFound) {
		t.Errorf("expected ErrPartyNotFound, got %v", err)
	}
}

func TestCreate_MalformedID(t *testing.T) {
	f := newServiceFixture()
	in := f.input()
	in.TenantID = "tenant-1"

	_, err := f.svc.Create(context.Background(), in)
	var pErr *domain.PreconditionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if pErr.Argument != "tenant id" {
		t.Errorf("Argument = %q, want %q", pErr.Argument, "tenant id")
	}
}

func TestGet_NotFound(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Get(context.Background(), domain.NewContractID())
	if !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
}

func TestTransition_ArchiveAndRestore(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	archived, err := f.svc.Transition(ctx, c.ID, domain.EventArchive)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !archived.Archived || archived.Status() != domain.StatusArchived {
		t.Errorf("after archive: archived=%v status=%q", archived.Archived, archived.Status())
	}
	if !f.store.contracts[c.ID].Archived {
		t.Error("archive not persisted")
	}

	restored, err := f.svc.Transition(ctx, c.ID, domain.EventRestore)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Archived {
		t.Error("restored contract is still archived")
	}

	want := []domain.Event{domain.EventCreated, domain.EventArchive, domain.EventRestore}
	if len(f.publisher.events) != len(want) {
		t.Fatalf("published %d events, want %d", len(f.publisher.events), len(want))
	}
	for i, e := range want {
		if f.publisher.events[i].event != e {
			t.Errorf("event[%d] = %q, want %q", i, f.publisher.events[i].event, e)
		}
	}
}

func TestTransition_Invalid(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = f.svc.Transition(ctx, c.ID, domain.EventRestore)
	var tErr *domain.TransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if tErr.Current != domain.StatusCurrent {
		t.Errorf("Current = %q, want %q", tErr.Current, domain.StatusCurrent)
	}
	if len(f.publisher.events) != 1 {
		t.Errorf("published %d events, want only the creation event", len(f.publisher.events))
	}
}

func TestTransition_NotFound(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Transition(context.Background(), domain.NewContractID(), domain.EventArchive)
	if !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
}

func TestScanEnding(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	in := f.input()
	in.Validity = domain.Validity{From: months(-6), To: at(months(2))}
	ending, err := f.svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	in.Validity = domain.Validity{From: months(-6), To: at(months(8))}
	if _, err := f.svc.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := f.svc.ScanEnding(ctx, now, app.DefaultEndingMonths)
	if err != nil {
		t.Fatalf("ScanEnding: %v", err)
	}
	assertIDs(t, got, ending)
}

func TestScanEnding_NoProperties(t *testing.T) {
	store := newMockStore()
	svc := app.NewContractService(store, store, store, app.NewContractWindowQuery(store), &mockPublisher{}, tableValidator{})

	got, err := svc.ScanEnding(context.Background(), now, 3)
	if err != nil {
		t.Fatalf("ScanEnding: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d contracts, want 0", len(got))
	}
	if store.queries != 0 {
		t.Errorf("executor called %d times, want 0", store.queries)
	}
}
