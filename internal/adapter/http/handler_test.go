package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/neomorfeo/rentiq/internal/adapter/fsm"
	adapter "github.com/neomorfeo/rentiq/internal/adapter/http"
	"github.com/neomorfeo/rentiq/internal/adapter/sqlite"
	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

var now = time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

// noopPublisher is a no-op EventPublisher for tests.
type noopPublisher struct{}

func (p *noopPublisher) Publish(_ context.Context, _ domain.Event, _ domain.RentContract) error {
	return nil
}

type testServer struct {
	*httptest.Server
	scans chan int
}

// newTestServer creates a full-stack httptest.Server with SQLite in-memory
// and a clock fixed at now.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	lifecycle := fsm.New()
	window := app.NewContractWindowQuery(repo)
	ts := &testServer{scans: make(chan int, 4)}

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("rentiq", "0.1.0"))
	adapter.Register(api, adapter.Services{
		Registry:  app.NewRegistryService(repo, repo, repo),
		Contracts: app.NewContractService(repo, repo, repo, window, &noopPublisher{}, lifecycle),
		Window:    window,
		Lifecycle: lifecycle,
		Scans: func(_ context.Context, months int) error {
			ts.scans <- months
			return nil
		},
		Clock: func() time.Time { return now },
	})

	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return ts
}

// doRequest performs an HTTP request with context (avoids noctx linter).
func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}

	return resp
}

// decode reads a JSON response into v, failing unless the status matches.
func decode(t *testing.T, resp *http.Response, wantStatus int, v any) {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d: %s", resp.StatusCode, wantStatus, body)
	}
	if v == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	resp.Body.Close()
	if resp.StatusCode != want {
		t.Errorf("status = %d, want %d", resp.StatusCode, want)
	}
}

type world struct {
	portfolio adapter.PortfolioResponse
	property  adapter.PropertyResponse
	tenant    adapter.PartyResponse
	landlord  adapter.PartyResponse
}

// seedWorld creates one portfolio, property, tenant and landlord through the API.
func seedWorld(t *testing.T, srv *testServer) world {
	t.Helper()

	var w world
	decode(t, doRequest(t, http.MethodPost, srv.URL+"/api/v1/portfolios", `{"name":"North"}`), http.StatusOK, &w.portfolio)
	w.property = mustCreateProperty(t, srv, w.portfolio.ID, "Elm 4")
	w.tenant = mustCreateParty(t, srv, "tenant", "Ada")
	w.landlord = mustCreateParty(t, srv, "landlord", "Bob")
	return w
}

func mustCreateProperty(t *testing.T, srv *testServer, portfolioID, name string) adapter.PropertyResponse {
	t.Helper()

	body := fmt.Sprintf(`{"portfolio_id":%q,"name":%q,"kind":"apartment","address":"Elm Street 4"}`, portfolioID, name)
	var p adapter.PropertyResponse
	decode(t, doRequest(t, http.MethodPost, srv.URL+"/api/v1/properties", body), http.StatusOK, &p)
	return p
}

func mustCreateParty(t *testing.T, srv *testServer, kind, name string) adapter.PartyResponse {
	t.Helper()

	body := fmt.Sprintf(`{"kind":%q,"name":%q}`, kind, name)
	var p adapter.PartyResponse
	decode(t, doRequest(t, http.MethodPost, srv.URL+"/api/v1/parties", body), http.StatusOK, &p)
	return p
}

// mustCreateContract opens a contract; an empty to means open-ended.
func mustCreateContract(t *testing.T, srv *testServer, w world, propertyID, tenantID, from, to string) adapter.ContractResponse {
	t.Helper()

	validTo := ""
	if to != "" {
		validTo = fmt.Sprintf(`,"valid_to":%q`, to)
	}
	body := fmt.Sprintf(`{"property_id":%q,"tenant_id":%q,"landlord_id":%q,"valid_from":%q%s}`,
		propertyID, tenantID, w.landlord.ID, from, validTo)

	var c adapter.ContractResponse
	decode(t, doRequest(t, http.MethodPost, srv.URL+"/api/v1/contracts", body), http.StatusOK, &c)
	return c
}

func contractIDs(contracts []adapter.ContractResponse) []string {
	ids := make([]string, len(contracts))
	for i, c := range contracts {
		ids[i] = c.ID
	}
	return ids
}

func TestRegistryEndpoints(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	if w.property.PortfolioID != w.portfolio.ID {
		t.Errorf("PortfolioID = %q, want %q", w.property.PortfolioID, w.portfolio.ID)
	}

	var got adapter.PropertyResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/properties/"+w.property.ID, ""), http.StatusOK, &got)
	if diff := cmp.Diff(w.property, got); diff != "" {
		t.Errorf("property mismatch (-want +got):\n%s", diff)
	}

	var properties []adapter.PropertyResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/portfolios/"+w.portfolio.ID+"/properties", ""), http.StatusOK, &properties)
	if len(properties) != 1 {
		t.Errorf("got %d properties, want 1", len(properties))
	}

	var tenants []adapter.PartyResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/parties?kind=tenant", ""), http.StatusOK, &tenants)
	if len(tenants) != 1 || tenants[0].ID != w.tenant.ID {
		t.Errorf("tenants = %+v, want only %s", tenants, w.tenant.ID)
	}

	var portfolios []adapter.PortfolioResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/portfolios", ""), http.StatusOK, &portfolios)
	if len(portfolios) != 1 {
		t.Errorf("got %d portfolios, want 1", len(portfolios))
	}
}

func TestRegistryEndpoints_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown portfolio", http.MethodGet, "/api/v1/portfolios/" + string(domain.NewPortfolioID()), "", http.StatusNotFound},
		{"malformed portfolio id", http.MethodGet, "/api/v1/portfolios/nope", "", http.StatusUnprocessableEntity},
		{"unknown party", http.MethodGet, "/api/v1/parties/" + string(domain.NewPartyID()), "", http.StatusNotFound},
		{"unknown party kind", http.MethodGet, "/api/v1/parties?kind=guarantor", "", http.StatusUnprocessableEntity},
		{"property of unknown portfolio", http.MethodPost, "/api/v1/properties",
			fmt.Sprintf(`{"portfolio_id":%q,"name":"Elm","kind":"apartment"}`, domain.NewPortfolioID()), http.StatusNotFound},
		{"unknown property kind", http.MethodPost, "/api/v1/properties",
			fmt.Sprintf(`{"portfolio_id":%q,"name":"Elm","kind":"barn"}`, domain.NewPortfolioID()), http.StatusUnprocessableEntity},
		{"empty portfolio name", http.MethodPost, "/api/v1/portfolios", `{"name":""}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertStatus(t, doRequest(t, tt.method, srv.URL+tt.path, tt.body), tt.want)
		})
	}
}

func TestCreateContract(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	c := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2026-01-01T00:00:00Z", "2026-12-31T00:00:00Z")

	if c.PortfolioID != w.portfolio.ID {
		t.Errorf("PortfolioID = %q, want %q", c.PortfolioID, w.portfolio.ID)
	}
	if c.ValidTo == nil || *c.ValidTo != "2026-12-31T00:00:00Z" {
		t.Errorf("ValidTo = %v, want 2026-12-31T00:00:00Z", c.ValidTo)
	}
	if c.Status != "current" {
		t.Errorf("Status = %q, want %q", c.Status, "current")
	}
	if diff := cmp.Diff([]string{"archive"}, c.AvailableEvents); diff != "" {
		t.Errorf("AvailableEvents mismatch (-want +got):\n%s", diff)
	}

	var got adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/contracts/"+c.ID, ""), http.StatusOK, &got)
	if got.ID != c.ID {
		t.Errorf("ID = %q, want %q", got.ID, c.ID)
	}
}

func TestCreateContract_OpenEnded(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	c := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2026-01-01T00:00:00Z", "")
	if c.ValidTo != nil {
		t.Errorf("ValidTo = %q, want absent", *c.ValidTo)
	}
}

func TestCreateContract_Errors(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	body := func(property, tenant, landlord, to string) string {
		return fmt.Sprintf(`{"property_id":%q,"tenant_id":%q,"landlord_id":%q,"valid_from":"2026-06-01T00:00:00Z","valid_to":%q}`,
			property, tenant, landlord, to)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"ends before it starts", body(w.property.ID, w.tenant.ID, w.landlord.ID, "2026-05-01T00:00:00Z"), http.StatusUnprocessableEntity},
		{"tenant is a landlord", body(w.property.ID, w.landlord.ID, w.landlord.ID, "2026-12-01T00:00:00Z"), http.StatusUnprocessableEntity},
		{"unknown property", body(string(domain.NewPropertyID()), w.tenant.ID, w.landlord.ID, "2026-12-01T00:00:00Z"), http.StatusNotFound},
		{"unknown tenant", body(w.property.ID, string(domain.NewPartyID()), w.landlord.ID, "2026-12-01T00:00:00Z"), http.StatusNotFound},
		{"malformed property id", body("nope", w.tenant.ID, w.landlord.ID, "2026-12-01T00:00:00Z"), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertStatus(t, doRequest(t, http.MethodPost, srv.URL+"/api/v1/contracts", tt.body), tt.want)
		})
	}
}

func TestGetContract_NotFound(t *testing.T) {
	srv := newTestServer(t)

	assertStatus(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/contracts/"+string(domain.NewContractID()), ""), http.StatusNotFound)
}

func TestTransitionContract(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	c := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2026-01-01T00:00:00Z", "")
	url := srv.URL + "/api/v1/contracts/" + c.ID + "/events"

	var archived adapter.ContractResponse
	decode(t, doRequest(t, http.MethodPost, url, `{"event":"archive"}`), http.StatusOK, &archived)
	if archived.Status != "archived" {
		t.Errorf("Status = %q, want %q", archived.Status, "archived")
	}
	if diff := cmp.Diff([]string{"restore"}, archived.AvailableEvents); diff != "" {
		t.Errorf("AvailableEvents mismatch (-want +got):\n%s", diff)
	}

	assertStatus(t, doRequest(t, http.MethodPost, url, `{"event":"archive"}`), http.StatusUnprocessableEntity)

	var restored adapter.ContractResponse
	decode(t, doRequest(t, http.MethodPost, url, `{"event":"restore"}`), http.StatusOK, &restored)
	if restored.Status != "current" {
		t.Errorf("Status = %q, want %q", restored.Status, "current")
	}
}

func TestPropertyWindows(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	past := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2025-01-01T00:00:00Z", "2025-12-31T00:00:00Z")
	active := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2026-01-01T00:00:00Z", "2026-08-31T00:00:00Z")
	future := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2026-09-01T00:00:00Z", "")

	base := srv.URL + "/api/v1/properties/" + w.property.ID + "/contracts"
	tests := []struct {
		query string
		want  []string
	}{
		{"?window=active", []string{active.ID, future.ID}},
		{"?window=past", []string{past.ID}},
		{"?window=future", []string{future.ID}},
		{"?window=active&at=2026-09-02T00:00:00Z", []string{future.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []adapter.ContractResponse
			decode(t, doRequest(t, http.MethodGet, base+tt.query, ""), http.StatusOK, &got)
			if diff := cmp.Diff(tt.want, contractIDs(got)); diff != "" {
				t.Errorf("contracts mismatch (-want +got):\n%s", diff)
			}
		})
	}

	var all []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, base, ""), http.StatusOK, &all)
	if len(all) != 3 {
		t.Errorf("got %d contracts, want 3", len(all))
	}

	var latest adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, base+"/latest", ""), http.StatusOK, &latest)
	if latest.ID != active.ID {
		t.Errorf("latest = %q, want latest dated end %q", latest.ID, active.ID)
	}

	var count struct {
		Count int `json:"count"`
	}
	decode(t, doRequest(t, http.MethodGet, base+"/count", ""), http.StatusOK, &count)
	if count.Count != 2 {
		t.Errorf("count = %d, want 2", count.Count)
	}
}

func TestContractWindowFlags(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	past := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2025-01-01T00:00:00Z", "2025-12-31T00:00:00Z")
	active := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2026-01-01T00:00:00Z", "2026-08-31T00:00:00Z")
	future := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2026-09-01T00:00:00Z", "")

	type flags struct{ Active, Past, Future bool }
	base := srv.URL + "/api/v1/properties/" + w.property.ID + "/contracts"

	var all []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, base, ""), http.StatusOK, &all)
	got := map[string]flags{}
	for _, c := range all {
		got[c.ID] = flags{c.Active, c.Past, c.Future}
	}
	want := map[string]flags{
		past.ID:   {Past: true},
		active.ID: {Active: true},
		future.ID: {Future: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flags at clock time mismatch (-want +got):\n%s", diff)
	}

	var later []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, base+"?window=active&at=2026-09-02T00:00:00Z", ""), http.StatusOK, &later)
	if len(later) != 1 || !later[0].Active || later[0].Future {
		t.Errorf("flags at reference time = %+v, want the open-ended contract active", later)
	}

	var fetched adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/contracts/"+past.ID, ""), http.StatusOK, &fetched)
	if !fetched.Past || fetched.Active {
		t.Errorf("get contract flags = active:%v past:%v, want past only", fetched.Active, fetched.Past)
	}
}

func TestPropertyWindows_InvalidReferenceTime(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	url := srv.URL + "/api/v1/properties/" + w.property.ID + "/contracts?window=active&at=yesterday"
	assertStatus(t, doRequest(t, http.MethodGet, url, ""), http.StatusUnprocessableEntity)
}

func TestLatestContract_NotFound(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	url := srv.URL + "/api/v1/properties/" + w.property.ID + "/contracts/latest"
	assertStatus(t, doRequest(t, http.MethodGet, url, ""), http.StatusNotFound)
}

func TestEndingContracts(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	other := mustCreateProperty(t, srv, w.portfolio.ID, "Oak 7")

	soon := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2026-01-01T00:00:00Z", "2026-08-01T00:00:00Z")
	later := mustCreateContract(t, srv, w, other.ID, w.tenant.ID, "2026-01-01T00:00:00Z", "2026-10-01T00:00:00Z")
	mustCreateContract(t, srv, w, other.ID, w.tenant.ID, "2026-01-01T00:00:00Z", "")

	base := srv.URL + "/api/v1/contracts?window=ending&property=" + w.property.ID + "," + other.ID

	var three []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, base, ""), http.StatusOK, &three)
	if diff := cmp.Diff([]string{soon.ID}, contractIDs(three)); diff != "" {
		t.Errorf("3 months mismatch (-want +got):\n%s", diff)
	}

	var five []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, base+"&months=5", ""), http.StatusOK, &five)
	if diff := cmp.Diff([]string{soon.ID, later.ID}, contractIDs(five), cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("5 months mismatch (-want +got):\n%s", diff)
	}
}

func TestPartyAndPortfolioQueries(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	other := mustCreateParty(t, srv, "tenant", "Cleo")

	old := mustCreateContract(t, srv, w, w.property.ID, w.tenant.ID, "2025-01-01T00:00:00Z", "2025-12-31T00:00:00Z")
	current := mustCreateContract(t, srv, w, w.property.ID, other.ID, "2026-01-01T00:00:00Z", "")

	var byTenant []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/"+w.tenant.ID+"/contracts", ""), http.StatusOK, &byTenant)
	if diff := cmp.Diff([]string{old.ID}, contractIDs(byTenant)); diff != "" {
		t.Errorf("by tenant mismatch (-want +got):\n%s", diff)
	}

	var activeByTenant []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/"+w.tenant.ID+"/contracts?active=true", ""), http.StatusOK, &activeByTenant)
	if len(activeByTenant) != 0 {
		t.Errorf("got %d active contracts for a former tenant, want 0", len(activeByTenant))
	}

	var byLandlord []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/landlords/"+w.landlord.ID+"/contracts", ""), http.StatusOK, &byLandlord)
	if len(byLandlord) != 2 {
		t.Errorf("got %d landlord contracts, want 2", len(byLandlord))
	}

	var allActive []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/contracts/active", ""), http.StatusOK, &allActive)
	if diff := cmp.Diff([]string{current.ID}, contractIDs(allActive)); diff != "" {
		t.Errorf("all active mismatch (-want +got):\n%s", diff)
	}

	var byPortfolio []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/contracts/by-portfolio?portfolio="+w.portfolio.ID, ""), http.StatusOK, &byPortfolio)
	if len(byPortfolio) != 2 {
		t.Errorf("got %d portfolio contracts, want 2", len(byPortfolio))
	}

	var tenantIDs struct {
		TenantIDs []string `json:"tenant_ids"`
	}
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenant-ids?current=true&property="+w.property.ID, ""), http.StatusOK, &tenantIDs)
	if diff := cmp.Diff([]string{other.ID}, tenantIDs.TenantIDs); diff != "" {
		t.Errorf("current tenant ids mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyPropertySet(t *testing.T) {
	srv := newTestServer(t)

	var got []adapter.ContractResponse
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/contracts?window=active", ""), http.StatusOK, &got)
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want an empty list", got)
	}

	var tenantIDs struct {
		TenantIDs []string `json:"tenant_ids"`
	}
	decode(t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenant-ids", ""), http.StatusOK, &tenantIDs)
	if tenantIDs.TenantIDs == nil || len(tenantIDs.TenantIDs) != 0 {
		t.Errorf("got %v, want an empty list", tenantIDs.TenantIDs)
	}
}

func TestScheduleScan(t *testing.T) {
	srv := newTestServer(t)

	assertStatus(t, doRequest(t, http.MethodPost, srv.URL+"/api/v1/scans/ending", `{"months":4}`), http.StatusAccepted)
	select {
	case months := <-srv.scans:
		if months != 4 {
			t.Errorf("scheduled months = %d, want 4", months)
		}
	default:
		t.Error("no scan scheduled")
	}

	assertStatus(t, doRequest(t, http.MethodPost, srv.URL+"/api/v1/scans/ending", `{"months":0}`), http.StatusUnprocessableEntity)
}
