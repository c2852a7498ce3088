package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moneysaver/internal/amqp"
	"moneysaver/internal/core"
	"moneysaver/internal/ledger"
)

type fakePublisher struct {
	published []*amqp.LedgerSavedMessage
	err       error
}

func (p *fakePublisher) PublishLedgerSaved(_ context.Context, msg *amqp.LedgerSavedMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func newTestServer(t *testing.T) (*Server, *ledger.Store, *fakePublisher) {
	t.Helper()
	store, err := ledger.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	pub := &fakePublisher{}
	srv := NewServer(":0", store, pub)
	t.Cleanup(func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return srv, store, pub
}

func seedLedger(t *testing.T, store *ledger.Store, name string, records []core.Record) {
	t.Helper()
	led, err := store.Create("tester", name)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", name, err)
	}
	for _, rec := range records {
		led.Insert(rec)
	}
	if err := store.Save(led); err != nil {
		t.Fatalf("Save(%q) error = %v", name, err)
	}
}

func record(date, category, amount string, flag core.Flag) core.Record {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Record{Date: d, Category: category, Amount: core.ParseAmount(amount), Flag: flag}
}

func doRequest(srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetLedger(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/ledgers", map[string]string{
		"author":    "marek",
		"file_name": "household",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}

	rec = doRequest(srv, http.MethodGet, "/ledgers/household", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	var got ledgerDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Author != "marek" || got.FileName != "household" {
		t.Errorf("got author=%q file_name=%q, want marek/household", got.Author, got.FileName)
	}
	if len(got.Records) != 0 {
		t.Errorf("new ledger has %d records, want 0", len(got.Records))
	}
}

func TestCreateLedgerValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/ledgers", map[string]string{"author": "  "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank fields status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	_ = doRequest(srv, http.MethodPost, "/ledgers", map[string]string{"author": "a", "file_name": "dup"})
	rec = doRequest(srv, http.MethodPost, "/ledgers", map[string]string{"author": "a", "file_name": "dup"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestCreateLedgerRejectsPathNames(t *testing.T) {
	srv, store, _ := newTestServer(t)

	for _, name := range []string{"../escaped", "..", "a/b", `a\b`} {
		rec := doRequest(srv, http.MethodPost, "/ledgers", map[string]string{
			"author": "attacker", "file_name": name,
		})
		if rec.Code == http.StatusCreated {
			t.Errorf("create %q status = %d, want an error status", name, rec.Code)
		}
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(store.Dir()), "escaped.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file escaped the ledger directory: stat error = %v", err)
	}
}

func TestGetLedgerNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/ledgers/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if !strings.Contains(rec.Body.String(), "does not exist") {
		t.Errorf("body %q should name the missing ledger", rec.Body.String())
	}
}

func TestAddRecord(t *testing.T) {
	srv, store, pub := newTestServer(t)
	seedLedger(t, store, "household", nil)

	rec := doRequest(srv, http.MethodPost, "/ledgers/household/records", map[string]string{
		"date":     "05.01.2024",
		"category": "Food",
		"amount":   "120.50",
		"flag":     "0",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}

	led, err := store.Load("household")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(led.Records) != 1 {
		t.Fatalf("ledger has %d records, want 1", len(led.Records))
	}
	if got := led.Records[0].Amount.String(); got != "120.50" {
		t.Errorf("amount = %q, want %q", got, "120.50")
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	if pub.published[0].Ledger != "household" || pub.published[0].Records != 1 {
		t.Errorf("message = %+v, want household/1", pub.published[0])
	}
}

func TestAddRecordForcesIncomeCategory(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedLedger(t, store, "household", nil)

	rec := doRequest(srv, http.MethodPost, "/ledgers/household/records", map[string]string{
		"date":   "05.01.2024",
		"amount": "30000",
		"flag":   "1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}

	led, err := store.Load("household")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := led.Records[0].Category; got != core.CategoryIncome {
		t.Errorf("category = %q, want %q", got, core.CategoryIncome)
	}
}

func TestAddRecordValidation(t *testing.T) {
	srv, store, pub := newTestServer(t)
	seedLedger(t, store, "household", nil)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"bad flag", map[string]string{"date": "05.01.2024", "category": "Food", "amount": "10", "flag": "2"}, http.StatusUnprocessableEntity},
		{"bad date", map[string]string{"date": "2024-01-05", "category": "Food", "amount": "10", "flag": "0"}, http.StatusUnprocessableEntity},
		{"bad amount", map[string]string{"date": "05.01.2024", "category": "Food", "amount": "abc", "flag": "0"}, http.StatusUnprocessableEntity},
		{"empty category", map[string]string{"date": "05.01.2024", "amount": "10", "flag": "0"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/ledgers/household/records", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	if len(pub.published) != 0 {
		t.Errorf("rejected records published %d messages, want 0", len(pub.published))
	}
}

func TestAddRecordToMissingLedger(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/ledgers/missing/records", map[string]string{
		"date": "05.01.2024", "category": "Food", "amount": "10", "flag": "0",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDailySeries(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedLedger(t, store, "household", []core.Record{
		record("02.01.2024", "Food", "200", core.FlagExpenditure),
		record("01.01.2024", "Fuel", "300", core.FlagExpenditure),
		record("01.01.2024", "Food", "100", core.FlagExpenditure),
		record("01.01.2024", core.CategoryIncome, "30000", core.FlagIncome),
	})

	rec := doRequest(srv, http.MethodGet, "/ledgers/household/series/daily", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	var resp struct {
		Category string `json:"category"`
		Series   []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Category != core.CategoryAll {
		t.Errorf("default category = %q, want %q", resp.Category, core.CategoryAll)
	}
	if len(resp.Series) != 2 {
		t.Fatalf("series has %d points, want 2: %+v", len(resp.Series), resp.Series)
	}
	if resp.Series[0].Key != "01.01" || resp.Series[0].Value != "400" {
		t.Errorf("first point = %+v, want 01.01/400", resp.Series[0])
	}

	rec = doRequest(srv, http.MethodGet, "/ledgers/household/series/daily?category=Fuel", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal filtered response: %v", err)
	}
	if len(resp.Series) != 1 || resp.Series[0].Value != "300" {
		t.Errorf("Fuel series = %+v, want one point of 300", resp.Series)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedLedger(t, store, "household", []core.Record{
		record("01.01.2024", "Food", "1000", core.FlagExpenditure),
		record("01.01.2024", core.CategoryIncome, "30000", core.FlagIncome),
	})

	rec := doRequest(srv, http.MethodGet, "/ledgers/household/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	body := rec.Body.String()
	for _, want := range []string{"1 000 Kč", "30 000 Kč"} {
		if !strings.Contains(body, want) {
			t.Errorf("summary %q missing %q", body, want)
		}
	}
}

func TestCacheInvalidatedOnWrite(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedLedger(t, store, "household", []core.Record{
		record("01.01.2024", "Food", "100", core.FlagExpenditure),
	})

	// Prime the cache.
	if rec := doRequest(srv, http.MethodGet, "/ledgers/household/series/categories", nil); rec.Code != http.StatusOK {
		t.Fatalf("prime status = %d: %s", rec.Code, rec.Body)
	}

	rec := doRequest(srv, http.MethodPost, "/ledgers/household/records", map[string]string{
		"date": "02.01.2024", "category": "Food", "amount": "50", "flag": "0",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d: %s", rec.Code, rec.Body)
	}

	rec = doRequest(srv, http.MethodGet, "/ledgers/household/series/categories", nil)
	var resp struct {
		Series []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Series) != 1 || resp.Series[0].Value != "150" {
		t.Errorf("series after write = %+v, want Food/150", resp.Series)
	}
}

func TestBalanceSeries(t *testing.T) {
	srv, store, _ := newTestServer(t)
	seedLedger(t, store, "household", []core.Record{
		record("10.01.2024", core.CategoryIncome, "20000", core.FlagIncome),
		record("15.01.2024", "Rent", "12000", core.FlagExpenditure),
		record("03.02.2024", "Food", "4000", core.FlagExpenditure),
	})

	rec := doRequest(srv, http.MethodGet, "/ledgers/household/series/balance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Series []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	want := map[string]string{"01": "8000", "02": "-4000"}
	if len(resp.Series) != len(want) {
		t.Fatalf("series has %d points, want %d: %+v", len(resp.Series), len(want), resp.Series)
	}
	for _, p := range resp.Series {
		if want[p.Key] != p.Value {
			t.Errorf("month %s = %s, want %s", p.Key, p.Value, want[p.Key])
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request 61 allowed, want denied")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other client denied, want allowed")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
