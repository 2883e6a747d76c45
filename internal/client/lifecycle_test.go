package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/pcosta/go-intake-backend/internal/domain"
)

func TestCreate_SendsPayloadAndIdentity(t *testing.T) {
	var gotAgent, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/first-impressions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAgent = r.Header.Get(HeaderAgentID)
		gotKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.FirstImpression{
			ID: "fi-1", AgentID: "agent-1", ClientName: "Amigo de Maria", Status: domain.StatusDraft,
		})
	}))
	defer srv.Close()

	lc := New(srv.URL, "agent-1")
	area := 120.5
	rec, err := lc.CreateWithKey(context.Background(), Payload{
		ClientName: "Amigo de Maria",
		GrossArea:  &area,
	}, "draft-key-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != "fi-1" || rec.Status != domain.StatusDraft {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if gotAgent != "agent-1" || gotKey != "draft-key-1" {
		t.Fatalf("headers = (%q, %q)", gotAgent, gotKey)
	}
	// The numeric field travels as a number, not a string.
	if v, ok := gotBody["gross_area"].(float64); !ok || v != 120.5 {
		t.Fatalf("gross_area on the wire = %#v; want 120.5", gotBody["gross_area"])
	}
	if _, present := gotBody["status"]; present {
		t.Fatalf("payload must not carry a status field")
	}
}

func TestDo_ErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/first-impressions/v":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code":"validation_failed","message":"client name is required","fields":{"client_name":"required"}}`))
		case "/first-impressions/s/signature":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"code":"invalid_state","message":"status transition not allowed"}`))
		case "/first-impressions/m":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"not_found","message":"record not found"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	lc := New(srv.URL, "agent-1")
	ctx := context.Background()

	var vErr *ValidationError
	if _, err := lc.Update(ctx, "v", Payload{}); !errors.As(err, &vErr) {
		t.Fatalf("want ValidationError, got %v", err)
	} else if vErr.Fields["client_name"] != "required" {
		t.Fatalf("fields not decoded: %+v", vErr.Fields)
	}

	var sErr *InvalidStateError
	if _, err := lc.AttachSignature(ctx, "s", "payload"); !errors.As(err, &sErr) {
		t.Fatalf("want InvalidStateError, got %v", err)
	}

	var nErr *NotFoundError
	if _, err := lc.Get(ctx, "m"); !errors.As(err, &nErr) {
		t.Fatalf("want NotFoundError, got %v", err)
	}

	var tErr *TransportError
	if err := lc.Delete(ctx, "boom"); !errors.As(err, &tErr) {
		t.Fatalf("want TransportError, got %v", err)
	} else if tErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", tErr.StatusCode)
	}
}

func TestDo_RateLimitedIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":"rate_limited","message":"rate limit exceeded"}`))
	}))
	defer srv.Close()

	lc := New(srv.URL, "agent-1")

	// 429 carries no field errors; the unchanged request can succeed
	// later, so it classifies as the retryable transport outcome.
	var tErr *TransportError
	if _, err := lc.Create(context.Background(), Payload{ClientName: "X"}); !errors.As(err, &tErr) {
		t.Fatalf("want TransportError for 429, got %v", err)
	}
	if tErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d; want 429", tErr.StatusCode)
	}
	var vErr *ValidationError
	if _, err := lc.Create(context.Background(), Payload{ClientName: "X"}); errors.As(err, &vErr) {
		t.Fatalf("429 must not classify as ValidationError")
	}
}

func TestDo_NetworkFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	lc := New(srv.URL, "agent-1")
	var tErr *TransportError
	if _, err := lc.Get(context.Background(), "x"); !errors.As(err, &tErr) {
		t.Fatalf("want TransportError, got %v", err)
	}
	if tErr.StatusCode != 0 {
		t.Fatalf("no response means no status code, got %d", tErr.StatusCode)
	}
}

func TestListIterator_PagesLazily(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		// Five records total, served in limit-sized slices.
		total := 5
		var page []Summary
		for i := skip; i < total && len(page) < limit; i++ {
			page = append(page, Summary{ID: "fi-" + strconv.Itoa(i), Status: domain.StatusDraft})
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	lc := New(srv.URL, "agent-1")
	it := lc.List(ListFilter{Status: domain.StatusDraft, PageSize: 2})

	var ids []string
	for it.Next(context.Background()) {
		ids = append(ids, it.Summary().ID)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(ids) != 5 || ids[0] != "fi-0" || ids[4] != "fi-4" {
		t.Fatalf("ids = %v", ids)
	}
	// 2+2+1: the short page ends the listing without an extra request.
	if len(requests) != 3 {
		t.Fatalf("requests = %d (%v); want 3", len(requests), requests)
	}

	// Restartable: a new iterator starts over from page zero.
	it2 := lc.List(ListFilter{Status: domain.StatusDraft, PageSize: 2})
	if !it2.Next(context.Background()) {
		t.Fatalf("fresh iterator should yield again: %v", it2.Err())
	}
	if it2.Summary().ID != "fi-0" {
		t.Fatalf("fresh iterator should restart, got %s", it2.Summary().ID)
	}
}

func TestListIterator_EmptyListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	it := New(srv.URL, "agent-1").List(ListFilter{})
	if it.Next(context.Background()) {
		t.Fatalf("empty listing should not yield")
	}
	if it.Err() != nil {
		t.Fatalf("empty listing is not an error: %v", it.Err())
	}
}

func TestListIterator_SurfacesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	it := New(srv.URL, "agent-1").List(ListFilter{})
	if it.Next(context.Background()) {
		t.Fatalf("failed fetch should not yield")
	}
	var tErr *TransportError
	if !errors.As(it.Err(), &tErr) {
		t.Fatalf("want TransportError, got %v", it.Err())
	}
}
