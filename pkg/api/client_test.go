package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// rotatingSource hands out a stale token until Refresh is called.
type rotatingSource struct {
	current   string
	next      string
	refreshes int
}

func (s *rotatingSource) Token(ctx context.Context) (string, error) {
	return s.current, nil
}

func (s *rotatingSource) Refresh(ctx context.Context) (string, error) {
	s.refreshes++
	s.current = s.next
	return s.current, nil
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func TestIndividualUsageDecodesFlatFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/usage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"gpt-4": {"numRequests": 120, "maxRequestUsage": 500},
			"gpt-3.5-turbo": {"numRequests": 4},
			"startOfMonth": "2026-08-03T00:00:00.000Z"
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &rotatingSource{current: "tok"}, nil)
	got, err := c.IndividualUsage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.StartOfMonth != "2026-08-03T00:00:00.000Z" {
		t.Errorf("unexpected startOfMonth %q", got.StartOfMonth)
	}
	mc, ok := got.Models["gpt-4"]
	if !ok {
		t.Fatalf("expected gpt-4 counters, got %v", got.Models)
	}
	if mc.NumRequests != 120 || mc.MaxRequestUsage == nil || *mc.MaxRequestUsage != 500 {
		t.Errorf("unexpected counters %+v", mc)
	}
}

func TestMonthlyInvoiceRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionToken(r) != "tok" {
			t.Error("expected session cookie")
		}
		w.Write([]byte(`{
			"items": [
				{"description": "10 fast premium requests beyond 500", "cents": 40},
				{"description": "informational line"}
			],
			"hasUnpaidMidMonthInvoice": true,
			"someFutureField": 7
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &rotatingSource{current: "tok"}, nil)
	inv, err := c.MonthlyInvoice(context.Background(), time.August, 2026)
	if err != nil {
		t.Fatal(err)
	}
	if len(inv.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(inv.Items))
	}
	if inv.Items[0].Cents == nil || *inv.Items[0].Cents != 40 {
		t.Errorf("unexpected cents %v", inv.Items[0].Cents)
	}
	if inv.Items[1].Cents != nil {
		t.Error("expected absent cents to stay nil")
	}
	if !inv.HasUnpaidMidMonthInvoice {
		t.Error("expected unpaid flag")
	}
}

func TestAuthRetryOnce(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if sessionToken(r) != "fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"teams": [{"id": 7, "name": "acme"}]}`))
	}))
	defer srv.Close()

	src := &rotatingSource{current: "stale", next: "fresh"}
	c := NewClient(srv.URL, src, nil)

	teams, err := c.Teams(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 1 || teams[0].ID != 7 {
		t.Errorf("unexpected teams %+v", teams)
	}
	if src.refreshes != 1 {
		t.Errorf("expected exactly 1 refresh, got %d", src.refreshes)
	}
	if attempts != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestAuthFailureAfterRetry(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	src := &rotatingSource{current: "stale", next: "still-stale"}
	c := NewClient(srv.URL, src, nil)

	_, err := c.Teams(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected retry to stop after 2 attempts, got %d", attempts)
	}
}

func TestStatusErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &rotatingSource{current: "tok"}, nil)
	_, err := c.TeamUsage(context.Background(), 7)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusBadGateway {
		t.Errorf("unexpected status %d", se.Status)
	}
}
