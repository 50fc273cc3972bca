package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSearch(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		if r.URL.Query().Get("limit") != "5" || r.URL.Query().Get("addressdetails") != "1" {
			t.Errorf("unexpected query params: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"lat": "45.53", "lon": "0.66", "display_name": "Nontron, Dordogne, France", "address": {"postcode": "24300"}}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "crieur-test/1.0", 5*time.Second)
	candidates, err := c.Search(context.Background(), "Nontron", "Dordogne")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "Nontron, Dordogne, France" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotAgent != "crieur-test/1.0" {
		t.Errorf("user agent = %q", gotAgent)
	}
	if len(candidates) != 1 || candidates[0].Lat != "45.53" || candidates[0].Address.Postcode != "24300" {
		t.Errorf("candidates = %+v", candidates)
	}
}

func TestClientSearchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "crieur-test/1.0", 5*time.Second)
	if _, err := c.Search(context.Background(), "Nontron", "Dordogne"); err == nil {
		t.Fatal("want error on non-200 status")
	}
}

func TestClientPacing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "crieur-test/1.0", 5*time.Second)
	now := time.Date(2025, time.December, 8, 12, 0, 0, 0, time.UTC)
	var slept []time.Duration
	c.now = func() time.Time { return now }
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	// First call never sleeps.
	if _, err := c.Search(context.Background(), "Nontron", "Dordogne"); err != nil {
		t.Fatal(err)
	}
	if len(slept) != 0 {
		t.Fatalf("first call slept %v", slept)
	}

	// Second call with no elapsed time waits the full spacing.
	if _, err := c.Search(context.Background(), "Chalais", "Dordogne"); err != nil {
		t.Fatal(err)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("slept = %v, want [1s]", slept)
	}

	// Third call after 400ms of wall clock waits only the remainder.
	now = now.Add(400 * time.Millisecond)
	if _, err := c.Search(context.Background(), "Bergerac", "Dordogne"); err != nil {
		t.Fatal(err)
	}
	if len(slept) != 2 || slept[1] != 600*time.Millisecond {
		t.Fatalf("slept = %v, want second sleep of 600ms", slept)
	}
}

func TestClientPacingStampsFailedCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "crieur-test/1.0", 5*time.Second)
	now := time.Date(2025, time.December, 8, 12, 0, 0, 0, time.UTC)
	var slept []time.Duration
	c.now = func() time.Time { return now }
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	c.Search(context.Background(), "Nontron", "Dordogne")
	c.Search(context.Background(), "Nontron", "Dordogne")
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("slept = %v, failed calls must still count for pacing", slept)
	}
}
