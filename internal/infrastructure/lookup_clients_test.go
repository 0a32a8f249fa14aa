package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"notdienst_bot/internal/entities"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestOpenCage(t *testing.T, h http.HandlerFunc) (*OpenCageClient, *sleepRecorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	rec := &sleepRecorder{}
	c := NewOpenCageClient("secret", "de", srv.Client(), testPolicy(rec), zerolog.Nop())
	c.BaseURL = srv.URL
	return c, rec
}

func TestOpenCage_FirstResult(t *testing.T) {
	c, _ := newTestOpenCage(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "secret" || q.Get("q") != "10115" || q.Get("countrycode") != "de" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"results":[{"geometry":{"lat":52.52,"lng":13.405}},{"geometry":{"lat":1,"lng":2}}]}`))
	})

	got, ok := c.Coordinates(context.Background(), "10115")
	if !ok {
		t.Fatal("expected coordinates")
	}
	if got.Latitude != 52.52 || got.Longitude != 13.405 {
		t.Errorf("got %+v", got)
	}
}

func TestOpenCage_AbsentCases(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"empty results": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[]}`))
		},
		"missing results key": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":{"code":200}}`))
		},
		"missing geometry": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[{"formatted":"Berlin"}]}`))
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results":[`))
		},
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			c, rec := newTestOpenCage(t, h)
			if _, ok := c.Coordinates(context.Background(), "10115"); ok {
				t.Error("expected absent coordinates")
			}
			if len(rec.calls) != 0 {
				t.Errorf("unexpected retries: %d", len(rec.calls))
			}
		})
	}
}

func TestOpenCage_RetriesOn429(t *testing.T) {
	var hits int32
	c, rec := newTestOpenCage(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"results":[{"geometry":{"lat":48.1,"lng":11.5}}]}`))
	})

	got, ok := c.Coordinates(context.Background(), "80331")
	if !ok || got.Latitude != 48.1 {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
	if hits != 3 {
		t.Errorf("hits = %d, want 3", hits)
	}
	if len(rec.calls) != 2 {
		t.Errorf("sleeps = %d, want 2", len(rec.calls))
	}
}

func TestOpenCage_RateLimitExhausted(t *testing.T) {
	var hits int32
	c, _ := newTestOpenCage(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, ok := c.Coordinates(context.Background(), "80331"); ok {
		t.Fatal("expected absent coordinates")
	}
	if hits != DefaultRetryAttempts {
		t.Errorf("hits = %d, want %d", hits, DefaultRetryAttempts)
	}
}

func newTestNotdienst(t *testing.T, h http.HandlerFunc) *NotdienstClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewNotdienstClient(srv.Client(), testPolicy(&sleepRecorder{}), zerolog.Nop())
	c.BaseURL = srv.URL
	return c
}

func TestNotdienst_ParsesPharmacies(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	c := newTestNotdienst(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("lat") != "52.52" || q.Get("lon") != "13.405" || q.Get("date") != "1700000000123" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"name":"Apotheke X","street":"Hauptstr 1","zip":"10115","city":"Berlin","phone":"030-1234","serviceTime":"08:00-20:00"}]`))
	})

	got, ok := c.OnDuty(context.Background(), entities.Coordinates{Latitude: 52.52, Longitude: 13.405}, at)
	if !ok {
		t.Fatal("expected a result")
	}
	want := entities.Pharmacy{
		Name:        "Apotheke X",
		Street:      "Hauptstr 1",
		PostalCode:  "10115",
		City:        "Berlin",
		Phone:       "030-1234",
		ServiceTime: "08:00-20:00",
	}
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %+v", got)
	}
}

func TestNotdienst_EmptyIsNotAbsent(t *testing.T) {
	for _, body := range []string{`[]`, `null`} {
		c := newTestNotdienst(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		got, ok := c.OnDuty(context.Background(), entities.Coordinates{}, time.Now())
		if !ok {
			t.Errorf("%s: expected ok", body)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("%s: expected empty non-nil list, got %#v", body, got)
		}
	}
}

func TestNotdienst_FailureIsAbsent(t *testing.T) {
	for name, h := range map[string]http.HandlerFunc{
		"object instead of array": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"nope"}`))
		},
		"bad gateway": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestNotdienst(t, h)
			got, ok := c.OnDuty(context.Background(), entities.Coordinates{}, time.Now())
			if ok || got != nil {
				t.Errorf("expected absent, got %#v ok=%v", got, ok)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cases := map[string]time.Duration{
		"":                              0,
		"12":                            12 * time.Second,
		"-3":                            0,
		"soon":                          0,
		"Mon, 01 Jan 2024 12:00:30 GMT": 30 * time.Second,
		"Mon, 01 Jan 2024 11:00:00 GMT": 0,
	}
	for in, want := range cases {
		if got := parseRetryAfter(in, now); got != want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}
