package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	perr "pulse/internal/platform/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL + "/", MaxRetries: 2})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestVerdict(t *testing.T) {
	cases := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"Yes.", true, false},
		{"  YES, they passed away in 2023", true, false},
		{"no", false, false},
		{"\"No\" - nothing found", false, false},
		{"Nope", false, true},
		{"yesterday", false, true},
		{"I cannot say", false, true},
		{"", false, true},
	}
	for _, tc := range cases {
		got, err := Verdict(tc.in)
		if tc.wantErr {
			if !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("Verdict(%q): expected validation error, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("Verdict(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func TestClip_KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("é", 70)
	got := clip(s, 64)
	if !utf8.ValidString(got) || utf8.RuneCountInString(strings.TrimSuffix(got, "...")) != 64 {
		t.Fatalf("clip(%d runes) = %q", utf8.RuneCountInString(s), got)
	}
	if clip("short", 64) != "short" {
		t.Fatal("short input changed")
	}
	if _, err := Verdict(s); err == nil || strings.Contains(err.Error(), `\x`) {
		t.Fatalf("verdict error splits a rune: %v", err)
	}
}

func TestAsk_SendsRequestAndParses(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/ai/generate" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"text":"Yes","confidence":0.9}`))
	})

	ok, err := c.Ask(context.Background(), "is it so?")
	if err != nil || !ok {
		t.Fatalf("Ask = %v, %v", ok, err)
	}
	if got.Prompt != "is it so?" || got.MaxTokens != defaultMaxTokens {
		t.Fatalf("request %+v", got)
	}
}

func TestGenerate_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"text":"no"}`))
	})
	ok, err := c.Ask(context.Background(), "q")
	if err != nil || ok {
		t.Fatalf("Ask = %v, %v", ok, err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestGenerate_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})
	if _, err := c.Generate(context.Background(), "q"); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestGenerate_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := c.Generate(context.Background(), "q")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "  "}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	c, _ := NewClient(Options{BaseURL: "http://x"})
	if _, err := c.Generate(context.Background(), " "); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
