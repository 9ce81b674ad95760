package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulse/internal/platform/logger"
	"pulse/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func capture() (*bytes.Buffer, *logger.Logger) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	return &buf, &l
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var m map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestAccessLog_Fields(t *testing.T) {
	buf, log := capture()
	r := chi.NewRouter()
	r.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{Log: log}))
	r.Get("/timeline/{kind}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "hi")
		_, _ = io.WriteString(w, "there")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/timeline/push", nil))
	if rec.Code != http.StatusCreated || rec.Body.String() != "hithere" {
		t.Fatalf("response %d %q", rec.Code, rec.Body.String())
	}

	m := lastLine(t, buf)
	if m["level"] != "info" || m["status"] != float64(201) || m["bytes"] != float64(7) {
		t.Fatalf("line %v", m)
	}
	if m["route"] != "/timeline/{kind}" || m["path"] != "/timeline/push" {
		t.Fatalf("route %v", m)
	}
}

func TestAccessLog_Levels(t *testing.T) {
	cases := []struct {
		name   string
		opt    middleware.AccessLogOptions
		status int
		want   string
	}{
		{"default status", middleware.AccessLogOptions{}, 0, "info"},
		{"server error", middleware.AccessLogOptions{Slow: time.Nanosecond}, http.StatusBadGateway, "error"},
		{"slow", middleware.AccessLogOptions{Slow: time.Nanosecond}, http.StatusOK, "warn"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf, log := capture()
			tc.opt.Log = log
			h := middleware.AccessLogZerolog(tc.opt)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(time.Microsecond)
				if tc.status != 0 {
					w.WriteHeader(tc.status)
				}
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
			if m := lastLine(t, buf); m["level"] != tc.want {
				t.Fatalf("level %v want %s", m["level"], tc.want)
			}
		})
	}
}

func TestAccessLog_SkipsPaths(t *testing.T) {
	buf, log := capture()
	h := middleware.AccessLogZerolog(middleware.AccessLogOptions{Skip: []string{"/health"}, Log: log})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusNoContent || buf.Len() != 0 {
		t.Fatalf("code %d log %q", rec.Code, buf.String())
	}
}
