package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulse/internal/modkit/module"
	phttp "pulse/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(t *testing.T, d Deps, path string, out any) {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	env := struct {
		Data any `json:"data"`
	}{Data: out}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
}

func TestReady_Statuses(t *testing.T) {
	cases := []struct {
		name string
		deps Deps
		want string
	}{
		{"nothing configured", Deps{}, "ok"},
		{"all ok", Deps{PG: pinger{}, CH: pinger{}, RDS: pinger{}}, "ok"},
		{"non pinging seam", Deps{PG: struct{}{}}, "degraded"},
		{"failing seam", Deps{PG: pinger{}, RDS: pinger{err: errors.New("refused")}}, "fail"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got ReadyResponse
			get(t, tc.deps, "/ready", &got)
			if got.Status != tc.want || len(got.Checks) != 3 {
				t.Fatalf("got %+v want %s", got, tc.want)
			}
		})
	}
}

func TestService_ReportsUptimeAndModules(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)
	module.Register("timeline", nil)
	module.Register("meta", nil)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d := Deps{ServiceName: "pulse-api", StartedAt: start, now: func() time.Time { return start.Add(90 * time.Second) }}
	var got ServiceResponse
	get(t, d, "/service", &got)
	if got.Name != "pulse-api" || got.Uptime != 90 || got.Build.Version == "" {
		t.Fatalf("service %+v", got)
	}
	if len(got.Modules) != 2 || got.Modules[0] != "meta" || got.Modules[1] != "timeline" {
		t.Fatalf("modules %v", got.Modules)
	}
}
