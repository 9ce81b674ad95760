package module

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulse/internal/adapters/ingest/ghevent"
	"pulse/internal/core/activity"
	modkit "pulse/internal/modkit"
	"pulse/internal/modkit/module"
	"pulse/internal/platform/config"
	perr "pulse/internal/platform/errors"
	phttp "pulse/internal/platform/net/http"
	"pulse/internal/platform/testkit"
	"pulse/internal/services/timeline/domain"
	tlrepo "pulse/internal/services/timeline/repo"
	tlsvc "pulse/internal/services/timeline/service"

	"github.com/go-chi/chi/v5"
)

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	if o.Table != tlsvc.DefaultTable || o.Backend != tlrepo.BackendFile || o.MaxEntries != tlsvc.DefaultMaxEntries {
		t.Fatalf("defaults %+v", o)
	}
	if o.Gap.Duration() != 15*time.Minute {
		t.Fatalf("gap %v", o.Gap)
	}
	if len(o.Roots) != 0 || o.GitHubLogin != "" || o.ArchiveHours != 0 {
		t.Fatalf("optional fields should be empty: %+v", o)
	}
}

func TestFromConfig_ReadsEnv(t *testing.T) {
	t.Setenv("CORE_TIMELINE_GAP", "1d2h")
	t.Setenv("CORE_TIMELINE_BACKEND", "REDIS")
	t.Setenv("CORE_TIMELINE_ROOTS", "push, create-tag")
	t.Setenv("CORE_TIMELINE_GITHUB_LOGIN", "octo")
	t.Setenv("CORE_TIMELINE_ARCHIVE_HOURS", "6")
	t.Setenv("SERVICE_GITHUB_TOKENS", "a,b")

	o := FromConfig(config.New())
	if o.Gap.Duration() != 26*time.Hour {
		t.Fatalf("gap %v", o.Gap)
	}
	if o.Backend != tlrepo.BackendRedis {
		t.Fatalf("backend %q", o.Backend)
	}
	if len(o.Roots) != 2 || o.Roots[0] != activity.KindPush || o.Roots[1] != activity.KindCreateTag {
		t.Fatalf("roots %v", o.Roots)
	}
	if o.GitHubLogin != "octo" || o.ArchiveHours != 6 || o.GitHubTokens != "a,b" {
		t.Fatalf("walker options %+v", o)
	}
}

func TestFromConfig_InvalidValuesPanic(t *testing.T) {
	t.Run("gap", func(t *testing.T) {
		t.Setenv("CORE_TIMELINE_GAP", "soon")
		testkit.MustPanic(t, func() { FromConfig(config.New()) })
	})
	t.Run("roots", func(t *testing.T) {
		t.Setenv("CORE_TIMELINE_ROOTS", "push,fork")
		testkit.MustPanic(t, func() { FromConfig(config.New()) })
	})
	t.Run("backend", func(t *testing.T) {
		t.Setenv("CORE_TIMELINE_BACKEND", "s3")
		testkit.MustPanic(t, func() { FromConfig(config.New()) })
	})
	t.Run("login", func(t *testing.T) {
		t.Setenv("CORE_TIMELINE_GITHUB_LOGIN", "octo cat")
		testkit.MustPanic(t, func() { FromConfig(config.New()) })
	})
}

func TestNewService_BackendNeedsStore(t *testing.T) {
	for _, backend := range []string{tlrepo.BackendPG, tlrepo.BackendRedis, "s3"} {
		_, err := NewService(modkit.Deps{}, Options{Table: "t", Backend: backend})
		if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("%s: want InvalidArgument, got %v", backend, err)
		}
	}
	_, err := NewService(modkit.Deps{}, Options{Table: "../etc", Backend: tlrepo.BackendFile})
	if perr.WireFrom(err).Field != "table" {
		t.Fatalf("bad table should fail validation, got %v", err)
	}
}

func TestSources_PerPlatform(t *testing.T) {
	if got := Sources(modkit.Deps{}, Options{GitHubPages: 3, ArchiveHours: 2}); len(got) != 0 {
		t.Fatalf("no login should mean no sources, got %d", len(got))
	}
	got := Sources(modkit.Deps{}, Options{GitHubLogin: "octo", GitHubPages: 1, GitHubPerPage: 30, ArchiveHours: 2})
	if len(got) != 2 {
		t.Fatalf("want github and archive sources, got %d", len(got))
	}
	for i, src := range got {
		if p := src().Platform(); p != ghevent.Platform {
			t.Fatalf("source %d platform %q", i, p)
		}
	}
}

func TestModule_MountsRoutesAndPorts(t *testing.T) {
	m := NewWithOptions(modkit.Deps{}, Options{Table: "t", Backend: tlrepo.BackendFile, Dir: t.TempDir()})
	if m.Name() != "timeline" {
		t.Fatalf("name %q", m.Name())
	}
	if _, ok := module.PortsOf[domain.ServicePort](m); !ok {
		t.Fatal("ports should satisfy domain.ServicePort")
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))

	for _, tc := range []struct{ method, path string }{
		{stdhttp.MethodPost, "/timeline/refresh"},
		{stdhttp.MethodGet, "/timeline/activities"},
		{stdhttp.MethodGet, "/timeline/groups"},
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("%s %s: status %d body %s", tc.method, tc.path, rec.Code, rec.Body.String())
		}
		var env map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
}
