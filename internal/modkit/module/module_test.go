package module

import (
	"sync"
	"testing"

	phttp "pulse/internal/platform/net/http"
	"pulse/internal/platform/testkit"
)

type refresher interface{ Refresh() int }

type refresh int

func (r refresh) Refresh() int { return int(r) }

type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string             { return m.name }
func (m fakeModule) Ports() any               { return m.ports }
func (m fakeModule) MountRoutes(phttp.Router) {}

func TestPortsOf(t *testing.T) {
	type bundle struct {
		Count    int
		Timeline refresher
		hidden   refresher
	}
	cases := []struct {
		name  string
		ports any
		want  int
		ok    bool
	}{
		{"nil ports", nil, 0, false},
		{"direct", refresh(3), 3, true},
		{"exported field", bundle{Count: 1, Timeline: refresh(5)}, 5, true},
		{"unexported field only", bundle{hidden: refresh(7)}, 0, false},
		{"not a struct", 42, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[refresher](fakeModule{name: "timeline", ports: tc.ports})
			if ok != tc.ok || (ok && got.Refresh() != tc.want) {
				t.Fatalf("ok=%v got=%v", ok, got)
			}
		})
	}
}

func TestMustPortsOf(t *testing.T) {
	if got := MustPortsOf[refresher](fakeModule{ports: refresh(1)}); got.Refresh() != 1 {
		t.Fatalf("got %v", got)
	}
	testkit.MustPanic(t, func() { MustPortsOf[refresher](fakeModule{name: "meta"}) })
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("vitals", refresh(2))
	Register("meta", nil)

	if got, ok := PortsAs[refresher]("vitals"); !ok || got.Refresh() != 2 {
		t.Fatalf("PortsAs vitals: %v %v", got, ok)
	}
	if _, ok := PortsAs[refresher]("missing"); ok {
		t.Fatalf("missing name should not resolve")
	}
	if _, ok := PortsAs[refresher]("meta"); ok {
		t.Fatalf("nil ports should not satisfy an interface")
	}
	if _, ok := PortsAs[string]("vitals"); ok {
		t.Fatalf("type mismatch should not resolve")
	}
	if n := Names(); len(n) != 2 || n[0] != "meta" || n[1] != "vitals" {
		t.Fatalf("names %v", n)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Register("timeline", refresh(i))
			_, _ = PortsAs[refresher]("timeline")
		}(i)
	}
	wg.Wait()
	if _, ok := PortsAs[refresher]("timeline"); !ok {
		t.Fatalf("concurrent registration lost")
	}
}
