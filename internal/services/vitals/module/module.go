// Package module wires vitals into the API using modkit
package module

import (
	"pulse/internal/adapters/oracle"
	"pulse/internal/adapters/search"
	modkit "pulse/internal/modkit"
	"pulse/internal/modkit/httpkit"
	"pulse/internal/platform/logger"
	str "pulse/internal/platform/strings"
	vhttp "pulse/internal/services/vitals/http"
	vsvc "pulse/internal/services/vitals/service"
)

// Module implements the vitals module
type Module struct {
	b     modkit.Built
	ports any
	svc   vsvc.Service
}

// New constructs the vitals module from deps.Cfg
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	return NewWithOptions(deps, FromConfig(deps.Cfg), opts...)
}

// NewWithOptions constructs the vitals module from explicit options
func NewWithOptions(deps modkit.Deps, o Options, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("vitals"), modkit.WithPrefix("/vitals")}, opts...)...)

	svc, err := NewService(o)
	if err != nil {
		logger.Get().Panic().Err(err).Msg("vitals module")
	}

	return &Module{b: b, svc: svc, ports: adaptVitalsPort{svc: svc}}
}

// NewService builds the vitals service over the search and oracle clients
func NewService(o Options) (*vsvc.Svc, error) {
	sc, err := search.NewClient(o.Search)
	if err != nil {
		return nil, err
	}
	oc, err := oracle.NewClient(o.Oracle)
	if err != nil {
		return nil, err
	}
	return vsvc.New(o.Service, searchPort{c: sc}, oc), nil
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { vhttp.Register(rr, m.svc) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }
