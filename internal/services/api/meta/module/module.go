// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "pulse/internal/modkit"
	"pulse/internal/modkit/httpkit"
	str "pulse/internal/platform/strings"

	metahttp "pulse/internal/services/api/meta/http"
)

// ServiceName is reported by /meta/service
const ServiceName = "pulse-api"

// Module implements the modkit.Module interface
type Module struct {
	b modkit.Built
	d metahttp.Deps
}

// New constructs a meta module reporting on the stores in deps
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	// typed nils would defeat the skipped check
	d := metahttp.Deps{ServiceName: ServiceName, StartedAt: time.Now()}
	if deps.PG != nil {
		d.PG = deps.PG
	}
	if deps.CH != nil {
		d.CH = deps.CH
	}
	if deps.RDS != nil {
		d.RDS = deps.RDS
	}
	return &Module{b: b, d: d}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.d) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.b.Name, "meta") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
