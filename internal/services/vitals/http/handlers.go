// Package http provides http transport for vitals
package http

import (
	stdhttp "net/http"

	"pulse/internal/modkit/httpkit"
	"pulse/internal/services/vitals/domain"
)

// Register mounts vitals endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/", h.check)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Check whether the subject is reported dead
// @Tags Vitals
// @Produce json
// @Success 200 {object} domain.Result "ok"
// @Router /vitals [get]
func (h *handlers) check(r *stdhttp.Request) (any, error) {
	return h.svc.Check(r.Context())
}
